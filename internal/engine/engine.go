package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"orgdump/internal/archive"
	"orgdump/internal/config"
	gh "orgdump/internal/github"
	"orgdump/internal/output"
)

type Engine struct {
	Client *gh.Client

	// Stdout receives the completion message.
	Stdout io.Writer
}

func NewEngine(client *gh.Client) *Engine {
	return &Engine{Client: client, Stdout: os.Stdout}
}

// Run fetches the organization's repositories, then the issues of each
// repository in turn. The first error ends the run; files written before it
// are left in place.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) error {
	log := zerolog.Ctx(ctx)

	store, err := output.NewDirStore(cfg.DataDir, cfg.Organization)
	if err != nil {
		return err
	}
	log.Debug().Str("dir", store.Dir()).Msg("output directory ready")

	names, err := archive.FetchRepositories(ctx, e.Client, cfg.Organization, store)
	if err != nil {
		return err
	}

	for i, name := range names {
		if err := archive.FetchIssues(ctx, e.Client, cfg.Organization, name, store); err != nil {
			return err
		}
		log.Debug().Int("done", i+1).Int("total", len(names)).Msg("repository complete")
	}

	out := e.Stdout
	if out == nil {
		out = os.Stdout
	}
	bold := color.New(color.Bold)
	_, err = bold.Fprintf(out, "Data fetching completed. All data is stored in the %s directory.\n", store.Dir())
	if err != nil {
		return fmt.Errorf("print completion message: %w", err)
	}
	return nil
}
