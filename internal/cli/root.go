package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"orgdump/internal/config"
	"orgdump/internal/engine"
	"orgdump/internal/failure"
	"orgdump/internal/flags"
	gh "orgdump/internal/github"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "orgdump",
	Short: "Download every repository and issue of a GitHub organization as JSON",
	Long: `orgdump lists all repositories of a GitHub organization and downloads all
issues (open and closed) of each repository, writing them as pretty-printed
JSON files.

Configuration:
  GITHUB_ACCESS_TOKEN  personal access token (required)
  ORGANIZATION         organization login or URL (required)
  GITHUB_API_URL       REST API base URL for GitHub Enterprise Server (optional)

  Values are read from the environment, after loading a .env file from the
  working directory if one exists (see --env-file). Variables already set in
  the environment win over the file.

Output:
  <data-dir>/<organization>/orgrepos.json
  <data-dir>/<organization>/<repository>.issues.json

  Existing files are overwritten. The run stops at the first error; files
  already written are left in place.

Examples:
  # Token and organization from the environment
  export GITHUB_ACCESS_TOKEN="<your_token>"
  export ORGANIZATION=my-org
  orgdump

  # Write somewhere else and log every API call
  orgdump --data-dir /tmp/dump --verbose`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Past this point errors come from the run, not from CLI syntax, so
		// usage would only be noise.
		cmd.SilenceUsage = true

		if cfg.Verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context(), cmd.OutOrStdout())
	},
	// Execute reports errors itself.
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&cfg.EnvFile, flags.FlagEnvFile, config.DefaultEnvFile, "Load environment variables from this file before reading configuration (a missing default file is ignored)")
	rootCmd.Flags().StringVar(&cfg.DataDir, flags.FlagDataDir, config.DefaultDataDir, "Directory under which <organization>/ is created")
	rootCmd.PersistentFlags().BoolVar(&cfg.Verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every GitHub API call and full error details)")
}

func runFetch(ctx context.Context, stdout io.Writer) error {
	if err := cfg.Load(); err != nil {
		return err
	}

	client, err := gh.NewClient(ctx, cfg.AccessToken, gh.WithVerbose(cfg.Verbose), gh.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return err
	}

	eng := engine.NewEngine(client)
	eng.Stdout = stdout
	return eng.Run(ctx, cfg)
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

// newLogger returns the console logger injected into the command context.
func newLogger(w io.Writer) zerolog.Logger {
	logWriter := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	logWriter.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	return zerolog.New(logWriter).With().Timestamp().Logger()
}

func Execute() {
	// Default to info level logging unless --verbose is provided.
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	log := newLogger(os.Stderr)
	ctx = log.WithContext(ctx)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", failure.Describe(err, cfg.Verbose))
		os.Exit(1)
	}
}
