// Package archive downloads an organization's repositories and their issues
// and persists them through an output store.
//
// Both listings walk every page of their endpoint before writing, so a file is
// only produced for a listing that was fetched completely.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/go-github/v81/github"
	"github.com/rs/zerolog"

	"orgdump/internal/failure"
	gh "orgdump/internal/github"
	"orgdump/internal/output"
)

// Store persists one JSON document per name.
type Store interface {
	WriteJSON(name string, v any) error
}

// FetchRepositories lists every repository of org, writes the records to
// orgrepos.json and returns the repository names in API order.
func FetchRepositories(ctx context.Context, client *gh.Client, org string, store Store) ([]string, error) {
	zerolog.Ctx(ctx).Info().Str("org", org).Msgf("Fetching repositories for organization %s...", org)

	step := fmt.Sprintf("fetch repositories for organization %s", org)
	path := fmt.Sprintf("orgs/%s/repos", url.PathEscape(org))
	opts := &github.RepositoryListByOrgOptions{Type: "all"}
	repos, err := gh.Collect(client.Paginate(ctx, path, opts))
	if err != nil {
		return nil, failure.New(failure.PageFetchFailure, step, err)
	}

	names := make([]string, 0, len(repos))
	for i, raw := range repos {
		name, err := repoName(raw)
		if err != nil {
			return nil, failure.New(failure.SerializationFailure, step, fmt.Errorf("repository record %d: %w", i, err))
		}
		names = append(names, name)
	}

	if err := store.WriteJSON(output.ReposFileName, repos); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Int("repos", len(names)).Str("file", output.ReposFileName).Msg("wrote repositories")

	return names, nil
}

// FetchIssues lists every issue (open and closed, pull requests included) of
// org/repo and writes them to <repo>.issues.json.
func FetchIssues(ctx context.Context, client *gh.Client, org, repo string, store Store) error {
	zerolog.Ctx(ctx).Info().Str("repo", repo).Msgf("Fetching issues for repository %s...", repo)

	path := fmt.Sprintf("repos/%s/%s/issues", url.PathEscape(org), url.PathEscape(repo))
	opts := &github.IssueListByRepoOptions{State: "all"}
	issues, err := gh.Collect(client.Paginate(ctx, path, opts))
	if err != nil {
		return failure.New(failure.PageFetchFailure, fmt.Sprintf("fetch issues for repository %s/%s", org, repo), err)
	}

	file := output.IssuesFileName(repo)
	if err := store.WriteJSON(file, issues); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Int("issues", len(issues)).Str("file", file).Msg("wrote issues")

	return nil
}

func repoName(raw json.RawMessage) (string, error) {
	var rec struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", err
	}
	if rec.Name == "" {
		return "", fmt.Errorf("missing name")
	}
	return rec.Name, nil
}
