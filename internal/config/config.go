package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"orgdump/internal/failure"
)

const (
	EnvAccessToken  = "GITHUB_ACCESS_TOKEN"
	EnvOrganization = "ORGANIZATION"
	EnvAPIURL       = "GITHUB_API_URL"

	DefaultEnvFile = ".env"
	DefaultDataDir = "data"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove fields here, keep the CLI flags
	// in internal/cli/root.go in sync.

	// AccessToken authenticates every API call. Never printed.
	AccessToken string

	// Organization is the GitHub organization whose repositories and issues
	// are fetched (login or URL; normalized to the login by Validate).
	Organization string

	// BaseURL optionally points the client at a GitHub Enterprise Server API
	// (e.g. https://ghe.example.com/api/v3/). Empty means api.github.com.
	BaseURL string

	// EnvFile is the .env-style file loaded before reading the environment
	// (see --env-file). A missing default file is ignored.
	EnvFile string

	// DataDir is the root under which <organization>/ is created (see --data-dir).
	DataDir string

	// Verbose enables debug logging of every GitHub API call (see --verbose).
	Verbose bool
}

func New() *Config {
	return &Config{
		EnvFile: DefaultEnvFile,
		DataDir: DefaultDataDir,
	}
}

// Load populates the token, organization and API URL from the environment,
// after loading c.EnvFile. Variables already set in the process environment
// take precedence over the file.
func (c *Config) Load() error {
	if err := loadEnvFile(c.EnvFile); err != nil {
		return err
	}

	c.AccessToken = strings.TrimSpace(os.Getenv(EnvAccessToken))
	c.Organization = strings.TrimSpace(os.Getenv(EnvOrganization))
	c.BaseURL = strings.TrimSpace(os.Getenv(EnvAPIURL))

	return c.Validate()
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && path == DefaultEnvFile {
		return nil
	}
	return failure.New(failure.MissingConfig, fmt.Sprintf("load env file %s", path), err)
}

func (c *Config) Validate() error {
	var missing []string
	if c.AccessToken == "" {
		missing = append(missing, EnvAccessToken)
	}
	if strings.TrimSpace(c.Organization) == "" {
		missing = append(missing, EnvOrganization)
	}
	if len(missing) > 0 {
		return failure.New(failure.MissingConfig, "load configuration",
			fmt.Errorf("%s must be set in the environment or %s file", strings.Join(missing, " and "), DefaultEnvFile))
	}

	org, err := organizationLogin(c.Organization)
	if err != nil {
		return failure.New(failure.MissingConfig, "load configuration", fmt.Errorf("invalid %s value: %w", EnvOrganization, err))
	}
	c.Organization = org

	if strings.TrimSpace(c.DataDir) == "" {
		return failure.New(failure.MissingConfig, "load configuration", errors.New("--data-dir must not be empty"))
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return failure.New(failure.MissingConfig, "load configuration", fmt.Errorf("invalid %s value %q", EnvAPIURL, c.BaseURL))
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.BaseURL = u.String()
	}

	return nil
}

// organizationLogin reduces raw to an organization login. raw is either the
// login itself or a github.com organization URL: github.com/<org> or
// github.com/orgs/<org>, with or without scheme and "www.".
func organizationLogin(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "/") {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%q is not an organization login or URL", raw)
	}
	if host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."); host != "github.com" {
		return "", fmt.Errorf("%q is not a github.com organization URL", raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if segments[0] == "orgs" {
		segments = segments[1:]
	}
	if len(segments) != 1 || segments[0] == "" {
		return "", fmt.Errorf("%q does not name a single organization", raw)
	}
	return segments[0], nil
}
