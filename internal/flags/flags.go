package flags

// Package flags defines canonical CLI flag names shared across the CLI and its
// tests. IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.DataDir, flags.FlagDataDir, "data", "...")
//	arg := "--" + flags.FlagDataDir
const (
	FlagEnvFile = "env-file"
	FlagDataDir = "data-dir"
	FlagVerbose = "verbose"
)
