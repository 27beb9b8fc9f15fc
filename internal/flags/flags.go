// Package flags defines canonical CLI flag names shared across the CLI, the
// config loader and viper keys.
// IMPORTANT: These are flag *names* without leading dashes. The matching
// environment variable is SCORECARD_ plus the name uppercased with dashes
// replaced by underscores (e.g. SCORECARD_REPO_PATH).
// Example usage:
//
//	cmd.Flags().StringSliceVar(&repos, flags.FlagRepo, nil, "...")
//	arg := "--" + flags.FlagRepo
package flags

const (
	// Targeting
	FlagRepoPath = "repo-path"
	FlagRepo     = "repo"
	FlagGitHub   = "github"
	FlagRef      = "ref"

	// Checks
	FlagSet    = "set"
	FlagDecode = "decode"

	// Output
	FlagConsoleFormat       = "console-format"
	FlagConsoleFilterStatus = "console-filter-status"
	FlagOut                 = "out"
	FlagOutFormat           = "out-format"
	FlagEmit                = "emit"
	FlagNoConsole           = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagVerbose     = "verbose"
	FlagConfig      = "config"
)
