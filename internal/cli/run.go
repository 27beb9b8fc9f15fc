package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"scorecard/internal/config"
	"scorecard/internal/engine"
	"scorecard/internal/flags"
	gh "scorecard/internal/github"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "SCORECARD"

const runLong = `Run checks against one or more repositories.

Checks are selected by ID (comma-separated or as separate arguments); no
selection runs every check. Without --repo or --github the repository is
SCORECARD_REPO_PATH, or the working directory when that is unset.

Output:
	Text output prints each message as is when there is a single result, and a
	"[STATUS] target check" header per result otherwise. PASS goes to stdout,
	FAIL and ERROR to stderr.
	Structured output:
	- --console-format json|ndjson: machine output on stdout instead of text
	- --out / --out-format: write a JSON array or NDJSON stream to a file
	- --emit: write an additional json or ndjson stream to stdout
	- --no-console: suppress the console sink (use with --emit/--out)

	NDJSON objects are events with a "type" field (run.started, check.result,
	run.finished).

Exit codes:
	0 = every result passed
	1 = at least one FAIL or ERROR, or the run could not start

Authentication (GitHub targets only):
	GITHUB_TOKEN, then GH_TOKEN, then "gh auth token". Public repositories can
	be read without a token. GITHUB_API_URL selects a GitHub Enterprise API.

Examples:
	scorecard run
	scorecard run license --repo ./service-a --repo ./service-b
	scorecard run codeowners --github acme/api --ref main
	scorecard run --decode strict --set license.min-chars=200
	scorecard run --no-console --emit ndjson`

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [check-id[,check-id...]]...",
		Short: "Run checks against repositories",
		Long:  runLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			return codeError(runChecks(cmd, strings.Join(args, ",")))
		},
	}
	addRunFlags(cmd.Flags())
	return cmd
}

// NewSingleCheckCommand builds the root command of a binary that runs only
// checkID.
func NewSingleCheckCommand(checkID string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "check-" + checkID,
		Short:         fmt.Sprintf("Run the %s check", checkID),
		Long:          fmt.Sprintf("Run the %s check; equivalent to \"scorecard run %s\".", checkID, checkID),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       versionString(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return codeError(runChecks(cmd, checkID))
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	addGlobalFlags(cmd)
	addRunFlags(cmd.Flags())
	return cmd
}

func addRunFlags(fs *pflag.FlagSet) {
	d := config.New()

	// Targeting
	fs.String(flags.FlagRepoPath, "", "Repository directory used when no --repo/--github is given (default: working directory)")
	fs.StringArray(flags.FlagRepo, nil, "Local repository directory to check (repeatable)")
	fs.StringSlice(flags.FlagGitHub, nil, "GitHub repository to check as OWNER/REPO[@REF] (repeatable; comma-separated accepted)")
	fs.String(flags.FlagRef, "", "Branch, tag or commit for --github repositories without an explicit @REF")

	// Checks
	fs.StringArray(flags.FlagSet, nil, "Per-check option as checkID.option=value (repeatable)")
	fs.String(flags.FlagDecode, d.Checks.Decode, "How to treat bytes that are not valid UTF-8: lenient|strict")

	// Output
	fs.String(flags.FlagConsoleFormat, d.Output.ConsoleFormat, "Console output format: text|json|ndjson")
	fs.StringSlice(flags.FlagConsoleFilterStatus, nil, "Only show results with these statuses (PASS, FAIL, ERROR). Comma-separated.")
	fs.String(flags.FlagOut, "", "Write structured output to this path")
	fs.String(flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	fs.StringSlice(flags.FlagEmit, nil, "Emit an additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	fs.Bool(flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out)")

	// Runtime
	fs.Int(flags.FlagConcurrency, d.Runtime.Concurrency, "Maximum checks evaluated at once")
	fs.Duration(flags.FlagTimeout, d.Runtime.Timeout, "Global timeout for the run")
}

// loadInput resolves settings from flags, SCORECARD_* environment variables,
// an optional --config file and defaults, in that order of precedence.
func loadInput(cmd *cobra.Command) (config.Input, error) {
	var in config.Input

	v := viper.New()
	for key, value := range config.Defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return in, fmt.Errorf("bind flags: %w", err)
	}

	if configFile := v.GetString(flags.FlagConfig); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return in, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&in); err != nil {
		return in, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return in, nil
}

func runChecks(cmd *cobra.Command, selector string) int {
	stderr := cmd.ErrOrStderr()

	in, err := loadInput(cmd)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return engine.ExitFail
	}
	cfg := in.Config(selector)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return engine.ExitFail
	}

	logger := newLogger(stderr, cfg.Runtime.Verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var client *gh.Client
	if len(cfg.Target.GitHub) > 0 {
		client, err = newGitHubClient(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return engine.ExitFail
		}
	}

	eng := engine.NewEngine(client)
	eng.Stdout = cmd.OutOrStdout()
	eng.Stderr = stderr
	eng.Logger = logger
	return eng.Run(ctx, cfg)
}

func newGitHubClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gh.Client, error) {
	token, src, err := gh.ResolveToken(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve GitHub auth token: %w", err)
	}
	if token == "" {
		logger.Warn("no GitHub token found; using unauthenticated requests (60 per hour)")
	} else {
		logger.Debug("using GitHub token", "source", string(src))
	}

	opts := []gh.Option{}
	if cfg.Runtime.Verbose {
		opts = append(opts, gh.WithLogger(logger))
	}
	if base := strings.TrimSpace(os.Getenv("GITHUB_API_URL")); base != "" && base != "https://api.github.com" {
		opts = append(opts, gh.WithBaseURL(base))
	}
	client, err := gh.NewClient(ctx, token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}
