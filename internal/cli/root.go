package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"scorecard/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// exitCode carries a non-zero process exit status out of a RunE without
// printing anything further.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

func codeError(code int) error {
	if code == 0 {
		return nil
	}
	return exitCode(code)
}

const rootLong = `Scorecard checks repositories against compliance requirements.

Each check reads a repository (a local directory or a GitHub repository via
the contents API) and reports PASS, FAIL or ERROR with a message. Passing
messages go to stdout; failures and errors go to stderr. The process exits 0
only when every result passes.

Examples:
	# Run every check against the current directory
	scorecard run

	# Run selected checks against another checkout
	SCORECARD_REPO_PATH=../service scorecard run license,codeowners

	# Check GitHub repositories at a tag
	scorecard run --github acme/api,acme/web --ref v1.2.0

	# List checks
	scorecard checks list

Configuration:
	Every flag can also be set as SCORECARD_<FLAG> (dashes become underscores,
	e.g. SCORECARD_REPO_PATH, SCORECARD_CONSOLE_FORMAT) or in a YAML file
	passed with --config.`

// NewRootCommand builds the scorecard command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "scorecard",
		Short:         "Check repositories for license, ownership and API hygiene",
		Long:          rootLong,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       versionString(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	addGlobalFlags(root)

	root.AddCommand(newRunCommand())
	root.AddCommand(newChecksCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(flags.FlagVerbose, false, "Enable debug logging (check timings and every GitHub API call)")
	cmd.PersistentFlags().String(flags.FlagConfig, "", "YAML file with default flag values (keys are flag names)")
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
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func versionString() string {
	return fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// run executes cmd with args and maps the outcome to a process exit code.
func run(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return 1
}

// Execute runs the scorecard command line and returns the exit code.
func Execute() int {
	return run(NewRootCommand(), os.Args[1:])
}

// ExecuteSingle runs a binary dedicated to one check, equivalent to
// "scorecard run <checkID>".
func ExecuteSingle(checkID string) int {
	return run(NewSingleCheckCommand(checkID), os.Args[1:])
}
