package config

import (
	"time"

	"scorecard/internal/flags"
)

// Input is the flat view of every setting as resolved by viper from flags,
// SCORECARD_* environment variables and an optional YAML config file. Keys
// match the flag names.
type Input struct {
	RepoPath            string        `mapstructure:"repo-path"`
	Repo                []string      `mapstructure:"repo"`
	GitHub              []string      `mapstructure:"github"`
	Ref                 string        `mapstructure:"ref"`
	Set                 []string      `mapstructure:"set"`
	Decode              string        `mapstructure:"decode"`
	ConsoleFormat       string        `mapstructure:"console-format"`
	ConsoleFilterStatus []string      `mapstructure:"console-filter-status"`
	Out                 string        `mapstructure:"out"`
	OutFormat           string        `mapstructure:"out-format"`
	Emit                []string      `mapstructure:"emit"`
	NoConsole           bool          `mapstructure:"no-console"`
	Concurrency         int           `mapstructure:"concurrency"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Verbose             bool          `mapstructure:"verbose"`
}

// Defaults returns viper defaults for every key of Input.
func Defaults() map[string]any {
	d := New()
	return map[string]any{
		flags.FlagRepoPath:            "",
		flags.FlagRepo:                []string{},
		flags.FlagGitHub:              []string{},
		flags.FlagRef:                 "",
		flags.FlagSet:                 []string{},
		flags.FlagDecode:              d.Checks.Decode,
		flags.FlagConsoleFormat:       d.Output.ConsoleFormat,
		flags.FlagConsoleFilterStatus: []string{},
		flags.FlagOut:                 "",
		flags.FlagOutFormat:           "",
		flags.FlagEmit:                []string{},
		flags.FlagNoConsole:           false,
		flags.FlagConcurrency:         d.Runtime.Concurrency,
		flags.FlagTimeout:             d.Runtime.Timeout,
		flags.FlagVerbose:             false,
	}
}

// Config converts the resolved input into an unvalidated Config.
func (in Input) Config(selector string) *Config {
	return &Config{
		Target: Target{
			RepoPath: in.RepoPath,
			Repos:    in.Repo,
			GitHub:   in.GitHub,
			Ref:      in.Ref,
		},
		Checks: Checks{
			Selector: selector,
			Set:      in.Set,
			Decode:   in.Decode,
		},
		Output: Output{
			ConsoleFormat:       in.ConsoleFormat,
			ConsoleFilterStatus: in.ConsoleFilterStatus,
			Out:                 in.Out,
			OutFormat:           in.OutFormat,
			Emit:                in.Emit,
			NoConsole:           in.NoConsole,
		},
		Runtime: Runtime{
			Concurrency: in.Concurrency,
			Timeout:     in.Timeout,
			Verbose:     in.Verbose,
		},
	}
}
