package checks

import "context"

// Check inspects a repository and reports a single Result.
type Check interface {
	ID() string
	Title() string
	Description() string

	// Evaluate reads only from t.Source and never modifies the repository.
	// A returned error is a fault in the check itself, not a failed check.
	Evaluate(ctx context.Context, t Target) (Result, error)
}

type Option struct {
	Name        string
	Description string
	Default     string
}

type ConfigurableCheck interface {
	Check
	Options() []Option
	Configure(opts map[string]string) error
}
