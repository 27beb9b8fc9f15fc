package checks

import "context"

// AllowListWrapper wraps a Check to provide automatic allowlist functionality.
type AllowListWrapper struct {
	Check
	allowList AllowList
}

// Unwrap returns the wrapped check.
func (w *AllowListWrapper) Unwrap() Check {
	return w.Check
}

// Evaluate calls the inner check's Evaluate and then applies the allowlist logic.
func (w *AllowListWrapper) Evaluate(ctx context.Context, t Target) (Result, error) {
	result, err := w.Check.Evaluate(ctx, t)
	if err != nil {
		return result, err
	}
	return w.allowList.CheckResult(result), nil
}

// Options returns the combined options of the allowlist and the inner check (if configurable).
func (w *AllowListWrapper) Options() []Option {
	opts := w.allowList.Options()
	if cc, ok := w.Check.(ConfigurableCheck); ok {
		opts = append(opts, cc.Options()...)
	}
	return opts
}

// Configure configures the allowlist and the inner check (if configurable).
func (w *AllowListWrapper) Configure(opts map[string]string) error {
	if err := w.allowList.Configure(opts); err != nil {
		return err
	}
	if cc, ok := w.Check.(ConfigurableCheck); ok {
		return cc.Configure(opts)
	}
	return nil
}
