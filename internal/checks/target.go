package checks

import (
	"context"
	"fmt"

	"scorecard/internal/source"
	"scorecard/internal/textread"
)

// Target is the repository a check runs against.
type Target struct {
	Source   source.Source
	Decoding textread.Mode
}

func (t Target) Name() string {
	if t.Source == nil {
		return ""
	}
	return t.Source.Name()
}

// ReadText reads p and decodes it under t.Decoding.
func (t Target) ReadText(ctx context.Context, p string) (string, error) {
	raw, err := t.Source.ReadFile(ctx, p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	text, err := textread.Decode(raw, t.Decoding)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p, err)
	}
	return text, nil
}
