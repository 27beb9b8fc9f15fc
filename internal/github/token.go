package github

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

type TokenSource string

const (
	TokenSourceNone     TokenSource = ""
	TokenSourceExplicit TokenSource = "explicit"
	TokenSourceEnv      TokenSource = "env"
	TokenSourceGHCLI    TokenSource = "gh"
)

// tokenEnvVars are consulted in order.
var tokenEnvVars = []string{"GITHUB_TOKEN", "GH_TOKEN"}

// ResolveToken finds a GitHub access token.
//
// Precedence:
//  1. explicit (if non-empty)
//  2. GITHUB_TOKEN, then GH_TOKEN
//  3. `gh auth token -h github.com`
//
// An empty token with a nil error means none was found; public repositories can
// still be read unauthenticated.
func ResolveToken(ctx context.Context, explicit string) (string, TokenSource, error) {
	if tok := strings.TrimSpace(explicit); tok != "" {
		return tok, TokenSourceExplicit, nil
	}

	for _, name := range tokenEnvVars {
		if tok := strings.TrimSpace(os.Getenv(name)); tok != "" {
			return tok, TokenSourceEnv, nil
		}
	}

	tok, err := tokenFromGHCLI(ctx)
	if err != nil {
		return "", TokenSourceNone, err
	}
	if tok != "" {
		return tok, TokenSourceGHCLI, nil
	}
	return "", TokenSourceNone, nil
}

func tokenFromGHCLI(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return "", nil
	}

	// A broken credential helper must not hang the run.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "gh", "auth", "token", "-h", "github.com")
	env := make([]string, 0, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "GH_PAGER=") {
			env = append(env, kv)
		}
	}
	cmd.Env = append(env, "GH_PAGER=cat")

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// gh present but logged out: no token. Its output is never surfaced.
		return "", nil
	}

	tok := strings.TrimSpace(string(out))
	if strings.ContainsAny(tok, " \t\r\n") {
		return "", errors.New("invalid token returned by gh: contains whitespace")
	}
	return tok, nil
}
