package engine

import (
	"context"
	"errors"
	"fmt"

	"scorecard/internal/checks"
	"scorecard/internal/config"
	"scorecard/internal/fetcher"
	gh "scorecard/internal/github"
	"scorecard/internal/source"
	"scorecard/internal/textread"
)

// TargetPlan is one repository to check. Err is set when the repository
// could not be opened; every check then reports it as an ERROR.
type TargetPlan struct {
	Name   string
	Target checks.Target
	Err    error
}

// RunPlan is the cross product of targets and checks, in input order.
type RunPlan struct {
	Targets []*TargetPlan
	Checks  []checks.Check
}

// Size is the number of evaluations in the plan.
func (p *RunPlan) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Targets) * len(p.Checks)
}

// AddLocal plans a repository on disk.
func (p *RunPlan) AddLocal(path string, mode textread.Mode) {
	src, err := source.NewLocal(path)
	if err != nil {
		p.Targets = append(p.Targets, &TargetPlan{Name: path, Err: err})
		return
	}
	p.Targets = append(p.Targets, &TargetPlan{
		Name:   src.Name(),
		Target: checks.Target{Source: src, Decoding: mode},
	})
}

// AddGitHub plans a repository read through the contents API.
func (p *RunPlan) AddGitHub(f *fetcher.Fetcher, repo source.GitHubRepo, mode textread.Mode) {
	src := source.NewGitHub(f, repo)
	p.Targets = append(p.Targets, &TargetPlan{
		Name:   src.Name(),
		Target: checks.Target{Source: src, Decoding: mode},
	})
}

// BuildPlan resolves the configured targets. client may be nil when no
// GitHub repositories are requested.
func BuildPlan(ctx context.Context, cfg *config.Config, selected []checks.Check, client *gh.Client) (*RunPlan, error) {
	if ctx == nil {
		return nil, errors.New("context is nil")
	}
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := textread.ParseMode(cfg.Checks.Decode)
	if err != nil {
		return nil, err
	}

	plan := &RunPlan{Checks: selected}
	for _, path := range cfg.Target.Repos {
		plan.AddLocal(path, mode)
	}

	if len(cfg.Target.GitHub) == 0 {
		return plan, nil
	}
	if client == nil {
		return nil, errors.New("github targets require a GitHub client")
	}
	f := fetcher.NewFetcher(client, nil)
	for _, raw := range cfg.Target.GitHub {
		repo, err := source.ParseGitHubRepo(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --github value: %w", err)
		}
		if repo.Ref == "" {
			repo.Ref = cfg.Target.Ref
		}
		plan.AddGitHub(f, repo, mode)
	}
	return plan, nil
}
