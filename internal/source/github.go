package source

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/google/go-github/v81/github"
	"scorecard/internal/fetcher"
)

// GitHubRepo identifies a repository on GitHub, optionally pinned to a ref.
type GitHubRepo struct {
	Owner string
	Repo  string
	Ref   string
}

func (r GitHubRepo) String() string {
	s := r.Owner + "/" + r.Repo
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	return s
}

var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ParseGitHubRepo accepts OWNER/REPO, OWNER/REPO@REF, github.com/OWNER/REPO
// and https://github.com/OWNER/REPO(.git) forms.
func ParseGitHubRepo(s string) (GitHubRepo, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return GitHubRepo{}, fmt.Errorf("empty repository")
	}

	var ref string
	if i := strings.LastIndex(raw, "@"); i >= 0 && !strings.Contains(raw[i:], "/") {
		ref = raw[i+1:]
		raw = raw[:i]
		if ref == "" {
			return GitHubRepo{}, fmt.Errorf("invalid repository %q: empty ref", s)
		}
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return GitHubRepo{}, fmt.Errorf("invalid repository %q: %w", s, err)
		}
		if !strings.EqualFold(u.Host, "github.com") && !strings.EqualFold(u.Host, "www.github.com") {
			return GitHubRepo{}, fmt.Errorf("invalid repository %q: not a github.com URL", s)
		}
		raw = u.Path
	} else {
		lower := strings.ToLower(raw)
		for _, prefix := range []string{"github.com/", "www.github.com/"} {
			if strings.HasPrefix(lower, prefix) {
				raw = raw[len(prefix):]
				break
			}
		}
	}

	raw = strings.TrimSuffix(strings.Trim(raw, "/"), ".git")
	parts := strings.Split(raw, "/")
	if len(parts) != 2 || !repoNamePattern.MatchString(parts[0]) || !repoNamePattern.MatchString(parts[1]) {
		return GitHubRepo{}, fmt.Errorf("invalid repository %q: expected OWNER/REPO", s)
	}
	return GitHubRepo{Owner: parts[0], Repo: parts[1], Ref: ref}, nil
}

// GitHub reads a repository through the GitHub contents API. Stat is served
// from the parent directory listing, so looking up several names in one
// directory costs a single request.
type GitHub struct {
	fetcher *fetcher.Fetcher
	repo    GitHubRepo
}

func NewGitHub(f *fetcher.Fetcher, repo GitHubRepo) *GitHub {
	return &GitHub{fetcher: f, repo: repo}
}

func (g *GitHub) Name() string { return g.repo.String() }

func (g *GitHub) ref(p string) fetcher.ContentRef {
	return fetcher.ContentRef{Owner: g.repo.Owner, Repo: g.repo.Repo, Ref: g.repo.Ref, Path: p}
}

func entryFromContent(dir string, c *github.RepositoryContent) Entry {
	return Entry{
		Name:    c.GetName(),
		Path:    join(dir, c.GetName()),
		Dir:     c.GetType() == "dir",
		Regular: c.GetType() == "file",
	}
}

func (g *GitHub) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	dir = Clean(dir)
	c, err := g.fetcher.Contents(ctx, g.ref(dir))
	if err != nil {
		return nil, err
	}
	if !c.Found {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}
	if c.File != nil {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fmt.Errorf("not a directory")}
	}
	out := make([]Entry, 0, len(c.Dir))
	for _, item := range c.Dir {
		out = append(out, entryFromContent(dir, item))
	}
	return out, nil
}

func (g *GitHub) Stat(ctx context.Context, p string) (Entry, error) {
	p = Clean(p)
	if p == "" {
		if _, err := g.ReadDir(ctx, ""); err != nil {
			return Entry{}, err
		}
		return Entry{Name: ".", Dir: true}, nil
	}
	dir, name := path.Split(p)
	entries, err := g.ReadDir(ctx, strings.TrimSuffix(dir, "/"))
	if err != nil {
		if pe, ok := err.(*fs.PathError); ok {
			pe.Op, pe.Path = "stat", p
		}
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

func (g *GitHub) ReadFile(ctx context.Context, p string) ([]byte, error) {
	p = Clean(p)
	c, err := g.fetcher.Contents(ctx, g.ref(p))
	if err != nil {
		return nil, err
	}
	if !c.Found {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return g.fetcher.File(ctx, g.ref(p))
}
