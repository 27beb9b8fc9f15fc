package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v81/github"
	gh "scorecard/internal/github"
)

// ContentRef addresses one path inside a GitHub repository at an optional ref.
type ContentRef struct {
	Owner string
	Repo  string
	Ref   string
	Path  string
}

func (r ContentRef) String() string {
	s := r.Owner + "/" + r.Repo
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	return s + ":" + r.cleanPath()
}

func (r ContentRef) cleanPath() string {
	return strings.Trim(r.Path, "/")
}

func (r ContentRef) key() string {
	return strings.ToLower(r.Owner+"/"+r.Repo) + "@" + r.Ref + ":" + r.cleanPath()
}

// Contents is the result of a contents lookup. Found is false when the path
// does not exist; exactly one of File and Dir is set otherwise.
type Contents struct {
	Found bool
	File  *github.RepositoryContent
	Dir   []*github.RepositoryContent
}

type Fetcher struct {
	client *gh.Client
	budget *RequestBudget
	cache  *Cache
}

func NewFetcher(client *gh.Client, budget *RequestBudget) *Fetcher {
	if budget == nil {
		budget = NewRequestBudget()
	}
	return &Fetcher{
		client: client,
		budget: budget,
		cache:  NewCache(),
	}
}

func (f *Fetcher) Budget() *RequestBudget {
	return f.budget
}

func (f *Fetcher) validate(ref ContentRef) error {
	if f == nil || f.client == nil || f.client.API == nil {
		return fmt.Errorf("fetch: nil GitHub client (use NewFetcher)")
	}
	if ref.Owner == "" || ref.Repo == "" {
		return fmt.Errorf("fetch: repo owner/name is required")
	}
	return nil
}

// Contents looks up a file or directory. Results, including misses, are
// cached per ref for the lifetime of the fetcher.
func (f *Fetcher) Contents(ctx context.Context, ref ContentRef) (*Contents, error) {
	if err := f.validate(ref); err != nil {
		return nil, err
	}
	v, err := f.cache.Do("contents:"+ref.key(), func() (any, error) {
		return f.fetchContents(ctx, ref)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Contents), nil
}

func (f *Fetcher) fetchContents(ctx context.Context, ref ContentRef) (*Contents, error) {
	if err := f.budget.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var opts *github.RepositoryContentGetOptions
	if ref.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref.Ref}
	}
	file, dir, resp, err := f.client.API.Repositories.GetContents(ctx, ref.Owner, ref.Repo, ref.cleanPath(), opts)
	if resp != nil {
		f.budget.Observe(resp.Response)
	}
	if err != nil {
		if isNotFound(resp, err) {
			return &Contents{}, nil
		}
		return nil, fmt.Errorf("get contents %s: %w", ref, err)
	}
	return &Contents{Found: true, File: file, Dir: dir}, nil
}

// File returns the raw bytes of a file. Files too large for the contents API
// to inline are fetched from their download URL.
func (f *Fetcher) File(ctx context.Context, ref ContentRef) ([]byte, error) {
	c, err := f.Contents(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !c.Found || c.File == nil {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFile)
	}
	if c.File.Content != nil && c.File.GetEncoding() != "none" {
		s, err := c.File.GetContent()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", ref, err)
		}
		return []byte(s), nil
	}
	v, err := f.cache.Do("raw:"+ref.key(), func() (any, error) {
		return f.download(ctx, ref, c.File.GetDownloadURL())
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (f *Fetcher) download(ctx context.Context, ref ContentRef, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("download %s: no download URL", ref)
	}
	if err := f.budget.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", ref, err)
	}
	httpClient := f.client.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %s", ref, resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", ref, err)
	}
	return b, nil
}

// ErrNotFile is returned by File when the path is missing or is a directory.
var ErrNotFile = errors.New("not a file")

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var er *github.ErrorResponse
	return errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound
}
