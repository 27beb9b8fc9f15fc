package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"scorecard/internal/fetcher"
	gh "scorecard/internal/github"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubRepo(t *testing.T) {
	tests := []struct {
		in      string
		want    GitHubRepo
		wantErr bool
	}{
		{in: "acme/widgets", want: GitHubRepo{Owner: "acme", Repo: "widgets"}},
		{in: "acme/widgets@v1.0", want: GitHubRepo{Owner: "acme", Repo: "widgets", Ref: "v1.0"}},
		{in: "github.com/acme/widgets", want: GitHubRepo{Owner: "acme", Repo: "widgets"}},
		{in: "https://github.com/acme/widgets.git", want: GitHubRepo{Owner: "acme", Repo: "widgets"}},
		{in: "https://github.com/acme/widgets/@main", want: GitHubRepo{Owner: "acme", Repo: "widgets", Ref: "main"}},
		{in: "", wantErr: true},
		{in: "acme", wantErr: true},
		{in: "acme/widgets/extra", wantErr: true},
		{in: "https://gitlab.com/acme/widgets", wantErr: true},
		{in: "acme/widgets@", wantErr: true},
		{in: "ac me/widgets", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGitHubRepo(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "acme/widgets@main", GitHubRepo{Owner: "acme", Repo: "widgets", Ref: "main"}.String())
}

type fakeRepo struct {
	dirs  map[string][]map[string]any
	files map[string]string
	calls int32
}

func (f *fakeRepo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.calls, 1)
	const prefix = "/repos/acme/widgets/contents/"
	if len(r.URL.Path) < len(prefix) || r.URL.Path[:len(prefix)] != prefix {
		http.NotFound(w, r)
		return
	}
	p := r.URL.Path[len(prefix):]
	w.Header().Set("Content-Type", "application/json")
	if listing, ok := f.dirs[p]; ok {
		_ = json.NewEncoder(w).Encode(listing)
		return
	}
	if content, ok := f.files[p]; ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"name":     p,
			"path":     p,
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"message":"Not Found"}`))
}

func newGitHubSource(t *testing.T, repo *fakeRepo) *GitHub {
	t.Helper()
	server := httptest.NewServer(repo)
	t.Cleanup(server.Close)
	client, err := gh.NewClient(context.Background(), "", gh.WithBaseURL(server.URL))
	require.NoError(t, err)
	return NewGitHub(fetcher.NewFetcher(client, nil), GitHubRepo{Owner: "acme", Repo: "widgets"})
}

func TestGitHub_ReadDirAndStat(t *testing.T) {
	repo := &fakeRepo{
		dirs: map[string][]map[string]any{
			"": {
				{"type": "file", "name": "LICENSE", "size": 1070},
				{"type": "dir", "name": ".github"},
				{"type": "symlink", "name": "COPYING"},
			},
		},
	}
	src := newGitHubSource(t, repo)
	ctx := context.Background()
	assert.Equal(t, "acme/widgets", src.Name())

	entries, err := src.ReadDir(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Name: "LICENSE", Path: "LICENSE", Regular: true}, entries[0])
	assert.True(t, entries[1].Dir)
	assert.False(t, entries[2].Regular)

	e, err := src.Stat(ctx, "LICENSE")
	require.NoError(t, err)
	assert.True(t, e.Regular)

	_, err = src.Stat(ctx, "CODEOWNERS")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	// The root listing is fetched once and shared.
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.calls))

	_, err = src.Stat(ctx, "docs/CODEOWNERS")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	root, err := src.Stat(ctx, "")
	require.NoError(t, err)
	assert.True(t, root.Dir)
}

func TestGitHub_ReadFile(t *testing.T) {
	repo := &fakeRepo{files: map[string]string{"CODEOWNERS": "* @acme/core\n"}}
	src := newGitHubSource(t, repo)
	ctx := context.Background()

	b, err := src.ReadFile(ctx, "CODEOWNERS")
	require.NoError(t, err)
	assert.Equal(t, "* @acme/core\n", string(b))

	_, err = src.ReadFile(ctx, "LICENSE")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = src.ReadDir(ctx, "CODEOWNERS")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestGitHub_FirstRegularFileAcrossDirectories(t *testing.T) {
	repo := &fakeRepo{
		dirs: map[string][]map[string]any{
			"":        {{"type": "dir", "name": ".github"}},
			".github": {{"type": "file", "name": "CODEOWNERS"}},
		},
	}
	src := newGitHubSource(t, repo)
	p, ok, err := FirstRegularFile(context.Background(), src, []string{"CODEOWNERS", ".github/CODEOWNERS", "docs/CODEOWNERS"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ".github/CODEOWNERS", p)
}
