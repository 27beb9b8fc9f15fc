package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Local reads a repository checked out on disk.
type Local struct {
	root string
}

// NewLocal returns a Source rooted at dir, which must be an existing directory.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("repository path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %s is not a directory", abs)
	}
	return &Local{root: abs}, nil
}

func (l *Local) Name() string { return l.root }

// Root returns the absolute directory path.
func (l *Local) Root() string { return l.root }

func (l *Local) full(p string) string {
	return filepath.Join(l.root, filepath.FromSlash(Clean(p)))
}

func entryFromInfo(p string, info fs.FileInfo) Entry {
	return Entry{
		Name:    info.Name(),
		Path:    p,
		Dir:     info.IsDir(),
		Regular: info.Mode().IsRegular(),
	}
}

func (l *Local) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir = Clean(dir)
	des, err := os.ReadDir(l.full(dir))
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(des))
	for _, de := range des {
		p := join(dir, de.Name())
		info, err := os.Stat(l.full(p))
		if err != nil {
			// Dangling symlink or unreadable entry.
			out = append(out, Entry{Name: de.Name(), Path: p})
			continue
		}
		e := entryFromInfo(p, info)
		e.Name = de.Name()
		out = append(out, e)
	}
	return out, nil
}

func (l *Local) Stat(ctx context.Context, p string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	p = Clean(p)
	info, err := os.Stat(l.full(p))
	if err != nil {
		return Entry{}, err
	}
	e := entryFromInfo(p, info)
	if p != "" {
		e.Name = filepath.Base(filepath.FromSlash(p))
	}
	return e, nil
}

func (l *Local) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(l.full(p))
}
