// Package source abstracts read-only access to the contents of a repository,
// either a local directory or a repository hosted on GitHub.
package source

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"
)

// Entry describes one directory entry. Path is slash-separated and relative
// to the repository root. Regular reports a regular file after symlinks have
// been resolved.
type Entry struct {
	Name    string
	Path    string
	Dir     bool
	Regular bool
}

// Source is read-only access to a repository tree. Missing paths yield errors
// matching fs.ErrNotExist.
type Source interface {
	Name() string
	ReadDir(ctx context.Context, dir string) ([]Entry, error)
	Stat(ctx context.Context, p string) (Entry, error)
	ReadFile(ctx context.Context, p string) ([]byte, error)
}

// Clean normalises a repository-relative path. The root is "".
func Clean(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// Exists reports whether p exists. A missing path is not an error.
func Exists(ctx context.Context, src Source, p string) (bool, error) {
	_, err := src.Stat(ctx, p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsRegularFile reports whether p exists and is a regular file.
func IsRegularFile(ctx context.Context, src Source, p string) (bool, error) {
	e, err := src.Stat(ctx, p)
	if err == nil {
		return e.Regular, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// FirstRegularFile returns the first of paths, in order, that is a regular file.
func FirstRegularFile(ctx context.Context, src Source, paths []string) (string, bool, error) {
	for _, p := range paths {
		ok, err := IsRegularFile(ctx, src, p)
		if err != nil {
			return "", false, err
		}
		if ok {
			return p, true, nil
		}
	}
	return "", false, nil
}

// MatchName finds the regular file in dir whose name case-insensitively
// equals one of names. Names are tried in order, so the first name with a
// match wins regardless of directory order. A missing dir matches nothing.
func MatchName(ctx context.Context, src Source, dir string, names []string) (Entry, bool, error) {
	entries, err := src.ReadDir(ctx, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	for _, want := range names {
		for _, e := range entries {
			if e.Regular && strings.EqualFold(e.Name, want) {
				return e, true, nil
			}
		}
	}
	return Entry{}, false, nil
}
