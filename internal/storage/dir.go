// Package storage persists uploaded assets under a fixed root directory and
// hands back the relative path that gets recorded in the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Dir is one asset root (images or documents). Paths given to and returned
// by Dir are relative to the root and use forward slashes.
type Dir struct {
	root     string
	maxBytes int64
	logger   *slog.Logger
}

// Option customizes a Dir.
type Option func(*Dir)

// WithMaxBytes caps the size of a single upload. Zero disables the check.
func WithMaxBytes(n int64) Option {
	return func(d *Dir) { d.maxBytes = n }
}

// WithLogger sets the logger used for best-effort cleanup warnings.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dir) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDir creates root if needed and returns a Dir bound to it.
func NewDir(root string, opts ...Option) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", root, err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	d := &Dir{root: abs, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Root returns the absolute root directory.
func (d *Dir) Root() string { return d.root }

// Path resolves rel under the root, refusing anything that escapes it.
func (d *Dir) Path(rel string) (string, error) {
	joined := filepath.Join(d.root, filepath.Clean(filepath.FromSlash(rel)))
	r, err := filepath.Rel(d.root, joined)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", rel)
	}
	return joined, nil
}

// Write stores the contents of r under a freshly generated name and returns
// the relative path "{subdir}/{name}" (or "{name}" when subdir is empty).
// subdir is sanitized before use. The file only becomes visible under its
// final name once fully written.
func (d *Dir) Write(ctx context.Context, filename string, r io.Reader, subdir string, allowed Extensions) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrMissingFilename
	}
	if !ValidateExtension(filename, allowed) {
		return "", &UnsupportedTypeError{Ext: Extension(filename), Allowed: allowed.List()}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	subdir = SanitizeSubdir(subdir)
	dir := d.root
	if subdir != "" {
		dir = filepath.Join(d.root, subdir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &StorageIOError{Op: "mkdir", Err: err}
		}
	}

	name := UniqueName(Extension(filename))
	if err := d.writeFile(dir, name, r); err != nil {
		return "", err
	}

	if subdir != "" {
		return subdir + "/" + name, nil
	}
	return name, nil
}

func (d *Dir) writeFile(dir, name string, r io.Reader) error {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if errors.Is(err, fs.ErrNotExist) && dir != d.root {
		// a concurrent Remove dropped the empty subdirectory after MkdirAll
		if err = os.MkdirAll(dir, 0o755); err == nil {
			tmp, err = os.CreateTemp(dir, ".upload-*")
		}
	}
	if err != nil {
		return &StorageIOError{Op: "create", Err: err}
	}
	tmpName := tmp.Name()

	src := r
	if d.maxBytes > 0 {
		src = io.LimitReader(r, d.maxBytes+1)
	}
	n, werr := io.Copy(tmp, src)
	cerr := tmp.Close()

	switch {
	case werr != nil:
		os.Remove(tmpName)
		return &StorageIOError{Op: "write", Err: werr}
	case cerr != nil:
		os.Remove(tmpName)
		return &StorageIOError{Op: "flush", Err: cerr}
	case d.maxBytes > 0 && n > d.maxBytes:
		os.Remove(tmpName)
		return ErrFileTooLarge
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &StorageIOError{Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return &StorageIOError{Op: "rename", Err: err}
	}
	return nil
}

// Delete removes the file at rel. When its parent is a subdirectory of the
// root that is left empty, the subdirectory goes too. The root itself is
// never removed. Returns ErrNotExist when there was nothing to delete and a
// *CleanupError for any other failure.
func (d *Dir) Delete(rel string) error {
	full, err := d.Path(rel)
	if err != nil {
		return &CleanupError{Path: rel, Err: err}
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	if err != nil {
		return &CleanupError{Path: rel, Err: err}
	}
	if info.IsDir() {
		return &CleanupError{Path: rel, Err: errors.New("is a directory")}
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotExist
		}
		return &CleanupError{Path: rel, Err: err}
	}

	parent := filepath.Dir(full)
	if parent == d.root {
		return nil
	}
	entries, err := os.ReadDir(parent)
	if err != nil {
		return &CleanupError{Path: rel, Err: err}
	}
	if len(entries) == 0 {
		// lost races (a new upload landed, or another delete got there first) are fine
		if err := os.Remove(parent); err != nil && !errors.Is(err, fs.ErrNotExist) && !isNotEmpty(parent) {
			return &CleanupError{Path: rel, Err: err}
		}
	}
	return nil
}

// Remove is the best-effort form of Delete: true when a file was deleted,
// false when it did not exist or cleanup failed. Failures are logged.
func (d *Dir) Remove(rel string) bool {
	err := d.Delete(rel)
	if err == nil {
		return true
	}
	var cerr *CleanupError
	if errors.As(err, &cerr) {
		d.logger.Warn("storage cleanup failed",
			slog.String("root", d.root),
			slog.String("path", rel),
			slog.String("error", cerr.Err.Error()),
		)
	}
	return false
}

func isNotEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
