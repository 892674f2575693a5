package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingFilename is returned when an upload carries no filename.
	ErrMissingFilename = errors.New("filename is required")

	// ErrFileTooLarge is returned when the payload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotExist is returned by Delete when nothing is stored at the path.
	ErrNotExist = errors.New("stored file does not exist")
)

// UnsupportedTypeError rejects an extension outside the allow-list.
type UnsupportedTypeError struct {
	Ext     string
	Allowed []string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q, allowed: %s", e.Ext, strings.Join(e.Allowed, ", "))
}

// StorageIOError wraps a filesystem failure while persisting an upload.
type StorageIOError struct {
	Op  string
	Err error
}

func (e *StorageIOError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageIOError) Unwrap() error { return e.Err }

// CleanupError is the best-effort failure kind: Delete returns it, Remove
// logs and swallows it.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string { return fmt.Sprintf("cleanup %s: %v", e.Path, e.Err) }

func (e *CleanupError) Unwrap() error { return e.Err }
