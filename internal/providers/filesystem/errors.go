package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Error kinds surfaced by the file manager. Callers match with errors.Is.
var (
	ErrPermissionDenied = errors.New("access denied")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotADirectory    = errors.New("not a directory")
	ErrNotAFile         = errors.New("not a file")
	ErrNotDecodable     = errors.New("binary file, cannot be edited")
	ErrInvalidArchive   = errors.New("not a valid archive")
	ErrEmptySelection   = errors.New("clipboard is empty")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrTimeout          = errors.New("operation timed out")
	ErrInternal         = errors.New("internal error")
)

var kinds = []error{
	ErrPermissionDenied,
	ErrNotFound,
	ErrAlreadyExists,
	ErrNotADirectory,
	ErrNotAFile,
	ErrNotDecodable,
	ErrInvalidArchive,
	ErrEmptySelection,
	ErrInvalidArgument,
	ErrTimeout,
	ErrInternal,
}

// Kind returns the taxonomy error err belongs to, or ErrInternal.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// classify translates an OS or context error into the taxonomy, keeping the
// original error in the chain for logging.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return err
		}
	}

	var kind error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	case errors.Is(err, fs.ErrExist):
		kind = ErrAlreadyExists
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = ErrTimeout
	default:
		kind = ErrInternal
	}
	return fmt.Errorf("%w: %s %s: %w", kind, op, path, err)
}
