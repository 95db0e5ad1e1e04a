// Package errs defines the structured errors returned by chatstat operations.
// Each error carries a Kind that callers (the CLI, the tool server) can
// report without string matching.
package errs

import (
	"errors"
	"fmt"
	"io/fs"
)

type Kind string

const (
	NotFound           Kind = "not_found"
	PermissionDenied   Kind = "permission_denied"
	UnreadableEncoding Kind = "unreadable_encoding"
	TooLarge           Kind = "too_large"
	InvalidArgument    Kind = "invalid_argument"
	Internal           Kind = "internal"
)

type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error of the given kind with a formatted message.
func New(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}

// FromOS classifies a filesystem error. Errors that are already *Error are
// returned unchanged.
func FromOS(path string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	kind := Internal
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = NotFound
	case errors.Is(err, fs.ErrPermission):
		kind = PermissionDenied
	}
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf returns the kind of err, or Internal for errors this package did
// not produce.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied
	}
	return Internal
}
