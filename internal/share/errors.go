package share

import (
	"errors"
	"fmt"
)

// Share errors
var (
	ErrNoContent     = errors.New("nothing to share")
	ErrDecode        = errors.New("invalid base64 payload")
	ErrInvalidName   = errors.New("invalid file name")
	ErrPathTraversal = errors.New("path escapes staging directory")
	ErrTooLarge      = errors.New("payload exceeds maximum size")
	ErrNotExist      = errors.New("file does not exist")
	ErrIsDir         = errors.New("is a directory")
	ErrPresentation  = errors.New("share presentation failed")
	ErrClosed        = errors.New("sharer closed")
)

// Error records a share error with the operation and the (untrusted) name
// that caused it.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, name string, err error) error {
	return &Error{Op: op, Name: name, Err: err}
}

// IsPathTraversal reports whether err was caused by a name that would escape
// the staging directory.
func IsPathTraversal(err error) bool {
	return errors.Is(err, ErrPathTraversal)
}

// IsInvalidName reports whether err was caused by a name that sanitizes to
// nothing.
func IsInvalidName(err error) bool {
	return errors.Is(err, ErrInvalidName)
}

// IsNotExist reports whether err indicates a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

func IsNoContent(err error) bool {
	return errors.Is(err, ErrNoContent)
}
