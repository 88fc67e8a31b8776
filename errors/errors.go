// Package errors provides string based sentinel errors that can carry a cause.
//
// Packages declare their failure kinds as constants:
//
//	const ErrSchemaResolution = errors.Error("schema resolution failed")
//
// and attach detail with Wrap or Wrapf, keeping errors.Is(err, ErrSchemaResolution) true.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSeparator separates the message of an Error from its cause.
const ErrSeparator = " -- "

// Error is a string based error type allowing the definition of const errors in packages.
type Error string

func (s Error) Error() string {
	return string(s)
}

// Is reports whether target is this Error, or an error whose message this Error prefixes.
func (s Error) Is(target error) bool {
	if target == nil {
		return false
	}
	msg := target.Error()
	return msg == string(s) || strings.HasPrefix(msg, string(s)+ErrSeparator)
}

// As sets target to this Error when target is an *Error.
func (s Error) As(target any) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	*t = s
	return true
}

// Wrap adds the provided error as the cause of this Error.
func (s Error) Wrap(err error) error {
	return wrappedError{cause: err, msg: string(s)}
}

// Wrapf adds a formatted cause to this Error. %w verbs in format are honoured.
func (s Error) Wrapf(format string, args ...any) error {
	return s.Wrap(fmt.Errorf(format, args...))
}

type wrappedError struct {
	cause error
	msg   string
}

func (w wrappedError) Error() string {
	if w.cause != nil {
		return w.msg + ErrSeparator + w.cause.Error()
	}
	return w.msg
}

func (w wrappedError) Is(target error) bool {
	return Error(w.msg).Is(target)
}

func (w wrappedError) As(target any) bool {
	return Error(w.msg).As(target)
}

func (w wrappedError) Unwrap() error {
	return w.cause
}

// Is checks if err is equivalent to target.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns a new error with the specified message.
func New(message string) error {
	return errors.New(message)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// UnwrapErrors returns the errors joined into err, or err itself.
func UnwrapErrors(err error) []error {
	if err == nil {
		return nil
	}

	if je, ok := err.(interface{ Unwrap() []error }); ok {
		return je.Unwrap()
	}
	return []error{err}
}
