// Package coreerr wraps github.com/pkg/errors so that internal failures
// (channel loss, malformed chunks, decode failures) carry a
// stack-annotated cause the way the teacher's own errors package does
// (github.com/gopcua/opcua/errors, imported as "errors" in client.go).
//
// Status codes (ua.StatusCode) remain the wire vocabulary handed to
// callers; this package is for diagnostics that never cross the
// responseHeader boundary.
package coreerr

import "github.com/pkg/errors"

// Errorf formats and returns a new error with a captured stack trace.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Wrap annotates err with message and a captured stack trace.
// Wrap returns nil if err is nil.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message and a captured stack trace.
// Wrapf returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Cause returns the underlying cause of err, if it implements Cause.
func Cause(err error) error {
	return errors.Cause(err)
}
