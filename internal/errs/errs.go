// Package errs holds the error categories shared by the chameleon packages.
//
// Errors are wrapped with context using github.com/cockroachdb/errors and
// marked with one of the category sentinels, so callers can branch on the
// category without matching messages:
//
//	if errors.Is(err, errs.ErrIO) {
//	    // missing or unreadable file
//	}
package errs

import (
	"github.com/cockroachdb/errors"
)

// Error categories.
var (
	// ErrIO marks missing or unreadable files and archives.
	ErrIO = errors.New("i/o error")

	// ErrFormat marks malformed archives and non-ASCII shader scripts.
	ErrFormat = errors.New("format error")

	// ErrDecode marks unsupported or corrupt images.
	ErrDecode = errors.New("decode error")

	// ErrValidation marks malformed rule lines.
	ErrValidation = errors.New("validation error")
)

// IO wraps err with a formatted message and marks it as ErrIO.
func IO(err error, format string, args ...interface{}) error {
	return mark(err, ErrIO, format, args...)
}

// Format wraps err with a formatted message and marks it as ErrFormat.
func Format(err error, format string, args ...interface{}) error {
	return mark(err, ErrFormat, format, args...)
}

// Decode wraps err with a formatted message and marks it as ErrDecode.
func Decode(err error, format string, args ...interface{}) error {
	return mark(err, ErrDecode, format, args...)
}

// Validation returns a new error marked as ErrValidation.
func Validation(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func mark(err error, category error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), category)
}
