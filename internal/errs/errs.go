package errs

import (
	cr "github.com/cockroachdb/errors"
)

// Sentinels used to classify failures into API responses.
var (
	ErrNotFound         = cr.New("not found")
	ErrMalformedRequest = cr.New("malformed request")
	ErrDownstream       = cr.New("downstream failure")
)

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...any) error {
	return cr.Newf(format, args...)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

// Mark tags err with markErr so that Is(err, markErr) holds while the
// original message and stack are preserved.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

func Is(err, reference error) bool {
	return cr.Is(err, reference)
}

func As(err error, target any) bool {
	return cr.As(err, target)
}

// Downstream wraps an I/O failure from a store or a remote invocation.
func Downstream(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Mark(cr.Wrap(err, msg), ErrDownstream)
}
