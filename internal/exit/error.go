package exit

import "github.com/cockroachdb/errors"

// Error pairs a failure with the status the process should exit with.
type Error struct {
	cause error
	code  Code
}

// NewError wraps err so that CodeOf reports code for it.
func NewError(err error, code Code) error {
	if err == nil {
		return nil
	}
	return &Error{cause: err, code: code}
}

func (e *Error) Error() string { return e.cause.Error() }

// Unwrap exposes the underlying failure to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Code returns the exit status carried by the error.
func (e *Error) Code() Code { return e.code }

// CodeOf returns the exit status for err. Errors that were never tagged
// with a code map to UnspecifiedError.
func CodeOf(err error) Code {
	if err == nil {
		return Success()
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return UnspecifiedError()
}
