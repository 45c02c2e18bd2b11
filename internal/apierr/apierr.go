// Package apierr carries an HTTP status and a stable machine code
// alongside the underlying error, so handlers can map service failures
// to responses without string matching.
package apierr

import "fmt"

type Error struct {
	Status int
	Code   string
	Err    error
}

// Error prefers the wrapped error's message, then the code, then the
// status, so logs stay useful however sparsely the value was built.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Status != 0:
		return fmt.Sprintf("api error (%d)", e.Status)
	default:
		return "api error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}
