// Package result carries the uniform success-or-failure envelope returned by the
// entity services and the sync client, together with the failure taxonomy.
package result

import (
	"context"
	"errors"
	"net"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotAuthenticated Kind = "not_authenticated"
	KindRejected         Kind = "remote_rejected"
	KindNetwork          Kind = "network"
	KindValidation       Kind = "validation"
)

// Error is a classified failure with a single human-readable message.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNetwork) holds for every
// network failure regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is checks.
var (
	ErrNotAuthenticated = &Error{Kind: KindNotAuthenticated, Message: "User not authenticated"}
	ErrRejected         = &Error{Kind: KindRejected, Message: "Request rejected"}
	ErrNetwork          = &Error{Kind: KindNetwork, Message: "Network error"}
	ErrValidation       = &Error{Kind: KindValidation, Message: "Invalid input"}
)

// Rejected wraps err as a remote rejection shown to the user as msg.
func Rejected(msg string, err error) *Error {
	return &Error{Kind: KindRejected, Message: msg, Err: err}
}

// Network wraps err as a transport failure.
func Network(err error) *Error {
	msg := "Network error, please try again"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "Request timed out, please try again"
	}
	return &Error{Kind: KindNetwork, Message: msg, Err: err}
}

// Validation reports input that failed local checks.
func Validation(msg string, err error) *Error {
	return &Error{Kind: KindValidation, Message: msg, Err: err}
}

// Classify turns any error into an *Error. Already classified errors pass through;
// deadlines, cancellations and net errors become network failures; everything else is
// treated as a rejection by the store.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.As(err, &netErr) {
		return Network(err)
	}
	return Rejected(err.Error(), err)
}

// KindOf returns the kind of err, or "" for nil.
func KindOf(err error) Kind {
	if e := Classify(err); e != nil {
		return e.Kind
	}
	return ""
}

// Result is the envelope returned by service operations: exactly one of Data and Error
// is meaningful.
type Result[T any] struct {
	Data  T      `json:"data"`
	Error *Error `json:"error"`
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Data: v}
}

// Fail wraps err, classifying it if needed. The zero value of T is kept in Data.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = Rejected("Unknown error", nil)
	}
	return Result[T]{Error: Classify(err)}
}

// OK reports whether the result carries data.
func (r Result[T]) OK() bool {
	return r.Error == nil
}

// Unwrap converts the envelope back to the (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.Error != nil {
		var zero T
		return zero, r.Error
	}
	return r.Data, nil
}
