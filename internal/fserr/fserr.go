// Package fserr defines the closed set of error kinds returned by the
// guardfs core. Every failure that crosses a package boundary is one of
// these kinds; callers dispatch with errors.Is against the kind sentinels
// and never by parsing messages.
package fserr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a guardfs error.
type Kind int

const (
	// KindNotFound means the requested file or directory does not exist.
	KindNotFound Kind = iota
	// KindPermissionDenied means the operation was rejected by policy or
	// by the operating system's permission checks.
	KindPermissionDenied
	// KindInvalidPath means the path is structurally unusable for the
	// operation (no existing ancestor, not a regular file, and so on).
	KindInvalidPath
	// KindInvalidParameters means the caller supplied malformed arguments.
	KindInvalidParameters
	// KindIO covers operating system failures with no more specific kind.
	KindIO
	// KindProtocol covers request-level failures in the tool interface.
	KindProtocol
	// KindToolNotFound means the requested tool name is not registered.
	KindToolNotFound
)

// Kind sentinels for errors.Is dispatch.
var (
	ErrNotFound          = &Error{kind: KindNotFound, msg: "file not found"}
	ErrPermissionDenied  = &Error{kind: KindPermissionDenied, msg: "permission denied"}
	ErrInvalidPath       = &Error{kind: KindInvalidPath, msg: "invalid path"}
	ErrInvalidParameters = &Error{kind: KindInvalidParameters, msg: "invalid parameters"}
	ErrIO                = &Error{kind: KindIO, msg: "io error"}
	ErrProtocol          = &Error{kind: KindProtocol, msg: "protocol error"}
	ErrToolNotFound      = &Error{kind: KindToolNotFound, msg: "tool not found"}
)

// Error is a typed guardfs error. The zero value is not valid; use the
// constructors below.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Is reports kind equality, so errors.Is(err, fserr.ErrNotFound) matches
// any NotFound error regardless of message or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind
}

func newError(kind Kind, prefix, detail string) *Error {
	if detail == "" {
		return &Error{kind: kind, msg: prefix}
	}
	return &Error{kind: kind, msg: prefix + ": " + detail}
}

// NotFound reports that path does not exist.
func NotFound(path string) *Error {
	return newError(KindNotFound, "file not found", path)
}

// PermissionDenied reports a policy or OS permission rejection.
func PermissionDenied(detail string) *Error {
	return newError(KindPermissionDenied, "permission denied", detail)
}

// InvalidPath reports a structurally unusable path.
func InvalidPath(detail string) *Error {
	return newError(KindInvalidPath, "invalid path", detail)
}

// InvalidParameters reports malformed caller arguments.
func InvalidParameters(detail string) *Error {
	return newError(KindInvalidParameters, "invalid parameters", detail)
}

// IO wraps an operating system error that has no more specific kind.
func IO(err error) *Error {
	return &Error{kind: KindIO, msg: "io error", err: err}
}

// Protocol reports a request-level failure in the tool interface.
func Protocol(detail string) *Error {
	return newError(KindProtocol, "protocol error", detail)
}

// ToolNotFound reports an unknown tool name.
func ToolNotFound(name string) *Error {
	return newError(KindToolNotFound, "tool not found", name)
}

// KindOf returns the kind of err if it is (or wraps) a guardfs error, and
// ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return 0, false
}
