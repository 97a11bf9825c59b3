// Package errors provides structured error types for stormgraph.
//
// Every error that crosses a package boundary carries a machine-readable
// [Code] so the CLI and the HTTP host can map failures to exit codes and
// status codes without string matching. Codes group into a [Kind]:
//
//	switch errors.KindOf(err) {
//	case errors.KindInput:    // exit 2, HTTP 400
//	case errors.KindNotFound: // HTTP 404
//	}
//
// Typed errors such as [DataIntegrityError] and [ContainerNotFoundError]
// implement a Code method, so [Is], [GetCode] and [KindOf] recognize them
// as well.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"
	ErrCodeContainerNotFound Code = "CONTAINER_NOT_FOUND"
	ErrCodeUnknownCity       Code = "UNKNOWN_CITY"

	// Graph data whose edges reference missing nodes.
	ErrCodeDataIntegrity Code = "DATA_INTEGRITY"

	ErrCodeFetchFailed  Code = "FETCH_FAILED"
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeRateLimited  Code = "RATE_LIMITED"
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by how a caller should react.
type Kind int

const (
	KindInternal Kind = iota // Bugs, unsupported operations, uncoded errors
	KindInput                // The caller supplied something invalid
	KindNotFound
	KindAuth
	KindData     // The data source returned inconsistent data
	KindUpstream // A remote dependency failed
	KindTimeout
)

// Kind returns the group c belongs to.
func (c Code) Kind() Kind {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidConfig, ErrCodeInvalidPath:
		return KindInput
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeContainerNotFound, ErrCodeUnknownCity:
		return KindNotFound
	case ErrCodeUnauthorized:
		return KindAuth
	case ErrCodeDataIntegrity:
		return KindData
	case ErrCodeFetchFailed, ErrCodeNetwork, ErrCodeRateLimited:
		return KindUpstream
	case ErrCodeTimeout:
		return KindTimeout
	}
	return KindInternal
}

// KindOf returns the kind of the outermost coded error in err's chain.
func KindOf(err error) Kind {
	return GetCode(err).Kind()
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message and cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

type coder interface {
	Code() Code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" if there is none.
func GetCode(err error) Code {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
	}
	return ""
}

// Is reports whether GetCode(err) equals code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// UserMessage returns the message of the first *Error in err's chain, or
// err.Error() when there is none.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// DataIntegrityError reports an edge endpoint that is not a node of the
// graph, or a node set that cannot be keyed by id (empty or duplicate ids).
type DataIntegrityError struct {
	Source, Target string // Edge endpoints, empty for node errors
	Missing        string // The id that failed the check
	Reason         string
}

func (e *DataIntegrityError) Error() string {
	if e.Source != "" || e.Target != "" {
		return fmt.Sprintf("data integrity: edge %s -> %s references unknown node %q", e.Source, e.Target, e.Missing)
	}
	return fmt.Sprintf("data integrity: %s %q", e.Reason, e.Missing)
}

func (e *DataIntegrityError) Code() Code { return ErrCodeDataIntegrity }

// ContainerNotFoundError is returned when a render targets a display
// container that does not exist.
type ContainerNotFoundError struct {
	ID string
}

func (e *ContainerNotFoundError) Error() string { return fmt.Sprintf("container not found: %q", e.ID) }

func (e *ContainerNotFoundError) Code() Code { return ErrCodeContainerNotFound }

// RateLimitedError is a 429 response. RetryAfter is in seconds, 0 when the
// server did not say.
type RateLimitedError struct {
	RetryAfter int
	Message    string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
