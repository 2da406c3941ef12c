package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a delgists error code.
type ErrorCode string

const (
	ErrTransport              ErrorCode = "TRANSPORT"                // 502
	ErrProtocol               ErrorCode = "PROTOCOL"                 // 502
	ErrInvalidSelectionFormat ErrorCode = "INVALID_SELECTION_FORMAT" // 400
	ErrInvalidSelectionRange  ErrorCode = "INVALID_SELECTION_RANGE"  // 400
	ErrInvalidSelectionIndex  ErrorCode = "INVALID_SELECTION_INDEX"  // 400
	ErrInvalidRequest         ErrorCode = "INVALID_REQUEST"          // 400
	ErrOutOfRange             ErrorCode = "OUT_OF_RANGE"             // 416
	ErrPartialDeletion        ErrorCode = "PARTIAL_DELETION"         // 207
	ErrInternal               ErrorCode = "INTERNAL"                 // 500
)

// GistError represents a structured error with code, status, and details.
type GistError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *GistError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *GistError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the session can continue after this error.
func (e *GistError) Recoverable() bool {
	switch e.Code {
	case ErrTransport, ErrProtocol, ErrInternal:
		return false
	}
	return true
}

// NewTransport creates an error for a request that could not complete.
func NewTransport(method, uri string, err error) *GistError {
	return &GistError{
		Code:    ErrTransport,
		Status:  502,
		Message: fmt.Sprintf("%s %s failed: %v", method, uri, err),
		Details: map[string]any{"method": method, "uri": uri},
		Err:     err,
	}
}

// NewProtocol creates an error for a response whose status was not the expected one.
func NewProtocol(method, uri string, got, want int) *GistError {
	return &GistError{
		Code:    ErrProtocol,
		Status:  502,
		Message: fmt.Sprintf("%s %s: unexpected status %d (want %d)", method, uri, got, want),
		Details: map[string]any{"method": method, "uri": uri, "status": got, "expected": want},
	}
}

// NewMalformedBody creates a PROTOCOL error for a response body that does not
// have the expected shape.
func NewMalformedBody(method, uri string, err error) *GistError {
	return &GistError{
		Code:    ErrProtocol,
		Status:  502,
		Message: fmt.Sprintf("%s %s: malformed response body: %v", method, uri, err),
		Details: map[string]any{"method": method, "uri": uri},
		Err:     err,
	}
}

// NewBodyTooLarge creates a PROTOCOL error for a response body over limit bytes.
func NewBodyTooLarge(method, uri string, limit int64) *GistError {
	return &GistError{
		Code:    ErrProtocol,
		Status:  502,
		Message: fmt.Sprintf("%s %s: response body exceeds %d bytes", method, uri, limit),
		Details: map[string]any{"method": method, "uri": uri, "limit": limit},
	}
}

// NewForeignLink creates a PROTOCOL error for a server-supplied URI on another host.
// Credentials are never sent to such a URI.
func NewForeignLink(uri, host string) *GistError {
	return &GistError{
		Code:    ErrProtocol,
		Status:  502,
		Message: fmt.Sprintf("refusing to follow %s: host differs from %s", uri, host),
		Details: map[string]any{"uri": uri, "host": host},
	}
}

// NewLinkCycle creates a PROTOCOL error for a next link that points back to a visited page.
func NewLinkCycle(uri string) *GistError {
	return &GistError{
		Code:    ErrProtocol,
		Status:  502,
		Message: fmt.Sprintf("next link %s was already fetched", uri),
		Details: map[string]any{"uri": uri},
	}
}

// NewInvalidSelectionFormat creates an error for input matching no selection syntax.
func NewInvalidSelectionFormat(input string) *GistError {
	return &GistError{
		Code:    ErrInvalidSelectionFormat,
		Status:  400,
		Message: fmt.Sprintf("unrecognized selection %q: use 3, 1,4,7 or 2-5", input),
		Details: map[string]any{"input": input},
	}
}

// NewInvalidSelectionRange creates an error for inverted or out-of-page range bounds.
func NewInvalidSelectionRange(begin, end, pageLength int) *GistError {
	msg := fmt.Sprintf("range %d-%d is outside 1-%d", begin, end, pageLength)
	if begin >= end {
		msg = fmt.Sprintf("range %d-%d: first index must be lower than last", begin, end)
	}
	return &GistError{
		Code:    ErrInvalidSelectionRange,
		Status:  400,
		Message: msg,
		Details: map[string]any{"begin": begin, "end": end, "page_length": pageLength},
	}
}

// NewInvalidSelectionIndex creates an error for a listed index that is non-numeric or off the page.
func NewInvalidSelectionIndex(token string, pageLength int) *GistError {
	return &GistError{
		Code:    ErrInvalidSelectionIndex,
		Status:  400,
		Message: fmt.Sprintf("invalid index %q: expected a number between 1 and %d", token, pageLength),
		Details: map[string]any{"index": token, "page_length": pageLength},
	}
}

// NewInvalidRequest creates a 400 error for invalid parameters.
func NewInvalidRequest(msg string) *GistError {
	return &GistError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewOutOfRange creates an error for navigation past the first or last page.
func NewOutOfRange(page, pageCount int) *GistError {
	return &GistError{
		Code:    ErrOutOfRange,
		Status:  416,
		Message: fmt.Sprintf("page %d is out of range (%d pages)", page+1, pageCount),
		Details: map[string]any{"page": page, "page_count": pageCount},
	}
}

// NewPartialDeletion creates an error for a batch deletion that stopped partway.
// remaining holds the zero-based page indices that were not deleted.
func NewPartialDeletion(remaining []int, deleted int, err error) *GistError {
	return &GistError{
		Code:    ErrPartialDeletion,
		Status:  207,
		Message: fmt.Sprintf("deleted %d gist(s), %d left unprocessed: %v", deleted, len(remaining), err),
		Details: map[string]any{"remaining": remaining, "deleted": deleted},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *GistError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &GistError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if the first GistError in err's chain has the given code.
func Is(err error, code ErrorCode) bool {
	if gErr, ok := As(err); ok {
		return gErr.Code == code
	}
	return false
}

// As returns the first GistError in err's chain.
func As(err error) (*GistError, bool) {
	var gErr *GistError
	if stderrors.As(err, &gErr) {
		return gErr, true
	}
	return nil, false
}

// Remaining returns the unprocessed indices carried by a PARTIAL_DELETION error.
func Remaining(err error) []int {
	gErr, ok := As(err)
	if !ok || gErr.Code != ErrPartialDeletion {
		return nil
	}
	remaining, _ := gErr.Details["remaining"].([]int)
	return remaining
}
