package apperror

import (
	"errors"
	"net/http"
)

// ErrCode pairs a stable machine-readable code with its HTTP status
type ErrCode struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
}

var (
	CodeUnauthorized      = ErrCode{"unauthorized", http.StatusUnauthorized}
	CodeNotFound          = ErrCode{"not_found", http.StatusNotFound}
	CodeInvalidOperation  = ErrCode{"invalid_operation", http.StatusBadRequest}
	CodeAlreadyMember     = ErrCode{"already_member", http.StatusBadRequest}
	CodeInvalidInviteCode = ErrCode{"invalid_invite_code", http.StatusBadRequest}
	CodeValidation        = ErrCode{"validation_error", http.StatusBadRequest}
	CodeInconsistentState = ErrCode{"inconsistent_state", http.StatusInternalServerError}
	CodeInternal          = ErrCode{"internal_error", http.StatusInternalServerError}
)

// Error is the structured failure returned by services
type Error struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for the error
func (e *Error) Status() int {
	return e.Code.Status
}

// Is matches any *Error with the same code, so errors.Is(err, ErrAlreadyMember) works
// on wrapped or re-created values
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code ErrCode, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Sentinels for errors.Is comparisons in callers and tests
var (
	ErrUnauthorized      = New(CodeUnauthorized, "unauthorized", nil)
	ErrNotFound          = New(CodeNotFound, "not found", nil)
	ErrInvalidOperation  = New(CodeInvalidOperation, "invalid operation", nil)
	ErrAlreadyMember     = New(CodeAlreadyMember, "already a member", nil)
	ErrInvalidInviteCode = New(CodeInvalidInviteCode, "invalid invite code", nil)
	ErrValidation        = New(CodeValidation, "validation error", nil)
	ErrInconsistentState = New(CodeInconsistentState, "inconsistent state", nil)
	ErrInternal          = New(CodeInternal, "internal error", nil)
)

func Unauthorized(msg string) *Error {
	return New(CodeUnauthorized, msg, nil)
}

func NotFound(msg string, err error) *Error {
	return New(CodeNotFound, msg, err)
}

func InvalidOperation(msg string) *Error {
	return New(CodeInvalidOperation, msg, nil)
}

func Validation(msg string) *Error {
	return New(CodeValidation, msg, nil)
}

func Internal(msg string, err error) *Error {
	return New(CodeInternal, msg, err)
}

// As extracts an *Error from err. Anything else is reported as an internal error.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", err)
}
