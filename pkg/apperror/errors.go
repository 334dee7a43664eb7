package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. Callers match on these with HasCode.
const (
	CodeValidation          = "VAL_001"
	CodeInsufficientBalance = "LED_001"
	CodeNotFound            = "LED_002"
	CodeAlreadySettled      = "LED_003"
	CodeDuplicateEmail      = "AUTH_001"
	CodeInvalidCredentials  = "AUTH_002"
	CodeInvalidToken        = "AUTH_003"
	CodeForbidden           = "AUTH_004"
	CodeRateLimitExceeded   = "RATE_001"
	CodeIdempotencyConflict = "IDEM_001"
	CodeInternal            = "SYS_001"
	CodeUnavailable         = "SYS_002"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// ---- Ledger (VAL, LED) ----

// Validation reports malformed or out-of-range input. The message is shown to the caller verbatim.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// ErrInsufficientBalance reports an amount above the current balance.
func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance", http.StatusUnprocessableEntity)
}

// ErrNotFound reports a missing account or entry.
func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrAlreadySettled reports that the entry already left the pending state.
// Seeing it proves no second application happened.
func ErrAlreadySettled() *AppError {
	return New(CodeAlreadySettled, "Entry has already been settled", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrDuplicateEmail() *AppError {
	return New(CodeDuplicateEmail, "Email already registered", http.StatusConflict)
}

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Insufficient permissions", http.StatusForbidden)
}

// ---- Request control (RATE, IDEM) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

func ErrIdempotencyConflict() *AppError {
	return New(CodeIdempotencyConflict, "A request with this Idempotency-Key is in progress", http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

func ErrUnavailable(err error) *AppError {
	return Wrap(CodeUnavailable, "Dependency unavailable", http.StatusServiceUnavailable, err)
}
