package apperror

import (
	"fmt"
	"net/http"
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

// ---- Currency & Rates (CUR) ----

func ErrUnsupportedCurrency(code string) *AppError {
	return New("CUR_001", fmt.Sprintf("Unsupported currency: %s", code), http.StatusBadRequest)
}

// ---- Pricing (PRC) ----

func ErrInvalidDateRange() *AppError {
	return New("PRC_001", "End date must be after start date", http.StatusBadRequest)
}

// Validation returns a PRC_002 field-level validation error.
func Validation(message string) *AppError {
	return New("PRC_002", message, http.StatusBadRequest)
}

// ---- Ledger (LGR) ----

// ErrIntegrityViolation signals a breakdown whose commission + net misses its
// total beyond tolerance. Fatal for the request: nothing is written.
func ErrIntegrityViolation(total, commission, net int64) *AppError {
	return New("LGR_001",
		fmt.Sprintf("Breakdown split mismatch: commission %d + net %d != total %d", commission, net, total),
		http.StatusUnprocessableEntity)
}

func ErrNotFound(entity string) *AppError {
	return New("LGR_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidStateTransition(from, to string) *AppError {
	return New("LGR_003",
		fmt.Sprintf("Invalid state transition: %s -> %s", from, to),
		http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrDatabaseError wraps a storage failure.
func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}
