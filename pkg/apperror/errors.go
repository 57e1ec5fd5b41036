package apperror

import (
	"fmt"
	"net/http"

	"ledger-service/internal/core/domain"
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

// ---- Accounts (ACC) ----

func ErrAccountNotFound(accountNumber string) *AppError {
	return New("ACC_001", fmt.Sprintf("account not found: %s", accountNumber), http.StatusNotFound)
}

func ErrAccountInactive(role string) *AppError {
	return New("ACC_002", fmt.Sprintf("%s account is not active", role), http.StatusConflict)
}

func ErrAccountNumberExhausted(attempts int) *AppError {
	return New("ACC_003", fmt.Sprintf("account number generation exhausted after %d attempts", attempts), http.StatusServiceUnavailable)
}

// ---- Ledger business rules (LED) ----

func ErrInvalidAmount(reason string) *AppError {
	return New("LED_001", reason, http.StatusBadRequest)
}

func ErrInsufficientFunds(accountNumber string, balance, required domain.Money) *AppError {
	return New("LED_002",
		fmt.Sprintf("insufficient funds in account %s: balance %s, required %s", accountNumber, balance, required),
		http.StatusPaymentRequired)
}

// Validation returns a LED_001-style validation error for malformed input.
func Validation(message string) *AppError {
	return New("LED_001", message, http.StatusBadRequest)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrStoreUnavailable(err error) *AppError {
	return Wrap("SYS_001", "Internal store error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
