package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount          = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrAmountLimitExceeded    = &AppError{http.StatusBadRequest, "AMOUNT_LIMIT_EXCEEDED", "Amount exceeds the per-transfer limit"}
	ErrInsufficientBalance    = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", "Insufficient account balance"}
	ErrInsufficientPoolFunds  = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_POOL_FUNDS", "The pool cannot cover this amount"}
	ErrInsufficientCollateral = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_COLLATERAL", "Deposit balance does not cover this loan"}
	ErrCollateralLocked       = &AppError{http.StatusUnprocessableEntity, "COLLATERAL_LOCKED", "Withdrawal would breach locked collateral"}
	ErrLoanAlreadyActive      = &AppError{http.StatusConflict, "LOAN_ALREADY_ACTIVE", "An active loan already exists for this account"}
	ErrNoActiveLoan           = &AppError{http.StatusUnprocessableEntity, "NO_ACTIVE_LOAN", "No active loan for this account"}
	ErrInvalidPercent         = &AppError{http.StatusBadRequest, "INVALID_PERCENT", "Percent must be between 1 and 100"}
	ErrAccountNotFound        = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrTransferFailed         = &AppError{http.StatusBadGateway, "TRANSFER_FAILED", "Outbound transfer failed, operation rolled back"}
	ErrDuplicateTransfer      = &AppError{http.StatusConflict, "DUPLICATE_TRANSFER", "Transfer already processed"}
	ErrEmailTaken             = &AppError{http.StatusConflict, "EMAIL_TAKEN", "Email is already registered"}
	ErrVersionConflict        = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}

	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
