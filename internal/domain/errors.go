package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInsufficientPoolFunds  = errors.New("insufficient pool funds")
	ErrInsufficientCollateral = errors.New("amount exceeds borrowable share of deposit")
	ErrCollateralLocked       = errors.New("withdrawal would break collateral backing an active loan")
	ErrLoanAlreadyActive      = errors.New("a loan is already active for this account")
	ErrNoActiveLoan           = errors.New("no active loan for this account")
	ErrInvalidPercent         = errors.New("percent must be between 1 and 100")
	ErrAmountLimitExceeded    = errors.New("amount exceeds the per-transfer limit")
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransferFailed         = errors.New("outbound transfer failed")
	ErrDuplicateTransfer      = errors.New("duplicate transfer")
	ErrVersionConflict        = errors.New("optimistic lock conflict")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrEmailTaken             = errors.New("email already registered")
)
