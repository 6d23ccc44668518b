package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/auth"
	"github.com/mattbennet/lentra/internal/domain"
)

type accountingService interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount int64, idemKey string) (*domain.Transfer, error)
	UserWithdraw(ctx context.Context, userID uuid.UUID, amount int64, idemKey string) (*domain.Transfer, error)
	AdminWithdraw(ctx context.Context, adminUserID uuid.UUID, amount int64, idemKey string) (*domain.Transfer, error)
}

type LedgerHandler struct {
	accounting accountingService
}

func NewLedgerHandler(accounting accountingService) *LedgerHandler {
	return &LedgerHandler{accounting: accounting}
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (r amountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	return errs
}

type transferDTO struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Direction string     `json:"direction"`
	AccountID *uuid.UUID `json:"account_id,omitempty"`
	Amount    int64      `json:"amount"`
	CreatedAt time.Time  `json:"created_at"`
}

func toTransferDTO(t *domain.Transfer) transferDTO {
	return transferDTO{
		ID:        t.ID,
		Type:      string(t.Type),
		Direction: string(t.Direction),
		AccountID: t.AccountID,
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt,
	}
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	transfer, err := h.accounting.Deposit(r.Context(), claims.UserID, req.Amount, r.Header.Get("Idempotency-Key"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toTransferDTO(transfer))
}

// Withdraw dispatches on the caller's role: admins sweep the pool, users
// draw down their own balance.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var (
		transfer *domain.Transfer
		err      error
	)
	if claims.Role == domain.RoleAdmin {
		transfer, err = h.accounting.AdminWithdraw(r.Context(), claims.UserID, req.Amount, r.Header.Get("Idempotency-Key"))
	} else {
		transfer, err = h.accounting.UserWithdraw(r.Context(), claims.UserID, req.Amount, r.Header.Get("Idempotency-Key"))
	}
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toTransferDTO(transfer))
}
