package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/auth"
	"github.com/mattbennet/lentra/internal/domain"
	"github.com/mattbennet/lentra/internal/ledger"
)

type loanService interface {
	Borrow(ctx context.Context, userID uuid.UUID, amount int64, idemKey string) (*domain.Transfer, error)
	Repay(ctx context.Context, userID uuid.UUID, payment int64, idemKey string) (*ledger.RepayResult, error)
	EnableAutoRepay(ctx context.Context, userID uuid.UUID, percent int) error
	DisableAutoRepay(ctx context.Context, userID uuid.UUID) error
}

type LoanHandler struct {
	loans loanService
}

func NewLoanHandler(loans loanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

func (h *LoanHandler) Borrow(w http.ResponseWriter, r *http.Request) {
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

	transfer, err := h.loans.Borrow(r.Context(), claims.UserID, req.Amount, r.Header.Get("Idempotency-Key"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toTransferDTO(transfer))
}

type repayResponse struct {
	Transfer   transferDTO `json:"transfer"`
	Repaid     int64       `json:"repaid"`
	Refunded   int64       `json:"refunded"`
	LoanClosed bool        `json:"loan_closed"`
}

func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.loans.Repay(r.Context(), claims.UserID, req.Amount, r.Header.Get("Idempotency-Key"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, repayResponse{
		Transfer:   toTransferDTO(result.Transfer),
		Repaid:     result.Repaid,
		Refunded:   result.Refunded,
		LoanClosed: result.LoanClosed,
	})
}

type autoRepayRequest struct {
	Percent int `json:"percent"`
}

func (h *LoanHandler) EnableAutoRepay(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req autoRepayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if err := h.loans.EnableAutoRepay(r.Context(), claims.UserID, req.Percent); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{"auto_repay": true, "percent": req.Percent})
}

func (h *LoanHandler) DisableAutoRepay(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	if err := h.loans.DisableAutoRepay(r.Context(), claims.UserID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{"auto_repay": false})
}
