package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/auth"
	"github.com/mattbennet/lentra/internal/domain"
	"github.com/mattbennet/lentra/internal/repository"
)

type queryService interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
	GetLoan(ctx context.Context, accountID uuid.UUID) (domain.LoanSnapshot, error)
	GetAvailableBorrow(ctx context.Context, accountID uuid.UUID) (int64, error)
	GetTransfers(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transfer, error)
	GetTotals(ctx context.Context) (*repository.LedgerTotals, error)
	GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
}

type QueryHandler struct {
	queries queryService
}

func NewQueryHandler(queries queryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

// ownedAccountFromPath parses the {id} path segment and checks that the
// account belongs to the caller. Admins may read any account. Mismatches and
// unknown IDs both read as 404 so the response does not reveal which account
// IDs exist.
func (h *QueryHandler) ownedAccountFromPath(r *http.Request) (uuid.UUID, *AppError) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}

	if claims.Role == domain.RoleAdmin {
		return accountID, nil
	}

	own, err := h.queries.GetAccountByUserID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, ErrResourceNotFound
		}
		return uuid.Nil, ErrInternalError
	}
	if own.ID != accountID {
		return uuid.Nil, ErrResourceNotFound
	}
	return accountID, nil
}

// MyAccount resolves the caller's own account. Accounts are created lazily
// on first deposit, so before that this returns 404.
func (h *QueryHandler) MyAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	account, err := h.queries.GetAccountByUserID(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"account_id": account.ID,
		"balance":    account.Balance,
		"created_at": account.CreatedAt,
	})
}

func (h *QueryHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := h.ownedAccountFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	balance, err := h.queries.GetBalance(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{"account_id": accountID, "balance": balance})
}

type loanDTO struct {
	AccountID        uuid.UUID  `json:"account_id"`
	Active           bool       `json:"active"`
	Principal        int64      `json:"principal"`
	AutoRepayEnabled bool       `json:"auto_repay_enabled"`
	AutoRepayPercent int        `json:"auto_repay_percent"`
	OpenedAt         *time.Time `json:"opened_at,omitempty"`
	NominalRate      string     `json:"nominal_rate"`
}

func (h *QueryHandler) Loan(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := h.ownedAccountFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	loan, err := h.queries.GetLoan(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, loanDTO{
		AccountID:        accountID,
		Active:           loan.Active,
		Principal:        loan.Principal,
		AutoRepayEnabled: loan.AutoRepayEnabled,
		AutoRepayPercent: loan.AutoRepayPercent,
		OpenedAt:         loan.OpenedAt,
		NominalRate:      loan.NominalRate.String(),
	})
}

func (h *QueryHandler) AvailableBorrow(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := h.ownedAccountFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	available, err := h.queries.GetAvailableBorrow(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{"account_id": accountID, "available_to_borrow": available})
}

func (h *QueryHandler) Transfers(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := h.ownedAccountFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transfers, err := h.queries.GetTransfers(r.Context(), accountID, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transferDTO, 0, len(transfers))
	for i := range transfers {
		dtos = append(dtos, toTransferDTO(&transfers[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *QueryHandler) Pool(w http.ResponseWriter, r *http.Request) {
	totals, err := h.queries.GetTotals(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"pool_balance":   totals.PoolBalance,
		"total_deposits": totals.TotalDeposits,
		"total_borrowed": totals.TotalBorrowed,
	})
}
