package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/domain"
	"github.com/mattbennet/lentra/internal/repository"
)

// GetBalance reports an account's deposit balance. Unknown accounts read as
// zero rather than erroring, matching how balances behave before a first
// deposit.
func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("GetBalance: %w", err)
	}
	return account.Balance, nil
}

// GetLoan reports the loan state for an account. Accounts with no active
// loan get the zero snapshot.
func (s *Service) GetLoan(ctx context.Context, accountID uuid.UUID) (domain.LoanSnapshot, error) {
	loan, err := s.loans.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.LoanSnapshot{}, nil
		}
		return domain.LoanSnapshot{}, fmt.Errorf("GetLoan: %w", err)
	}
	return loan.Snapshot(), nil
}

// GetAvailableBorrow reports how much more an account could borrow against
// its current balance.
func (s *Service) GetAvailableBorrow(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("GetAvailableBorrow: %w", err)
	}

	principal := int64(0)
	loan, err := s.loans.GetByAccountID(ctx, accountID)
	switch {
	case err == nil:
		principal = loan.Principal
	case errors.Is(err, domain.ErrNotFound):
	default:
		return 0, fmt.Errorf("GetAvailableBorrow: %w", err)
	}

	return AvailableToBorrow(account.Balance, principal), nil
}

// GetPoolBalance reports the liquidity available for loans and withdrawals.
func (s *Service) GetPoolBalance(ctx context.Context) (int64, error) {
	totals, err := s.totals.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("GetPoolBalance: %w", err)
	}
	return totals.PoolBalance, nil
}

// GetTotals reports the full ledger aggregate row.
func (s *Service) GetTotals(ctx context.Context) (*repository.LedgerTotals, error) {
	totals, err := s.totals.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetTotals: %w", err)
	}
	return totals, nil
}

// GetTransfers pages through an account's journal entries, newest first.
func (s *Service) GetTransfers(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transfer, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	transfers, err := s.transfers.GetByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("GetTransfers: %w", err)
	}
	return transfers, nil
}

// GetAccountByUserID resolves the account owned by a user.
func (s *Service) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetAccountByUserID: %w", err)
	}
	return account, nil
}
