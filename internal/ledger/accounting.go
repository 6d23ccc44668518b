package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/domain"
	"github.com/mattbennet/lentra/internal/logging"
)

// Deposit credits the caller's ledger balance and the pool with amount. The
// account row is created on first deposit.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount int64, idemKey string) (*domain.Transfer, error) {
	log := logging.FromContext(ctx)

	if err := s.validateAmount(amount); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Deposit: begin tx: %w", err)
	}
	defer tx.Rollback()

	totals, err := s.totals.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	now := time.Now().UTC()
	account, err := s.accounts.GetForUpdateByUserID(ctx, tx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		account = &domain.Account{
			ID:        uuid.New(),
			UserID:    userID,
			Balance:   0,
			Version:   1,
			CreatedAt: now,
		}
		if err := s.accounts.CreateTx(ctx, tx, account); err != nil {
			return nil, fmt.Errorf("Deposit: create account: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance+amount, account.Version+1); err != nil {
		return nil, fmt.Errorf("Deposit: update balance: %w", err)
	}

	totals.TotalDeposits += amount
	totals.PoolBalance += amount
	if err := s.totals.Update(ctx, tx, totals, totals.Version+1); err != nil {
		return nil, fmt.Errorf("Deposit: update totals: %w", err)
	}

	transfer := &domain.Transfer{
		ID:             uuid.New(),
		IdempotencyKey: optional(idemKey),
		Type:           domain.TransferTypeDeposit,
		Direction:      domain.DirectionInbound,
		AccountID:      &account.ID,
		Amount:         amount,
		CreatedAt:      now,
	}
	if err := s.writeTransfer(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}
	if err := s.writeEvent(ctx, tx, &transfer.ID, domain.EventDepositCompleted, userActor(userID), map[string]int64{"amount": amount}, now); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Deposit: commit: %w", err)
	}

	log.Info("deposit completed", "account_id", account.ID, "user_id", userID, "amount", amount)
	return transfer, nil
}

// UserWithdraw debits the caller's ledger balance and pays the amount out.
// With an active loan, the post-withdrawal balance must still cover the
// locked collateral computed from the current (possibly partially repaid)
// principal.
func (s *Service) UserWithdraw(ctx context.Context, userID uuid.UUID, amount int64, idemKey string) (*domain.Transfer, error) {
	log := logging.FromContext(ctx)

	if err := s.validateAmount(amount); err != nil {
		return nil, fmt.Errorf("UserWithdraw: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("UserWithdraw: begin tx: %w", err)
	}
	defer tx.Rollback()

	totals, err := s.totals.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("UserWithdraw: %w", err)
	}

	account, err := s.accounts.GetForUpdateByUserID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("UserWithdraw: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("UserWithdraw: %w", err)
	}

	if account.Balance < amount {
		return nil, fmt.Errorf("UserWithdraw: %w", domain.ErrInsufficientBalance)
	}

	loan, err := s.loans.GetForUpdate(ctx, tx, account.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("UserWithdraw: %w", err)
	}
	if loan != nil && account.Balance-amount < LockedCollateral(loan.Principal) {
		return nil, fmt.Errorf("UserWithdraw: %w", domain.ErrCollateralLocked)
	}

	if totals.PoolBalance < amount {
		return nil, fmt.Errorf("UserWithdraw: %w", domain.ErrInsufficientPoolFunds)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance-amount, account.Version+1); err != nil {
		return nil, fmt.Errorf("UserWithdraw: update balance: %w", err)
	}

	totals.TotalDeposits -= amount
	totals.PoolBalance -= amount
	if err := s.totals.Update(ctx, tx, totals, totals.Version+1); err != nil {
		return nil, fmt.Errorf("UserWithdraw: update totals: %w", err)
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:             uuid.New(),
		IdempotencyKey: optional(idemKey),
		Type:           domain.TransferTypeUserWithdrawal,
		Direction:      domain.DirectionOutbound,
		AccountID:      &account.ID,
		Amount:         amount,
		CreatedAt:      now,
	}
	if err := s.writeTransfer(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("UserWithdraw: %w", err)
	}
	if err := s.writeEvent(ctx, tx, &transfer.ID, domain.EventWithdrawalCompleted, userActor(userID), map[string]int64{"amount": amount}, now); err != nil {
		return nil, fmt.Errorf("UserWithdraw: %w", err)
	}

	// The outbound transfer is the last action: every row already holds its
	// final value, and the locks are released only on commit.
	if err := s.gateway.Send(ctx, OutboundOrder{
		TransferID:        transfer.ID,
		BeneficiaryUserID: userID,
		Amount:            amount,
		Reference:         string(domain.TransferTypeUserWithdrawal),
	}); err != nil {
		log.Warn("withdrawal payout failed, rolling back", "transfer_id", transfer.ID, "error", err)
		return nil, fmt.Errorf("UserWithdraw: %w: %w", domain.ErrTransferFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("UserWithdraw: commit: %w", err)
	}

	log.Info("withdrawal completed", "account_id", account.ID, "user_id", userID, "amount", amount)
	return transfer, nil
}

// AdminWithdraw sweeps amount from the pool's on-hand funds. It deliberately
// bypasses per-user accounting: the sweep is an operational drain on
// liquidity and can leave the pool below what user balances would imply.
func (s *Service) AdminWithdraw(ctx context.Context, adminUserID uuid.UUID, amount int64, idemKey string) (*domain.Transfer, error) {
	log := logging.FromContext(ctx)

	if err := s.validateAmount(amount); err != nil {
		return nil, fmt.Errorf("AdminWithdraw: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("AdminWithdraw: begin tx: %w", err)
	}
	defer tx.Rollback()

	totals, err := s.totals.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("AdminWithdraw: %w", err)
	}

	if totals.PoolBalance < amount {
		return nil, fmt.Errorf("AdminWithdraw: %w", domain.ErrInsufficientPoolFunds)
	}

	totals.PoolBalance -= amount
	if err := s.totals.Update(ctx, tx, totals, totals.Version+1); err != nil {
		return nil, fmt.Errorf("AdminWithdraw: update totals: %w", err)
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:             uuid.New(),
		IdempotencyKey: optional(idemKey),
		Type:           domain.TransferTypeAdminWithdrawal,
		Direction:      domain.DirectionOutbound,
		Amount:         amount,
		CreatedAt:      now,
	}
	if err := s.writeTransfer(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("AdminWithdraw: %w", err)
	}
	if err := s.writeEvent(ctx, tx, &transfer.ID, domain.EventPoolSweepCompleted, userActor(adminUserID), map[string]int64{"amount": amount}, now); err != nil {
		return nil, fmt.Errorf("AdminWithdraw: %w", err)
	}

	if err := s.gateway.Send(ctx, OutboundOrder{
		TransferID:        transfer.ID,
		BeneficiaryUserID: adminUserID,
		Amount:            amount,
		Reference:         string(domain.TransferTypeAdminWithdrawal),
	}); err != nil {
		log.Warn("pool sweep payout failed, rolling back", "transfer_id", transfer.ID, "error", err)
		return nil, fmt.Errorf("AdminWithdraw: %w: %w", domain.ErrTransferFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("AdminWithdraw: commit: %w", err)
	}

	log.Info("pool sweep completed", "user_id", adminUserID, "amount", amount, "pool_balance", totals.PoolBalance)
	return transfer, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
