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

// Borrow opens a loan against the caller's deposit and pays the principal
// out. One outstanding loan per account: a second borrow is rejected until
// the first is fully repaid.
func (s *Service) Borrow(ctx context.Context, userID uuid.UUID, amount int64, idemKey string) (*domain.Transfer, error) {
	log := logging.FromContext(ctx)

	if err := s.validateAmount(amount); err != nil {
		return nil, fmt.Errorf("Borrow: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Borrow: begin tx: %w", err)
	}
	defer tx.Rollback()

	totals, err := s.totals.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("Borrow: %w", err)
	}

	account, err := s.accounts.GetForUpdateByUserID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Borrow: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("Borrow: %w", err)
	}

	if _, err := s.loans.GetForUpdate(ctx, tx, account.ID); err == nil {
		return nil, fmt.Errorf("Borrow: %w", domain.ErrLoanAlreadyActive)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Borrow: %w", err)
	}

	if amount > BorrowLimit(account.Balance) {
		return nil, fmt.Errorf("Borrow: %w", domain.ErrInsufficientCollateral)
	}
	if totals.PoolBalance < amount {
		return nil, fmt.Errorf("Borrow: %w", domain.ErrInsufficientPoolFunds)
	}

	now := time.Now().UTC()
	loan := &domain.Loan{
		AccountID: account.ID,
		Principal: amount,
		OpenedAt:  now,
		Version:   1,
	}
	if err := s.loans.Create(ctx, tx, loan); err != nil {
		return nil, fmt.Errorf("Borrow: create loan: %w", err)
	}

	totals.TotalBorrowed += amount
	totals.PoolBalance -= amount
	if err := s.totals.Update(ctx, tx, totals, totals.Version+1); err != nil {
		return nil, fmt.Errorf("Borrow: update totals: %w", err)
	}

	transfer := &domain.Transfer{
		ID:             uuid.New(),
		IdempotencyKey: optional(idemKey),
		Type:           domain.TransferTypeBorrow,
		Direction:      domain.DirectionOutbound,
		AccountID:      &account.ID,
		Amount:         amount,
		CreatedAt:      now,
	}
	if err := s.writeTransfer(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("Borrow: %w", err)
	}
	if err := s.writeEvent(ctx, tx, &transfer.ID, domain.EventLoanOpened, userActor(userID), map[string]int64{"principal": amount}, now); err != nil {
		return nil, fmt.Errorf("Borrow: %w", err)
	}

	if err := s.gateway.Send(ctx, OutboundOrder{
		TransferID:        transfer.ID,
		BeneficiaryUserID: userID,
		Amount:            amount,
		Reference:         string(domain.TransferTypeBorrow),
	}); err != nil {
		log.Warn("borrow disbursement failed, rolling back", "transfer_id", transfer.ID, "error", err)
		return nil, fmt.Errorf("Borrow: %w: %w", domain.ErrTransferFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Borrow: commit: %w", err)
	}

	log.Info("loan opened", "account_id", account.ID, "user_id", userID, "principal", amount)
	return transfer, nil
}

// RepayResult reports how an inbound repayment was applied.
type RepayResult struct {
	Transfer   *domain.Transfer
	Repaid     int64
	Refunded   int64
	LoanClosed bool
}

// Repay applies a payment against the caller's outstanding principal. A
// payment at or above the principal closes the loan and refunds the excess
// to the payer; a smaller payment reduces the principal in place.
func (s *Service) Repay(ctx context.Context, userID uuid.UUID, payment int64, idemKey string) (*RepayResult, error) {
	log := logging.FromContext(ctx)

	if err := s.validateAmount(payment); err != nil {
		return nil, fmt.Errorf("Repay: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Repay: begin tx: %w", err)
	}
	defer tx.Rollback()

	totals, err := s.totals.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("Repay: %w", err)
	}

	account, err := s.accounts.GetForUpdateByUserID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Repay: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("Repay: %w", err)
	}

	loan, err := s.loans.GetForUpdate(ctx, tx, account.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Repay: %w", domain.ErrNoActiveLoan)
		}
		return nil, fmt.Errorf("Repay: %w", err)
	}

	repaid := payment
	refund := int64(0)
	closed := false
	if payment >= loan.Principal {
		repaid = loan.Principal
		refund = payment - loan.Principal
		closed = true
		if err := s.loans.Delete(ctx, tx, account.ID); err != nil {
			return nil, fmt.Errorf("Repay: close loan: %w", err)
		}
	} else {
		if err := s.loans.UpdatePrincipal(ctx, tx, account.ID, loan.Principal-payment, loan.Version+1); err != nil {
			return nil, fmt.Errorf("Repay: %w", err)
		}
	}

	// The payment arrives in full; only the refund leaves again, so the pool
	// nets exactly the repaid portion.
	totals.TotalBorrowed -= repaid
	totals.PoolBalance += repaid
	if err := s.totals.Update(ctx, tx, totals, totals.Version+1); err != nil {
		return nil, fmt.Errorf("Repay: update totals: %w", err)
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:             uuid.New(),
		IdempotencyKey: optional(idemKey),
		Type:           domain.TransferTypeRepayment,
		Direction:      domain.DirectionInbound,
		AccountID:      &account.ID,
		Amount:         payment,
		CreatedAt:      now,
	}
	if err := s.writeTransfer(ctx, tx, transfer); err != nil {
		return nil, fmt.Errorf("Repay: %w", err)
	}

	eventType := domain.EventLoanRepaid
	if closed {
		eventType = domain.EventLoanClosed
	}
	payload := map[string]any{"payment": payment, "repaid": repaid, "refund": refund}
	if err := s.writeEvent(ctx, tx, &transfer.ID, eventType, userActor(userID), payload, now); err != nil {
		return nil, fmt.Errorf("Repay: %w", err)
	}

	if refund > 0 {
		if err := s.gateway.Send(ctx, OutboundOrder{
			TransferID:        transfer.ID,
			BeneficiaryUserID: userID,
			Amount:            refund,
			Reference:         "repayment_refund",
		}); err != nil {
			log.Warn("repayment refund failed, rolling back", "transfer_id", transfer.ID, "error", err)
			return nil, fmt.Errorf("Repay: %w: %w", domain.ErrTransferFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Repay: commit: %w", err)
	}

	log.Info("repayment applied",
		"account_id", account.ID,
		"user_id", userID,
		"payment", payment,
		"repaid", repaid,
		"refund", refund,
		"loan_closed", closed,
	)
	return &RepayResult{Transfer: transfer, Repaid: repaid, Refunded: refund, LoanClosed: closed}, nil
}

// EnableAutoRepay opts the caller's active loan into payment interception at
// the given percentage.
func (s *Service) EnableAutoRepay(ctx context.Context, userID uuid.UUID, percent int) error {
	if percent < 1 || percent > 100 {
		return fmt.Errorf("EnableAutoRepay: %w", domain.ErrInvalidPercent)
	}
	if err := s.setAutoRepay(ctx, userID, true, &percent); err != nil {
		return fmt.Errorf("EnableAutoRepay: %w", err)
	}
	return nil
}

// DisableAutoRepay reverts the caller's active loan to manual repayment.
// Calling it on a loan already in manual mode is a no-op write, so repeated
// calls leave identical state.
func (s *Service) DisableAutoRepay(ctx context.Context, userID uuid.UUID) error {
	if err := s.setAutoRepay(ctx, userID, false, nil); err != nil {
		return fmt.Errorf("DisableAutoRepay: %w", err)
	}
	return nil
}

func (s *Service) setAutoRepay(ctx context.Context, userID uuid.UUID, enabled bool, percent *int) error {
	log := logging.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("setAutoRepay: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdateByUserID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("setAutoRepay: %w", domain.ErrAccountNotFound)
		}
		return fmt.Errorf("setAutoRepay: %w", err)
	}

	loan, err := s.loans.GetForUpdate(ctx, tx, account.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("setAutoRepay: %w", domain.ErrNoActiveLoan)
		}
		return fmt.Errorf("setAutoRepay: %w", err)
	}

	if err := s.loans.SetAutoRepay(ctx, tx, account.ID, enabled, percent, loan.Version+1); err != nil {
		return fmt.Errorf("setAutoRepay: %w", err)
	}

	now := time.Now().UTC()
	eventType := domain.EventAutoRepayDisabled
	var payload any
	if enabled {
		eventType = domain.EventAutoRepayEnabled
		payload = map[string]int{"percent": *percent}
	}
	if err := s.writeEvent(ctx, tx, nil, eventType, userActor(userID), payload, now); err != nil {
		return fmt.Errorf("setAutoRepay: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("setAutoRepay: commit: %w", err)
	}

	log.Info("auto-repay updated", "account_id", account.ID, "enabled", enabled)
	return nil
}
