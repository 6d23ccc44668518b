package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/domain"
	"github.com/mattbennet/lentra/internal/logging"
)

// InboundTransfer is a payment delivered by the upstream gateway. Memo may
// carry a beneficiary account ID; anything else makes the payment
// unattributable and it is accepted into the pool as-is.
type InboundTransfer struct {
	IdempotencyKey string
	PayerRef       string
	Amount         int64
	Memo           string
}

// InboundResult describes what the router did with a payment.
type InboundResult struct {
	TransferID  uuid.UUID
	Intercepted bool
	Repaid      int64
	Forwarded   int64
	LoanClosed  bool
	Duplicate   bool
}

// decodeTarget extracts a beneficiary account ID from a transfer memo.
// Routing never fails: a memo that does not parse simply yields no target.
func decodeTarget(memo string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(memo))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// splitPayment divides an inbound value between debt repayment and
// forwarding. The repaid portion is percent of the value rounded down,
// capped at the outstanding principal.
func splitPayment(value int64, percent int, principal int64) (repay, forward int64) {
	repay = value * int64(percent) / 100
	if repay > principal {
		repay = principal
	}
	return repay, value - repay
}

// ReceiveInbound accepts a payment from the gateway. If the memo names an
// account whose loan has auto-repay enabled, the configured share of the
// payment is taken against the principal and only the remainder is forwarded
// to the beneficiary. Every other payment, including ones with unreadable or
// unknown memos, is accepted into the pool unattributed. Acceptance never
// fails on payment content; only amount validation and infrastructure errors
// surface.
func (s *Service) ReceiveInbound(ctx context.Context, in InboundTransfer) (*InboundResult, error) {
	log := logging.FromContext(ctx)

	if err := s.validateAmount(in.Amount); err != nil {
		return nil, fmt.Errorf("ReceiveInbound: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ReceiveInbound: begin tx: %w", err)
	}
	defer tx.Rollback()

	if in.IdempotencyKey != "" {
		prior, err := s.transfers.GetInboundByKey(ctx, in.IdempotencyKey)
		if err == nil {
			log.Info("inbound transfer replayed", "idempotency_key", in.IdempotencyKey, "transfer_id", prior.ID)
			return &InboundResult{TransferID: prior.ID, Duplicate: true}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ReceiveInbound: %w", err)
		}
	}

	totals, err := s.totals.GetForUpdate(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("ReceiveInbound: %w", err)
	}

	repay, forward, closed := int64(0), int64(0), false
	var target *domain.Account
	var loan *domain.Loan

	if accountID, ok := decodeTarget(in.Memo); ok {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		switch {
		case err == nil:
			target = account
		case errors.Is(err, domain.ErrNotFound):
			// Unknown beneficiary, fall through to plain acceptance.
		default:
			return nil, fmt.Errorf("ReceiveInbound: %w", err)
		}
	}

	if target != nil {
		l, err := s.loans.GetForUpdate(ctx, tx, target.ID)
		switch {
		case err == nil && l.AutoRepayEnabled:
			loan = l
			repay, forward = splitPayment(in.Amount, *l.AutoRepayPercent, l.Principal)
		case err == nil || errors.Is(err, domain.ErrNotFound):
			// No loan, or loan in manual mode: accept as-is.
		default:
			return nil, fmt.Errorf("ReceiveInbound: %w", err)
		}
	}

	if repay > 0 {
		if repay == loan.Principal {
			closed = true
			if err := s.loans.Delete(ctx, tx, target.ID); err != nil {
				return nil, fmt.Errorf("ReceiveInbound: close loan: %w", err)
			}
		} else {
			if err := s.loans.UpdatePrincipal(ctx, tx, target.ID, loan.Principal-repay, loan.Version+1); err != nil {
				return nil, fmt.Errorf("ReceiveInbound: %w", err)
			}
		}
		totals.TotalBorrowed -= repay
		totals.PoolBalance += repay
	} else {
		// Unattributed or uninterceptable payment stays in the pool.
		forward = 0
		totals.PoolBalance += in.Amount
	}
	if err := s.totals.Update(ctx, tx, totals, totals.Version+1); err != nil {
		return nil, fmt.Errorf("ReceiveInbound: update totals: %w", err)
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:             uuid.New(),
		IdempotencyKey: optional(in.IdempotencyKey),
		Type:           domain.TransferTypeInboundReceipt,
		Direction:      domain.DirectionInbound,
		Amount:         in.Amount,
		PayerRef:       optional(in.PayerRef),
		Memo:           optional(in.Memo),
		CreatedAt:      now,
	}
	if repay > 0 {
		transfer.AccountID = &target.ID
	}
	if err := s.writeTransfer(ctx, tx, transfer); err != nil {
		if errors.Is(err, domain.ErrDuplicateTransfer) {
			log.Info("inbound transfer raced a duplicate", "idempotency_key", in.IdempotencyKey)
			return &InboundResult{Duplicate: true}, nil
		}
		return nil, fmt.Errorf("ReceiveInbound: %w", err)
	}

	eventType := domain.EventPaymentAccepted
	var payload any = map[string]int64{"amount": in.Amount}
	if repay > 0 {
		eventType = domain.EventPaymentIntercepted
		payload = map[string]any{"amount": in.Amount, "repaid": repay, "forwarded": forward, "loan_closed": closed}
	}
	if err := s.writeEvent(ctx, tx, &transfer.ID, eventType, "gateway", payload, now); err != nil {
		return nil, fmt.Errorf("ReceiveInbound: %w", err)
	}

	if forward > 0 {
		if err := s.gateway.Send(ctx, OutboundOrder{
			TransferID:        transfer.ID,
			BeneficiaryUserID: target.UserID,
			Amount:            forward,
			Reference:         "inbound_forward",
		}); err != nil {
			log.Warn("inbound forward failed, rolling back", "transfer_id", transfer.ID, "error", err)
			return nil, fmt.Errorf("ReceiveInbound: %w: %w", domain.ErrTransferFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ReceiveInbound: commit: %w", err)
	}

	if repay > 0 {
		log.Info("inbound payment intercepted",
			"transfer_id", transfer.ID,
			"account_id", target.ID,
			"amount", in.Amount,
			"repaid", repay,
			"forwarded", forward,
			"loan_closed", closed,
		)
	} else {
		log.Info("inbound payment accepted", "transfer_id", transfer.ID, "amount", in.Amount)
	}
	return &InboundResult{
		TransferID:  transfer.ID,
		Intercepted: repay > 0,
		Repaid:      repay,
		Forwarded:   forward,
		LoanClosed:  closed,
	}, nil
}
