package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/config"
	"github.com/mattbennet/lentra/internal/domain"
	"github.com/mattbennet/lentra/internal/repository"
)

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	GetForUpdateByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Account, error)
	CreateTx(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance int64, newVersion int64) error
}

type loanRepo interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Loan, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) (*domain.Loan, error)
	Create(ctx context.Context, tx *sql.Tx, loan *domain.Loan) error
	UpdatePrincipal(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, newPrincipal int64, newVersion int64) error
	SetAutoRepay(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, enabled bool, percent *int, newVersion int64) error
	Delete(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) error
}

type totalsRepo interface {
	Get(ctx context.Context) (*repository.LedgerTotals, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx) (*repository.LedgerTotals, error)
	Update(ctx context.Context, tx *sql.Tx, t *repository.LedgerTotals, newVersion int64) error
}

type transferRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transfer) error
	GetInboundByKey(ctx context.Context, key string) (*domain.Transfer, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transfer, error)
}

type eventRepo interface {
	Create(ctx context.Context, tx *sql.Tx, event *domain.TransferEvent) error
}

// OutboundOrder is a request to the external rail to move value out of the
// pool to a user. Issued as the final action of an operation, after every
// ledger row has reached its post-operation value, so a recipient observing
// the transfer sees only finalized state.
type OutboundOrder struct {
	TransferID        uuid.UUID
	BeneficiaryUserID uuid.UUID
	Amount            int64
	Reference         string
}

// TransferGateway executes outbound value movement. An error from Send rolls
// back the enclosing operation in full.
type TransferGateway interface {
	Send(ctx context.Context, order OutboundOrder) error
}

// Service implements the ledger's accounting engine, loan engine, and
// payment router over a shared store handle.
type Service struct {
	accounts  accountRepo
	loans     loanRepo
	totals    totalsRepo
	transfers transferRepo
	events    eventRepo
	gateway   TransferGateway
	db        *sql.DB
	config    *config.Config
}

func NewService(
	accounts accountRepo,
	loans loanRepo,
	totals totalsRepo,
	transfers transferRepo,
	events eventRepo,
	gateway TransferGateway,
	db *sql.DB,
	cfg *config.Config,
) *Service {
	return &Service{
		accounts:  accounts,
		loans:     loans,
		totals:    totals,
		transfers: transfers,
		events:    events,
		gateway:   gateway,
		db:        db,
		config:    cfg,
	}
}

// validateAmount rejects non-positive amounts and amounts large enough to
// make downstream int64 collateral arithmetic overflow.
func (s *Service) validateAmount(amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if amount > s.config.MaxTransferAmount {
		return domain.ErrAmountLimitExceeded
	}
	return nil
}

func (s *Service) writeTransfer(ctx context.Context, tx *sql.Tx, t *domain.Transfer) error {
	if err := s.transfers.Create(ctx, tx, t); err != nil {
		return fmt.Errorf("writeTransfer: %w", err)
	}
	return nil
}

func (s *Service) writeEvent(ctx context.Context, tx *sql.Tx, transferID *uuid.UUID, eventType domain.TransferEventType, actor string, payload any, now time.Time) error {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("writeEvent: marshal: %w", err)
		}
		raw = b
	}
	event := &domain.TransferEvent{
		ID:         uuid.New(),
		TransferID: transferID,
		EventType:  eventType,
		Actor:      actor,
		Payload:    raw,
		CreatedAt:  now,
	}
	if err := s.events.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("writeEvent: %w", err)
	}
	return nil
}

func userActor(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID)
}
