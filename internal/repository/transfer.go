package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mattbennet/lentra/internal/domain"
)

const transferColumns = `id, idempotency_key, type, direction, account_id, amount, payer_ref, memo, created_at`

type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transfer) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transfers (id, idempotency_key, type, direction, account_id, amount, payer_ref, memo, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.IdempotencyKey, t.Type, t.Direction, t.AccountID,
		t.Amount, t.PayerRef, t.Memo, t.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateTransfer)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetInboundByKey looks up a prior receipt by the rail's transfer ID. The
// lookup is scoped to inbound receipts: client Idempotency-Key headers live
// in a separate, per-user namespace.
func (r *TransferRepository) GetInboundByKey(ctx context.Context, key string) (*domain.Transfer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE idempotency_key = $1 AND type = 'inbound_receipt'`, key,
	)
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetInboundByKey: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetInboundByKey: %w", err)
	}
	return t, nil
}

func (r *TransferRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transfer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByAccountID: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByAccountID: scan: %w", err)
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByAccountID: rows: %w", err)
	}
	return transfers, nil
}

func scanTransfer(s scanner) (*domain.Transfer, error) {
	var t domain.Transfer
	err := s.Scan(
		&t.ID, &t.IdempotencyKey, &t.Type, &t.Direction,
		&t.AccountID, &t.Amount, &t.PayerRef, &t.Memo, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type TransferEventRepository struct {
	db *sql.DB
}

func NewTransferEventRepository(db *sql.DB) *TransferEventRepository {
	return &TransferEventRepository{db: db}
}

func (r *TransferEventRepository) Create(ctx context.Context, tx *sql.Tx, event *domain.TransferEvent) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transfer_events (id, transfer_id, event_type, actor, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.TransferID, event.EventType, event.Actor, event.Payload, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransferEventRepository) GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]domain.TransferEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, transfer_id, event_type, actor, payload, created_at
		 FROM transfer_events WHERE transfer_id = $1 ORDER BY created_at`, transferID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByTransferID: %w", err)
	}
	defer rows.Close()

	var events []domain.TransferEvent
	for rows.Next() {
		var e domain.TransferEvent
		var transferID uuid.NullUUID
		if err := rows.Scan(&e.ID, &transferID, &e.EventType, &e.Actor, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("GetByTransferID: scan: %w", err)
		}
		if transferID.Valid {
			id := transferID.UUID
			e.TransferID = &id
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByTransferID: rows: %w", err)
	}
	return events, nil
}
