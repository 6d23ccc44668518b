package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattbennet/lentra/internal/domain"
)

// LedgerTotals mirrors the singleton ledger_totals row: the two running
// totals plus the pool's on-hand funds.
type LedgerTotals struct {
	TotalDeposits int64
	TotalBorrowed int64
	PoolBalance   int64
	Version       int64
}

type TotalsRepository struct {
	db *sql.DB
}

func NewTotalsRepository(db *sql.DB) *TotalsRepository {
	return &TotalsRepository{db: db}
}

func (r *TotalsRepository) Get(ctx context.Context) (*LedgerTotals, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT total_deposits, total_borrowed, pool_balance, version
		 FROM ledger_totals WHERE id = 1`,
	)
	t, err := scanTotals(row)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return t, nil
}

// GetForUpdate locks the totals row for the remainder of the transaction.
// Taking this lock first in every mutating operation serializes ledger
// mutations and fixes the lock order.
func (r *TotalsRepository) GetForUpdate(ctx context.Context, tx *sql.Tx) (*LedgerTotals, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT total_deposits, total_borrowed, pool_balance, version
		 FROM ledger_totals WHERE id = 1 FOR UPDATE`,
	)
	t, err := scanTotals(row)
	if err != nil {
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return t, nil
}

func (r *TotalsRepository) Update(ctx context.Context, tx *sql.Tx, t *LedgerTotals, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE ledger_totals
		 SET total_deposits = $1, total_borrowed = $2, pool_balance = $3, version = $4
		 WHERE id = 1 AND version = $5`,
		t.TotalDeposits, t.TotalBorrowed, t.PoolBalance, newVersion, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrVersionConflict)
	}
	return nil
}

func scanTotals(s scanner) (*LedgerTotals, error) {
	var t LedgerTotals
	err := s.Scan(&t.TotalDeposits, &t.TotalBorrowed, &t.PoolBalance, &t.Version)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
