package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/domain"
)

const loanColumns = `account_id, principal, opened_at, auto_repay_enabled, auto_repay_percent, version`

type LoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// GetByAccountID returns the active loan for the account, or
// domain.ErrNotFound when the account has no loan.
func (r *LoanRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Loan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE account_id = $1`, accountID,
	)
	l, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByAccountID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByAccountID: %w", err)
	}
	return l, nil
}

func (r *LoanRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) (*domain.Loan, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE account_id = $1 FOR UPDATE`, accountID,
	)
	l, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return l, nil
}

func (r *LoanRepository) Create(ctx context.Context, tx *sql.Tx, loan *domain.Loan) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO loans (account_id, principal, opened_at, auto_repay_enabled, auto_repay_percent, version)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		loan.AccountID, loan.Principal, loan.OpenedAt,
		loan.AutoRepayEnabled, loan.AutoRepayPercent, loan.Version,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *LoanRepository) UpdatePrincipal(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, newPrincipal int64, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE loans SET principal = $1, version = $2 WHERE account_id = $3 AND version = $4`,
		newPrincipal, newVersion, accountID, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdatePrincipal: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdatePrincipal: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdatePrincipal: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *LoanRepository) SetAutoRepay(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, enabled bool, percent *int, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE loans SET auto_repay_enabled = $1, auto_repay_percent = $2, version = $3
		 WHERE account_id = $4 AND version = $5`,
		enabled, percent, newVersion, accountID, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("SetAutoRepay: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetAutoRepay: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetAutoRepay: %w", domain.ErrVersionConflict)
	}
	return nil
}

// Delete removes the loan row, which is how a loan transitions back to the
// no-loan state. Auto-repay settings vanish with the row.
func (r *LoanRepository) Delete(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM loans WHERE account_id = $1`, accountID,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// SumPrincipals returns the sum of all outstanding principals. Conservation
// checks compare it against the total_borrowed aggregate.
func (r *LoanRepository) SumPrincipals(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(principal), 0) FROM loans`,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumPrincipals: %w", err)
	}
	return sum, nil
}

func scanLoan(s scanner) (*domain.Loan, error) {
	var l domain.Loan
	var percent sql.NullInt64
	err := s.Scan(
		&l.AccountID, &l.Principal, &l.OpenedAt,
		&l.AutoRepayEnabled, &percent, &l.Version,
	)
	if err != nil {
		return nil, err
	}
	if percent.Valid {
		p := int(percent.Int64)
		l.AutoRepayPercent = &p
	}
	return &l, nil
}
