package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mattbennet/lentra/internal/domain"
)

func SeedUser(t *testing.T, db *sql.DB, email string, role domain.UserRole) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, role, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Status, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func SeedAccount(t *testing.T, db *sql.DB, userID uuid.UUID, balance int64) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   balance,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, user_id, balance, version, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.UserID, a.Balance, a.Version, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account for %s: %v", userID, err)
	}

	// Seeded balances must be reflected in the aggregates or invariant
	// checks would fail before any operation runs.
	_, err = db.Exec(
		`UPDATE ledger_totals
		 SET total_deposits = total_deposits + $1, pool_balance = pool_balance + $1
		 WHERE id = 1`,
		balance,
	)
	if err != nil {
		t.Fatalf("seed totals for account %s: %v", a.ID, err)
	}
	return a
}

func SeedLoan(t *testing.T, db *sql.DB, accountID uuid.UUID, principal int64, autoRepayPercent *int) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO loans (account_id, principal, opened_at, auto_repay_enabled, auto_repay_percent, version)
		 VALUES ($1, $2, $3, $4, $5, 1)`,
		accountID, principal, time.Now().UTC(), autoRepayPercent != nil, autoRepayPercent,
	)
	if err != nil {
		t.Fatalf("seed loan for account %s: %v", accountID, err)
	}

	// A seeded loan is money already lent out of the pool.
	_, err = db.Exec(
		`UPDATE ledger_totals
		 SET total_borrowed = total_borrowed + $1, pool_balance = pool_balance - $1
		 WHERE id = 1`,
		principal,
	)
	if err != nil {
		t.Fatalf("seed totals for loan %s: %v", accountID, err)
	}
}

func GetBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance %s: %v", accountID, err)
	}
	return balance
}

func GetTotals(t *testing.T, db *sql.DB) (deposits, borrowed, pool int64) {
	t.Helper()

	err := db.QueryRow(
		`SELECT total_deposits, total_borrowed, pool_balance FROM ledger_totals WHERE id = 1`,
	).Scan(&deposits, &borrowed, &pool)
	if err != nil {
		t.Fatalf("get totals: %v", err)
	}
	return deposits, borrowed, pool
}

func GetPrincipal(t *testing.T, db *sql.DB, accountID uuid.UUID) (int64, bool) {
	t.Helper()

	var principal int64
	err := db.QueryRow(`SELECT principal FROM loans WHERE account_id = $1`, accountID).Scan(&principal)
	if err == sql.ErrNoRows {
		return 0, false
	}
	if err != nil {
		t.Fatalf("get principal %s: %v", accountID, err)
	}
	return principal, true
}
