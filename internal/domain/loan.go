package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollateralRatioPct is the maximum share of a deposit that may be borrowed
// against it. Fixed; not runtime-configurable.
const CollateralRatioPct = 70

// NominalAnnualRate is the flat nominal rate attached to every loan. It is
// reported on loan snapshots but never enters any computation.
var NominalAnnualRate = decimal.NewFromFloat(0.05)

// Loan is an active borrowing position. A row exists exactly while principal
// is positive; full repayment deletes the row, so there is no separate
// "active" flag that could drift out of sync with the principal.
type Loan struct {
	AccountID        uuid.UUID
	Principal        int64
	OpenedAt         time.Time
	AutoRepayEnabled bool
	AutoRepayPercent *int
	Version          int64
}

// LoanSnapshot is the read-model returned by the query surface. Accounts
// without a loan read as the zero snapshot rather than an error.
type LoanSnapshot struct {
	AccountID        uuid.UUID
	Principal        int64
	Active           bool
	AutoRepayEnabled bool
	AutoRepayPercent int
	OpenedAt         *time.Time
	NominalRate      decimal.Decimal
}

func (l *Loan) Snapshot() LoanSnapshot {
	s := LoanSnapshot{
		AccountID:   l.AccountID,
		Principal:   l.Principal,
		Active:      true,
		NominalRate: NominalAnnualRate,
	}
	opened := l.OpenedAt
	s.OpenedAt = &opened
	if l.AutoRepayEnabled && l.AutoRepayPercent != nil {
		s.AutoRepayEnabled = true
		s.AutoRepayPercent = *l.AutoRepayPercent
	}
	return s
}
