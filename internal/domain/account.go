package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a user's ledger balance in the single base asset, denominated
// in integer base units. The row is created implicitly by the first deposit.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   int64
	Version   int64
	CreatedAt time.Time
}
