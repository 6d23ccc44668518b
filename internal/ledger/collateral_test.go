package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBorrowLimit(t *testing.T) {
	assert.Equal(t, int64(7), BorrowLimit(10))
	assert.Equal(t, int64(0), BorrowLimit(0))
	assert.Equal(t, int64(0), BorrowLimit(1))
	assert.Equal(t, int64(70), BorrowLimit(100))
	// Rounds down: 99 * 70 / 100 = 69.3
	assert.Equal(t, int64(69), BorrowLimit(99))
}

// Balances large enough that a naive balance*70 would wrap must still get an
// exact limit, and the lock on that limit must stay within the balance.
func TestBorrowLimit_LargeBalances(t *testing.T) {
	assert.Equal(t, int64(140_000_000_000_000_000), BorrowLimit(200_000_000_000_000_000))

	limit := BorrowLimit(math.MaxInt64)
	assert.Equal(t, int64(6456360425798343064), limit)
	assert.LessOrEqual(t, LockedCollateral(limit), int64(math.MaxInt64))

	// Monotone across the range a wrapping implementation would corrupt.
	assert.Greater(t, limit, BorrowLimit(math.MaxInt64/2))
}

func TestLockedCollateral(t *testing.T) {
	assert.Equal(t, int64(10), LockedCollateral(7))
	assert.Equal(t, int64(100), LockedCollateral(70))
	// Rounds up: 1/0.7 = 1.43, a balance of 1 would not cover it.
	assert.Equal(t, int64(2), LockedCollateral(1))
	assert.Equal(t, int64(0), LockedCollateral(0))
}

func TestLockedCollateralCoversBorrowLimit(t *testing.T) {
	// Whatever was borrowable against a balance must be fully backed by that
	// balance when locked.
	for balance := int64(0); balance <= 1000; balance++ {
		limit := BorrowLimit(balance)
		if limit == 0 {
			continue
		}
		locked := LockedCollateral(limit)
		assert.LessOrEqual(t, locked, balance, "balance %d", balance)
	}
}

func TestAvailableToBorrow(t *testing.T) {
	assert.Equal(t, int64(7), AvailableToBorrow(10, 0))
	assert.Equal(t, int64(2), AvailableToBorrow(10, 5))
	assert.Equal(t, int64(0), AvailableToBorrow(10, 7))
	// Principal above the current limit floors at zero instead of going
	// negative (balance may have shrunk since borrowing).
	assert.Equal(t, int64(0), AvailableToBorrow(10, 9))
}
