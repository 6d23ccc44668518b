package ledger

import "github.com/mattbennet/lentra/internal/domain"

// BorrowLimit is the rounded-down share of a balance that may be borrowed
// against it. The percentage is applied to quotient and remainder separately
// so the intermediate product cannot wrap, whatever the balance.
func BorrowLimit(balance int64) int64 {
	return balance/100*domain.CollateralRatioPct + balance%100*domain.CollateralRatioPct/100
}

// LockedCollateral is the minimum balance that must remain on account to
// back an outstanding principal. Rounded up, so the lock is never understated
// by integer division. Decomposed like BorrowLimit to keep the intermediate
// product in range.
func LockedCollateral(principal int64) int64 {
	q, r := principal/domain.CollateralRatioPct, principal%domain.CollateralRatioPct
	return q*100 + ceilDiv(r*100, domain.CollateralRatioPct)
}

// AvailableToBorrow returns the remaining borrowing room for a balance with
// the given outstanding principal (zero for no loan), floored at zero.
func AvailableToBorrow(balance, principal int64) int64 {
	room := BorrowLimit(balance) - principal
	if room < 0 {
		return 0
	}
	return room
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
