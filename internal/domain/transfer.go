package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TransferType string

const (
	TransferTypeDeposit         TransferType = "deposit"
	TransferTypeUserWithdrawal  TransferType = "user_withdrawal"
	TransferTypeAdminWithdrawal TransferType = "admin_withdrawal"
	TransferTypeBorrow          TransferType = "borrow"
	TransferTypeRepayment       TransferType = "repayment"
	TransferTypeInboundReceipt  TransferType = "inbound_receipt"
)

type TransferDirection string

const (
	DirectionInbound  TransferDirection = "inbound"
	DirectionOutbound TransferDirection = "outbound"
)

// Transfer is the journal row written by every operation that moves value.
// AccountID is nil for admin pool sweeps and for inbound receipts that could
// not be attributed to an account.
type Transfer struct {
	ID             uuid.UUID
	IdempotencyKey *string
	Type           TransferType
	Direction      TransferDirection
	AccountID      *uuid.UUID
	Amount         int64
	PayerRef       *string
	Memo           *string
	CreatedAt      time.Time
}

type TransferEventType string

const (
	EventDepositCompleted    TransferEventType = "deposit.completed"
	EventWithdrawalCompleted TransferEventType = "withdrawal.completed"
	EventPoolSweepCompleted  TransferEventType = "pool_sweep.completed"
	EventLoanOpened          TransferEventType = "loan.opened"
	EventLoanRepaid          TransferEventType = "loan.repaid"
	EventLoanClosed          TransferEventType = "loan.closed"
	EventAutoRepayEnabled    TransferEventType = "auto_repay.enabled"
	EventAutoRepayDisabled   TransferEventType = "auto_repay.disabled"
	// EventPaymentAccepted records an inbound transfer taken as-is, with no
	// routing applied.
	EventPaymentAccepted TransferEventType = "payment.accepted"
	// EventPaymentIntercepted records an inbound transfer split between debt
	// repayment and forwarding.
	EventPaymentIntercepted TransferEventType = "payment.intercepted"
)

// TransferEvent is the notification record emitted by every operation.
// TransferID is nil for operations that move no value (auto-repay toggles).
type TransferEvent struct {
	ID         uuid.UUID
	TransferID *uuid.UUID
	EventType  TransferEventType
	Actor      string
	Payload    json.RawMessage
	CreatedAt  time.Time
}
