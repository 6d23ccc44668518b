package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattbennet/lentra/internal/config"
	"github.com/mattbennet/lentra/internal/domain"
	"github.com/mattbennet/lentra/internal/repository"
	"github.com/mattbennet/lentra/internal/testutil"
)

type fakeGateway struct {
	orders  []OutboundOrder
	failMsg string
}

func (g *fakeGateway) Send(_ context.Context, order OutboundOrder) error {
	if g.failMsg != "" {
		return fmt.Errorf("%s", g.failMsg)
	}
	g.orders = append(g.orders, order)
	return nil
}

func setupService(t *testing.T, db *sql.DB, gw TransferGateway) *Service {
	t.Helper()

	return NewService(
		repository.NewAccountRepository(db),
		repository.NewLoanRepository(db),
		repository.NewTotalsRepository(db),
		repository.NewTransferRepository(db),
		repository.NewTransferEventRepository(db),
		gw,
		db,
		&config.Config{MaxTransferAmount: 1_000_000_000_000},
	)
}

// Conservation must hold after every operation: user balances are fully
// backed by total_deposits, and outstanding principals match total_borrowed.
func assertInvariants(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx := context.Background()
	deposits, borrowed, pool := testutil.GetTotals(t, db)

	balances, err := repository.NewAccountRepository(db).SumBalances(ctx)
	require.NoError(t, err)
	principals, err := repository.NewLoanRepository(db).SumPrincipals(ctx)
	require.NoError(t, err)

	assert.Equal(t, deposits, balances, "total_deposits must equal sum of balances")
	assert.Equal(t, borrowed, principals, "total_borrowed must equal sum of principals")
	assert.GreaterOrEqual(t, pool, int64(0))
}

func TestDeposit_CreatesAccountOnFirstUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)

	transfer, err := svc.Deposit(ctx, user.ID, 1000, uuid.NewString())
	require.NoError(t, err)
	require.NotNil(t, transfer.AccountID)
	assert.Equal(t, int64(1000), testutil.GetBalance(t, db, *transfer.AccountID))

	_, err = svc.Deposit(ctx, user.ID, 500, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), testutil.GetBalance(t, db, *transfer.AccountID))

	deposits, _, pool := testutil.GetTotals(t, db)
	assert.Equal(t, int64(1500), deposits)
	assert.Equal(t, int64(1500), pool)
	assertInvariants(t, db)
}

func TestDeposit_RejectsInvalidAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)

	_, err := svc.Deposit(ctx, user.ID, 0, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Deposit(ctx, user.ID, -5, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Deposit(ctx, user.ID, 2_000_000_000_000, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrAmountLimitExceeded)
}

func TestUserWithdraw_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)

	transfer, err := svc.UserWithdraw(ctx, user.ID, 400, uuid.NewString())
	require.NoError(t, err)

	assert.Equal(t, int64(600), testutil.GetBalance(t, db, account.ID))
	require.Len(t, gw.orders, 1)
	assert.Equal(t, transfer.ID, gw.orders[0].TransferID)
	assert.Equal(t, int64(400), gw.orders[0].Amount)
	assertInvariants(t, db)
}

func TestUserWithdraw_InsufficientBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	testutil.SeedAccount(t, db, user.ID, 100)

	_, err := svc.UserWithdraw(ctx, user.ID, 101, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestUserWithdraw_GatewayFailureRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{failMsg: "rail unavailable"}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)

	_, err := svc.UserWithdraw(ctx, user.ID, 400, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrTransferFailed)

	// Nothing moved and no journal row survived the rollback.
	assert.Equal(t, int64(1000), testutil.GetBalance(t, db, account.ID))
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM transfers`).Scan(&count))
	assert.Zero(t, count)
	assertInvariants(t, db)
}

func TestAdminWithdraw_SweepsPool(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := setupService(t, db, gw)

	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)
	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)

	_, err := svc.AdminWithdraw(ctx, admin.ID, 700, uuid.NewString())
	require.NoError(t, err)

	// The sweep drains liquidity but leaves user balances untouched.
	assert.Equal(t, int64(1000), testutil.GetBalance(t, db, account.ID))
	deposits, _, pool := testutil.GetTotals(t, db)
	assert.Equal(t, int64(1000), deposits)
	assert.Equal(t, int64(300), pool)

	_, err = svc.AdminWithdraw(ctx, admin.ID, 301, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInsufficientPoolFunds)

	// A user withdrawal above remaining liquidity now fails even though the
	// balance would cover it.
	_, err = svc.UserWithdraw(ctx, user.ID, 500, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInsufficientPoolFunds)
}

func TestBorrow_CollateralBoundary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	testutil.SeedAccount(t, db, user.ID, 10)

	_, err := svc.Borrow(ctx, user.ID, 8, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInsufficientCollateral)

	_, err = svc.Borrow(ctx, user.ID, 7, uuid.NewString())
	require.NoError(t, err)
	assertInvariants(t, db)
}

func TestBorrow_SecondLoanRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	testutil.SeedAccount(t, db, user.ID, 1000)

	_, err := svc.Borrow(ctx, user.ID, 100, uuid.NewString())
	require.NoError(t, err)

	_, err = svc.Borrow(ctx, user.ID, 100, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrLoanAlreadyActive)
}

func TestBorrow_PoolMustCoverPrincipal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	admin := testutil.SeedUser(t, db, "admin@test.com", domain.RoleAdmin)
	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	testutil.SeedAccount(t, db, user.ID, 1000)

	// Drain the pool below the requested principal.
	_, err := svc.AdminWithdraw(ctx, admin.ID, 950, uuid.NewString())
	require.NoError(t, err)

	_, err = svc.Borrow(ctx, user.ID, 100, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrInsufficientPoolFunds)
}

func TestWithdraw_CollateralLockedLeavesStateUnchanged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 100)

	_, err := svc.Borrow(ctx, user.ID, 70, uuid.NewString())
	require.NoError(t, err)

	// Locked collateral for principal 70 is the full 100 balance.
	_, err = svc.UserWithdraw(ctx, user.ID, 1, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrCollateralLocked)

	assert.Equal(t, int64(100), testutil.GetBalance(t, db, account.ID))
	principal, active := testutil.GetPrincipal(t, db, account.ID)
	assert.True(t, active)
	assert.Equal(t, int64(70), principal)
	assertInvariants(t, db)
}

func TestWithdraw_AllowedAfterPartialRepay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 100)

	_, err := svc.Borrow(ctx, user.ID, 70, uuid.NewString())
	require.NoError(t, err)

	result, err := svc.Repay(ctx, user.ID, 35, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, result.LoanClosed)

	// Principal 35 locks ceil(35/0.7) = 50, so 50 is withdrawable.
	_, err = svc.UserWithdraw(ctx, user.ID, 50, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, int64(50), testutil.GetBalance(t, db, account.ID))

	_, err = svc.UserWithdraw(ctx, user.ID, 1, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrCollateralLocked)
	assertInvariants(t, db)
}

func TestRepay_PartialThenClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)

	_, err := svc.Borrow(ctx, user.ID, 200, uuid.NewString())
	require.NoError(t, err)

	result, err := svc.Repay(ctx, user.ID, 50, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, int64(50), result.Repaid)
	assert.Zero(t, result.Refunded)
	assert.False(t, result.LoanClosed)

	events, err := repository.NewTransferEventRepository(db).GetByTransferID(ctx, result.Transfer.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventLoanRepaid, events[0].EventType)

	principal, active := testutil.GetPrincipal(t, db, account.ID)
	require.True(t, active)
	assert.Equal(t, int64(150), principal)

	// Overpayment closes the loan and refunds the excess.
	ordersBefore := len(gw.orders)
	result, err = svc.Repay(ctx, user.ID, 200, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, int64(150), result.Repaid)
	assert.Equal(t, int64(50), result.Refunded)
	assert.True(t, result.LoanClosed)

	_, active = testutil.GetPrincipal(t, db, account.ID)
	assert.False(t, active)

	events, err = repository.NewTransferEventRepository(db).GetByTransferID(ctx, result.Transfer.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventLoanClosed, events[0].EventType)
	require.Len(t, gw.orders, ordersBefore+1)
	assert.Equal(t, int64(50), gw.orders[len(gw.orders)-1].Amount)

	// A closed loan leaves nothing to repay and frees the account to borrow
	// again.
	_, err = svc.Repay(ctx, user.ID, 10, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNoActiveLoan)

	_, err = svc.Borrow(ctx, user.ID, 100, uuid.NewString())
	require.NoError(t, err)
	assertInvariants(t, db)
}

func TestAutoRepay_Toggle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)

	err := svc.EnableAutoRepay(ctx, user.ID, 30)
	assert.ErrorIs(t, err, domain.ErrNoActiveLoan)

	_, err = svc.Borrow(ctx, user.ID, 100, uuid.NewString())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.EnableAutoRepay(ctx, user.ID, 0), domain.ErrInvalidPercent)
	assert.ErrorIs(t, svc.EnableAutoRepay(ctx, user.ID, 101), domain.ErrInvalidPercent)

	require.NoError(t, svc.EnableAutoRepay(ctx, user.ID, 30))

	snap, err := svc.GetLoan(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, snap.AutoRepayEnabled)
	assert.Equal(t, 30, snap.AutoRepayPercent)

	// Disabling twice lands on the same state.
	require.NoError(t, svc.DisableAutoRepay(ctx, user.ID))
	require.NoError(t, svc.DisableAutoRepay(ctx, user.ID))

	snap, err = svc.GetLoan(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, snap.AutoRepayEnabled)
	assert.Zero(t, snap.AutoRepayPercent)
}

func TestReceiveInbound_PlainAcceptance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := setupService(t, db, gw)

	tests := []struct {
		name string
		memo string
	}{
		{"empty memo", ""},
		{"unreadable memo", "invoice #42"},
		{"unknown account", uuid.NewString()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, poolBefore := testutil.GetTotals(t, db)

			result, err := svc.ReceiveInbound(ctx, InboundTransfer{
				IdempotencyKey: uuid.NewString(),
				PayerRef:       "acme",
				Amount:         100,
				Memo:           tc.memo,
			})
			require.NoError(t, err)
			assert.False(t, result.Intercepted)
			assert.Zero(t, result.Forwarded)

			_, _, poolAfter := testutil.GetTotals(t, db)
			assert.Equal(t, poolBefore+100, poolAfter)
			assert.Empty(t, gw.orders)
		})
	}
}

func TestReceiveInbound_AutoRepayDisabledIsPlainAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)
	testutil.SeedLoan(t, db, account.ID, 100, nil)

	result, err := svc.ReceiveInbound(ctx, InboundTransfer{
		IdempotencyKey: uuid.NewString(),
		Amount:         50,
		Memo:           account.ID.String(),
	})
	require.NoError(t, err)
	assert.False(t, result.Intercepted)

	principal, _ := testutil.GetPrincipal(t, db, account.ID)
	assert.Equal(t, int64(100), principal)
	assert.Empty(t, gw.orders)
}

func TestReceiveInbound_InterceptsAndForwards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)
	percent := 30
	testutil.SeedLoan(t, db, account.ID, 100, &percent)

	_, _, poolBefore := testutil.GetTotals(t, db)

	result, err := svc.ReceiveInbound(ctx, InboundTransfer{
		IdempotencyKey: uuid.NewString(),
		PayerRef:       "acme-payroll",
		Amount:         10,
		Memo:           account.ID.String(),
	})
	require.NoError(t, err)
	assert.True(t, result.Intercepted)
	assert.Equal(t, int64(3), result.Repaid)
	assert.Equal(t, int64(7), result.Forwarded)
	assert.False(t, result.LoanClosed)

	principal, _ := testutil.GetPrincipal(t, db, account.ID)
	assert.Equal(t, int64(97), principal)

	// Only the repaid share stays in the pool; the forward left on the rail.
	_, _, poolAfter := testutil.GetTotals(t, db)
	assert.Equal(t, poolBefore+3, poolAfter)

	require.Len(t, gw.orders, 1)
	assert.Equal(t, int64(7), gw.orders[0].Amount)
	assert.Equal(t, user.ID, gw.orders[0].BeneficiaryUserID)
	assertInvariants(t, db)
}

func TestReceiveInbound_RepayCappedAtPrincipal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)
	percent := 30
	testutil.SeedLoan(t, db, account.ID, 5, &percent)

	result, err := svc.ReceiveInbound(ctx, InboundTransfer{
		IdempotencyKey: uuid.NewString(),
		Amount:         100,
		Memo:           account.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Repaid)
	assert.Equal(t, int64(95), result.Forwarded)
	assert.True(t, result.LoanClosed)

	_, active := testutil.GetPrincipal(t, db, account.ID)
	assert.False(t, active)
	assertInvariants(t, db)
}

func TestReceiveInbound_TinyPaymentRoundsToPlainAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)
	percent := 30
	testutil.SeedLoan(t, db, account.ID, 100, &percent)

	// 1 * 30% rounds down to zero, so no interception happens and the full
	// value stays in the pool.
	result, err := svc.ReceiveInbound(ctx, InboundTransfer{
		IdempotencyKey: uuid.NewString(),
		Amount:         1,
		Memo:           account.ID.String(),
	})
	require.NoError(t, err)
	assert.False(t, result.Intercepted)

	principal, _ := testutil.GetPrincipal(t, db, account.ID)
	assert.Equal(t, int64(100), principal)
	assert.Empty(t, gw.orders)
}

// Client idempotency keys are scoped per user by the replay cache, so the
// journal must accept the same key from different users, from the same user
// after the cache window, and from the rail's own key space.
func TestDeposit_SharedClientKeyAcrossUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	alice := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	bob := testutil.SeedUser(t, db, "bob@test.com", domain.RoleUser)

	key := uuid.NewString()
	_, err := svc.Deposit(ctx, alice.ID, 100, key)
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, bob.ID, 50, key)
	require.NoError(t, err)

	// Retry by the same user once the cache entry has expired.
	_, err = svc.Deposit(ctx, alice.ID, 100, key)
	require.NoError(t, err)

	// A rail transfer ID that happens to equal a client key is a fresh
	// receipt, and only its redelivery is the duplicate.
	res, err := svc.ReceiveInbound(ctx, InboundTransfer{IdempotencyKey: key, PayerRef: "acme-payroll", Amount: 10})
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	res, err = svc.ReceiveInbound(ctx, InboundTransfer{IdempotencyKey: key, PayerRef: "acme-payroll", Amount: 10})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assertInvariants(t, db)
}

func TestReceiveInbound_DuplicateAcknowledged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	key := uuid.NewString()
	first, err := svc.ReceiveInbound(ctx, InboundTransfer{IdempotencyKey: key, Amount: 100})
	require.NoError(t, err)

	second, err := svc.ReceiveInbound(ctx, InboundTransfer{IdempotencyKey: key, Amount: 100})
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.TransferID, second.TransferID)

	// The value was only counted once.
	_, _, pool := testutil.GetTotals(t, db)
	assert.Equal(t, int64(100), pool)
}

func TestReceiveInbound_ForwardFailureRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	gw := &fakeGateway{failMsg: "rail unavailable"}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 1000)
	percent := 30
	testutil.SeedLoan(t, db, account.ID, 100, &percent)

	_, err := svc.ReceiveInbound(ctx, InboundTransfer{
		IdempotencyKey: uuid.NewString(),
		Amount:         10,
		Memo:           account.ID.String(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransferFailed))

	principal, _ := testutil.GetPrincipal(t, db, account.ID)
	assert.Equal(t, int64(100), principal)
	assertInvariants(t, db)
}

func TestQueries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupService(t, db, &fakeGateway{})

	// Unknown accounts read as zero.
	balance, err := svc.GetBalance(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, balance)

	snap, err := svc.GetLoan(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, snap.Active)

	user := testutil.SeedUser(t, db, "alice@test.com", domain.RoleUser)
	account := testutil.SeedAccount(t, db, user.ID, 100)

	available, err := svc.GetAvailableBorrow(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), available)

	_, err = svc.Borrow(ctx, user.ID, 50, uuid.NewString())
	require.NoError(t, err)

	available, err = svc.GetAvailableBorrow(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), available)

	snap, err = svc.GetLoan(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, snap.Active)
	assert.Equal(t, int64(50), snap.Principal)
	assert.Equal(t, "0.05", snap.NominalRate.String())

	pool, err := svc.GetPoolBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), pool)
}
