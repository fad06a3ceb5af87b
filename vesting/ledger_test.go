package vesting

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchvest/launchvest-go/shared"
)

const (
	admin  = shared.Address("admin")
	launch = shared.Address("launch")
	token  = shared.Address("LVT")
	alice  = shared.Address("alice")
	bob    = shared.Address("bob")
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger(admin, nil)
	l.now = func() int64 { return 0 }
	require.NoError(t, l.RegisterToken(admin, token, TokenVestingConfig{
		DurationMin:    10,
		DurationMax:    10_000,
		TotalSupplyCap: big.NewInt(10_000_000),
		LaunchContract: launch,
	}))
	return l
}

func setNow(l *Ledger, t int64) {
	l.now = func() int64 { return t }
}

func TestRegisterTokenValidation(t *testing.T) {
	l := NewLedger(admin, nil)

	err := l.RegisterToken(admin, token, TokenVestingConfig{DurationMin: 0, DurationMax: 10})
	assert.ErrorContains(t, err, "durationMin")

	err = l.RegisterToken(admin, token, TokenVestingConfig{DurationMin: 100, DurationMax: 10})
	assert.ErrorContains(t, err, "durationMax")

	err = l.RegisterToken(bob, token, TokenVestingConfig{DurationMin: 10, DurationMax: 100})
	var authErr *NotAuthorizedError
	assert.ErrorAs(t, err, &authErr)

	require.NoError(t, l.RegisterToken(admin, token, TokenVestingConfig{DurationMin: 10, DurationMax: 100}))
	err = l.RegisterToken(admin, token, TokenVestingConfig{DurationMin: 10, DurationMax: 100})
	assert.ErrorContains(t, err, "already registered")
}

func TestScheduleCreationValidation(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.CreateVestingSchedule(bob, token, alice, 0, 0, 100, big.NewInt(1000))
	var authErr *NotAuthorizedError
	assert.ErrorAs(t, err, &authErr)

	_, err = l.CreateVestingSchedule(launch, token, alice, 0, 0, 5, big.NewInt(1000))
	assert.ErrorContains(t, err, "duration")

	_, err = l.CreateVestingSchedule(launch, token, alice, 0, 100, 100, big.NewInt(1000))
	assert.ErrorContains(t, err, "cliffDuration")

	_, err = l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(0))
	assert.ErrorContains(t, err, "totalAmount")

	_, err = l.CreateVestingSchedule(launch, shared.Address("unknown"), alice, 0, 0, 100, big.NewInt(1000))
	var cfgErr *NotConfiguredError
	assert.ErrorAs(t, err, &cfgErr)

	id, err := l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	// Admin may create schedules too, and ids are sequential.
	id2, err := l.CreateVestingSchedule(admin, token, alice, -50, 0, 100, big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id2)
}

func TestVestingLinearity(t *testing.T) {
	s := &Schedule{
		StartTime:         0,
		CliffDuration:     0,
		Duration:          100,
		TotalAmount:       big.NewInt(1000),
		TransferredAmount: new(big.Int),
	}
	assert.EqualValues(t, 0, s.VestedAmount(0).Int64())
	assert.EqualValues(t, 500, s.VestedAmount(50).Int64())
	assert.EqualValues(t, 1000, s.VestedAmount(100).Int64())
	assert.EqualValues(t, 1000, s.VestedAmount(150).Int64())
}

func TestCliffGatesOnsetOnly(t *testing.T) {
	s := &Schedule{
		StartTime:         0,
		CliffDuration:     30,
		Duration:          100,
		TotalAmount:       big.NewInt(1000),
		TransferredAmount: new(big.Int),
	}
	assert.EqualValues(t, 0, s.VestedAmount(20).Int64())
	// Past the cliff the ramp is evaluated from startTime, not cliff end.
	assert.EqualValues(t, 400, s.VestedAmount(40).Int64())
}

func TestVestedAmountTruncates(t *testing.T) {
	s := &Schedule{
		Duration:          3,
		TotalAmount:       big.NewInt(10),
		TransferredAmount: new(big.Int),
	}
	assert.EqualValues(t, 3, s.VestedAmount(1).Int64()) // floor(10/3)
	assert.EqualValues(t, 6, s.VestedAmount(2).Int64()) // floor(20/3)
}

func TestReplayProtection(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(1000))
	require.NoError(t, err)

	setNow(l, 60) // vested = 600
	require.True(t, l.IsTransferAllowed(alice, big.NewInt(600), token))
	require.NoError(t, l.RecordTransfer(token, alice, big.NewInt(200), token))

	assert.False(t, l.IsTransferAllowed(alice, big.NewInt(500), token))
	assert.True(t, l.IsTransferAllowed(alice, big.NewInt(400), token))
	assert.EqualValues(t, 400, l.AvailableBalance(token, alice).Int64())
}

func TestRecordTransferOldestFirst(t *testing.T) {
	l := newTestLedger(t)
	id1, err := l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(1000))
	require.NoError(t, err)
	id2, err := l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(1000))
	require.NoError(t, err)

	setNow(l, 50) // 500 vested on each
	require.NoError(t, l.RecordTransfer(token, alice, big.NewInt(700), token))

	s1, err := l.ScheduleByID(id1)
	require.NoError(t, err)
	s2, err := l.ScheduleByID(id2)
	require.NoError(t, err)

	// Oldest schedule drains completely before the next is touched.
	assert.EqualValues(t, 500, s1.TransferredAmount.Int64())
	assert.EqualValues(t, 200, s2.TransferredAmount.Int64())
}

func TestRecordTransferOutOfOrderDefense(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(1000))
	require.NoError(t, err)

	setNow(l, 10) // only 100 vested
	err = l.RecordTransfer(token, alice, big.NewInt(500), token)
	var nv *NotVestedError
	require.ErrorAs(t, err, &nv)
	assert.EqualValues(t, 500, nv.Requested.Int64())
	assert.EqualValues(t, 100, nv.Available.Int64())

	// The failed call must not have consumed anything.
	assert.EqualValues(t, 100, l.AvailableBalance(token, alice).Int64())
}

func TestRecordTransferCallerGating(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(1000))
	require.NoError(t, err)
	setNow(l, 100)

	err = l.RecordTransfer(bob, alice, big.NewInt(10), token)
	var ntc *NotTokenContractError
	require.ErrorAs(t, err, &ntc)
	assert.Equal(t, bob, ntc.Caller)

	err = l.RecordTransfer(launch, alice, big.NewInt(10), token)
	require.ErrorAs(t, err, &ntc)
}

func TestSchedulesOfAndTotals(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.SchedulesOf(token, alice)
	var none *NoSchedulesError
	require.ErrorAs(t, err, &none)

	_, err = l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(300))
	require.NoError(t, err)
	_, err = l.CreateVestingSchedule(launch, token, alice, 0, 0, 200, big.NewInt(700))
	require.NoError(t, err)

	schedules, err := l.SchedulesOf(token, alice)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.EqualValues(t, 1000, l.TotalVesting(token, alice).Int64())

	// Returned schedules are copies; mutating them must not leak back.
	schedules[0].TransferredAmount.SetInt64(9999)
	fresh, err := l.ScheduleByID(schedules[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, fresh.TransferredAmount.Int64())
}

func TestZeroAmountTransferAllowed(t *testing.T) {
	l := newTestLedger(t)
	assert.True(t, l.IsTransferAllowed(alice, big.NewInt(0), token))
	assert.False(t, l.IsTransferAllowed(alice, nil, token))
}

func TestRestoreStateRejectsDuplicateIDsBeforeMutating(t *testing.T) {
	l := newTestLedger(t)
	id, err := l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(1_000))
	require.NoError(t, err)

	cfg := TokenVestingConfig{
		DurationMin:    10,
		DurationMax:    10_000,
		LaunchContract: launch,
	}
	dup := []*Schedule{
		{ID: 7, Token: token, User: bob, Duration: 100, TotalAmount: big.NewInt(500), TransferredAmount: new(big.Int)},
		{ID: 7, Token: token, User: bob, Duration: 100, TotalAmount: big.NewInt(500), TransferredAmount: new(big.Int)},
	}

	var invalid *InvalidScheduleError
	err = l.RestoreState(dup, map[shared.Address]TokenVestingConfig{token: cfg})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "id", invalid.Param)

	// The failed restore must leave the ledger exactly as it was.
	s, err := l.ScheduleByID(id)
	require.NoError(t, err)
	assert.Zero(t, s.TotalAmount.Cmp(big.NewInt(1_000)))
	_, err = l.SchedulesOf(token, bob)
	var none *NoSchedulesError
	assert.ErrorAs(t, err, &none)
}

func TestSetVestingConfig(t *testing.T) {
	l := newTestLedger(t)

	err := l.SetVestingConfig(admin, shared.Address("unknown"), TokenVestingConfig{DurationMin: 1, DurationMax: 2})
	var cfgErr *NotConfiguredError
	require.ErrorAs(t, err, &cfgErr)

	require.NoError(t, l.SetVestingConfig(admin, token, TokenVestingConfig{
		DurationMin:    5,
		DurationMax:    50,
		LaunchContract: launch,
	}))
	cfg, err := l.Config(token)
	require.NoError(t, err)
	assert.EqualValues(t, 5, cfg.DurationMin)
	assert.EqualValues(t, 50, cfg.DurationMax)

	// New window applies to new schedules.
	_, err = l.CreateVestingSchedule(launch, token, alice, 0, 0, 100, big.NewInt(10))
	assert.ErrorContains(t, err, "duration")
}
