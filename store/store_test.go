package store

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchvest/launchvest-go/distribution"
	"github.com/launchvest/launchvest-go/shared"
	"github.com/launchvest/launchvest-go/vesting"
)

const (
	testAdmin  = shared.Address("admin")
	testLaunch = shared.Address("launch")
	testToken  = shared.Address("token")
	testAlice  = shared.Address("alice")
	testBob    = shared.Address("bob")
)

func testLaunchState() distribution.State {
	return distribution.State{
		Phase:            distribution.PhaseDistribution,
		Paused:           false,
		RemainingSupply:  big.NewInt(880_000),
		TotalMinted:      big.NewInt(120_000),
		MintCap:          big.NewInt(2_000_000),
		TotalRaised:      big.NewInt(457_123),
		LargestPurchase:  big.NewInt(90_000),
		LargestPurchaser: testAlice,
		Participants:     []shared.Address{testAlice, testBob},
		RetainedExcess:   big.NewInt(17),
	}
}

func testVestingState() ([]*vesting.Schedule, map[shared.Address]vesting.TokenVestingConfig) {
	schedules := []*vesting.Schedule{
		{
			ID: 1, Token: testToken, User: testAlice,
			StartTime: 1000, CliffDuration: 50, Duration: 400,
			TotalAmount:       big.NewInt(90_000),
			TransferredAmount: big.NewInt(12_500),
		},
		{
			ID: 2, Token: testToken, User: testBob,
			StartTime: 1100, CliffDuration: 0, Duration: 600,
			TotalAmount:       big.NewInt(30_000),
			TransferredAmount: new(big.Int),
		},
	}
	configs := map[shared.Address]vesting.TokenVestingConfig{
		testToken: {
			DurationMin:    100,
			DurationMax:    1000,
			TotalSupplyCap: big.NewInt(5_000_000),
			LaunchContract: testLaunch,
		},
	}
	return schedules, configs
}

func TestSQLiteLaunchStateRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "launch.db"))
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.LoadLaunchState()
	require.NoError(t, err)
	assert.False(t, found)

	want := testLaunchState()
	require.NoError(t, s.SaveLaunchState(want))

	got, found, err := s.LoadLaunchState()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.Phase, got.Phase)
	assert.Equal(t, want.Paused, got.Paused)
	assert.Zero(t, want.RemainingSupply.Cmp(got.RemainingSupply))
	assert.Zero(t, want.TotalMinted.Cmp(got.TotalMinted))
	assert.Zero(t, want.MintCap.Cmp(got.MintCap))
	assert.Zero(t, want.TotalRaised.Cmp(got.TotalRaised))
	assert.Zero(t, want.LargestPurchase.Cmp(got.LargestPurchase))
	assert.Equal(t, want.LargestPurchaser, got.LargestPurchaser)
	assert.ElementsMatch(t, want.Participants, got.Participants)
	assert.Zero(t, want.RetainedExcess.Cmp(got.RetainedExcess))
}

func TestSQLiteLaunchStateOverwrite(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "launch.db"))
	require.NoError(t, err)
	defer s.Close()

	first := testLaunchState()
	require.NoError(t, s.SaveLaunchState(first))

	second := testLaunchState()
	second.Phase = distribution.PhaseAMM
	second.RemainingSupply = new(big.Int)
	second.Participants = []shared.Address{testBob}
	require.NoError(t, s.SaveLaunchState(second))

	got, found, err := s.LoadLaunchState()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, distribution.PhaseAMM, got.Phase)
	assert.Zero(t, got.RemainingSupply.Sign())
	assert.Equal(t, []shared.Address{testBob}, got.Participants)
}

func TestSQLiteVestingRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "launch.db"))
	require.NoError(t, err)
	defer s.Close()

	schedules, configs := testVestingState()
	require.NoError(t, s.SaveVesting(schedules, configs))

	gotSchedules, gotConfigs, err := s.LoadVesting()
	require.NoError(t, err)
	require.Len(t, gotSchedules, 2)
	require.Len(t, gotConfigs, 1)

	assert.Equal(t, schedules[0].ID, gotSchedules[0].ID)
	assert.Equal(t, schedules[0].User, gotSchedules[0].User)
	assert.Zero(t, schedules[0].TotalAmount.Cmp(gotSchedules[0].TotalAmount))
	assert.Zero(t, schedules[0].TransferredAmount.Cmp(gotSchedules[0].TransferredAmount))
	assert.Equal(t, schedules[1].ID, gotSchedules[1].ID)

	cfg := gotConfigs[testToken]
	assert.Equal(t, int64(100), cfg.DurationMin)
	assert.Equal(t, int64(1000), cfg.DurationMax)
	require.NotNil(t, cfg.TotalSupplyCap)
	assert.Zero(t, cfg.TotalSupplyCap.Cmp(big.NewInt(5_000_000)))
	assert.Equal(t, testLaunch, cfg.LaunchContract)
}

func TestSQLiteVestingNilSupplyCap(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "launch.db"))
	require.NoError(t, err)
	defer s.Close()

	configs := map[shared.Address]vesting.TokenVestingConfig{
		testToken: {DurationMin: 1, DurationMax: 10, LaunchContract: testLaunch},
	}
	require.NoError(t, s.SaveVesting(nil, configs))

	_, gotConfigs, err := s.LoadVesting()
	require.NoError(t, err)
	assert.Nil(t, gotConfigs[testToken].TotalSupplyCap)
}

func TestSnapshotRoundTrip(t *testing.T) {
	state := testLaunchState()
	schedules, configs := testVestingState()

	snap, err := BuildSnapshot(state, schedules, configs)
	require.NoError(t, err)

	data, err := snap.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalSnapshot(data)
	require.NoError(t, err)

	gotState := decoded.LaunchState()
	assert.Equal(t, state.Phase, gotState.Phase)
	assert.Zero(t, state.RemainingSupply.Cmp(gotState.RemainingSupply))
	assert.Zero(t, state.TotalRaised.Cmp(gotState.TotalRaised))
	assert.Equal(t, state.LargestPurchaser, gotState.LargestPurchaser)
	assert.ElementsMatch(t, state.Participants, gotState.Participants)

	gotSchedules, gotConfigs := decoded.VestingState()
	require.Len(t, gotSchedules, 2)
	assert.Zero(t, schedules[0].TotalAmount.Cmp(gotSchedules[0].TotalAmount))
	assert.Zero(t, schedules[0].TransferredAmount.Cmp(gotSchedules[0].TransferredAmount))
	require.NotNil(t, gotConfigs[testToken].TotalSupplyCap)
	assert.Zero(t, gotConfigs[testToken].TotalSupplyCap.Cmp(big.NewInt(5_000_000)))
}

func TestSnapshotRejectsWrongVersion(t *testing.T) {
	snap, err := BuildSnapshot(testLaunchState(), nil, nil)
	require.NoError(t, err)
	data, err := snap.Marshal()
	require.NoError(t, err)

	data[0] = 99
	_, err = UnmarshalSnapshot(data)
	assert.Error(t, err)
}

func TestSnapshotRestoresIntoLedger(t *testing.T) {
	schedules, configs := testVestingState()
	snap, err := BuildSnapshot(testLaunchState(), schedules, configs)
	require.NoError(t, err)
	data, err := snap.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalSnapshot(data)
	require.NoError(t, err)

	ledger := vesting.NewLedger(testAdmin, nil)
	gotSchedules, gotConfigs := decoded.VestingState()
	require.NoError(t, ledger.RestoreState(gotSchedules, gotConfigs))

	// alice at start+200: vested = 90000*200/400 = 45000, minus 12500 moved.
	avail := ledger.AvailableBalanceAt(testToken, testAlice, 1200)
	assert.Zero(t, avail.Cmp(big.NewInt(32_500)))
}
