package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchvest/launchvest-go/shared"
	"github.com/launchvest/launchvest-go/vesting"
)

const (
	tokenAddr = shared.Address("LVT")
	saleAddr  = shared.Address("sale")
	admin     = shared.Address("admin")
	alice     = shared.Address("alice")
	bob       = shared.Address("bob")
)

func TestMintAndSupplyCap(t *testing.T) {
	l, err := New(tokenAddr, big.NewInt(1_000), saleAddr)
	require.NoError(t, err)

	require.NoError(t, l.Mint(alice, big.NewInt(600)))
	assert.EqualValues(t, 600, l.BalanceOf(alice).Int64())
	assert.EqualValues(t, 600, l.TotalSupply().Int64())

	var capErr *SupplyCapError
	err = l.Mint(bob, big.NewInt(500))
	require.ErrorAs(t, err, &capErr)
	assert.EqualValues(t, 500, capErr.Requested.Int64())
	assert.EqualValues(t, 400, capErr.Available.Int64())
	assert.EqualValues(t, 600, l.TotalSupply().Int64(), "failed mint must not move supply")
}

func TestBurnReversesMint(t *testing.T) {
	l, err := New(tokenAddr, big.NewInt(1_000), saleAddr)
	require.NoError(t, err)
	require.NoError(t, l.Mint(alice, big.NewInt(600)))

	require.NoError(t, l.Burn(alice, big.NewInt(600)))
	assert.Zero(t, l.BalanceOf(alice).Sign())
	assert.Zero(t, l.TotalSupply().Sign())

	// freed headroom is mintable again
	require.NoError(t, l.Mint(bob, big.NewInt(1_000)))

	var bal *InsufficientBalanceError
	err = l.Burn(bob, big.NewInt(1_001))
	require.ErrorAs(t, err, &bal)
	assert.EqualValues(t, 1_000, l.TotalSupply().Int64(), "failed burn must not move supply")
}

func TestMintFromRequiresGrant(t *testing.T) {
	l, err := New(tokenAddr, nil, saleAddr)
	require.NoError(t, err)

	require.ErrorIs(t, l.MintFrom(bob, bob, big.NewInt(1)), ErrNotMinter)
	require.NoError(t, l.MintFrom(saleAddr, alice, big.NewInt(10)))

	l.GrantMinter(bob)
	require.NoError(t, l.MintFrom(bob, bob, big.NewInt(1)))
}

func TestUnrestrictedTransfer(t *testing.T) {
	l, err := New(tokenAddr, nil, saleAddr)
	require.NoError(t, err)
	require.NoError(t, l.Mint(alice, big.NewInt(100)))

	require.NoError(t, l.Transfer(alice, bob, big.NewInt(40)))
	assert.EqualValues(t, 60, l.BalanceOf(alice).Int64())
	assert.EqualValues(t, 40, l.BalanceOf(bob).Int64())

	var bal *InsufficientBalanceError
	err = l.Transfer(alice, bob, big.NewInt(100))
	require.ErrorAs(t, err, &bal)
	assert.EqualValues(t, 60, bal.Balance.Int64())
}

// Full hook integration against the real vesting ledger: balances alone do
// not make tokens transferable; the vested fraction does.
func TestRestrictedTransferAgainstVestingLedger(t *testing.T) {
	l, err := New(tokenAddr, nil, saleAddr)
	require.NoError(t, err)

	vl := vesting.NewLedger(admin, nil)
	now := int64(0)
	vl.SetNowFunc(func() int64 { return now })
	require.NoError(t, vl.RegisterToken(admin, tokenAddr, vesting.TokenVestingConfig{
		DurationMin:    10,
		DurationMax:    1_000,
		LaunchContract: saleAddr,
	}))
	l.SetRestrictor(vl)

	require.NoError(t, l.Mint(alice, big.NewInt(1_000)))
	_, err = vl.CreateVestingSchedule(saleAddr, tokenAddr, alice, 0, 0, 100, big.NewInt(1_000))
	require.NoError(t, err)

	// Nothing vested yet.
	var restricted *RestrictedError
	err = l.Transfer(alice, bob, big.NewInt(1))
	require.ErrorAs(t, err, &restricted)
	assert.EqualValues(t, 1_000, l.BalanceOf(alice).Int64())

	// Half vested: half transferable, once.
	now = 50
	require.NoError(t, l.Transfer(alice, bob, big.NewInt(500)))
	assert.EqualValues(t, 500, l.BalanceOf(bob).Int64())

	err = l.Transfer(alice, bob, big.NewInt(1))
	require.ErrorAs(t, err, &restricted, "vested capacity must not be double-counted")

	// Fully vested: the rest moves.
	now = 100
	require.NoError(t, l.Transfer(alice, bob, big.NewInt(500)))
	assert.EqualValues(t, 0, l.BalanceOf(alice).Int64())
	assert.EqualValues(t, 1_000, l.BalanceOf(bob).Int64())

	// Bob received unrestricted (already vested-and-recorded) tokens but
	// holds no schedules, so the hook blocks him entirely.
	err = l.Transfer(bob, alice, big.NewInt(1))
	require.ErrorAs(t, err, &restricted)
}

func TestExemptSenderBypassesHook(t *testing.T) {
	l, err := New(tokenAddr, nil, saleAddr)
	require.NoError(t, err)

	vl := vesting.NewLedger(admin, nil)
	require.NoError(t, vl.RegisterToken(admin, tokenAddr, vesting.TokenVestingConfig{
		DurationMin:    10,
		DurationMax:    1_000,
		LaunchContract: saleAddr,
	}))
	l.SetRestrictor(vl)
	l.SetExempt(saleAddr, true)

	require.NoError(t, l.Mint(saleAddr, big.NewInt(100)))
	require.NoError(t, l.Transfer(saleAddr, alice, big.NewInt(100)))
	assert.EqualValues(t, 100, l.BalanceOf(alice).Int64())
}
