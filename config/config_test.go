package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchvest/launchvest-go/curve"
	"github.com/launchvest/launchvest-go/fixedmath"
	"github.com/launchvest/launchvest-go/shared"
)

const validLaunchJSON = `{
	"admin": "admin-addr",
	"launchContract": "launch-addr",
	"token": "token-addr",
	"treasury": "treasury-addr",
	"pricing": {
		"alpha": "-3.0",
		"k": "5.0",
		"beta": "0.8",
		"floorPrice": "2.0",
		"totalSupply": "1000000"
	},
	"maxPurchase": "100000",
	"feeNumerator": 10000000,
	"mintCap": "2000000",
	"vesting": {"durationMin": 100, "durationMax": 1000, "cliff": 10}
}`

func TestParseValidLaunch(t *testing.T) {
	launch, err := Parse([]byte(validLaunchJSON))
	require.NoError(t, err)

	assert.Equal(t, shared.Address("admin-addr"), launch.Admin)
	assert.Equal(t, shared.Address("launch-addr"), launch.Self)
	assert.Equal(t, shared.Address("token-addr"), launch.Token)
	assert.Equal(t, shared.Address("treasury-addr"), launch.Config.Treasury)

	p := launch.Config.Pricing
	assert.Zero(t, p.Alpha.Cmp(new(big.Int).Mul(big.NewInt(-3), fixedmath.One)))
	assert.Zero(t, p.K.Cmp(new(big.Int).Mul(big.NewInt(5), fixedmath.One)))
	assert.Zero(t, p.FloorPrice.Cmp(new(big.Int).Mul(big.NewInt(2), fixedmath.One)))
	assert.Zero(t, p.TotalDistributionSupply.Cmp(big.NewInt(1_000_000)))
	assert.Zero(t, p.RemainingSupply.Cmp(big.NewInt(1_000_000)))

	// beta = 0.8 lands within one ulp of 0.8 * 2^64
	want := curve.DecimalToQ64(decimalFromString(t, "0.8"))
	assert.Zero(t, p.Beta.Cmp(want))

	assert.Equal(t, uint64(10_000_000), launch.Config.FeeNumerator)
	assert.Zero(t, launch.Config.MaxPurchaseAmount.Cmp(big.NewInt(100_000)))
	assert.Zero(t, launch.Config.MintCap.Cmp(big.NewInt(2_000_000)))
	assert.Equal(t, int64(100), launch.Config.VestingDurationMin)
	assert.Equal(t, int64(1000), launch.Config.VestingDurationMax)
	assert.Equal(t, int64(10), launch.Config.VestingCliff)
}

func TestParseRemainingSupplyOverride(t *testing.T) {
	withRemaining := []byte(`{
		"admin": "a", "launchContract": "l", "token": "t", "treasury": "tr",
		"pricing": {"alpha": "-3.0", "k": "5.0", "beta": "0.8", "floorPrice": "2.0",
			"totalSupply": "1000000", "remainingSupply": "250000"},
		"maxPurchase": "100000", "mintCap": "2000000",
		"vesting": {"durationMin": 100, "durationMax": 1000}
	}`)
	launch, err := Parse(withRemaining)
	require.NoError(t, err)
	assert.Zero(t, launch.Config.Pricing.RemainingSupply.Cmp(big.NewInt(250_000)))
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"not json", `{"admin": `},
		{"missing treasury", `{"admin": "a", "launchContract": "l", "token": "t"}`},
		{"missing alpha", `{
			"admin": "a", "launchContract": "l", "token": "t", "treasury": "tr",
			"pricing": {"k": "5.0", "beta": "0.8", "floorPrice": "2.0", "totalSupply": "1000000"},
			"maxPurchase": "1", "mintCap": "1"}`},
		{"positive alpha", `{
			"admin": "a", "launchContract": "l", "token": "t", "treasury": "tr",
			"pricing": {"alpha": "3.0", "k": "5.0", "beta": "0.8", "floorPrice": "2.0", "totalSupply": "1000000"},
			"maxPurchase": "1", "mintCap": "1"}`},
		{"garbage supply", `{
			"admin": "a", "launchContract": "l", "token": "t", "treasury": "tr",
			"pricing": {"alpha": "-3.0", "k": "5.0", "beta": "0.8", "floorPrice": "2.0", "totalSupply": "lots"},
			"maxPurchase": "1", "mintCap": "1"}`},
		{"fee above maximum", `{
			"admin": "a", "launchContract": "l", "token": "t", "treasury": "tr",
			"pricing": {"alpha": "-3.0", "k": "5.0", "beta": "0.8", "floorPrice": "2.0", "totalSupply": "1000000"},
			"maxPurchase": "1", "feeNumerator": 999999999, "mintCap": "1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.json))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.json")
	require.NoError(t, os.WriteFile(path, []byte(validLaunchJSON), 0o644))

	launch, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, shared.Address("token-addr"), launch.Token)

	_, err = Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
