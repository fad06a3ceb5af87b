// Package config loads launch configuration from JSON files. Curve
// parameters are written as decimal strings in human units and converted
// to the Q64 scale the pricing engine works in.
package config

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/launchvest/launchvest-go/curve"
	"github.com/launchvest/launchvest-go/distribution"
	"github.com/launchvest/launchvest-go/shared"
)

// Launch is a fully parsed launch description: the participating addresses
// plus the controller configuration.
type Launch struct {
	Admin    shared.Address
	Self     shared.Address
	Token    shared.Address
	Treasury shared.Address

	Config *distribution.LaunchConfig
}

// Load reads and parses the launch file at path.
func Load(path string) (*Launch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read launch file")
	}
	return Parse(data)
}

// Parse parses a launch description from JSON bytes.
func Parse(data []byte) (*Launch, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("launch file is not valid JSON")
	}

	launch := &Launch{
		Admin:    address(data, "admin"),
		Self:     address(data, "launchContract"),
		Token:    address(data, "token"),
		Treasury: address(data, "treasury"),
	}
	for _, f := range []struct {
		name string
		addr shared.Address
	}{
		{"admin", launch.Admin},
		{"launchContract", launch.Self},
		{"token", launch.Token},
		{"treasury", launch.Treasury},
	} {
		if f.addr.IsZero() {
			return nil, errors.Errorf("missing required address %q", f.name)
		}
	}

	pricing := &curve.PricingConfig{}
	for _, f := range []struct {
		path string
		dst  **big.Int
	}{
		{"pricing.alpha", &pricing.Alpha},
		{"pricing.k", &pricing.K},
		{"pricing.beta", &pricing.Beta},
		{"pricing.floorPrice", &pricing.FloorPrice},
	} {
		v, err := q64Field(data, f.path)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	total, err := intField(data, "pricing.totalSupply")
	if err != nil {
		return nil, err
	}
	pricing.TotalDistributionSupply = total
	pricing.RemainingSupply = new(big.Int).Set(total)
	if r := gjson.GetBytes(data, "pricing.remainingSupply"); r.Exists() {
		remaining, err := intField(data, "pricing.remainingSupply")
		if err != nil {
			return nil, err
		}
		pricing.RemainingSupply = remaining
	}
	if err := pricing.Validate(); err != nil {
		return nil, err
	}

	maxPurchase, err := intField(data, "maxPurchase")
	if err != nil {
		return nil, err
	}
	mintCap, err := intField(data, "mintCap")
	if err != nil {
		return nil, err
	}

	fee := gjson.GetBytes(data, "feeNumerator")
	if fee.Exists() && fee.Uint() > shared.MaxFeeNumerator {
		return nil, errors.Errorf("feeNumerator %d above maximum %d", fee.Uint(), shared.MaxFeeNumerator)
	}

	launch.Config = &distribution.LaunchConfig{
		Pricing:            pricing,
		MaxPurchaseAmount:  maxPurchase,
		Treasury:           launch.Treasury,
		FeeNumerator:       fee.Uint(),
		MintCap:            mintCap,
		TotalMinted:        new(big.Int),
		VestingDurationMin: gjson.GetBytes(data, "vesting.durationMin").Int(),
		VestingDurationMax: gjson.GetBytes(data, "vesting.durationMax").Int(),
		VestingCliff:       gjson.GetBytes(data, "vesting.cliff").Int(),
	}
	return launch, nil
}

func address(data []byte, path string) shared.Address {
	return shared.Address(gjson.GetBytes(data, path).String())
}

// q64Field parses a decimal-string field into the Q64 scale.
func q64Field(data []byte, path string) (*big.Int, error) {
	r := gjson.GetBytes(data, path)
	if !r.Exists() {
		return nil, errors.Errorf("missing required field %q", path)
	}
	d, err := decimal.NewFromString(r.String())
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", path)
	}
	return curve.DecimalToQ64(d), nil
}

// intField parses an integer field that may exceed 64 bits, given either
// as a JSON number or a decimal string.
func intField(data []byte, path string) (*big.Int, error) {
	r := gjson.GetBytes(data, path)
	if !r.Exists() {
		return nil, errors.Errorf("missing required field %q", path)
	}
	v, ok := new(big.Int).SetString(r.String(), 10)
	if !ok {
		return nil, errors.Errorf("field %q: bad integer %q", path, r.String())
	}
	return v, nil
}
