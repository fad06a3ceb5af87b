package distribution

import (
	"math/big"

	"github.com/launchvest/launchvest-go/curve"
	"github.com/launchvest/launchvest-go/shared"
)

// LaunchConfig aggregates the pricing configuration with the sale-level
// limits and destinations. TotalMinted never exceeds MintCap; MintCap only
// ever increases.
type LaunchConfig struct {
	Pricing *curve.PricingConfig

	MaxPurchaseAmount *big.Int
	Treasury          shared.Address

	// FeeNumerator over shared.FeeDenominator is the transaction fee
	// charged on top of the curve cost.
	FeeNumerator uint64

	MintCap     *big.Int
	TotalMinted *big.Int

	// Vesting window for purchase-created schedules. The effective
	// duration scales between min and max with supply depletion; the
	// cliff applies unchanged to every schedule.
	VestingDurationMin int64
	VestingDurationMax int64
	VestingCliff       int64
}

func (c *LaunchConfig) validate() error {
	if c.Pricing == nil {
		return &curve.InvalidParameterError{Name: "pricing", Reason: "missing"}
	}
	if err := c.Pricing.Validate(); err != nil {
		return err
	}
	if c.MaxPurchaseAmount == nil || c.MaxPurchaseAmount.Sign() <= 0 {
		return &curve.InvalidParameterError{Name: "maxPurchaseAmount", Reason: "must be positive"}
	}
	if c.Treasury.IsZero() {
		return &ZeroAddressError{Param: "treasury"}
	}
	if c.FeeNumerator > shared.MaxFeeNumerator {
		return &curve.InvalidParameterError{Name: "transactionFee", Reason: "above maximum"}
	}
	if c.MintCap == nil || c.MintCap.Sign() <= 0 {
		return &curve.InvalidParameterError{Name: "mintCap", Reason: "must be positive"}
	}
	if c.TotalMinted == nil {
		c.TotalMinted = new(big.Int)
	}
	if c.TotalMinted.Cmp(c.MintCap) > 0 {
		return &curve.InvalidParameterError{Name: "totalMinted", Reason: "exceeds mintCap"}
	}
	if c.VestingDurationMin <= 0 || c.VestingDurationMax < c.VestingDurationMin {
		return &curve.InvalidParameterError{Name: "vestingDuration", Reason: "require 0 < min <= max"}
	}
	if c.VestingCliff < 0 || c.VestingCliff >= c.VestingDurationMin {
		return &curve.InvalidParameterError{Name: "vestingCliff", Reason: "must be within [0, durationMin)"}
	}
	return nil
}

// Minter issues tokens into a buyer's balance. Burn reverses a mint the
// controller itself performed, used to unwind a purchase whose vesting
// schedule could not be created.
type Minter interface {
	Mint(to shared.Address, amount *big.Int) error
	Burn(from shared.Address, amount *big.Int) error
}

// ValueLedger moves tendered currency. Transfers to buyers (refunds) may
// fail without corrupting the sale; transfers to the treasury are fatal
// when they fail.
type ValueLedger interface {
	Transfer(to shared.Address, amount *big.Int) error
}

// ScheduleCreator is the narrow slice of the vesting ledger the controller
// consumes.
type ScheduleCreator interface {
	CreateVestingSchedule(caller, token, user shared.Address, startTime, cliffDuration, duration int64, totalAmount *big.Int) (uint64, error)
}
