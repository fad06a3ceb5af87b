package curve

import (
	"math/big"

	"github.com/launchvest/launchvest-go/fixedmath"
)

// CostBreakdown is the full pricing result for one purchase. BasePrice and
// Premium are Q64; BaseCost and FinalCost are integer currency base units,
// both rounded up so a buyer can never underpay through truncation.
type CostBreakdown struct {
	BasePrice *big.Int
	Premium   *big.Int
	BaseCost  *big.Int
	FinalCost *big.Int
}

// BasePrice returns the current per-token price in Q64.
//
// With depletion d = (total-remaining)/total the price is
// floorPrice * e^(-alpha*d). Alpha is negative, so the exponent is >= 0:
// the price sits exactly at the floor when nothing has sold and rises
// monotonically and convexly to floorPrice * e^|alpha| at exhaustion.
func BasePrice(config *PricingConfig) (*big.Int, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sold := new(big.Int).Sub(config.TotalDistributionSupply, config.RemainingSupply)
	depletion, err := fixedmath.MulDiv(sold, fixedmath.One, config.TotalDistributionSupply, fixedmath.RoundingDown)
	if err != nil {
		return nil, err
	}

	negAlpha := new(big.Int).Neg(config.Alpha)
	exponent, err := fixedmath.MulDiv(negAlpha, depletion, fixedmath.One, fixedmath.RoundingDown)
	if err != nil {
		return nil, err
	}

	growth, err := fixedmath.Exp(exponent)
	if err != nil {
		return nil, err
	}
	return fixedmath.MulDiv(config.FloorPrice, growth, fixedmath.One, fixedmath.RoundingUp)
}

// Premium returns the size-premium multiplier in Q64, always >= 1.0 and
// strictly increasing in amount.
//
// The purchase size is measured against an effective supply that blends
// remaining and total supply by beta:
//
//	effective = beta*remaining + (1-beta)*total
//	premium   = e^(k * amount / effective)
//
// With beta near 1.0 the same amount produces a much steeper premium when
// remaining supply is scarce. The exponent saturates at the exp domain cap
// instead of overflowing as amount approaches the remaining supply.
func Premium(config *PricingConfig, amount *big.Int) (*big.Int, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, &InvalidParameterError{Name: "amount", Reason: "must be non-negative"}
	}
	if amount.Sign() == 0 || config.K.Sign() == 0 {
		return new(big.Int).Set(fixedmath.One), nil
	}

	weighted := new(big.Int).Mul(config.Beta, config.RemainingSupply)
	complement := new(big.Int).Sub(fixedmath.One, config.Beta)
	weighted.Add(weighted, new(big.Int).Mul(complement, config.TotalDistributionSupply))
	effective := new(big.Int).Rsh(weighted, fixedmath.Resolution)
	if effective.Sign() == 0 {
		// Fully scarcity-weighted and the supply is gone: saturate.
		return fixedmath.ExpClamped(fixedmath.MaxExpArg)
	}

	exponent, err := fixedmath.MulDiv(config.K, amount, effective, fixedmath.RoundingDown)
	if err != nil {
		return nil, err
	}
	return fixedmath.ExpClamped(exponent)
}

// TotalCost prices a purchase of amount tokens against the config snapshot.
// baseCost = ceil(basePrice*amount); finalCost = ceil(baseCost*premium).
func TotalCost(config *PricingConfig, amount *big.Int) (*CostBreakdown, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, &InvalidParameterError{Name: "amount", Reason: "must be positive"}
	}

	basePrice, err := BasePrice(config)
	if err != nil {
		return nil, err
	}
	premium, err := Premium(config, amount)
	if err != nil {
		return nil, err
	}

	baseCost, err := fixedmath.MulDiv(basePrice, amount, fixedmath.One, fixedmath.RoundingUp)
	if err != nil {
		return nil, err
	}
	finalCost, err := fixedmath.MulDiv(baseCost, premium, fixedmath.One, fixedmath.RoundingUp)
	if err != nil {
		return nil, err
	}

	return &CostBreakdown{
		BasePrice: basePrice,
		Premium:   premium,
		BaseCost:  baseCost,
		FinalCost: finalCost,
	}, nil
}

// TokensForCurrency returns the greatest integer token amount whose final
// cost does not exceed currencyAmount, capped at maxAmount when maxAmount
// is non-nil. Cost is strictly increasing in the amount, so a binary search
// over [0, cap] lands exactly on the frontier:
//
//	cost(n) <= currencyAmount < cost(n+1)
func TokensForCurrency(config *PricingConfig, currencyAmount, maxAmount *big.Int) (*big.Int, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if currencyAmount == nil || currencyAmount.Sign() < 0 {
		return nil, &InvalidParameterError{Name: "currencyAmount", Reason: "must be non-negative"}
	}

	hi := new(big.Int).Set(config.RemainingSupply)
	if maxAmount != nil && maxAmount.Sign() > 0 && maxAmount.Cmp(hi) < 0 {
		hi = new(big.Int).Set(maxAmount)
	}
	lo := big.NewInt(0)
	one := big.NewInt(1)
	two := big.NewInt(2)

	for lo.Cmp(hi) < 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Add(mid, one)
		mid.Div(mid, two)

		breakdown, err := TotalCost(config, mid)
		if err != nil {
			return nil, err
		}
		if breakdown.FinalCost.Cmp(currencyAmount) <= 0 {
			lo = mid
		} else {
			hi = new(big.Int).Sub(mid, one)
		}
	}
	return lo, nil
}

// VestingDuration maps remaining supply onto a vesting duration between
// durationMin and durationMax: fully stocked sells vest at the minimum,
// and as supply depletes the duration lengthens linearly toward the
// maximum, mirroring the pricing curve's scarcity sensitivity. The linear
// ramp here is deliberately independent of the premium's beta curve.
func VestingDuration(config *PricingConfig, durationMin, durationMax int64) (int64, error) {
	if err := config.Validate(); err != nil {
		return 0, err
	}
	if durationMin < 0 || durationMax < durationMin {
		return 0, &InvalidParameterError{Name: "duration", Reason: "require 0 <= durationMin <= durationMax"}
	}

	sold := new(big.Int).Sub(config.TotalDistributionSupply, config.RemainingSupply)
	span := big.NewInt(durationMax - durationMin)
	extra, err := fixedmath.MulDiv(span, sold, config.TotalDistributionSupply, fixedmath.RoundingDown)
	if err != nil {
		return 0, err
	}
	return durationMin + extra.Int64(), nil
}
