// Package curve implements the supply-based pricing engine for a token
// distribution: a base price that rises exponentially as remaining supply is
// consumed, a size premium that grows with purchase size and supply scarcity,
// and the currency-to-tokens inverse used for value-denominated purchases.
//
// Everything in this package is pure: functions take a config snapshot and
// return fresh values, never touching shared state.
package curve

import (
	"fmt"
	"math/big"

	"github.com/launchvest/launchvest-go/fixedmath"
)

var (
	// MinAlpha bounds the decay coefficient to [-32, 0) in Q64. Steeper
	// decay than e^32 between floor and exhaustion has no practical use
	// and risks exceeding the exp domain once combined with the premium.
	MinAlpha = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(32), fixedmath.Resolution))

	// MaxK bounds the premium intensity to 1000.0 in Q64.
	MaxK = new(big.Int).Lsh(big.NewInt(1000), fixedmath.Resolution)
)

// PricingConfig is the immutable snapshot the engine prices against.
// Alpha, K and Beta are Q64 fixed point; FloorPrice is a Q64 price in
// currency base units per token; the supply counters are plain integers.
type PricingConfig struct {
	Alpha      *big.Int // signed, must be negative
	K          *big.Int // unsigned premium intensity
	Beta       *big.Int // supply sensitivity of the premium, in [0, 1.0]
	FloorPrice *big.Int // Q64 price when remaining == total

	TotalDistributionSupply *big.Int
	RemainingSupply         *big.Int
}

// InvalidParameterError reports an out-of-range pricing parameter. The
// engine fails fast rather than clamping.
type InvalidParameterError struct {
	Name   string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Name, e.Reason)
}

// Validate checks every parameter bound. Callers mutating a live config
// must re-validate before pricing against it.
func (c *PricingConfig) Validate() error {
	switch {
	case c.Alpha == nil || c.Alpha.Sign() >= 0:
		return &InvalidParameterError{Name: "alpha", Reason: "must be negative"}
	case c.Alpha.Cmp(MinAlpha) < 0:
		return &InvalidParameterError{Name: "alpha", Reason: "below minimum decay coefficient"}
	case c.K == nil || c.K.Sign() < 0:
		return &InvalidParameterError{Name: "k", Reason: "must be non-negative"}
	case c.K.Cmp(MaxK) > 0:
		return &InvalidParameterError{Name: "k", Reason: "above maximum premium intensity"}
	case c.Beta == nil || c.Beta.Sign() < 0 || c.Beta.Cmp(fixedmath.One) > 0:
		return &InvalidParameterError{Name: "beta", Reason: "must be within [0, 1.0]"}
	case c.FloorPrice == nil || c.FloorPrice.Sign() <= 0:
		return &InvalidParameterError{Name: "floorPrice", Reason: "must be positive"}
	case c.TotalDistributionSupply == nil || c.TotalDistributionSupply.Sign() <= 0:
		return &InvalidParameterError{Name: "totalDistributionSupply", Reason: "must be positive"}
	case c.RemainingSupply == nil || c.RemainingSupply.Sign() < 0:
		return &InvalidParameterError{Name: "remainingSupply", Reason: "must be non-negative"}
	case c.RemainingSupply.Cmp(c.TotalDistributionSupply) > 0:
		return &InvalidParameterError{Name: "remainingSupply", Reason: "exceeds totalDistributionSupply"}
	}
	return nil
}

// Clone returns a deep copy, so a snapshot can outlive controller mutations.
func (c *PricingConfig) Clone() *PricingConfig {
	return &PricingConfig{
		Alpha:                   new(big.Int).Set(c.Alpha),
		K:                       new(big.Int).Set(c.K),
		Beta:                    new(big.Int).Set(c.Beta),
		FloorPrice:              new(big.Int).Set(c.FloorPrice),
		TotalDistributionSupply: new(big.Int).Set(c.TotalDistributionSupply),
		RemainingSupply:         new(big.Int).Set(c.RemainingSupply),
	}
}
