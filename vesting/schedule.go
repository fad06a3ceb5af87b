package vesting

import (
	"math/big"

	"github.com/launchvest/launchvest-go/shared"
)

// Schedule grants a user the right to transfer a linearly growing fraction
// of TotalAmount over Duration seconds. TransferredAmount only ever
// increases, and only through Ledger.RecordTransfer.
type Schedule struct {
	ID                uint64
	Token             shared.Address
	User              shared.Address
	StartTime         int64
	CliffDuration     int64
	Duration          int64
	TotalAmount       *big.Int
	TransferredAmount *big.Int
}

// VestedAmount evaluates the vesting curve at time t.
//
// Before the cliff nothing is vested. The cliff gates onset only: once
// past it, the linear ramp is evaluated from StartTime, not from cliff
// end, so passing the cliff releases everything accrued since the start.
// Division truncates toward zero.
func (s *Schedule) VestedAmount(t int64) *big.Int {
	if t < s.StartTime+s.CliffDuration {
		return new(big.Int)
	}
	if t >= s.StartTime+s.Duration {
		return new(big.Int).Set(s.TotalAmount)
	}
	elapsed := big.NewInt(t - s.StartTime)
	vested := new(big.Int).Mul(s.TotalAmount, elapsed)
	return vested.Div(vested, big.NewInt(s.Duration))
}

// Available is the vested-but-untransferred capacity at time t.
func (s *Schedule) Available(t int64) *big.Int {
	vested := s.VestedAmount(t)
	avail := vested.Sub(vested, s.TransferredAmount)
	if avail.Sign() < 0 {
		return new(big.Int)
	}
	return avail
}

func (s *Schedule) clone() *Schedule {
	c := *s
	c.TotalAmount = new(big.Int).Set(s.TotalAmount)
	c.TransferredAmount = new(big.Int).Set(s.TransferredAmount)
	return &c
}

// TokenVestingConfig is the per-token registration: the duration window new
// schedules must fall in, an optional total supply cap enforced by the
// token ledger, and the launch contract allowed to create schedules.
type TokenVestingConfig struct {
	DurationMin    int64
	DurationMax    int64
	TotalSupplyCap *big.Int
	LaunchContract shared.Address
}

func (c *TokenVestingConfig) validate() error {
	if c.DurationMin <= 0 {
		return &InvalidConfigError{Param: "durationMin", Reason: "must be positive"}
	}
	if c.DurationMax < c.DurationMin {
		return &InvalidConfigError{Param: "durationMax", Reason: "must be >= durationMin"}
	}
	if c.TotalSupplyCap != nil && c.TotalSupplyCap.Sign() < 0 {
		return &InvalidConfigError{Param: "totalSupplyCap", Reason: "must be non-negative"}
	}
	return nil
}
