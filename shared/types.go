package shared

import "math/big"

// Address identifies an account, token, or contract on the ledger.
// Addresses are opaque identifiers; the zero value is never a valid target.
type Address string

const ZeroAddress Address = ""

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}

const (
	// FeeDenominator is the resolution of fee fractions. A fee numerator of
	// 10_000_000 over this denominator is a 1% fee.
	FeeDenominator = 1_000_000_000

	MaxBasisPoint = 10_000

	// MaxFeeNumerator caps the transaction fee at 99%.
	MaxFeeNumerator = 990_000_000
)

// CloneBig returns a defensive copy of v, treating nil as zero.
func CloneBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
