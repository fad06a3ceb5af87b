package curve

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/launchvest/launchvest-go/fixedmath"
)

var oneQ64Decimal = decimal.NewFromBigInt(fixedmath.One, 0)

// Q64ToDecimal converts a Q64 fixed-point value to a decimal for display.
func Q64ToDecimal(v *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(v, 0).DivRound(oneQ64Decimal, 18)
}

// DecimalToQ64 converts a decimal value into the Q64 scale, truncating any
// precision beyond 2^-64.
func DecimalToQ64(d decimal.Decimal) *big.Int {
	return d.Mul(oneQ64Decimal).BigInt()
}

// BasePriceDecimal is the human-unit view of the Q64 base price.
func (b *CostBreakdown) BasePriceDecimal() decimal.Decimal {
	return Q64ToDecimal(b.BasePrice)
}

// PremiumDecimal is the human-unit view of the Q64 premium multiplier.
func (b *CostBreakdown) PremiumDecimal() decimal.Decimal {
	return Q64ToDecimal(b.Premium)
}
