// Package fixedmath implements checked Q64.64 fixed-point arithmetic over
// big integers. All mutating helpers return fresh values; inputs are never
// modified.
package fixedmath

import (
	"errors"
	"math/big"
)

const (
	// Resolution is the number of fractional bits in the Q64.64 scale.
	Resolution = 64
)

// One is 1.0 in the Q64.64 scale.
var One = new(big.Int).Lsh(big.NewInt(1), Resolution)

type Rounding uint8

const (
	RoundingUp   Rounding = 0
	RoundingDown Rounding = 1
)

var (
	ErrDivisionByZero      = errors.New("fixedmath: division by zero")
	ErrSubtractionOverflow = errors.New("fixedmath: subtraction overflow")
	ErrExpOverflow         = errors.New("fixedmath: exp argument out of domain")
)

func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// Sub returns a-b, failing if the result would be negative.
func Sub(a, b *big.Int) (*big.Int, error) {
	if b.Cmp(a) > 0 {
		return nil, ErrSubtractionOverflow
	}
	return new(big.Int).Sub(a, b), nil
}

func Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

func Div(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	return new(big.Int).Div(a, b), nil
}

// MulDiv returns x*y/denominator with the requested rounding direction.
func MulDiv(x, y, denominator *big.Int, rounding Rounding) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	prod := new(big.Int).Mul(x, y)
	if rounding == RoundingUp {
		numerator := new(big.Int).Add(prod, new(big.Int).Sub(denominator, big.NewInt(1)))
		return new(big.Int).Div(numerator, denominator), nil
	}
	return new(big.Int).Div(prod, denominator), nil
}

// MulShr returns x*y >> offset, i.e. a Q64 multiply rounding toward zero.
func MulShr(x, y *big.Int, offset uint) *big.Int {
	if offset == 0 || x.Sign() == 0 || y.Sign() == 0 {
		return new(big.Int).Mul(x, y)
	}
	prod := new(big.Int).Mul(x, y)
	return new(big.Int).Rsh(prod, offset)
}

func Shl(a *big.Int, n uint) *big.Int {
	return new(big.Int).Lsh(a, n)
}

func Shr(a *big.Int, n uint) *big.Int {
	return new(big.Int).Rsh(a, n)
}

// Pow computes base^exponent where base is Q64 and exponent is a plain
// integer, by square-and-multiply in the Q64 scale. A negative exponent
// yields the reciprocal.
func Pow(base, exponent *big.Int) (*big.Int, error) {
	if exponent.Sign() == 0 {
		return new(big.Int).Set(One), nil
	}
	if base.Sign() == 0 {
		return big.NewInt(0), nil
	}

	isNegative := exponent.Sign() < 0
	exp := new(big.Int).Abs(exponent)

	result := new(big.Int).Set(One)
	currentBase := new(big.Int).Set(base)
	oneInt := big.NewInt(1)

	for exp.Sign() != 0 {
		if new(big.Int).And(exp, oneInt).Cmp(oneInt) == 0 {
			result = MulShr(result, currentBase, Resolution)
		}
		currentBase = MulShr(currentBase, currentBase, Resolution)
		exp = new(big.Int).Rsh(exp, 1)
	}

	if isNegative {
		if result.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		sq := new(big.Int).Mul(One, One)
		return new(big.Int).Div(sq, result), nil
	}
	return result, nil
}
