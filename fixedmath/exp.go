package fixedmath

import "math/big"

// ln(2) in Q64.64 (0xB17217F7D1CF79AB).
var ln2Q64 = bigIntFromString("12786308645202655659")

const (
	// MaxExpArg bounds the Exp domain to x <= 64 (Q64 scale). exp(64) is
	// around 6.2e27, which keeps every downstream Q64 product well inside
	// big.Int territory while still saturating any realistic premium.
	maxExpShift = 64

	// expTaylorTerms is the Taylor series depth for the fractional part.
	// The remainder term (ln2)^19/19! is below 8e-21, so the relative
	// error of Exp is dominated by Q64 truncation (about 5e-20 per term),
	// comfortably inside a 1e-15 relative-error budget.
	expTaylorTerms = 18
)

// MaxExpArg is the largest argument Exp accepts, in Q64 scale.
var MaxExpArg = new(big.Int).Lsh(big.NewInt(maxExpShift), Resolution)

func bigIntFromString(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixedmath: bad integer literal " + s)
	}
	return v
}

// Exp computes e^x for a signed Q64 argument x, returning a Q64 result.
// Range reduction splits x = n*ln2 + f with f in [0, ln2); the fractional
// factor is a Taylor sum and the 2^n factor is an exact shift. Arguments
// above MaxExpArg fail with ErrExpOverflow; negative arguments go through
// the reciprocal.
func Exp(x *big.Int) (*big.Int, error) {
	if x.Sign() == 0 {
		return new(big.Int).Set(One), nil
	}
	if x.Sign() < 0 {
		pos, err := Exp(new(big.Int).Neg(x))
		if err != nil {
			return nil, err
		}
		sq := new(big.Int).Mul(One, One)
		return new(big.Int).Div(sq, pos), nil
	}
	if x.Cmp(MaxExpArg) > 0 {
		return nil, ErrExpOverflow
	}

	n := new(big.Int).Div(x, ln2Q64)
	f := new(big.Int).Mod(x, ln2Q64)

	// Taylor sum of e^f: 1 + f + f^2/2! + ...
	sum := new(big.Int).Set(One)
	term := new(big.Int).Set(One)
	for k := int64(1); k <= expTaylorTerms; k++ {
		term = MulShr(term, f, Resolution)
		term = new(big.Int).Div(term, big.NewInt(k))
		if term.Sign() == 0 {
			break
		}
		sum = new(big.Int).Add(sum, term)
	}

	return new(big.Int).Lsh(sum, uint(n.Uint64())), nil
}

// ExpClamped is Exp with the argument saturated at MaxExpArg instead of
// failing. Used where a smoothly saturating curve is wanted (size premiums
// near supply exhaustion).
func ExpClamped(x *big.Int) (*big.Int, error) {
	if x.Cmp(MaxExpArg) > 0 {
		return Exp(MaxExpArg)
	}
	return Exp(x)
}
