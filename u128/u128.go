// Package u128 bridges big.Int values and the 128-bit little-endian
// integers carried in borsh state snapshots.
package u128

import (
	"errors"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
)

var ErrOutOfRange = errors.New("u128: value out of range")

type Uint128 = binary.Uint128

// FromBig converts a non-negative big.Int into a Uint128. nil maps to zero.
func FromBig(v *big.Int) (Uint128, error) {
	out := *binary.NewUint128LittleEndian()
	if v == nil {
		return out, nil
	}
	if v.Sign() < 0 || v.BitLen() > 128 {
		return out, ErrOutOfRange
	}
	out.Lo = v.Uint64()
	out.Hi = new(big.Int).Rsh(v, 64).Uint64()
	return out, nil
}

// MustFromBig is FromBig for values known to fit.
func MustFromBig(v *big.Int) Uint128 {
	out, err := FromBig(v)
	if err != nil {
		panic(fmt.Sprintf("u128: %v", err))
	}
	return out
}

// ToBig converts a Uint128 back into a big.Int.
func ToBig(v Uint128) *big.Int {
	return v.BigInt()
}

// FromString parses a decimal string into a Uint128.
func FromString(s string) (Uint128, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return *binary.NewUint128LittleEndian(), fmt.Errorf("u128: bad integer literal %q", s)
	}
	return FromBig(v)
}
