package distribution

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/launchvest/launchvest-go/shared"
)

var ErrPaused = errors.New("distribution: sale is paused")

// InvalidPhaseTransitionError rejects a transition that is not the single
// legal successor of the current phase.
type InvalidPhaseTransitionError struct {
	Current   Phase
	Requested Phase
}

func (e *InvalidPhaseTransitionError) Error() string {
	return fmt.Sprintf("distribution: invalid phase transition %s -> %s", e.Current, e.Requested)
}

// WrongPhaseError rejects an operation outside its required phase.
type WrongPhaseError struct {
	Current  Phase
	Required Phase
	Op       string
}

func (e *WrongPhaseError) Error() string {
	return fmt.Sprintf("distribution: %s requires phase %s, currently %s", e.Op, e.Required, e.Current)
}

// InsufficientPaymentError reports required versus provided value.
type InsufficientPaymentError struct {
	Required *big.Int
	Provided *big.Int
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("distribution: insufficient payment: required %s, provided %s", e.Required, e.Provided)
}

// ExceedsMaxPurchaseError rejects a purchase above the per-transaction cap.
type ExceedsMaxPurchaseError struct {
	Requested *big.Int
	Max       *big.Int
}

func (e *ExceedsMaxPurchaseError) Error() string {
	return fmt.Sprintf("distribution: requested %s exceeds max purchase %s", e.Requested, e.Max)
}

// InsufficientSupplyError rejects a purchase above the remaining supply.
type InsufficientSupplyError struct {
	Requested *big.Int
	Available *big.Int
}

func (e *InsufficientSupplyError) Error() string {
	return fmt.Sprintf("distribution: requested %s exceeds remaining supply %s", e.Requested, e.Available)
}

// InsufficientMintCapacityError rejects issuance beyond the mint cap.
type InsufficientMintCapacityError struct {
	Requested *big.Int
	Available *big.Int
}

func (e *InsufficientMintCapacityError) Error() string {
	return fmt.Sprintf("distribution: requested %s exceeds mint capacity %s", e.Requested, e.Available)
}

// ZeroAddressError rejects the zero address in an address-typed setter.
type ZeroAddressError struct {
	Param string
}

func (e *ZeroAddressError) Error() string {
	return fmt.Sprintf("distribution: %s must not be the zero address", e.Param)
}

// NotAuthorizedError rejects a caller lacking the required capability.
type NotAuthorizedError struct {
	Caller     shared.Address
	Capability Capability
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("distribution: caller %s lacks capability %s", e.Caller, e.Capability)
}

// TransferFailedError wraps a fatal value-movement failure. A failed
// primary payment aborts the whole purchase; only refund failures are
// non-fatal (they degrade to a RefundFailed event plus the sweep path).
type TransferFailedError struct {
	To  shared.Address
	Err error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("distribution: value transfer to %s failed: %v", e.To, e.Err)
}

func (e *TransferFailedError) Unwrap() error {
	return e.Err
}
