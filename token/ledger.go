// Package token is a minimal fungible-token ledger whose only purpose is
// to exercise the vesting hook contract: every transfer from a restricted
// holder runs the allow-then-record pair against the vesting ledger inside
// the same atomic operation. It is deliberately not a general ERC20.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/holiman/uint256"

	"github.com/launchvest/launchvest-go/shared"
)

var (
	ErrNotMinter     = errors.New("token: caller is not a minter")
	ErrOverflow      = errors.New("token: amount overflows uint256")
	ErrZeroAddress   = errors.New("token: zero address")
	ErrInvalidAmount = errors.New("token: amount must be positive")
)

// InsufficientBalanceError reports balance versus requested amount.
type InsufficientBalanceError struct {
	Holder    shared.Address
	Balance   *big.Int
	Requested *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("token: %s holds %s, requested %s", e.Holder, e.Balance, e.Requested)
}

// SupplyCapError rejects minting beyond the configured total supply cap.
type SupplyCapError struct {
	Requested *big.Int
	Available *big.Int
}

func (e *SupplyCapError) Error() string {
	return fmt.Sprintf("token: mint of %s exceeds supply cap headroom %s", e.Requested, e.Available)
}

// RestrictedError rejects a transfer of unvested tokens.
type RestrictedError struct {
	Holder shared.Address
	Amount *big.Int
}

func (e *RestrictedError) Error() string {
	return fmt.Sprintf("token: %s may not transfer %s unvested tokens", e.Holder, e.Amount)
}

// Restrictor is the narrow two-call contract into the vesting ledger.
// The token ledger has no further visibility into vesting internals.
type Restrictor interface {
	IsTransferAllowed(sender shared.Address, amount *big.Int, token shared.Address) bool
	RecordTransfer(caller, sender shared.Address, amount *big.Int, token shared.Address) error
}

// Ledger is the balance book for one token.
type Ledger struct {
	mu sync.Mutex

	addr        shared.Address
	balances    map[shared.Address]*uint256.Int
	totalSupply *uint256.Int
	supplyCap   *uint256.Int // nil means uncapped

	restrictor Restrictor
	exempt     map[shared.Address]bool
	minters    map[shared.Address]bool
}

// New creates the ledger for token addr. supplyCap may be nil. minter is
// granted the initial mint permission.
func New(addr shared.Address, supplyCap *big.Int, minter shared.Address) (*Ledger, error) {
	if addr.IsZero() {
		return nil, ErrZeroAddress
	}
	l := &Ledger{
		addr:        addr,
		balances:    make(map[shared.Address]*uint256.Int),
		totalSupply: uint256.NewInt(0),
		exempt:      make(map[shared.Address]bool),
		minters:     map[shared.Address]bool{minter: true},
	}
	if supplyCap != nil {
		capped, overflow := uint256.FromBig(supplyCap)
		if overflow {
			return nil, ErrOverflow
		}
		l.supplyCap = capped
	}
	return l, nil
}

// Address is the token's ledger identity, used as the hook caller.
func (l *Ledger) Address() shared.Address {
	return l.addr
}

// SetRestrictor installs the vesting hook. Transfers from non-exempt
// holders consult it from then on.
func (l *Ledger) SetRestrictor(r Restrictor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.restrictor = r
}

// SetExempt marks an address whose outgoing transfers bypass the hook
// (treasury, the sale contract itself).
func (l *Ledger) SetExempt(addr shared.Address, exempt bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exempt[addr] = exempt
}

// GrantMinter allows addr to mint.
func (l *Ledger) GrantMinter(addr shared.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minters[addr] = true
}

// Mint issues new tokens to a holder, bounded by the supply cap.
func (l *Ledger) Mint(to shared.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mintLocked(to, amount, true)
}

// MintFrom is Mint with an explicit caller identity check.
func (l *Ledger) MintFrom(caller, to shared.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mintLocked(to, amount, l.minters[caller])
}

func (l *Ledger) mintLocked(to shared.Address, amount *big.Int, authorized bool) error {
	if !authorized {
		return ErrNotMinter
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	v, err := toU256(amount)
	if err != nil {
		return err
	}
	if v.IsZero() {
		return ErrInvalidAmount
	}

	next := new(uint256.Int).Add(l.totalSupply, v)
	if l.supplyCap != nil && next.Gt(l.supplyCap) {
		headroom := new(uint256.Int).Sub(l.supplyCap, l.totalSupply)
		return &SupplyCapError{Requested: shared.CloneBig(amount), Available: headroom.ToBig()}
	}

	l.totalSupply = next
	l.credit(to, v)
	return nil
}

// Burn removes previously minted tokens from a holder. It exists so the
// sale can reverse its own mint when a later purchase step fails.
func (l *Ledger) Burn(from shared.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if from.IsZero() {
		return ErrZeroAddress
	}
	v, err := toU256(amount)
	if err != nil {
		return err
	}
	if v.IsZero() {
		return ErrInvalidAmount
	}

	balance := l.balances[from]
	if balance == nil || balance.Lt(v) {
		bal := new(big.Int)
		if balance != nil {
			bal = balance.ToBig()
		}
		return &InsufficientBalanceError{Holder: from, Balance: bal, Requested: shared.CloneBig(amount)}
	}

	balance.Sub(balance, v)
	l.totalSupply.Sub(l.totalSupply, v)
	return nil
}

// Transfer moves amount from one holder to another, enforcing the vesting
// restriction for non-exempt senders. The allow check and the record call
// run under the same lock as the balance movement, so there is no window
// between certifying capacity and consuming it.
func (l *Ledger) Transfer(from, to shared.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	v, err := toU256(amount)
	if err != nil {
		return err
	}
	if v.IsZero() {
		return ErrInvalidAmount
	}

	balance := l.balances[from]
	if balance == nil || balance.Lt(v) {
		bal := new(big.Int)
		if balance != nil {
			bal = balance.ToBig()
		}
		return &InsufficientBalanceError{Holder: from, Balance: bal, Requested: shared.CloneBig(amount)}
	}

	if l.restrictor != nil && !l.exempt[from] {
		if !l.restrictor.IsTransferAllowed(from, amount, l.addr) {
			return &RestrictedError{Holder: from, Amount: shared.CloneBig(amount)}
		}
		if err := l.restrictor.RecordTransfer(l.addr, from, amount, l.addr); err != nil {
			// Unreachable when the allow check passed, but the record
			// call is the source of truth: fail without moving funds.
			return err
		}
	}

	balance.Sub(balance, v)
	l.credit(to, v)
	return nil
}

// BalanceOf returns a holder's balance.
func (l *Ledger) BalanceOf(addr shared.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b := l.balances[addr]; b != nil {
		return b.ToBig()
	}
	return new(big.Int)
}

// TotalSupply returns cumulative issuance.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalSupply.ToBig()
}

func (l *Ledger) credit(to shared.Address, v *uint256.Int) {
	if l.balances[to] == nil {
		l.balances[to] = uint256.NewInt(0)
	}
	l.balances[to].Add(l.balances[to], v)
}

func toU256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}
