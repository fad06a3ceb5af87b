package distribution

import (
	"math/big"

	"github.com/launchvest/launchvest-go/curve"
	"github.com/launchvest/launchvest-go/eventlog"
	"github.com/launchvest/launchvest-go/shared"
)

// TokenMover moves balances of an arbitrary token, used only by the
// recovery path for assets mistakenly sent to the sale.
type TokenMover interface {
	TransferToken(token, to shared.Address, amount *big.Int) error
}

// UpdatePricingParameters swaps in new curve coefficients. Supply counters
// are not touched; the new parameters must validate against them.
func (c *Controller) UpdatePricingParameters(caller shared.Address, alpha, k, beta, floorPrice *big.Int) error {
	if err := c.authority.require(caller, CapConfig); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.config.Pricing.Clone()
	next.Alpha = shared.CloneBig(alpha)
	next.K = shared.CloneBig(k)
	next.Beta = shared.CloneBig(beta)
	next.FloorPrice = shared.CloneBig(floorPrice)
	if err := next.Validate(); err != nil {
		return err
	}

	c.config.Pricing = next
	attrs := map[string]string{}
	attrsBig(attrs, "alpha", next.Alpha)
	attrsBig(attrs, "k", next.K)
	attrsBig(attrs, "beta", next.Beta)
	attrsBig(attrs, "floorPrice", next.FloorPrice)
	c.events.Emit(eventlog.EventPricingUpdated, attrs)
	return nil
}

// SetMaxPurchaseAmount updates the per-transaction cap.
func (c *Controller) SetMaxPurchaseAmount(caller shared.Address, max *big.Int) error {
	if err := c.authority.require(caller, CapConfig); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if max == nil || max.Sign() <= 0 {
		return &curve.InvalidParameterError{Name: "maxPurchaseAmount", Reason: "must be positive"}
	}
	c.config.MaxPurchaseAmount = new(big.Int).Set(max)
	c.events.Emit(eventlog.EventMaxPurchaseUpdated, attrsBig(map[string]string{}, "max", max))
	return nil
}

// SetTreasury redirects future payments.
func (c *Controller) SetTreasury(caller, treasury shared.Address) error {
	if err := c.authority.require(caller, CapConfig); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if treasury.IsZero() {
		return &ZeroAddressError{Param: "treasury"}
	}
	c.config.Treasury = treasury
	c.events.Emit(eventlog.EventTreasuryUpdated, map[string]string{"treasury": treasury.String()})
	return nil
}

// SetTransactionFee updates the fee numerator (over shared.FeeDenominator).
func (c *Controller) SetTransactionFee(caller shared.Address, numerator uint64) error {
	if err := c.authority.require(caller, CapConfig); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if numerator > shared.MaxFeeNumerator {
		return &curve.InvalidParameterError{Name: "transactionFee", Reason: "above maximum"}
	}
	c.config.FeeNumerator = numerator
	c.events.Emit(eventlog.EventFeeUpdated, attrsInt(map[string]string{}, "numerator", int64(numerator)))
	return nil
}

// IncreaseMintCap raises the issuance ceiling. The cap only moves up.
func (c *Controller) IncreaseMintCap(caller shared.Address, newCap *big.Int) error {
	if err := c.authority.require(caller, CapMinter); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if newCap == nil || newCap.Cmp(c.config.MintCap) <= 0 {
		return &curve.InvalidParameterError{Name: "mintCap", Reason: "must exceed the current cap"}
	}
	c.config.MintCap = new(big.Int).Set(newCap)
	c.events.Emit(eventlog.EventMintCapUpdated, attrsBig(map[string]string{}, "mintCap", newCap))
	return nil
}

// AdminMint issues tokens outside the sale, still bounded by the mint cap.
// No vesting schedule is attached; restricted tokens stay untransferable
// until the recipient holds vested capacity.
func (c *Controller) AdminMint(caller, to shared.Address, amount *big.Int) error {
	if err := c.authority.require(caller, CapMinter); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if to.IsZero() {
		return &ZeroAddressError{Param: "to"}
	}
	if amount == nil || amount.Sign() <= 0 {
		return &curve.InvalidParameterError{Name: "amount", Reason: "must be positive"}
	}
	mintable := new(big.Int).Sub(c.config.MintCap, c.config.TotalMinted)
	if amount.Cmp(mintable) > 0 {
		return &InsufficientMintCapacityError{Requested: shared.CloneBig(amount), Available: mintable}
	}
	if err := c.minter.Mint(to, amount); err != nil {
		return err
	}
	c.config.TotalMinted.Add(c.config.TotalMinted, amount)

	attrs := map[string]string{"to": to.String()}
	c.events.Emit(eventlog.EventAdminMint, attrsBig(attrs, "amount", amount))
	return nil
}

// Pause halts purchases. Phase transitions and administration stay live.
func (c *Controller) Pause(caller shared.Address) error {
	if err := c.authority.require(caller, CapPauser); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paused = true
	c.events.Emit(eventlog.EventPaused, nil)
	return nil
}

// Unpause resumes purchases.
func (c *Controller) Unpause(caller shared.Address) error {
	if err := c.authority.require(caller, CapPauser); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paused = false
	c.events.Emit(eventlog.EventUnpaused, nil)
	return nil
}

// RecoverTokens returns foreign tokens mistakenly sent to the sale.
func (c *Controller) RecoverTokens(caller shared.Address, mover TokenMover, token, to shared.Address, amount *big.Int) error {
	if err := c.authority.require(caller, CapRecovery); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if to.IsZero() {
		return &ZeroAddressError{Param: "to"}
	}
	if amount == nil || amount.Sign() <= 0 {
		return &curve.InvalidParameterError{Name: "amount", Reason: "must be positive"}
	}
	if err := mover.TransferToken(token, to, amount); err != nil {
		return &TransferFailedError{To: to, Err: err}
	}
	attrs := map[string]string{"token": token.String(), "to": to.String()}
	c.events.Emit(eventlog.EventTokenRecovered, attrsBig(attrs, "amount", amount))
	return nil
}

// SweepRetainedValue recovers refund value held back after failed refund
// transfers.
func (c *Controller) SweepRetainedValue(caller, to shared.Address) (*big.Int, error) {
	if err := c.authority.require(caller, CapRecovery); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if to.IsZero() {
		return nil, &ZeroAddressError{Param: "to"}
	}
	if c.retainedExcess.Sign() == 0 {
		return new(big.Int), nil
	}
	amount := new(big.Int).Set(c.retainedExcess)
	if err := c.value.Transfer(to, amount); err != nil {
		return nil, &TransferFailedError{To: to, Err: err}
	}
	c.retainedExcess.SetInt64(0)
	c.events.Emit(eventlog.EventValueSwept, attrsBig(map[string]string{"to": to.String()}, "amount", amount))
	return amount, nil
}
