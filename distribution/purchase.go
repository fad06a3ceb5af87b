package distribution

import (
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/launchvest/launchvest-go/curve"
	"github.com/launchvest/launchvest-go/eventlog"
	"github.com/launchvest/launchvest-go/fixedmath"
	"github.com/launchvest/launchvest-go/shared"
)

// Receipt reports an accepted purchase.
type Receipt struct {
	Buyer           shared.Address
	Amount          *big.Int
	BasePrice       *big.Int // Q64
	Premium         *big.Int // Q64
	BaseCost        *big.Int
	FinalCost       *big.Int
	Fee             *big.Int
	TotalCost       *big.Int // FinalCost + Fee
	Refund          *big.Int
	RefundFailed    bool
	VestingDuration int64
	ScheduleID      uint64
}

// PurchaseTokens buys an exact token amount, tendering value currency
// units. Excess value above cost+fee is refunded; a failed refund does not
// unwind the purchase (a refusing receiver must not be able to grief the
// sale): the excess is retained for SweepRetainedValue and a RefundFailed
// event is emitted.
func (c *Controller) PurchaseTokens(buyer shared.Address, tokenAmount, value *big.Int) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purchaseLocked(buyer, tokenAmount, value)
}

// PurchaseTokensWithValue buys the maximum whole-token amount affordable
// with value, refunding the remainder. The amount is the exact frontier:
// one more token would have cost more than was tendered.
func (c *Controller) PurchaseTokensWithValue(buyer shared.Address, value *big.Int) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.purchaseGateLocked(buyer, value); err != nil {
		return nil, err
	}

	amount, err := c.affordableLocked(value)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		required, rerr := c.costWithFeeLocked(big.NewInt(1))
		if rerr != nil {
			return nil, rerr
		}
		return nil, &InsufficientPaymentError{Required: required, Provided: shared.CloneBig(value)}
	}
	return c.purchaseLocked(buyer, amount, value)
}

// PreviewPurchase prices a token-amount purchase without mutating state.
// Returns the curve breakdown, the transaction fee, the total owed, and
// the vesting duration the purchase would carry.
func (c *Controller) PreviewPurchase(tokenAmount *big.Int) (*curve.CostBreakdown, *big.Int, *big.Int, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	breakdown, err := curve.TotalCost(c.config.Pricing, tokenAmount)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	fee, err := c.feeOn(breakdown.FinalCost)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	duration, err := curve.VestingDuration(c.config.Pricing, c.config.VestingDurationMin, c.config.VestingDurationMax)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	return breakdown, fee, new(big.Int).Add(breakdown.FinalCost, fee), duration, nil
}

// PreviewPurchaseWithValue reports the token amount a value-denominated
// purchase would buy and what it would actually cost.
func (c *Controller) PreviewPurchaseWithValue(value *big.Int) (*big.Int, *big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	amount, err := c.affordableLocked(value)
	if err != nil {
		return nil, nil, err
	}
	if amount.Sign() == 0 {
		return new(big.Int), new(big.Int), nil
	}
	total, err := c.costWithFeeLocked(amount)
	if err != nil {
		return nil, nil, err
	}
	return amount, total, nil
}

func (c *Controller) purchaseGateLocked(buyer shared.Address, value *big.Int) error {
	if c.paused {
		return ErrPaused
	}
	if c.phase != PhaseDistribution {
		return &WrongPhaseError{Current: c.phase, Required: PhaseDistribution, Op: "purchase"}
	}
	if buyer.IsZero() {
		return &ZeroAddressError{Param: "buyer"}
	}
	if value == nil || value.Sign() < 0 {
		return &curve.InvalidParameterError{Name: "value", Reason: "must be non-negative"}
	}
	return nil
}

func (c *Controller) purchaseLocked(buyer shared.Address, tokenAmount, value *big.Int) (*Receipt, error) {
	if err := c.purchaseGateLocked(buyer, value); err != nil {
		return nil, err
	}
	if tokenAmount == nil || tokenAmount.Sign() <= 0 {
		return nil, &curve.InvalidParameterError{Name: "tokenAmount", Reason: "must be positive"}
	}
	if tokenAmount.Cmp(c.config.MaxPurchaseAmount) > 0 {
		return nil, &ExceedsMaxPurchaseError{
			Requested: shared.CloneBig(tokenAmount),
			Max:       shared.CloneBig(c.config.MaxPurchaseAmount),
		}
	}
	if tokenAmount.Cmp(c.config.Pricing.RemainingSupply) > 0 {
		return nil, &InsufficientSupplyError{
			Requested: shared.CloneBig(tokenAmount),
			Available: shared.CloneBig(c.config.Pricing.RemainingSupply),
		}
	}

	breakdown, err := curve.TotalCost(c.config.Pricing, tokenAmount)
	if err != nil {
		return nil, err
	}
	fee, err := c.feeOn(breakdown.FinalCost)
	if err != nil {
		return nil, err
	}
	totalWithFee := new(big.Int).Add(breakdown.FinalCost, fee)
	if value.Cmp(totalWithFee) < 0 {
		return nil, &InsufficientPaymentError{Required: totalWithFee, Provided: shared.CloneBig(value)}
	}

	mintable := new(big.Int).Sub(c.config.MintCap, c.config.TotalMinted)
	if tokenAmount.Cmp(mintable) > 0 {
		return nil, &InsufficientMintCapacityError{
			Requested: shared.CloneBig(tokenAmount),
			Available: mintable,
		}
	}

	duration, err := curve.VestingDuration(c.config.Pricing, c.config.VestingDurationMin, c.config.VestingDurationMax)
	if err != nil {
		return nil, err
	}

	// All checks passed. Move the payment first: a treasury failure aborts
	// with no state touched, matching the fatal-primary-transfer policy.
	if err := c.value.Transfer(c.config.Treasury, totalWithFee); err != nil {
		return nil, &TransferFailedError{To: c.config.Treasury, Err: err}
	}

	if err := c.minter.Mint(buyer, tokenAmount); err != nil {
		// Wiring-level failure: hand the payment back, best effort.
		if rerr := c.value.Transfer(buyer, totalWithFee); rerr != nil {
			c.log.WithError(rerr).Error("mint failed and payment return failed")
		}
		return nil, err
	}

	scheduleID, err := c.vesting.CreateVestingSchedule(
		c.self, c.token, buyer,
		c.now(), c.config.VestingCliff, duration, tokenAmount,
	)
	if err != nil {
		// Wiring-level failure: burn the tokens just minted and hand the
		// payment back, best effort. The buyer must end where they started.
		if berr := c.minter.Burn(buyer, tokenAmount); berr != nil {
			c.log.WithError(berr).Error("schedule creation failed and mint reversal failed")
		}
		if rerr := c.value.Transfer(buyer, totalWithFee); rerr != nil {
			c.log.WithError(rerr).Error("schedule creation failed and payment return failed")
		}
		return nil, err
	}

	c.config.Pricing.RemainingSupply.Sub(c.config.Pricing.RemainingSupply, tokenAmount)
	c.config.TotalMinted.Add(c.config.TotalMinted, tokenAmount)
	c.emitStatsLocked(buyer, tokenAmount, totalWithFee)

	// Refund after every internal update: a hostile receiver cannot unwind
	// the purchase, only forfeit the excess to the sweep path.
	refund := new(big.Int).Sub(value, totalWithFee)
	refundFailed := false
	if refund.Sign() > 0 {
		if err := c.value.Transfer(buyer, refund); err != nil {
			refundFailed = true
			c.retainedExcess.Add(c.retainedExcess, refund)
			c.log.WithFields(logrus.Fields{"buyer": buyer, "refund": refund}).Warn("refund transfer failed; value retained")
			c.events.Emit(eventlog.EventRefundFailed, attrsBig(map[string]string{
				"buyer": buyer.String(),
			}, "amount", refund))
		}
	}

	attrs := map[string]string{"buyer": buyer.String()}
	attrsBig(attrs, "amount", tokenAmount)
	attrsBig(attrs, "basePrice", breakdown.BasePrice)
	attrsBig(attrs, "premium", breakdown.Premium)
	attrsBig(attrs, "totalCost", totalWithFee)
	attrsInt(attrs, "vestingDuration", duration)
	c.events.Emit(eventlog.EventPurchaseCompleted, attrs)
	c.log.WithFields(logrus.Fields{"buyer": buyer, "amount": tokenAmount, "cost": totalWithFee}).Info("purchase completed")

	return &Receipt{
		Buyer:           buyer,
		Amount:          shared.CloneBig(tokenAmount),
		BasePrice:       breakdown.BasePrice,
		Premium:         breakdown.Premium,
		BaseCost:        breakdown.BaseCost,
		FinalCost:       breakdown.FinalCost,
		Fee:             fee,
		TotalCost:       totalWithFee,
		Refund:          refund,
		RefundFailed:    refundFailed,
		VestingDuration: duration,
		ScheduleID:      scheduleID,
	}, nil
}

func (c *Controller) feeOn(cost *big.Int) (*big.Int, error) {
	if c.config.FeeNumerator == 0 {
		return new(big.Int), nil
	}
	return fixedmath.MulDiv(
		cost,
		new(big.Int).SetUint64(c.config.FeeNumerator),
		big.NewInt(shared.FeeDenominator),
		fixedmath.RoundingUp,
	)
}

func (c *Controller) costWithFeeLocked(amount *big.Int) (*big.Int, error) {
	breakdown, err := curve.TotalCost(c.config.Pricing, amount)
	if err != nil {
		return nil, err
	}
	fee, err := c.feeOn(breakdown.FinalCost)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(breakdown.FinalCost, fee), nil
}

// affordableLocked finds the maximal token amount whose cost including fee
// fits in value. The curve search works on the fee-stripped budget, then
// the fee rounding is settled by stepping down at most once.
func (c *Controller) affordableLocked(value *big.Int) (*big.Int, error) {
	if value == nil || value.Sign() <= 0 {
		return new(big.Int), nil
	}

	budget, err := fixedmath.MulDiv(
		value,
		big.NewInt(shared.FeeDenominator),
		big.NewInt(shared.FeeDenominator+int64(c.config.FeeNumerator)),
		fixedmath.RoundingDown,
	)
	if err != nil {
		return nil, err
	}

	amount, err := curve.TokensForCurrency(c.config.Pricing, budget, c.config.MaxPurchaseAmount)
	if err != nil {
		return nil, err
	}
	for amount.Sign() > 0 {
		total, err := c.costWithFeeLocked(amount)
		if err != nil {
			return nil, err
		}
		if total.Cmp(value) <= 0 {
			break
		}
		amount = new(big.Int).Sub(amount, big.NewInt(1))
	}
	return amount, nil
}
