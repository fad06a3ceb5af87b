// Package distribution orchestrates the token sale: the strictly forward
// phase machine, both purchase entry points, supply and mint-cap
// accounting, refund handling, statistics, and the capability-gated
// administrative surface.
//
// Every mutating operation validates completely before its first write, so
// a failed call leaves all shared state untouched. The single deliberate
// exception is the refund transfer: once a purchase is accepted, a buyer
// who refuses the refund cannot unwind it (see PurchaseTokens).
package distribution

import (
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/launchvest/launchvest-go/curve"
	"github.com/launchvest/launchvest-go/eventlog"
	"github.com/launchvest/launchvest-go/shared"
)

// Controller is the sale instance. One controller distributes one token.
type Controller struct {
	mu sync.Mutex

	self  shared.Address // identity used when creating vesting schedules
	token shared.Address

	config *LaunchConfig
	phase  Phase
	paused bool

	minter    Minter
	value     ValueLedger
	vesting   ScheduleCreator
	authority *Authority

	stats          Stats
	participants   map[shared.Address]bool
	retainedExcess *big.Int

	events *eventlog.Log
	log    *logrus.Entry
	now    func() int64
}

// Stats are the running sale totals.
type Stats struct {
	TotalRaised       *big.Int
	TotalParticipants int
	LargestPurchase   *big.Int
	LargestPurchaser  shared.Address
}

func NewController(
	self shared.Address,
	token shared.Address,
	config *LaunchConfig,
	minter Minter,
	value ValueLedger,
	vestingLedger ScheduleCreator,
	authority *Authority,
	events *eventlog.Log,
) (*Controller, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if self.IsZero() {
		return nil, &ZeroAddressError{Param: "self"}
	}
	if token.IsZero() {
		return nil, &ZeroAddressError{Param: "token"}
	}
	switch {
	case minter == nil:
		return nil, &curve.InvalidParameterError{Name: "minter", Reason: "missing"}
	case value == nil:
		return nil, &curve.InvalidParameterError{Name: "value", Reason: "missing"}
	case vestingLedger == nil:
		return nil, &curve.InvalidParameterError{Name: "vesting", Reason: "missing"}
	case authority == nil:
		return nil, &curve.InvalidParameterError{Name: "authority", Reason: "missing"}
	}
	if events == nil {
		events = eventlog.New()
	}
	return &Controller{
		self:           self,
		token:          token,
		config:         config,
		phase:          PhaseNotStarted,
		minter:         minter,
		value:          value,
		vesting:        vestingLedger,
		authority:      authority,
		participants:   make(map[shared.Address]bool),
		retainedExcess: new(big.Int),
		stats: Stats{
			TotalRaised:     new(big.Int),
			LargestPurchase: new(big.Int),
		},
		events: events,
		log:    logrus.WithField("component", "distribution"),
		now:    func() int64 { return time.Now().Unix() },
	}, nil
}

// StartDistribution moves NotStarted -> Distribution.
func (c *Controller) StartDistribution(caller shared.Address) error {
	return c.transition(caller, PhaseNotStarted, PhaseDistribution)
}

// MoveToAMMPhase moves Distribution -> AMM.
func (c *Controller) MoveToAMMPhase(caller shared.Address) error {
	return c.transition(caller, PhaseDistribution, PhaseAMM)
}

// MoveToMarketPhase moves AMM -> Market.
func (c *Controller) MoveToMarketPhase(caller shared.Address) error {
	return c.transition(caller, PhaseAMM, PhaseMarket)
}

func (c *Controller) transition(caller shared.Address, from, to Phase) error {
	if err := c.authority.require(caller, CapPhase); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != from {
		return &InvalidPhaseTransitionError{Current: c.phase, Requested: to}
	}
	old := c.phase
	c.phase = to
	c.log.WithFields(logrus.Fields{"old": old.String(), "new": to.String()}).Info("phase changed")
	c.events.Emit(eventlog.EventPhaseChanged, map[string]string{
		"old": old.String(),
		"new": to.String(),
	})
	return nil
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Paused reports the emergency-pause flag.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// RemainingSupply returns the undistributed token count.
func (c *Controller) RemainingSupply() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.config.Pricing.RemainingSupply)
}

// SupplyInfo returns (remaining, totalDistribution, totalMinted, mintCap).
func (c *Controller) SupplyInfo() (remaining, total, minted, cap *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.config.Pricing.RemainingSupply),
		new(big.Int).Set(c.config.Pricing.TotalDistributionSupply),
		new(big.Int).Set(c.config.TotalMinted),
		new(big.Int).Set(c.config.MintCap)
}

// PercentageSold reports sold supply in basis points of the distribution
// total.
func (c *Controller) PercentageSold() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	sold := new(big.Int).Sub(c.config.Pricing.TotalDistributionSupply, c.config.Pricing.RemainingSupply)
	bps := sold.Mul(sold, big.NewInt(shared.MaxBasisPoint))
	return bps.Div(bps, c.config.Pricing.TotalDistributionSupply).Int64()
}

// DistributionStats returns a copy of the running totals.
func (c *Controller) DistributionStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		TotalRaised:       new(big.Int).Set(c.stats.TotalRaised),
		TotalParticipants: c.stats.TotalParticipants,
		LargestPurchase:   new(big.Int).Set(c.stats.LargestPurchase),
		LargestPurchaser:  c.stats.LargestPurchaser,
	}
}

// RetainedExcess is the refund value held back after failed refund
// transfers, recoverable through SweepRetainedValue.
func (c *Controller) RetainedExcess() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.retainedExcess)
}

// State is the mutable portion of a controller captured for persistence.
// The launch configuration itself travels separately: a restored controller
// is constructed with its config and then replayed into this state.
type State struct {
	Phase            Phase
	Paused           bool
	RemainingSupply  *big.Int
	TotalMinted      *big.Int
	MintCap          *big.Int
	TotalRaised      *big.Int
	LargestPurchase  *big.Int
	LargestPurchaser shared.Address
	Participants     []shared.Address
	RetainedExcess   *big.Int
}

// ExportState snapshots the controller for persistence. Participants are
// returned in unspecified order.
func (c *Controller) ExportState() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	participants := make([]shared.Address, 0, len(c.participants))
	for p := range c.participants {
		participants = append(participants, p)
	}
	return State{
		Phase:            c.phase,
		Paused:           c.paused,
		RemainingSupply:  new(big.Int).Set(c.config.Pricing.RemainingSupply),
		TotalMinted:      new(big.Int).Set(c.config.TotalMinted),
		MintCap:          new(big.Int).Set(c.config.MintCap),
		TotalRaised:      new(big.Int).Set(c.stats.TotalRaised),
		LargestPurchase:  new(big.Int).Set(c.stats.LargestPurchase),
		LargestPurchaser: c.stats.LargestPurchaser,
		Participants:     participants,
		RetainedExcess:   new(big.Int).Set(c.retainedExcess),
	}
}

// RestoreState loads a previously exported snapshot into the controller.
// Fails without mutating when the snapshot is internally inconsistent.
func (c *Controller) RestoreState(s State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.Phase > PhaseMarket {
		return &InvalidPhaseTransitionError{Current: c.phase, Requested: s.Phase}
	}
	for _, v := range []*big.Int{s.RemainingSupply, s.TotalMinted, s.MintCap, s.TotalRaised, s.LargestPurchase, s.RetainedExcess} {
		if v == nil || v.Sign() < 0 {
			return &curve.InvalidParameterError{Name: "state", Reason: "negative or missing value"}
		}
	}
	if s.RemainingSupply.Cmp(c.config.Pricing.TotalDistributionSupply) > 0 {
		return &curve.InvalidParameterError{Name: "remainingSupply", Reason: "exceeds distribution total"}
	}
	if s.TotalMinted.Cmp(s.MintCap) > 0 {
		return &curve.InvalidParameterError{Name: "totalMinted", Reason: "exceeds mint cap"}
	}

	c.phase = s.Phase
	c.paused = s.Paused
	c.config.Pricing.RemainingSupply.Set(s.RemainingSupply)
	c.config.TotalMinted.Set(s.TotalMinted)
	c.config.MintCap.Set(s.MintCap)
	c.stats.TotalRaised.Set(s.TotalRaised)
	c.stats.LargestPurchase.Set(s.LargestPurchase)
	c.stats.LargestPurchaser = s.LargestPurchaser
	c.stats.TotalParticipants = len(s.Participants)
	c.participants = make(map[shared.Address]bool, len(s.Participants))
	for _, p := range s.Participants {
		c.participants[p] = true
	}
	c.retainedExcess.Set(s.RetainedExcess)
	c.log.WithFields(logrus.Fields{
		"phase":     c.phase.String(),
		"remaining": c.config.Pricing.RemainingSupply.String(),
	}).Info("controller state restored")
	return nil
}

func (c *Controller) emitStatsLocked(buyer shared.Address, amount, paid *big.Int) {
	c.stats.TotalRaised.Add(c.stats.TotalRaised, paid)
	if !c.participants[buyer] {
		c.participants[buyer] = true
		c.stats.TotalParticipants++
	}
	if amount.Cmp(c.stats.LargestPurchase) > 0 {
		c.stats.LargestPurchase = new(big.Int).Set(amount)
		c.stats.LargestPurchaser = buyer
	}
}

func attrsBig(m map[string]string, key string, v *big.Int) map[string]string {
	m[key] = v.String()
	return m
}

func attrsInt(m map[string]string, key string, v int64) map[string]string {
	m[key] = strconv.FormatInt(v, 10)
	return m
}
