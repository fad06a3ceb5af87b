// Package launchvest assembles a complete fixed-supply token launch: the
// supply-based pricing curve, the phase-gated distribution controller, the
// vesting ledger, and the restricted token ledger, wired together and
// sharing one event log.
//
// Example:
//
//	launch, _ := launchvest.NewLaunch(admin, saleAddr, tokenAddr, cfg, valueLedger)
//
//	launch.Controller.StartDistribution(admin)
//
//	launch.Controller.PurchaseTokens(buyer, amount, value)
package launchvest

import (
	"github.com/launchvest/launchvest-go/config"
	"github.com/launchvest/launchvest-go/distribution"
	"github.com/launchvest/launchvest-go/eventlog"
	"github.com/launchvest/launchvest-go/shared"
	"github.com/launchvest/launchvest-go/store"
	"github.com/launchvest/launchvest-go/token"
	"github.com/launchvest/launchvest-go/vesting"
)

// Launch is one assembled token sale.
type Launch struct {
	Admin shared.Address
	Self  shared.Address

	Token      *token.Ledger
	Vesting    *vesting.Ledger
	Controller *distribution.Controller
	Authority  *distribution.Authority
	Events     *eventlog.Log
}

// NewLaunch wires a launch from its configuration. admin receives every
// capability; self is the sale's own address, used as minter identity and
// as the vesting ledger's launch contract.
func NewLaunch(
	admin, self, tokenAddr shared.Address,
	cfg *distribution.LaunchConfig,
	value distribution.ValueLedger,
) (*Launch, error) {
	events := eventlog.New()
	authority := distribution.NewAuthority(admin)

	vl := vesting.NewLedger(admin, events)
	if err := vl.RegisterToken(admin, tokenAddr, vesting.TokenVestingConfig{
		DurationMin:    cfg.VestingDurationMin,
		DurationMax:    cfg.VestingDurationMax,
		TotalSupplyCap: cfg.MintCap,
		LaunchContract: self,
	}); err != nil {
		return nil, err
	}

	tok, err := token.New(tokenAddr, cfg.MintCap, self)
	if err != nil {
		return nil, err
	}
	tok.SetRestrictor(vl)
	tok.SetExempt(self, true)
	tok.SetExempt(cfg.Treasury, true)

	ctrl, err := distribution.NewController(self, tokenAddr, cfg, tok, value, vl, authority, events)
	if err != nil {
		return nil, err
	}

	return &Launch{
		Admin:      admin,
		Self:       self,
		Token:      tok,
		Vesting:    vl,
		Controller: ctrl,
		Authority:  authority,
		Events:     events,
	}, nil
}

// FromFile builds a launch from a JSON launch description.
func FromFile(path string, value distribution.ValueLedger) (*Launch, error) {
	desc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return NewLaunch(desc.Admin, desc.Self, desc.Token, desc.Config, value)
}

// SaveTo persists the launch's controller and vesting state.
func (l *Launch) SaveTo(s *store.Store) error {
	if err := s.SaveLaunchState(l.Controller.ExportState()); err != nil {
		return err
	}
	schedules, configs := l.Vesting.ExportState()
	return s.SaveVesting(schedules, configs)
}

// RestoreFrom loads previously persisted state into the launch. A database
// with no saved launch leaves the controller untouched.
func (l *Launch) RestoreFrom(s *store.Store) error {
	state, found, err := s.LoadLaunchState()
	if err != nil {
		return err
	}
	if found {
		if err := l.Controller.RestoreState(state); err != nil {
			return err
		}
	}
	schedules, configs, err := s.LoadVesting()
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return nil
	}
	return l.Vesting.RestoreState(schedules, configs)
}

// Snapshot serializes the launch state as a borsh snapshot.
func (l *Launch) Snapshot() ([]byte, error) {
	schedules, configs := l.Vesting.ExportState()
	snap, err := store.BuildSnapshot(l.Controller.ExportState(), schedules, configs)
	if err != nil {
		return nil, err
	}
	return snap.Marshal()
}

// RestoreSnapshot loads a borsh snapshot into the launch.
func (l *Launch) RestoreSnapshot(data []byte) error {
	snap, err := store.UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	if err := l.Controller.RestoreState(snap.LaunchState()); err != nil {
		return err
	}
	schedules, configs := snap.VestingState()
	return l.Vesting.RestoreState(schedules, configs)
}
