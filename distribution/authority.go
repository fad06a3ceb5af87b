package distribution

import (
	"strings"
	"sync"

	"github.com/launchvest/launchvest-go/shared"
)

// Capability is one administrative permission bit. A caller's grant is the
// union of its bits; there is no implicit global permission state.
type Capability uint8

const (
	CapConfig   Capability = 1 << iota // pricing, fee, treasury, max purchase
	CapPhase                           // phase transitions
	CapPauser                          // pause / unpause
	CapMinter                          // mint cap increases and admin mints
	CapRecovery                        // token recovery and value sweeps
)

func (c Capability) String() string {
	var names []string
	for _, e := range []struct {
		bit  Capability
		name string
	}{
		{CapConfig, "config"},
		{CapPhase, "phase"},
		{CapPauser, "pauser"},
		{CapMinter, "minter"},
		{CapRecovery, "recovery"},
	} {
		if c&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// CapAll grants every capability.
const CapAll = CapConfig | CapPhase | CapPauser | CapMinter | CapRecovery

// Authority maps caller identities to granted capabilities.
type Authority struct {
	mu     sync.RWMutex
	grants map[shared.Address]Capability
}

// NewAuthority grants CapAll to the given root identity.
func NewAuthority(root shared.Address) *Authority {
	return &Authority{grants: map[shared.Address]Capability{root: CapAll}}
}

func (a *Authority) Grant(to shared.Address, caps Capability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.grants[to] |= caps
}

func (a *Authority) Revoke(from shared.Address, caps Capability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.grants[from] &^= caps
}

func (a *Authority) Has(caller shared.Address, caps Capability) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.grants[caller]&caps == caps
}

func (a *Authority) require(caller shared.Address, caps Capability) error {
	if !a.Has(caller, caps) {
		return &NotAuthorizedError{Caller: caller, Capability: caps}
	}
	return nil
}
