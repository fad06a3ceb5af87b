// Package vesting owns the per-user vesting schedules created by a token
// distribution and the allow/record contract the token ledger consults at
// transfer time. Schedules are append-only: they are never deleted, and
// their transferred amount moves in one direction.
package vesting

import (
	"math/big"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/launchvest/launchvest-go/eventlog"
	"github.com/launchvest/launchvest-go/shared"
)

type userKey struct {
	token shared.Address
	user  shared.Address
}

// Ledger tracks vesting schedules for any number of registered tokens.
// All mutating operations are atomic: they validate fully before touching
// state, under a single lock.
type Ledger struct {
	mu sync.Mutex

	admin     shared.Address
	nextID    uint64
	schedules map[uint64]*Schedule
	index     map[userKey][]uint64
	configs   map[shared.Address]*TokenVestingConfig

	events *eventlog.Log
	log    *logrus.Entry
	now    func() int64
}

func NewLedger(admin shared.Address, events *eventlog.Log) *Ledger {
	if events == nil {
		events = eventlog.New()
	}
	return &Ledger{
		admin:     admin,
		nextID:    1,
		schedules: make(map[uint64]*Schedule),
		index:     make(map[userKey][]uint64),
		configs:   make(map[shared.Address]*TokenVestingConfig),
		events:    events,
		log:       logrus.WithField("component", "vesting"),
		now:       func() int64 { return time.Now().Unix() },
	}
}

// SetNowFunc replaces the ledger clock. Intended for deterministic tests
// and for replaying persisted state at a fixed point in time.
func (l *Ledger) SetNowFunc(fn func() int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = fn
}

// RegisterToken installs the vesting configuration for a token. A token can
// be registered once; use SetVestingConfig to change it afterwards.
func (l *Ledger) RegisterToken(caller, token shared.Address, cfg TokenVestingConfig) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return &NotAuthorizedError{Caller: caller}
	}
	if token.IsZero() {
		return &InvalidConfigError{Param: "token", Reason: "zero address"}
	}
	if _, ok := l.configs[token]; ok {
		return &InvalidConfigError{Param: "token", Reason: "already registered"}
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	stored := cfg
	if stored.TotalSupplyCap != nil {
		stored.TotalSupplyCap = new(big.Int).Set(stored.TotalSupplyCap)
	}
	l.configs[token] = &stored
	l.log.WithField("token", token).Info("token registered for vesting")
	l.events.Emit(eventlog.EventTokenRegistered, map[string]string{
		"token":       token.String(),
		"durationMin": strconv.FormatInt(cfg.DurationMin, 10),
		"durationMax": strconv.FormatInt(cfg.DurationMax, 10),
	})
	return nil
}

// SetVestingConfig replaces a registered token's configuration. Existing
// schedules keep the window they were created under.
func (l *Ledger) SetVestingConfig(caller, token shared.Address, cfg TokenVestingConfig) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return &NotAuthorizedError{Caller: caller}
	}
	if _, ok := l.configs[token]; !ok {
		return &NotConfiguredError{Token: token}
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	stored := cfg
	if stored.TotalSupplyCap != nil {
		stored.TotalSupplyCap = new(big.Int).Set(stored.TotalSupplyCap)
	}
	l.configs[token] = &stored
	l.events.Emit(eventlog.EventVestingConfigUpdated, map[string]string{
		"token":       token.String(),
		"durationMin": strconv.FormatInt(cfg.DurationMin, 10),
		"durationMax": strconv.FormatInt(cfg.DurationMax, 10),
	})
	return nil
}

// Config returns a copy of the token's vesting configuration.
func (l *Ledger) Config(token shared.Address) (TokenVestingConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg, ok := l.configs[token]
	if !ok {
		return TokenVestingConfig{}, &NotConfiguredError{Token: token}
	}
	out := *cfg
	if out.TotalSupplyCap != nil {
		out.TotalSupplyCap = new(big.Int).Set(out.TotalSupplyCap)
	}
	return out, nil
}

// CreateVestingSchedule registers a new schedule for user. Only the token's
// launch contract or the ledger admin may create schedules. startTime may
// sit in the past or future. Returns the stable schedule id.
func (l *Ledger) CreateVestingSchedule(
	caller shared.Address,
	token shared.Address,
	user shared.Address,
	startTime int64,
	cliffDuration int64,
	duration int64,
	totalAmount *big.Int,
) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg, ok := l.configs[token]
	if !ok {
		return 0, &NotConfiguredError{Token: token}
	}
	if caller != cfg.LaunchContract && caller != l.admin {
		return 0, &NotAuthorizedError{Caller: caller}
	}
	if user.IsZero() {
		return 0, &InvalidScheduleError{Param: "user", Reason: "zero address"}
	}
	if totalAmount == nil || totalAmount.Sign() <= 0 {
		return 0, &InvalidScheduleError{Param: "totalAmount", Reason: "must be positive"}
	}
	if duration < cfg.DurationMin || duration > cfg.DurationMax {
		return 0, &InvalidScheduleError{Param: "duration", Reason: "outside the registered window"}
	}
	if cliffDuration < 0 || cliffDuration >= duration {
		return 0, &InvalidScheduleError{Param: "cliffDuration", Reason: "must be within [0, duration)"}
	}

	id := l.nextID
	l.nextID++
	s := &Schedule{
		ID:                id,
		Token:             token,
		User:              user,
		StartTime:         startTime,
		CliffDuration:     cliffDuration,
		Duration:          duration,
		TotalAmount:       new(big.Int).Set(totalAmount),
		TransferredAmount: new(big.Int),
	}
	l.schedules[id] = s
	key := userKey{token: token, user: user}
	l.index[key] = append(l.index[key], id)

	l.events.Emit(eventlog.EventScheduleCreated, map[string]string{
		"id":       strconv.FormatUint(id, 10),
		"token":    token.String(),
		"user":     user.String(),
		"amount":   totalAmount.String(),
		"duration": strconv.FormatInt(duration, 10),
	})
	return id, nil
}

// IsTransferAllowed reports whether sender still holds at least amount of
// vested-but-untransferred capacity on token. Pure read.
func (l *Ledger) IsTransferAllowed(sender shared.Address, amount *big.Int, token shared.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return amount != nil && amount.Sign() == 0
	}
	return l.availableLocked(token, sender, l.now()).Cmp(amount) >= 0
}

// RecordTransfer consumes amount of vested capacity across sender's
// schedules for token, oldest schedule id first. Must be called by the
// registered token contract immediately after a transfer that passed
// IsTransferAllowed. Fails whole, mutating nothing, when capacity is
// short, so an out-of-order call cannot corrupt the book.
func (l *Ledger) RecordTransfer(caller, sender shared.Address, amount *big.Int, token shared.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.configs[token]; !ok {
		return &NotConfiguredError{Token: token}
	}
	if caller != token {
		return &NotTokenContractError{Caller: caller, Token: token}
	}
	if amount == nil || amount.Sign() <= 0 {
		return &InvalidScheduleError{Param: "amount", Reason: "must be positive"}
	}

	now := l.now()
	available := l.availableLocked(token, sender, now)
	if available.Cmp(amount) < 0 {
		return &NotVestedError{
			Requested: new(big.Int).Set(amount),
			Available: available,
		}
	}

	remaining := new(big.Int).Set(amount)
	for _, id := range l.index[userKey{token: token, user: sender}] {
		if remaining.Sign() == 0 {
			break
		}
		s := l.schedules[id]
		slot := s.Available(now)
		if slot.Sign() == 0 {
			continue
		}
		if slot.Cmp(remaining) > 0 {
			slot = remaining
		}
		s.TransferredAmount.Add(s.TransferredAmount, slot)
		remaining = new(big.Int).Sub(remaining, slot)
	}

	l.events.Emit(eventlog.EventTransferRecorded, map[string]string{
		"token":  token.String(),
		"sender": sender.String(),
		"amount": amount.String(),
	})
	return nil
}

// AvailableBalance is the aggregate vested-but-untransferred capacity for
// (token, user) at the ledger's current time.
func (l *Ledger) AvailableBalance(token, user shared.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.availableLocked(token, user, l.now())
}

// AvailableBalanceAt evaluates the aggregate capacity at an explicit time.
func (l *Ledger) AvailableBalanceAt(token, user shared.Address, t int64) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.availableLocked(token, user, t)
}

// SchedulesOf returns copies of the user's schedules for token in creation
// order. Errors when there are none.
func (l *Ledger) SchedulesOf(token, user shared.Address) ([]*Schedule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.index[userKey{token: token, user: user}]
	if len(ids) == 0 {
		return nil, &NoSchedulesError{Token: token, User: user}
	}
	out := make([]*Schedule, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.schedules[id].clone())
	}
	return out, nil
}

// ScheduleByID returns a copy of one schedule.
func (l *Ledger) ScheduleByID(id uint64) (*Schedule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.schedules[id]
	if !ok {
		return nil, &InvalidScheduleError{Param: "id", Reason: "unknown schedule"}
	}
	return s.clone(), nil
}

// TotalVesting sums the user's not-yet-transferred amounts for token,
// vested or not.
func (l *Ledger) TotalVesting(token, user shared.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := new(big.Int)
	for _, id := range l.index[userKey{token: token, user: user}] {
		s := l.schedules[id]
		total.Add(total, new(big.Int).Sub(s.TotalAmount, s.TransferredAmount))
	}
	return total
}

// ExportState returns copies of every schedule in id order together with
// the per-token configurations, suitable for persistence.
func (l *Ledger) ExportState() ([]*Schedule, map[shared.Address]TokenVestingConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]uint64, 0, len(l.schedules))
	for id := range l.schedules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	schedules := make([]*Schedule, 0, len(ids))
	for _, id := range ids {
		schedules = append(schedules, l.schedules[id].clone())
	}
	configs := make(map[shared.Address]TokenVestingConfig, len(l.configs))
	for token, cfg := range l.configs {
		out := *cfg
		if out.TotalSupplyCap != nil {
			out.TotalSupplyCap = new(big.Int).Set(out.TotalSupplyCap)
		}
		configs[token] = out
	}
	return schedules, configs
}

// RestoreState replaces the ledger's schedules and configurations with a
// previously exported set. Validates each schedule before touching state.
func (l *Ledger) RestoreState(schedules []*Schedule, configs map[shared.Address]TokenVestingConfig) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for token, cfg := range configs {
		if token.IsZero() {
			return &InvalidConfigError{Param: "token", Reason: "zero address"}
		}
		if err := cfg.validate(); err != nil {
			return err
		}
	}
	seen := make(map[uint64]struct{}, len(schedules))
	for _, s := range schedules {
		if s == nil || s.ID == 0 {
			return &InvalidScheduleError{Param: "id", Reason: "missing"}
		}
		if _, dup := seen[s.ID]; dup {
			return &InvalidScheduleError{Param: "id", Reason: "duplicate"}
		}
		seen[s.ID] = struct{}{}
		if s.TotalAmount == nil || s.TotalAmount.Sign() <= 0 {
			return &InvalidScheduleError{Param: "totalAmount", Reason: "must be positive"}
		}
		if s.TransferredAmount == nil || s.TransferredAmount.Sign() < 0 ||
			s.TransferredAmount.Cmp(s.TotalAmount) > 0 {
			return &InvalidScheduleError{Param: "transferredAmount", Reason: "outside [0, totalAmount]"}
		}
		if _, ok := configs[s.Token]; !ok {
			return &NotConfiguredError{Token: s.Token}
		}
	}

	l.schedules = make(map[uint64]*Schedule, len(schedules))
	l.index = make(map[userKey][]uint64)
	l.nextID = 1
	for _, s := range schedules {
		c := s.clone()
		l.schedules[c.ID] = c
		key := userKey{token: c.Token, user: c.User}
		l.index[key] = append(l.index[key], c.ID)
		if c.ID >= l.nextID {
			l.nextID = c.ID + 1
		}
	}
	for key := range l.index {
		ids := l.index[key]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	l.configs = make(map[shared.Address]*TokenVestingConfig, len(configs))
	for token, cfg := range configs {
		stored := cfg
		if stored.TotalSupplyCap != nil {
			stored.TotalSupplyCap = new(big.Int).Set(stored.TotalSupplyCap)
		}
		l.configs[token] = &stored
	}
	l.log.WithFields(logrus.Fields{
		"schedules": len(l.schedules),
		"tokens":    len(l.configs),
	}).Info("vesting state restored")
	return nil
}

func (l *Ledger) availableLocked(token, user shared.Address, t int64) *big.Int {
	total := new(big.Int)
	for _, id := range l.index[userKey{token: token, user: user}] {
		total.Add(total, l.schedules[id].Available(t))
	}
	return total
}
