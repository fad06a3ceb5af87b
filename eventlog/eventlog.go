// Package eventlog records the notifications the distribution and vesting
// subsystems emit: purchases, phase changes, parameter updates, schedule
// creation and transfer recording. Events append to an in-memory log and
// optionally stream to a sink such as a JSONL writer.
package eventlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPurchaseCompleted    EventType = "purchase_completed"
	EventPhaseChanged         EventType = "phase_changed"
	EventPricingUpdated       EventType = "pricing_updated"
	EventTreasuryUpdated      EventType = "treasury_updated"
	EventFeeUpdated           EventType = "fee_updated"
	EventMaxPurchaseUpdated   EventType = "max_purchase_updated"
	EventMintCapUpdated       EventType = "mint_cap_updated"
	EventAdminMint            EventType = "admin_mint"
	EventTokenRecovered       EventType = "token_recovered"
	EventRefundFailed         EventType = "refund_failed"
	EventValueSwept           EventType = "value_swept"
	EventPaused               EventType = "paused"
	EventUnpaused             EventType = "unpaused"
	EventTokenRegistered      EventType = "token_registered"
	EventScheduleCreated      EventType = "schedule_created"
	EventTransferRecorded     EventType = "transfer_recorded"
	EventVestingConfigUpdated EventType = "vesting_config_updated"
)

// Event is a single emitted notification. Attrs carries the structured
// payload; values are strings so sinks stay schema-free.
type Event struct {
	ID    string            `json:"id"`
	Time  time.Time         `json:"time"`
	Type  EventType         `json:"type"`
	Attrs map[string]string `json:"attrs"`
}

// Sink receives events as they are logged.
type Sink interface {
	Write(Event) error
}

// Log is an append-only event log with an optional sink. The zero value is
// not usable; construct with New.
type Log struct {
	mu     sync.Mutex
	events []Event
	sink   Sink
	now    func() time.Time
}

func New() *Log {
	return &Log{now: time.Now}
}

// WithSink attaches a sink that observes every subsequent event.
func (l *Log) WithSink(s Sink) *Log {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = s
	return l
}

// Emit appends an event. Sink failures do not fail the emit; the event is
// already part of the log by the time the sink runs.
func (l *Log) Emit(typ EventType, attrs map[string]string) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := Event{
		ID:    uuid.NewString(),
		Time:  l.now(),
		Type:  typ,
		Attrs: attrs,
	}
	l.events = append(l.events, ev)
	if l.sink != nil {
		_ = l.sink.Write(ev)
	}
	return ev
}

// Events returns a snapshot of all logged events in emission order.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// ByType filters the log down to one event type, preserving order.
func (l *Log) ByType(typ EventType) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, ev := range l.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// Len reports the number of logged events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
