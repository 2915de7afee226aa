// Package tracker follows workflows by correlation ID and flags the ones
// that stop making progress.
package tracker

import (
	"sort"
	"sync"

	"github.com/dayuer/virtualco/internal/bus"
	"github.com/dayuer/virtualco/internal/utils"
)

// Status is the state of a workflow at a given tick.
type Status string

const (
	StatusActive    Status = "active"
	StatusStalled   Status = "stalled" // idle for the stall timeout without a clean completion
	StatusCompleted Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusActive, StatusStalled, StatusCompleted}

// Flow is the tracked state of one workflow.
type Flow struct {
	ID        string
	Label     string
	Origin    bus.Kind
	Started   int
	LastSeen  int
	InFlight  int
	Hops      int
	Dropped   int
	Misses    int
	Completed bool
	warned    bool
}

// Tracker counts in-flight messages per workflow.
type Tracker struct {
	mu         sync.Mutex
	flows      map[string]*Flow
	order      []string
	stallTicks int
}

// New creates a tracker. A workflow completes cleanly once a branch reached
// its end, nothing is in flight and no branch was dropped or unhandled. Any
// other workflow that saw no activity for stallTicks ticks is reported as
// stalled, including a fan-out whose sibling branch dead-ended after another
// branch completed.
func New(stallTicks int) *Tracker {
	if stallTicks <= 0 {
		stallTicks = 5
	}
	return &Tracker{flows: make(map[string]*Flow), stallTicks: stallTicks}
}

func (t *Tracker) flowLocked(msg bus.Message, tick int) *Flow {
	f, ok := t.flows[msg.CorrelationID]
	if !ok {
		f = &Flow{
			ID:      msg.CorrelationID,
			Label:   utils.TruncateString(msg.Payload, 60, "..."),
			Origin:  msg.Kind,
			Started: tick,
		}
		t.flows[msg.CorrelationID] = f
		t.order = append(t.order, msg.CorrelationID)
	}
	f.LastSeen = tick
	return f
}

// Delivered records a message reaching an inbox.
func (t *Tracker) Delivered(msg bus.Message, tick int) {
	if msg.CorrelationID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flowLocked(msg, tick).InFlight++
}

// Dropped records a message that could not be routed.
func (t *Tracker) Dropped(msg bus.Message, tick int) {
	if msg.CorrelationID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flowLocked(msg, tick).Dropped++
}

// Consumed records a delivered message being handled.
func (t *Tracker) Consumed(msg bus.Message, complete, matched bool, tick int) {
	if msg.CorrelationID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	f := t.flowLocked(msg, tick)
	if f.InFlight > 0 {
		f.InFlight--
	}
	f.Hops++
	if complete {
		f.Completed = true
	}
	if !matched {
		f.Misses++
	}
}

func (t *Tracker) statusLocked(f *Flow, tick int) Status {
	switch {
	case f.InFlight == 0 && f.Completed && f.Dropped == 0 && f.Misses == 0:
		return StatusCompleted
	case tick-f.LastSeen >= t.stallTicks:
		return StatusStalled
	default:
		return StatusActive
	}
}

// Status returns the current state of a workflow.
func (t *Tracker) Status(id string, tick int) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.flows[id]
	if !ok {
		return "", false
	}
	return t.statusLocked(f, tick), true
}

// Sweep returns workflows that became stalled since the last sweep.
func (t *Tracker) Sweep(tick int) []Flow {
	t.mu.Lock()
	defer t.mu.Unlock()
	var stalled []Flow
	for _, id := range t.order {
		f := t.flows[id]
		if f.warned || t.statusLocked(f, tick) != StatusStalled {
			continue
		}
		f.warned = true
		stalled = append(stalled, *f)
	}
	return stalled
}

// Summary counts workflows by status.
func (t *Tracker) Summary(tick int) map[Status]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Status]int, len(Statuses))
	for _, f := range t.flows {
		out[t.statusLocked(f, tick)]++
	}
	return out
}

// Flows returns a snapshot of every workflow ordered by start tick.
func (t *Tracker) Flows() []Flow {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Flow, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.flows[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Started < out[j].Started })
	return out
}

// StatusOf evaluates a flow snapshot at tick.
func (t *Tracker) StatusOf(f Flow, tick int) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(&f, tick)
}
