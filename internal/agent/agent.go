// Package agent implements the simulated employee: a role-bound actor with
// an inbox, a place in the hierarchy and an activity log.
package agent

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dayuer/virtualco/internal/bus"
	"github.com/dayuer/virtualco/internal/utils"
)

// ErrUnknownTier is returned by ParseTier for unrecognised seniority levels.
var ErrUnknownTier = errors.New("unknown tier")

// Tier is an agent's seniority level.
type Tier string

const (
	TierCSuite    Tier = "C-Suite"
	TierVP        Tier = "VP"
	TierDirector  Tier = "Director"
	TierPrincipal Tier = "Principal"
	TierManager   Tier = "Manager"
	TierArchitect Tier = "Architect"
	TierIC        Tier = "IC"
)

// Tiers lists every tier from most to least senior.
var Tiers = []Tier{TierCSuite, TierVP, TierDirector, TierPrincipal, TierManager, TierArchitect, TierIC}

// ParseTier validates a tier name (case-insensitive).
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Spec describes an agent to create.
type Spec struct {
	Name      string
	Role      string
	Category  string // defaults to the role without its seat number
	Tier      Tier
	ReportsTo string
	Backlog   int // approvals waiting on this agent at start
}

// Profile is a read-only snapshot of an agent, handed to workflow handlers.
type Profile struct {
	ID            string
	Name          string
	Role          string
	Category      string
	Tier          Tier
	ReportsTo     string
	DirectReports []string
	Backlog       int
	Processed     int
}

// HasReports reports whether anyone reports to this agent.
func (p Profile) HasReports() bool {
	return len(p.DirectReports) > 0
}

// IsDeveloper reports whether the agent writes code that goes through review.
func (p Profile) IsDeveloper() bool {
	return strings.HasSuffix(p.Category, " Dev")
}

// Result is what a handler decided to do with one message.
type Result struct {
	Out          []bus.Message
	Notes        []string
	Complete     bool // the workflow branch ended successfully here
	ClearBacklog bool
}

// Dispatcher selects and runs the handler for a message.
// The bool is false when nothing is registered for the message.
type Dispatcher interface {
	Dispatch(self Profile, msg bus.Message) (Result, bool)
}

// Handled pairs a consumed message with its outcome.
type Handled struct {
	Msg     bus.Message
	Result  Result
	Matched bool
}

// Agent is a single simulated employee.
type Agent struct {
	id        string
	name      string
	role      string
	category  string
	tier      Tier
	reportsTo string
	reports   []string
	backlog   int

	inbox    []bus.Message
	activity ActivityLog
	draining bool

	logger *log.Logger
}

// New creates an agent. A nil logger falls back to log.Default().
func New(spec Spec, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.Default()
	}
	category := spec.Category
	if category == "" {
		category = utils.RoleCategory(spec.Role)
	}
	tier := spec.Tier
	if tier == "" {
		tier = TierIC
	}
	return &Agent{
		id:        uuid.NewString(),
		name:      spec.Name,
		role:      spec.Role,
		category:  category,
		tier:      tier,
		reportsTo: spec.ReportsTo,
		backlog:   spec.Backlog,
		logger:    logger,
	}
}

func (a *Agent) ID() string        { return a.id }
func (a *Agent) Name() string      { return a.name }
func (a *Agent) Role() string      { return a.role }
func (a *Agent) Category() string  { return a.category }
func (a *Agent) Tier() Tier        { return a.tier }
func (a *Agent) ReportsTo() string { return a.reportsTo }
func (a *Agent) Backlog() int      { return a.backlog }

// DirectReports returns the roles reporting to this agent, in link order.
func (a *Agent) DirectReports() []string {
	return slices.Clone(a.reports)
}

// AddReport links a direct report. Linking the same role twice is a no-op.
func (a *Agent) AddReport(role string) bool {
	if slices.Contains(a.reports, role) {
		return false
	}
	a.reports = append(a.reports, role)
	return true
}

// Receive queues a message. No validation is done on the sender.
func (a *Agent) Receive(msg bus.Message) {
	a.inbox = append(a.inbox, msg)
}

// Pending returns the number of queued messages.
func (a *Agent) Pending() int {
	return len(a.inbox)
}

// Activity returns the agent's activity log.
func (a *Agent) Activity() *ActivityLog {
	return &a.activity
}

// Profile snapshots the agent for handlers.
func (a *Agent) Profile() Profile {
	return Profile{
		ID:            a.id,
		Name:          a.name,
		Role:          a.role,
		Category:      a.category,
		Tier:          a.tier,
		ReportsTo:     a.reportsTo,
		DirectReports: a.DirectReports(),
		Backlog:       a.backlog,
		Processed:     a.activity.Len(),
	}
}

// Drain consumes every message queued at call time in FIFO order and returns
// what each one produced. Outbound messages are not routed here.
func (a *Agent) Drain(d Dispatcher) []Handled {
	if a.draining {
		a.logger.Printf("[%s] ⚠️ Drain called while already draining, ignored", a.role)
		return nil
	}
	a.draining = true
	defer func() { a.draining = false }()

	pending := a.inbox
	a.inbox = nil

	handled := make([]Handled, 0, len(pending))
	for _, msg := range pending {
		a.logger.Printf("[%s] processing message from [%s]: %s", a.role, msg.SenderRole, msg.Preview())
		a.activity.Append("Received: " + msg.Payload)

		res, ok := d.Dispatch(a.Profile(), msg)
		if !ok {
			a.logger.Printf("[%s] ⚠️ No handler for %s (tier %s)", a.role, msg.Kind, a.tier)
		}
		for _, note := range res.Notes {
			a.activity.Append(note)
			a.logger.Printf("  >>> [%s] %s", a.role, note)
		}
		if res.ClearBacklog {
			a.backlog = 0
		}
		handled = append(handled, Handled{Msg: msg, Result: res, Matched: ok})
	}
	return handled
}
