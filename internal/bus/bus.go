package bus

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

var (
	ErrRoleNotFound  = errors.New("could not find recipient role")
	ErrAgentExists   = errors.New("agent already registered")
	ErrUnknownPolicy = errors.New("unknown selection policy")
)

// Mailbox is the bus-facing side of an agent.
type Mailbox interface {
	ID() string
	Role() string
	Category() string
	Receive(msg Message)
	Pending() int
}

// Receipt reports the outcome of a single delivery attempt.
type Receipt struct {
	Msg     Message
	AgentID string
	Err     error
}

// Delivered reports whether the message reached an inbox.
func (r Receipt) Delivered() bool {
	return r.Err == nil
}

// Policy picks one agent when an address resolves to several.
type Policy string

const (
	PolicyRoundRobin  Policy = "round-robin"
	PolicyLeastLoaded Policy = "least-loaded"
	PolicyAffinity    Policy = "affinity"
)

// ParsePolicy validates a policy name. Empty means round-robin.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyRoundRobin, nil
	case PolicyRoundRobin, PolicyLeastLoaded, PolicyAffinity:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

type affinityKey struct {
	address     string
	correlation string
}

// Bus resolves role addresses to agents and delivers messages to their inboxes.
// An address is either an exact role or a role category ("DevOps Engineer"
// covers "DevOps Engineer 1" and "DevOps Engineer 2").
type Bus struct {
	mu         sync.RWMutex
	agents     map[string]Mailbox
	order      []string
	byRole     map[string][]string
	byCategory map[string][]string
	cursor     map[string]int
	sticky     map[affinityKey]string
	policy     Policy

	subMu       sync.RWMutex
	subscribers []func(Receipt)

	logger *log.Logger
}

// New creates an empty bus. A nil logger falls back to log.Default().
func New(policy Policy, logger *log.Logger) *Bus {
	if policy == "" {
		policy = PolicyRoundRobin
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Bus{
		agents:     make(map[string]Mailbox),
		byRole:     make(map[string][]string),
		byCategory: make(map[string][]string),
		cursor:     make(map[string]int),
		sticky:     make(map[affinityKey]string),
		policy:     policy,
		logger:     logger,
	}
}

// Policy returns the selection policy in use.
func (b *Bus) Policy() Policy {
	return b.policy
}

// Register indexes an agent by ID, exact role and category.
// A role that is already taken stays shared; the policy picks between holders.
func (b *Bus) Register(m Mailbox) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := m.ID()
	if _, ok := b.agents[id]; ok {
		return fmt.Errorf("%w: %s", ErrAgentExists, id)
	}
	if len(b.byRole[m.Role()]) > 0 {
		b.logger.Printf("[Bus] ⚠️ Role %q is shared by %d agents, resolved by %s", m.Role(), len(b.byRole[m.Role()])+1, b.policy)
	}

	b.agents[id] = m
	b.order = append(b.order, id)
	b.byRole[m.Role()] = append(b.byRole[m.Role()], id)
	cat := categoryOf(m)
	b.byCategory[cat] = append(b.byCategory[cat], id)
	return nil
}

// Subscribe registers a callback invoked after every delivery attempt.
func (b *Bus) Subscribe(callback func(Receipt)) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.subscribers = append(b.subscribers, callback)
}

// Route delivers msg to exactly one agent or drops it.
// A miss is logged and reported as ErrRoleNotFound; it never retries.
func (b *Bus) Route(msg Message) error {
	b.mu.Lock()
	target := b.resolveLocked(msg)
	b.mu.Unlock()

	if target == nil {
		b.logger.Printf("[Bus] ❌ Could not find recipient role '%s' (%s)", msg.ReceiverRole, msg.Kind)
		err := fmt.Errorf("%w: %q", ErrRoleNotFound, msg.ReceiverRole)
		b.notify(Receipt{Msg: msg, Err: err})
		return err
	}

	target.Receive(msg)
	b.notify(Receipt{Msg: msg, AgentID: target.ID()})
	return nil
}

// Broadcast sends payload to every registered agent except the sender and
// returns how many inboxes were reached.
func (b *Bus) Broadcast(senderID, senderRole, payload string) int {
	b.mu.RLock()
	targets := make([]Mailbox, 0, len(b.order))
	for _, id := range b.order {
		if id != senderID {
			targets = append(targets, b.agents[id])
		}
	}
	b.mu.RUnlock()

	correlation := NewCorrelationID()
	for _, m := range targets {
		msg := NewMessage(senderID, senderRole, m.Role(), KindBroadcast, payload).WithCorrelation(correlation)
		m.Receive(msg)
		b.notify(Receipt{Msg: msg, AgentID: m.ID()})
	}
	return len(targets)
}

// Has reports whether an address resolves to at least one agent.
func (b *Bus) Has(address string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.candidatesLocked(address)) > 0
}

// Lookup returns the first agent registered under an exact role.
func (b *Bus) Lookup(role string) (Mailbox, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := b.byRole[role]
	if len(ids) == 0 {
		return nil, false
	}
	return b.agents[ids[0]], true
}

// Peers returns the roles in the same category as role, in registration order.
// The result includes role itself.
func (b *Bus) Peers(role string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := b.byRole[role]
	if len(ids) == 0 {
		return nil
	}
	cat := categoryOf(b.agents[ids[0]])

	var roles []string
	seen := make(map[string]bool)
	for _, id := range b.byCategory[cat] {
		r := b.agents[id].Role()
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	return roles
}

// Agents returns every registered agent in registration order.
func (b *Bus) Agents() []Mailbox {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Mailbox, len(b.order))
	for i, id := range b.order {
		out[i] = b.agents[id]
	}
	return out
}

// Len returns the number of registered agents.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

func (b *Bus) candidatesLocked(address string) []string {
	if ids := b.byRole[address]; len(ids) > 0 {
		return ids
	}
	return b.byCategory[address]
}

func (b *Bus) resolveLocked(msg Message) Mailbox {
	ids := b.candidatesLocked(msg.ReceiverRole)
	switch len(ids) {
	case 0:
		return nil
	case 1:
		return b.agents[ids[0]]
	}

	switch b.policy {
	case PolicyLeastLoaded:
		best := b.agents[ids[0]]
		for _, id := range ids[1:] {
			if m := b.agents[id]; m.Pending() < best.Pending() {
				best = m
			}
		}
		return best
	case PolicyAffinity:
		if msg.CorrelationID == "" {
			return b.nextLocked(msg.ReceiverRole, ids)
		}
		key := affinityKey{address: msg.ReceiverRole, correlation: msg.CorrelationID}
		if id, ok := b.sticky[key]; ok {
			return b.agents[id]
		}
		m := b.nextLocked(msg.ReceiverRole, ids)
		b.sticky[key] = m.ID()
		return m
	default:
		return b.nextLocked(msg.ReceiverRole, ids)
	}
}

func (b *Bus) nextLocked(address string, ids []string) Mailbox {
	i := b.cursor[address] % len(ids)
	b.cursor[address] = i + 1
	return b.agents[ids[i]]
}

func (b *Bus) notify(r Receipt) {
	b.subMu.RLock()
	subs := b.subscribers
	b.subMu.RUnlock()
	for _, cb := range subs {
		cb(r)
	}
}

func categoryOf(m Mailbox) string {
	if c := m.Category(); c != "" {
		return c
	}
	return m.Role()
}
