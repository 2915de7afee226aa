// Package workflow holds the company's standard operating procedures: a
// registry of pure handlers keyed by (tier, message kind).
package workflow

import (
	"sort"
	"sync"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
)

// AnyTier registers a handler for every tier without a more specific one.
const AnyTier agent.Tier = "*"

// Directory is the read-only view of the bus that handlers may consult.
type Directory interface {
	Peers(role string) []string
	Has(address string) bool
}

// Env is everything a handler may look at besides the message.
type Env struct {
	Self agent.Profile
	Dir  Directory
}

// HandlerFunc maps one message to its outcome. Handlers must not mutate
// anything; the agent applies the returned result.
type HandlerFunc func(env Env, msg bus.Message) agent.Result

type key struct {
	tier agent.Tier
	kind bus.Kind
}

// Registry holds handlers keyed by tier and kind.
type Registry struct {
	mu       sync.RWMutex
	handlers map[key]HandlerFunc
	dir      Directory
}

// NewRegistry creates an empty registry bound to a directory.
func NewRegistry(dir Directory) *Registry {
	return &Registry{handlers: make(map[key]HandlerFunc), dir: dir}
}

// Register adds or replaces the handler for (tier, kind).
func (r *Registry) Register(tier agent.Tier, kind bus.Kind, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key{tier, kind}] = fn
}

// Get returns the handler for (tier, kind), falling back to AnyTier.
// It returns nil if neither is registered.
func (r *Registry) Get(tier agent.Tier, kind bus.Kind) HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.handlers[key{tier, kind}]; ok {
		return fn
	}
	return r.handlers[key{AnyTier, kind}]
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Kinds returns every kind with at least one handler, sorted.
func (r *Registry) Kinds() []bus.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[bus.Kind]bool)
	for k := range r.handlers {
		seen[k.kind] = true
	}
	kinds := make([]bus.Kind, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Dispatch runs the handler registered for the receiver's tier and the
// message kind. It implements agent.Dispatcher.
func (r *Registry) Dispatch(self agent.Profile, msg bus.Message) (agent.Result, bool) {
	fn := r.Get(self.Tier, msg.Kind)
	if fn == nil {
		return agent.Result{}, false
	}
	return fn(Env{Self: self, Dir: r.dir}, msg), true
}

// Default returns a registry with every standard procedure installed.
func Default(dir Directory) *Registry {
	r := NewRegistry(dir)
	registerEngineering(r)
	registerPeople(r)
	registerSupport(r)
	registerOperations(r)
	registerMarketing(r)
	registerDesign(r)
	return r
}

func send(env Env, msg bus.Message, to string, kind bus.Kind, payload string) bus.Message {
	return msg.Derive(env.Self.ID, env.Self.Role, to, kind, payload)
}

func emit(notes []string, out ...bus.Message) agent.Result {
	return agent.Result{Out: out, Notes: notes}
}

func complete(notes ...string) agent.Result {
	return agent.Result{Notes: notes, Complete: true}
}
