package org

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
)

// Company is a registered set of agents with their hierarchy linked.
type Company struct {
	Bus      *bus.Bus
	Agents   []*agent.Agent
	Warnings []string
}

// Build creates one agent per roster entry, registers each on b and links the
// reporting lines.
func Build(entries []Entry, b *bus.Bus, logger *log.Logger) (*Company, error) {
	if logger == nil {
		logger = log.Default()
	}
	agents := make([]*agent.Agent, 0, len(entries))
	for _, e := range entries {
		spec, err := e.Spec()
		if err != nil {
			return nil, err
		}
		a := agent.New(spec, logger)
		if err := b.Register(a); err != nil {
			return nil, fmt.Errorf("register %s: %w", spec.Role, err)
		}
		agents = append(agents, a)
	}
	logger.Printf("[Org] ✅ Registered %d agents", len(agents))

	warnings := BuildHierarchy(agents, b, logger)
	return &Company{Bus: b, Agents: agents, Warnings: warnings}, nil
}

// BuildHierarchy appends every agent's role to its manager's direct reports.
// Running it again adds nothing. Managers that cannot be resolved are
// returned as warnings and skipped.
func BuildHierarchy(agents []*agent.Agent, b *bus.Bus, logger *log.Logger) []string {
	if logger == nil {
		logger = log.Default()
	}
	var warnings []string
	for _, a := range agents {
		if a.ReportsTo() == "" {
			continue
		}
		m, ok := b.Lookup(a.ReportsTo())
		if !ok {
			w := fmt.Sprintf("Manager '%s' not found for '%s'", a.ReportsTo(), a.Role())
			logger.Printf("[Org] ⚠️ %s", w)
			warnings = append(warnings, w)
			continue
		}
		manager, ok := m.(*agent.Agent)
		if !ok {
			continue
		}
		manager.AddReport(a.Role())
	}
	return warnings
}

// Find returns the first agent holding role.
func (c *Company) Find(role string) *agent.Agent {
	for _, a := range c.Agents {
		if a.Role() == role {
			return a
		}
	}
	return nil
}

// ByTier returns every agent at the given tier, in roster order.
func (c *Company) ByTier(tier agent.Tier) []*agent.Agent {
	var out []*agent.Agent
	for _, a := range c.Agents {
		if a.Tier() == tier {
			out = append(out, a)
		}
	}
	return out
}

// WriteChart prints the reporting tree. Agents whose manager is missing are
// printed as extra roots.
func (c *Company) WriteChart(w io.Writer) error {
	known := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		known[a.Role()] = true
	}
	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.ReportsTo() != "" && known[a.ReportsTo()] {
			continue
		}
		if err := c.writeNode(w, a, 0, seen); err != nil {
			return err
		}
	}
	return nil
}

func (c *Company) writeNode(w io.Writer, a *agent.Agent, depth int, seen map[string]bool) error {
	if seen[a.Role()] {
		return nil
	}
	seen[a.Role()] = true

	if _, err := fmt.Fprintf(w, "%s%s (%s) [%s]\n", strings.Repeat("  ", depth), a.Role(), a.Name(), a.Tier()); err != nil {
		return err
	}
	for _, role := range a.DirectReports() {
		if r := c.Find(role); r != nil {
			if err := c.writeNode(w, r, depth+1, seen); err != nil {
				return err
			}
		}
	}
	return nil
}
