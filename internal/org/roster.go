// Package org loads the company roster and wires the reporting hierarchy.
package org

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dayuer/virtualco/internal/agent"
)

//go:embed roster.yaml
var defaultRoster []byte

// DefaultRoster returns the built-in roster file contents.
func DefaultRoster() []byte {
	return defaultRoster
}

// Entry is one agent in roster.yaml.
type Entry struct {
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	Tier      string `yaml:"tier"`
	ReportsTo string `yaml:"reports_to,omitempty"`
	Category  string `yaml:"category,omitempty"`
	Backlog   int    `yaml:"backlog,omitempty"`
}

// Spec converts the entry into an agent spec, validating its tier.
func (e Entry) Spec() (agent.Spec, error) {
	if e.Role == "" {
		return agent.Spec{}, fmt.Errorf("roster entry %q: missing role", e.Name)
	}
	tier, err := agent.ParseTier(e.Tier)
	if err != nil {
		return agent.Spec{}, fmt.Errorf("roster entry %q: %w", e.Role, err)
	}
	return agent.Spec{
		Name:      e.Name,
		Role:      e.Role,
		Category:  e.Category,
		Tier:      tier,
		ReportsTo: e.ReportsTo,
		Backlog:   e.Backlog,
	}, nil
}

// rosterFile is the top-level structure of roster.yaml.
type rosterFile struct {
	Agents []Entry `yaml:"agents"`
}

// ParseRoster decodes roster YAML.
func ParseRoster(data []byte) ([]Entry, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return f.Agents, nil
}

// LoadRoster reads a roster file. An empty path or a missing file yields the
// built-in roster.
func LoadRoster(path string) ([]Entry, error) {
	if path == "" {
		return ParseRoster(defaultRoster)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ParseRoster(defaultRoster)
		}
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(data)
}
