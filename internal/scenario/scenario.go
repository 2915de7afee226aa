// Package scenario provides the scripted stimuli that drive a simulation:
// YAML triggers that inject a message at a given tick.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
)

//go:embed default.yaml
var defaultScenario []byte

// DefaultScenario returns the built-in scenario file contents.
func DefaultScenario() []byte {
	return defaultScenario
}

// Trigger injects one message (or one per agent of a tier) at a tick.
type Trigger struct {
	Tick     int    `yaml:"tick"`
	Banner   string `yaml:"banner,omitempty"`
	From     string `yaml:"from"`
	SenderID string `yaml:"sender_id,omitempty"`
	To       string `yaml:"to,omitempty"`
	ToTier   string `yaml:"to_tier,omitempty"`
	Kind     string `yaml:"kind"`
	Payload  string `yaml:"payload"`
	Domain   string `yaml:"domain,omitempty"`
	Work     string `yaml:"work,omitempty"`
	Signal   string `yaml:"signal,omitempty"`
	Priority int    `yaml:"priority,omitempty"`
	Enabled  *bool  `yaml:"enabled,omitempty"`

	kind       bus.Kind
	signal     bus.Signal
	tier       agent.Tier
	sourceFile string
}

// IsEnabled returns whether the trigger is enabled (default true).
func (t Trigger) IsEnabled() bool {
	if t.Enabled == nil {
		return true
	}
	return *t.Enabled
}

// MessageKind returns the validated kind.
func (t Trigger) MessageKind() bus.Kind {
	return t.kind
}

// Tier returns the validated receiver tier, empty for single-role triggers.
func (t Trigger) Tier() agent.Tier {
	return t.tier
}

// Source returns the file the trigger was loaded from.
func (t Trigger) Source() string {
	return t.sourceFile
}

// Intent returns the explicit routing tag, zero when the payload should be
// classified instead.
func (t Trigger) Intent() bus.Intent {
	return bus.Intent{Domain: bus.Domain(t.Domain), Work: bus.Work(t.Work)}
}

func (t *Trigger) validate() error {
	if t.Tick < 0 {
		return fmt.Errorf("negative tick %d", t.Tick)
	}
	if t.From == "" {
		return errors.New("missing from")
	}
	if (t.To == "") == (t.ToTier == "") {
		return errors.New("exactly one of to and to_tier is required")
	}
	k, err := bus.ParseKind(t.Kind)
	if err != nil {
		return err
	}
	t.kind = k
	if t.signal, err = bus.ParseSignal(t.Signal); err != nil {
		return err
	}
	if t.ToTier != "" {
		tier, err := agent.ParseTier(t.ToTier)
		if err != nil {
			return err
		}
		t.tier = tier
	}
	return nil
}

// Build renders the payload and creates one message per receiver. All
// messages of one trigger share a correlation ID.
func (t Trigger) Build(senderID string, receivers []string) []bus.Message {
	correlation := bus.NewCorrelationID()
	out := make([]bus.Message, 0, len(receivers))
	for _, to := range receivers {
		payload := RenderTemplate(t.Payload, map[string]any{
			"tick": t.Tick,
			"from": t.From,
			"to":   to,
		})
		msg := bus.NewMessage(senderID, t.From, to, t.kind, payload).
			WithCorrelation(correlation).
			WithIntent(t.Intent()).
			WithSignal(t.signal)
		out = append(out, msg)
	}
	return out
}

// Scenario is an ordered list of triggers.
type Scenario struct {
	Name     string    `yaml:"name"`
	Triggers []Trigger `yaml:"triggers"`
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for i := range s.Triggers {
		if err := s.Triggers[i].validate(); err != nil {
			return nil, fmt.Errorf("trigger %d (tick %d): %w", i, s.Triggers[i].Tick, err)
		}
	}
	return &s, nil
}

// Load reads a scenario file, or merges every YAML file when path is a
// directory. An empty path or a missing file yields the built-in scenario.
// A nil logger falls back to log.Default().
func Load(path string, logger *log.Logger) (*Scenario, error) {
	if logger == nil {
		logger = log.Default()
	}
	if path == "" {
		return Parse(defaultScenario)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("[Scenario] No scenario at %s, using built-in", path)
			return Parse(defaultScenario)
		}
		return nil, fmt.Errorf("stat scenario: %w", err)
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	merged := &Scenario{Name: filepath.Base(path)}
	for _, entry := range entries {
		if entry.IsDir() || (!strings.HasSuffix(entry.Name(), ".yaml") && !strings.HasSuffix(entry.Name(), ".yml")) {
			continue
		}
		s, err := loadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		merged.Triggers = append(merged.Triggers, s.Triggers...)
	}
	logger.Printf("[Scenario] ✅ Loaded %d triggers from %s", len(merged.Triggers), path)
	return merged, nil
}

func loadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for i := range s.Triggers {
		s.Triggers[i].sourceFile = filepath.Base(path)
	}
	return s, nil
}

// Due returns the enabled triggers for tick, highest priority first and
// otherwise in file order.
func (s *Scenario) Due(tick int) []Trigger {
	var due []Trigger
	for _, t := range s.Triggers {
		if t.Tick == tick && t.IsEnabled() {
			due = append(due, t)
		}
	}
	for i := 1; i < len(due); i++ {
		for j := i; j > 0 && due[j].Priority > due[j-1].Priority; j-- {
			due[j], due[j-1] = due[j-1], due[j]
		}
	}
	return due
}

// LastTick returns the latest tick any enabled trigger fires at, or -1.
func (s *Scenario) LastTick() int {
	last := -1
	for _, t := range s.Triggers {
		if t.IsEnabled() && t.Tick > last {
			last = t.Tick
		}
	}
	return last
}
