package org

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
)

var quiet = log.New(io.Discard, "", 0)

func buildDefault(t *testing.T) *Company {
	t.Helper()
	entries, err := LoadRoster("")
	require.NoError(t, err)
	c, err := Build(entries, bus.New(bus.PolicyRoundRobin, quiet), quiet)
	require.NoError(t, err)
	return c
}

func TestDefaultRoster(t *testing.T) {
	entries, err := ParseRoster(DefaultRoster())
	require.NoError(t, err)
	assert.Len(t, entries, 81)
	assert.Equal(t, "CEO", entries[0].Role)
	assert.Empty(t, entries[0].ReportsTo)
}

func TestBuild_DefaultRosterHasNoWarnings(t *testing.T) {
	c := buildDefault(t)
	assert.Empty(t, c.Warnings)
	assert.Equal(t, 81, c.Bus.Len())

	vp := c.Find("VP Engineering")
	require.NotNil(t, vp)
	assert.Equal(t, []string{
		"Director of Engineering",
		"Director of QA",
		"Principal Engineer (Backend)",
		"Principal Engineer (Frontend)",
		"Director of TPM",
	}, vp.DirectReports())
	assert.Equal(t, 1, vp.Backlog())

	emb := c.Find("Engineering Manager (Backend)")
	assert.Equal(t, []string{"Backend Dev 1", "Backend Dev 2", "Backend Dev 4", "Backend Dev 5"}, emb.DirectReports())
}

func TestBuildHierarchy_ReportsMatchReportsTo(t *testing.T) {
	c := buildDefault(t)
	for _, m := range c.Agents {
		for _, role := range m.DirectReports() {
			r := c.Find(role)
			require.NotNil(t, r, role)
			assert.Equal(t, m.Role(), r.ReportsTo(), role)
		}
	}
}

func TestBuildHierarchy_Idempotent(t *testing.T) {
	c := buildDefault(t)
	before := map[string][]string{}
	for _, a := range c.Agents {
		before[a.Role()] = a.DirectReports()
	}

	BuildHierarchy(c.Agents, c.Bus, quiet)
	for _, a := range c.Agents {
		assert.Equal(t, before[a.Role()], a.DirectReports(), a.Role())
	}
}

func TestBuildHierarchy_MissingManager(t *testing.T) {
	entries := []Entry{
		{Name: "Alice", Role: "CEO", Tier: "C-Suite"},
		{Name: "Ghost", Role: "Intern Wrangler", Tier: "IC", ReportsTo: "Head of Interns"},
	}
	c, err := Build(entries, bus.New(bus.PolicyRoundRobin, quiet), quiet)
	require.NoError(t, err)
	require.Len(t, c.Warnings, 1)
	assert.Contains(t, c.Warnings[0], "Head of Interns")
	assert.Empty(t, c.Find("CEO").DirectReports())
}

func TestBuild_InvalidTier(t *testing.T) {
	_, err := Build([]Entry{{Role: "CEO", Tier: "Overlord"}}, bus.New(bus.PolicyRoundRobin, quiet), quiet)
	assert.ErrorIs(t, err, agent.ErrUnknownTier)
}

func TestLoadRoster_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	data := "agents:\n  - {name: A, role: CEO, tier: C-Suite}\n  - {name: B, role: CTO, tier: C-Suite, reports_to: CEO}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	entries, err := LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "CEO", entries[1].ReportsTo)
}

func TestLoadRoster_MissingFileUsesDefault(t *testing.T) {
	entries, err := LoadRoster(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Len(t, entries, 81)
}

func TestLoadRoster_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents: [oops"), 0644))
	_, err := LoadRoster(path)
	assert.Error(t, err)
}

func TestByTier(t *testing.T) {
	c := buildDefault(t)
	vps := c.ByTier(agent.TierVP)
	roles := make([]string, len(vps))
	for i, a := range vps {
		roles[i] = a.Role()
	}
	assert.Contains(t, roles, "VP Engineering")
	assert.Contains(t, roles, "VP Marketing")
	assert.Len(t, roles, 6)
}

func TestWriteChart(t *testing.T) {
	c := buildDefault(t)
	var buf bytes.Buffer
	require.NoError(t, c.WriteChart(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 81)
	assert.Equal(t, "CEO (Alice) [C-Suite]", lines[0])
	assert.Contains(t, buf.String(), "\n  CTO (Bob) [C-Suite]\n    VP Engineering (Frank) [VP]\n")
}
