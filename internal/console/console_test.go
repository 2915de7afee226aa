package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayuer/virtualco/internal/tracker"
)

func TestPrinter_Plain(t *testing.T) {
	var sb strings.Builder
	p := New(&sb, true)

	p.Header("checkout", 81, 45)
	p.Tick(3)
	p.Banner("Customer reports a crash")

	out := sb.String()
	assert.Equal(t,
		"=== Virtual company online: 81 agents, scenario \"checkout\", 45 ticks ===\n"+
			"--- Tick 3 ---\n"+
			">>> Customer reports a crash\n",
		out)
}

func TestPrinter_Stalled(t *testing.T) {
	var sb strings.Builder
	p := New(&sb, true)

	p.Stalled(tracker.Flow{ID: "0190abcd-1234-5678", Label: "URGENT: slow query", InFlight: 1, LastSeen: 4}, 9)
	assert.Contains(t, sb.String(), "Workflow 234-5678 stalled at tick 9: no progress since tick 4, 1 in flight (URGENT: slow query)")
}

func TestPrinter_Summary(t *testing.T) {
	var sb strings.Builder
	p := New(&sb, true)

	flows := []tracker.Flow{{ID: "c1", Label: "Implement checkout", Hops: 12, Completed: true}}
	counts := map[tracker.Status]int{tracker.StatusCompleted: 1}
	p.Summary("tick budget reached", 45, counts, flows, func(tracker.Flow) tracker.Status { return tracker.StatusCompleted })

	out := sb.String()
	assert.Contains(t, out, "Simulation ended at tick 45 (tick budget reached)")
	assert.Contains(t, out, "Workflows: active=0 stalled=0 completed=1")
	assert.Contains(t, out, "completed c1 hops=12 dropped=0 Implement checkout")
}

func TestPrinter_StyledKeepsText(t *testing.T) {
	var sb strings.Builder
	p := New(&sb, false)

	p.Summary("interrupted", 2, nil, nil, nil)
	assert.Contains(t, sb.String(), "Simulation ended at tick 2 (interrupted)")
}
