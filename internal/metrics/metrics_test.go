package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayuer/virtualco/internal/bus"
	"github.com/dayuer/virtualco/internal/tracker"
)

func render(t *testing.T, m *Metrics) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, m.WritePrometheus(&sb))
	return sb.String()
}

func TestObserve_CountsDeliveredAndDropped(t *testing.T) {
	m := New()
	msg := bus.NewMessage("a", "CTO", "VP Engineering", bus.KindTask, "x")

	m.Observe(bus.Receipt{Msg: msg, AgentID: "vp"})
	m.Observe(bus.Receipt{Msg: msg, AgentID: "vp"})
	m.Observe(bus.Receipt{Msg: msg, Err: errors.New("no such role")})

	out := render(t, m)
	assert.Contains(t, out, `virtualco_messages_routed_total{kind="TASK"} 2`)
	assert.Contains(t, out, `virtualco_messages_dropped_total{kind="TASK"} 1`)
}

func TestObserveTick(t *testing.T) {
	m := New()
	m.ObserveTick(7, map[tracker.Status]int{tracker.StatusCompleted: 3, tracker.StatusStalled: 1})

	out := render(t, m)
	assert.Contains(t, out, "virtualco_tick 7")
	assert.Contains(t, out, `virtualco_workflows{status="completed"} 3`)
	assert.Contains(t, out, `virtualco_workflows{status="stalled"} 1`)
	assert.Contains(t, out, `virtualco_workflows{status="active"} 0`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.Tick.Set(3)
	assert.Contains(t, render(t, a), "virtualco_tick 3")
	assert.Contains(t, render(t, b), "virtualco_tick 0")
}
