package agent

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayuer/virtualco/internal/bus"
)

var quiet = log.New(io.Discard, "", 0)

type dispatchFunc func(Profile, bus.Message) (Result, bool)

func (f dispatchFunc) Dispatch(p Profile, m bus.Message) (Result, bool) { return f(p, m) }

func echo(p Profile, m bus.Message) (Result, bool) {
	out := m.Derive(p.ID, p.Role, m.SenderRole, bus.KindDone, "done: "+m.Payload)
	return Result{Out: []bus.Message{out}, Notes: []string{"handled " + m.Payload}}, true
}

func TestNew_DerivesCategory(t *testing.T) {
	a := New(Spec{Name: "Paul", Role: "Backend Dev 1", Tier: TierIC, ReportsTo: "Engineering Manager (Backend)"}, quiet)
	assert.NotEmpty(t, a.ID())
	assert.Equal(t, "Backend Dev", a.Category())
	assert.True(t, a.Profile().IsDeveloper())

	ops := New(Spec{Role: "DevOps Engineer 1"}, quiet)
	assert.Equal(t, TierIC, ops.Tier())
	assert.False(t, ops.Profile().IsDeveloper())
}

func TestDrain_FIFOAndLog(t *testing.T) {
	a := New(Spec{Name: "Frank", Role: "VP Engineering", Tier: TierVP}, quiet)
	a.Receive(bus.NewMessage("1", "CTO", "VP Engineering", bus.KindTask, "first"))
	a.Receive(bus.NewMessage("1", "CTO", "VP Engineering", bus.KindTask, "second"))
	assert.Equal(t, 2, a.Pending())

	handled := a.Drain(dispatchFunc(echo))
	require.Len(t, handled, 2)
	assert.Equal(t, "first", handled[0].Msg.Payload)
	assert.Equal(t, "second", handled[1].Msg.Payload)
	assert.Equal(t, "done: first", handled[0].Result.Out[0].Payload)
	assert.Zero(t, a.Pending())

	assert.Equal(t, []string{
		"Received: first", "handled first",
		"Received: second", "handled second",
	}, a.Activity().Entries())
}

func TestDrain_ReentrantCallIsRejected(t *testing.T) {
	a := New(Spec{Role: "CEO", Tier: TierCSuite}, quiet)
	a.Receive(bus.NewMessage("1", "CTO", "CEO", bus.KindDirect, "hi"))

	var inner []Handled
	d := dispatchFunc(func(p Profile, m bus.Message) (Result, bool) {
		inner = a.Drain(dispatchFunc(echo))
		return Result{}, true
	})
	handled := a.Drain(d)
	assert.Len(t, handled, 1)
	assert.Nil(t, inner)
}

func TestDrain_UnmatchedAndBacklog(t *testing.T) {
	a := New(Spec{Role: "VP Engineering", Tier: TierVP, Backlog: 1}, quiet)
	a.Receive(bus.NewMessage("1", "COO", "VP Engineering", bus.KindExpedite, "go"))
	a.Receive(bus.NewMessage("1", "COO", "VP Engineering", bus.KindBroadcast, "fyi"))

	d := dispatchFunc(func(p Profile, m bus.Message) (Result, bool) {
		if m.Kind == bus.KindExpedite {
			assert.Equal(t, 1, p.Backlog)
			return Result{ClearBacklog: true}, true
		}
		return Result{}, false
	})
	handled := a.Drain(d)
	require.Len(t, handled, 2)
	assert.True(t, handled[0].Matched)
	assert.False(t, handled[1].Matched)
	assert.Zero(t, a.Backlog())
}

func TestProfile_ProcessedCountsActivity(t *testing.T) {
	a := New(Spec{Role: "Engineering Manager (Backend)", Tier: TierManager}, quiet)
	a.Receive(bus.NewMessage("1", "TPM - Core Platform", a.Role(), bus.KindAuditCheck, "audit"))

	var seen int
	a.Drain(dispatchFunc(func(p Profile, m bus.Message) (Result, bool) {
		seen = p.Processed
		return Result{}, true
	}))
	assert.Equal(t, 1, seen)
}

func TestAddReport_Idempotent(t *testing.T) {
	a := New(Spec{Role: "Director of Engineering", Tier: TierDirector}, quiet)
	assert.True(t, a.AddReport("Backend Architect"))
	assert.False(t, a.AddReport("Backend Architect"))
	assert.True(t, a.AddReport("DevOps Engineer 1"))
	assert.Equal(t, []string{"Backend Architect", "DevOps Engineer 1"}, a.DirectReports())

	reports := a.DirectReports()
	reports[0] = "mutated"
	assert.Equal(t, "Backend Architect", a.DirectReports()[0])
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("c-suite")
	require.NoError(t, err)
	assert.Equal(t, TierCSuite, tier)

	_, err = ParseTier("Intern")
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestActivityLog_AppendHistory(t *testing.T) {
	var l ActivityLog
	l.Append("First entry")
	l.Append("Second entry\n")
	assert.True(t, l.Contains("Second"))

	path := filepath.Join(t.TempDir(), "activity", "CTO.md")
	require.NoError(t, l.AppendHistory(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "## Run "))
	assert.True(t, strings.HasSuffix(string(data), "\n\nFirst entry\n\nSecond entry\n\n"))
}
