package bus

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBox struct {
	id, role, category string
	inbox              []Message
}

func (f *fakeBox) ID() string          { return f.id }
func (f *fakeBox) Role() string        { return f.role }
func (f *fakeBox) Category() string    { return f.category }
func (f *fakeBox) Receive(msg Message) { f.inbox = append(f.inbox, msg) }
func (f *fakeBox) Pending() int        { return len(f.inbox) }

func quietBus(p Policy) *Bus {
	return New(p, log.New(io.Discard, "", 0))
}

func box(id, role, category string) *fakeBox {
	return &fakeBox{id: id, role: role, category: category}
}

func TestRoute_ExactRole(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	cto := box("1", "CTO", "CTO")
	vp := box("2", "VP Engineering", "VP Engineering")
	require.NoError(t, b.Register(cto))
	require.NoError(t, b.Register(vp))

	err := b.Route(NewMessage("1", "CTO", "VP Engineering", KindTask, "ship it"))
	require.NoError(t, err)
	assert.Len(t, vp.inbox, 1)
	assert.Empty(t, cto.inbox)
}

func TestRoute_UnknownRoleIsDropped(t *testing.T) {
	var logs bytes.Buffer
	b := New(PolicyRoundRobin, log.New(&logs, "", 0))
	require.NoError(t, b.Register(box("1", "CTO", "")))

	var receipts []Receipt
	b.Subscribe(func(r Receipt) { receipts = append(receipts, r) })

	err := b.Route(NewMessage("1", "CTO", "Chief Vibes Officer", KindTask, "x"))
	assert.ErrorIs(t, err, ErrRoleNotFound)
	require.Len(t, receipts, 1)
	assert.False(t, receipts[0].Delivered())
	assert.Equal(t, 1, strings.Count(logs.String(), "Could not find recipient role"))
	assert.Contains(t, logs.String(), "'Chief Vibes Officer'")
}

func TestRoute_Totality(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	boxes := []*fakeBox{
		box("1", "Backend Dev 1", "Backend Dev"),
		box("2", "Backend Dev 2", "Backend Dev"),
		box("3", "CFO", ""),
	}
	for _, x := range boxes {
		require.NoError(t, b.Register(x))
	}

	addresses := []string{"Backend Dev 1", "Backend Dev", "CFO", "Nobody", "Backend Dev 3"}
	for _, addr := range addresses {
		before := 0
		for _, x := range boxes {
			before += len(x.inbox)
		}
		err := b.Route(NewMessage("x", "Customer", addr, KindDirect, "hi"))
		after := 0
		for _, x := range boxes {
			after += len(x.inbox)
		}
		if err == nil {
			assert.Equal(t, before+1, after, addr)
		} else {
			assert.Equal(t, before, after, addr)
		}
	}
}

func TestRoute_CategoryRoundRobin(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	d1 := box("1", "DevOps Engineer 1", "DevOps Engineer")
	d2 := box("2", "DevOps Engineer 2", "DevOps Engineer")
	require.NoError(t, b.Register(d1))
	require.NoError(t, b.Register(d2))

	for i := 0; i < 4; i++ {
		require.NoError(t, b.Route(NewMessage("x", "Backend Dev 2", "DevOps Engineer", KindReviewRequest, "review")))
	}
	assert.Len(t, d1.inbox, 2)
	assert.Len(t, d2.inbox, 2)
}

func TestRoute_ExactRoleBeatsCategory(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	d1 := box("1", "DevOps Engineer 1", "DevOps Engineer")
	d2 := box("2", "DevOps Engineer 2", "DevOps Engineer")
	require.NoError(t, b.Register(d1))
	require.NoError(t, b.Register(d2))

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Route(NewMessage("x", "CTO", "DevOps Engineer 2", KindTask, "t")))
	}
	assert.Empty(t, d1.inbox)
	assert.Len(t, d2.inbox, 3)
}

func TestRoute_LeastLoaded(t *testing.T) {
	b := quietBus(PolicyLeastLoaded)
	s1 := box("1", "Security Engineer 1", "Security Engineer")
	s2 := box("2", "Security Engineer 2", "Security Engineer")
	require.NoError(t, b.Register(s1))
	require.NoError(t, b.Register(s2))
	s1.Receive(NewMessage("x", "y", "Security Engineer 1", KindTask, "busy"))

	require.NoError(t, b.Route(NewMessage("x", "y", "Security Engineer", KindReviewRequest, "r")))
	assert.Len(t, s1.inbox, 1)
	assert.Len(t, s2.inbox, 1)
}

func TestRoute_AffinitySticksToCorrelation(t *testing.T) {
	b := quietBus(PolicyAffinity)
	d1 := box("1", "DevOps Engineer 1", "DevOps Engineer")
	d2 := box("2", "DevOps Engineer 2", "DevOps Engineer")
	require.NoError(t, b.Register(d1))
	require.NoError(t, b.Register(d2))

	for i := 0; i < 3; i++ {
		msg := NewMessage("x", "y", "DevOps Engineer", KindReviewRequest, "r").WithCorrelation("flow-a")
		require.NoError(t, b.Route(msg))
	}
	require.NoError(t, b.Route(NewMessage("x", "y", "DevOps Engineer", KindReviewRequest, "r").WithCorrelation("flow-b")))

	assert.Len(t, d1.inbox, 3)
	assert.Len(t, d2.inbox, 1)
}

func TestRegister_SharedRoleIsKept(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	a := box("1", "Recruiter", "")
	c := box("2", "Recruiter", "")
	require.NoError(t, b.Register(a))
	require.NoError(t, b.Register(c))
	assert.Equal(t, 2, b.Len())

	require.NoError(t, b.Route(NewMessage("x", "VP People", "Recruiter", KindInitiateHiring, "h")))
	require.NoError(t, b.Route(NewMessage("x", "VP People", "Recruiter", KindInitiateHiring, "h")))
	assert.Len(t, a.inbox, 1)
	assert.Len(t, c.inbox, 1)
}

func TestRegister_DuplicateID(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	require.NoError(t, b.Register(box("1", "CEO", "")))
	assert.ErrorIs(t, b.Register(box("1", "CTO", "")), ErrAgentExists)
}

func TestBroadcast_SkipsSender(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	ceo := box("1", "CEO", "")
	cto := box("2", "CTO", "")
	cfo := box("3", "CFO", "")
	for _, x := range []*fakeBox{ceo, cto, cfo} {
		require.NoError(t, b.Register(x))
	}

	n := b.Broadcast("1", "CEO", "all hands")
	assert.Equal(t, 2, n)
	assert.Empty(t, ceo.inbox)
	require.Len(t, cto.inbox, 1)
	assert.Equal(t, KindBroadcast, cto.inbox[0].Kind)
	assert.Equal(t, "CTO", cto.inbox[0].ReceiverRole)
	assert.Equal(t, cto.inbox[0].CorrelationID, cfo.inbox[0].CorrelationID)
}

func TestPeers_RegistrationOrder(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	for i, role := range []string{"Backend Dev 1", "Backend Dev 2", "Frontend Dev 1", "Backend Dev 4"} {
		cat := role[:len(role)-2]
		require.NoError(t, b.Register(box(string(rune('a'+i)), role, cat)))
	}
	assert.Equal(t, []string{"Backend Dev 1", "Backend Dev 2", "Backend Dev 4"}, b.Peers("Backend Dev 2"))
	assert.Nil(t, b.Peers("Nobody"))
}

func TestHasAndLookup(t *testing.T) {
	b := quietBus(PolicyRoundRobin)
	require.NoError(t, b.Register(box("1", "DevOps Engineer 1", "DevOps Engineer")))
	assert.True(t, b.Has("DevOps Engineer"))
	assert.True(t, b.Has("DevOps Engineer 1"))
	assert.False(t, b.Has("DevOps"))

	m, ok := b.Lookup("DevOps Engineer 1")
	require.True(t, ok)
	assert.Equal(t, "1", m.ID())
	_, ok = b.Lookup("DevOps Engineer")
	assert.False(t, ok)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRoundRobin, p)

	p, err = ParsePolicy("Least-Loaded")
	require.NoError(t, err)
	assert.Equal(t, PolicyLeastLoaded, p)

	_, err = ParsePolicy("random")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
