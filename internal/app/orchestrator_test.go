package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habeshagames/bingohub/internal/domain"
)

func newOrchestrator(f *roomFixture) *Orchestrator {
	return &Orchestrator{
		Registry: f.registry,
		Players:  f.players,
		Rooms:    f.rooms,
		Dispatch: f.dispatch,
	}
}

func TestOnDisconnectReconcilesPlayer(t *testing.T) {
	f := newRoomFixture(t, 0)
	orch := newOrchestrator(f)

	orch.OnDisconnect("s1", nil)

	assert.True(t, f.member1.isClosed())
	_, err := f.players.Get(f.pid1)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.Equal(t, []domain.PlayerID{f.pid2}, f.rooms.MembersOf("R1"))

	// The remaining member and the admin hear about the departure.
	frames := f.member2.sent()
	require.Len(t, frames, 1)
	assert.Equal(t, "member_left", frameType(t, frames[0]))
	assert.Len(t, f.admin.sent(), 1)

	// Replaying the same sid is a no-op.
	orch.OnDisconnect("s1", nil)
	assert.Len(t, f.member2.sent(), 1)
}

func TestOnDisconnectStaleSocketKeepsFreshSession(t *testing.T) {
	f := newRoomFixture(t, 0)
	orch := newOrchestrator(f)

	// Reconnect on the same sid: a fresh socket replaces member1's.
	fresh := &fakeEndpoint{}
	f.registry.Register("s1", fresh, RoleAnonymous)
	require.True(t, f.registry.BindPlayer("s1", f.pid1))
	require.True(t, f.member1.isClosed())

	// The replaced socket's read loop reports its own teardown; the
	// fresh session must survive it.
	orch.OnDisconnect("s1", f.member1)

	assert.False(t, fresh.isClosed())
	_, err := f.players.Get(f.pid1)
	require.NoError(t, err)
	assert.Contains(t, f.rooms.MembersOf("R1"), f.pid1)
	_, ep, ok := f.registry.LookupPlayer(f.pid1)
	require.True(t, ok)
	assert.Same(t, fresh, ep.(*fakeEndpoint))
}

func TestOnDisconnectAdminDetachesOnly(t *testing.T) {
	f := newRoomFixture(t, 0)
	orch := newOrchestrator(f)

	orch.OnDisconnect("admin", nil)

	assert.True(t, f.admin.isClosed())
	_, bound := f.rooms.AdminOf("R1")
	assert.False(t, bound)

	// The room and its members are untouched.
	snap, err := f.rooms.Get("R1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomActive, snap.Room.State)
	assert.Len(t, snap.Members, 2)
}

func TestOnDisconnectLastMemberDestroysRoom(t *testing.T) {
	f := newRoomFixture(t, 0)
	orch := newOrchestrator(f)

	orch.OnDisconnect("s1", nil)
	orch.OnDisconnect("s2", nil)

	_, err := f.rooms.Get("R1")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.Zero(t, f.players.Count())
}

func TestEvictPlayerOnline(t *testing.T) {
	f := newRoomFixture(t, 0)
	orch := newOrchestrator(f)

	require.NoError(t, orch.EvictPlayer(f.pid1))

	frames := f.member1.sent()
	require.Len(t, frames, 1)
	assert.Equal(t, "kicked", frameType(t, frames[0]))
	assert.True(t, f.member1.isClosed())

	_, err := f.players.Get(f.pid1)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.NotContains(t, f.rooms.MembersOf("R1"), f.pid1)
}

func TestEvictPlayerOffline(t *testing.T) {
	f := newRoomFixture(t, 0)
	orch := newOrchestrator(f)

	// Drop the socket first; the record stays behind.
	_, ok := f.registry.Unregister("s1", nil)
	require.True(t, ok)

	require.NoError(t, orch.EvictPlayer(f.pid1))

	_, err := f.players.Get(f.pid1)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.NotContains(t, f.rooms.MembersOf("R1"), f.pid1)

	assert.ErrorIs(t, orch.EvictPlayer("ghost"), domain.ErrPlayerNotFound)
}
