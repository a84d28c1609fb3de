package signal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habeshagames/bingohub/internal/app"
	"github.com/habeshagames/bingohub/internal/config"
	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

type okVerifier struct{}

func (okVerifier) Verify(core.WinClaim) bool { return true }

func newTestConn() *WsConn {
	return &WsConn{send: make(chan core.Frame, 16)}
}

func drainFrames(c *WsConn) []core.Frame {
	var out []core.Frame
	for {
		select {
		case fr := <-c.send:
			out = append(out, fr)
		default:
			return out
		}
	}
}

func frameType(t *testing.T, fr core.Frame) string {
	t.Helper()
	var env struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(fr, &env))
	return env.Type
}

// newWinFixture wires a controller over real stores with one claimant
// connected and an active two-player session in room R1.
func newWinFixture(t *testing.T) (*SessionController, *WsConn, domain.PlayerID) {
	t.Helper()
	players := core.NewPlayerStore()
	rooms := core.NewRoomStore(players, okVerifier{}, core.RoomConfig{
		MinPlayers: 2, MaxPlayers: 10, ServiceCharge: 0.2,
	})
	registry := app.NewRegistry()
	orch := &app.Orchestrator{
		Registry: registry,
		Players:  players,
		Rooms:    rooms,
		Dispatch: app.NewDispatcher(registry, rooms, 0),
	}

	var pid domain.PlayerID
	for _, name := range []string{"abebe", "kebede"} {
		p, err := players.Create(name, "", 50, domain.VariantClassic75)
		require.NoError(t, err)
		_, err = players.ProcessPayment(p.ID, 50)
		require.NoError(t, err)
		_, err = rooms.Join(p.ID, "R1")
		require.NoError(t, err)
		if name == "abebe" {
			pid = p.ID
		}
	}
	_, err := rooms.Start("R1", "caller")
	require.NoError(t, err)
	_, err = rooms.CallNumber("R1", "caller", 17)
	require.NoError(t, err)
	require.NoError(t, players.Mark(pid, 17, true))

	conn := newTestConn()
	registry.Register("s1", conn, app.RoleAnonymous)
	require.True(t, registry.BindPlayer("s1", pid))

	return NewSessionController(orch, &config.Config{}), conn, pid
}

func TestHandleWinBroadcastsToRoom(t *testing.T) {
	ctl, conn, pid := newWinFixture(t)

	ctl.handleWin("s1", conn, []byte(`{"type":"win","pattern":"line"}`))

	frames := drainFrames(conn)
	require.Len(t, frames, 1)
	assert.Equal(t, "winner", frameType(t, frames[0]))

	var got struct {
		RoomID string `json:"room_id"`
		Winner struct {
			PlayerID string  `json:"player_id"`
			Amount   float64 `json:"amount"`
		} `json:"winner"`
	}
	require.NoError(t, json.Unmarshal(frames[0], &got))
	assert.Equal(t, "R1", got.RoomID)
	assert.Equal(t, string(pid), got.Winner.PlayerID)
	assert.Equal(t, 80.0, got.Winner.Amount)
}

func TestHandleWinRemovedPlayerGetsError(t *testing.T) {
	ctl, conn, pid := newWinFixture(t)

	// The player is reaped (sweep or kick) while still bound; the
	// claim must turn into an error event, not a crash.
	_, err := ctl.Orch.Rooms.Leave(pid)
	require.NoError(t, err)
	require.NoError(t, ctl.Orch.Players.Remove(pid))

	ctl.handleWin("s1", conn, []byte(`{"type":"win","pattern":"line"}`))

	frames := drainFrames(conn)
	require.Len(t, frames, 1)
	assert.Equal(t, "error", frameType(t, frames[0]))

	var got struct {
		Kind domain.Kind `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(frames[0], &got))
	assert.Equal(t, domain.KindNotFound, got.Kind)
}
