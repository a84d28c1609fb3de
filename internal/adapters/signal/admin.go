package signal

import (
	"github.com/habeshagames/bingohub/internal/app"
	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

func (ctl *SessionController) handleStart(sid core.SessionID, c *WsConn, data []byte) {
	if err := ctl.requireAdmin(sid); err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.StartGameEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	snap, err := ctl.Orch.Rooms.Start(domain.RoomID(p.RoomID), sid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	frame := app.Event("game_started", map[string]any{"room": snap})
	ctl.Orch.Dispatch.BroadcastToRoom(snap.Room.ID, frame)
	ctl.Orch.Dispatch.BroadcastToAdmins(frame)
}

func (ctl *SessionController) handleNumberCalled(sid core.SessionID, c *WsConn, data []byte) {
	if err := ctl.requireAdmin(sid); err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.NumberCalledEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	roomID := domain.RoomID(p.RoomID)
	called, err := ctl.Orch.Rooms.CallNumber(roomID, sid, p.Number)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	// Rapid calling is the other bursty path; coalesce it.
	ctl.Orch.Dispatch.RateLimitedBroadcast(roomID, app.Event("number_called", map[string]any{
		"room_id": roomID,
		"number":  p.Number,
		"called":  called,
	}))
}

func (ctl *SessionController) handleAdminCommand(sid core.SessionID, c *WsConn, data []byte) {
	if err := ctl.requireAdmin(sid); err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.AdminCommandEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}

	switch p.Command {
	case domain.CmdBroadcast:
		ctl.Orch.Dispatch.Announce(app.Event("announcement", map[string]any{"message": p.Message}))
		ctl.ack(c, p.Command)

	case domain.CmdKick:
		if err := ctl.Orch.EvictPlayer(domain.PlayerID(p.PlayerID)); err != nil {
			ctl.sendErr(c, err)
			return
		}
		ctl.ack(c, p.Command)

	case domain.CmdGetStats:
		stats := ctl.Orch.Rooms.Stats()
		ctl.send(c, app.Event("stats", map[string]any{
			"players":      stats.Players,
			"rooms":        stats.Rooms,
			"active_games": stats.ActiveGames,
			"connections":  ctl.Orch.Registry.Count(),
		}))

	case domain.CmdGetPlayers:
		ctl.send(c, app.Event("players", map[string]any{
			"players": ctl.Orch.Players.Snapshot(),
		}))

	case domain.CmdEndGame:
		roomID := domain.RoomID(p.RoomID)
		snap, err := ctl.Orch.Rooms.End(roomID, sid, true)
		if err != nil {
			ctl.sendErr(c, err)
			return
		}
		frame := app.Event("game_ended", map[string]any{"room": snap})
		ctl.Orch.Dispatch.BroadcastToRoom(roomID, frame)
		ctl.Orch.Dispatch.BroadcastToAdmins(frame)

	case domain.CmdResetRoom:
		roomID := domain.RoomID(p.RoomID)
		snap, err := ctl.Orch.Rooms.Reset(roomID)
		if err != nil {
			ctl.sendErr(c, err)
			return
		}
		ctl.Orch.Dispatch.BroadcastToRoom(roomID, app.Event("room_reset", map[string]any{"room": snap}))
	}
}

func (ctl *SessionController) ack(c *WsConn, command string) {
	ctl.send(c, app.Event("admin_ok", map[string]any{"command": command}))
}
