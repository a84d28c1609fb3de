package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/app"
	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

func (ctl *SessionController) handleHello(sid core.SessionID, c *WsConn, data []byte) {
	var p domain.HelloEvent
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendErr(c, domain.ErrBadPayload)
		return
	}

	switch p.Role {
	case "admin":
		if err := ctl.requireAdmin(sid); err != nil {
			ctl.sendErr(c, err)
			return
		}
		ctl.send(c, app.Event("welcome", map[string]any{"role": "admin"}))
	case "player", "":
		if p.PlayerID != "" {
			player, err := ctl.Orch.Players.Get(domain.PlayerID(p.PlayerID))
			if err != nil {
				ctl.sendErr(c, err)
				return
			}
			ctl.Orch.Registry.BindPlayer(sid, player.ID)
			ctl.send(c, app.Event("welcome", map[string]any{
				"role":    "player",
				"player":  player,
				"balance": player.Balance(),
			}))
			return
		}
		ctl.send(c, app.Event("welcome", map[string]any{"role": "player"}))
	default:
		ctl.sendErr(c, domain.ErrBadPayload)
	}
}

func (ctl *SessionController) handleRegister(sid core.SessionID, c *WsConn, data []byte) {
	var p domain.RegisterEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	player, err := ctl.Orch.Players.Create(p.Name, p.Phone, p.Stake, p.Variant)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	ctl.Orch.Registry.BindPlayer(sid, player.ID)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("player", string(player.ID)).Msg("registered")
	ctl.send(c, app.Event("registered", map[string]any{
		"player":  player,
		"balance": player.Balance(),
	}))
}

func (ctl *SessionController) handleJoin(sid core.SessionID, c *WsConn, data []byte) {
	pid, err := ctl.playerOf(sid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.JoinRoomEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	snap, err := ctl.Orch.Rooms.Join(pid, domain.RoomID(p.RoomID))
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	ctl.send(c, app.Event("room_state", map[string]any{"room": snap}))

	player, err := ctl.Orch.Players.Get(pid)
	if err != nil {
		return
	}
	ctl.Orch.Dispatch.BroadcastToRoom(snap.Room.ID, app.Event("member_joined", map[string]any{
		"room_id":   snap.Room.ID,
		"player_id": player.ID,
		"name":      player.Name,
	}))
}

func (ctl *SessionController) handleLeave(sid core.SessionID, c *WsConn) {
	pid, err := ctl.playerOf(sid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	player, err := ctl.Orch.Players.Get(pid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	roomID := player.RoomID
	destroyed, err := ctl.Orch.Rooms.Leave(pid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	ctl.send(c, app.Event("left", map[string]any{"room_id": roomID}))
	if !destroyed {
		ctl.Orch.Dispatch.BroadcastToRoom(roomID, app.Event("member_left", map[string]any{
			"room_id":   roomID,
			"player_id": player.ID,
			"name":      player.Name,
		}))
	}
}

func (ctl *SessionController) handleMark(sid core.SessionID, c *WsConn, data []byte) {
	pid, err := ctl.playerOf(sid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.MarkEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	if err := ctl.Orch.Players.Mark(pid, p.Number, p.On); err != nil {
		ctl.sendErr(c, err)
		return
	}
	player, err := ctl.Orch.Players.Get(pid)
	if err != nil || player.RoomID == "" {
		return
	}
	// Mark spam is the bursty path; coalesce it.
	ctl.Orch.Dispatch.RateLimitedBroadcast(player.RoomID, app.Event("marked", map[string]any{
		"room_id":   player.RoomID,
		"player_id": player.ID,
		"number":    p.Number,
		"on":        p.On,
	}))
}

func (ctl *SessionController) handleWin(sid core.SessionID, c *WsConn, data []byte) {
	pid, err := ctl.playerOf(sid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.WinEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	// Resolve the room before the claim; the player record can be
	// reaped by a concurrent disconnect right after a successful claim.
	player, err := ctl.Orch.Players.Get(pid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	winner, err := ctl.Orch.Rooms.ClaimWin(pid, p.Pattern)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	frame := app.Event("winner", map[string]any{
		"room_id": player.RoomID,
		"winner":  winner,
	})
	ctl.Orch.Dispatch.BroadcastToRoom(player.RoomID, frame)
	ctl.Orch.Dispatch.BroadcastToAdmins(frame)
}

func (ctl *SessionController) handleChat(sid core.SessionID, c *WsConn, data []byte) {
	pid, err := ctl.playerOf(sid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.ChatEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	player, err := ctl.Orch.Players.Get(pid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	if player.RoomID == "" {
		ctl.sendErr(c, domain.ErrNotInRoom)
		return
	}
	ctl.Orch.Dispatch.BroadcastToRoom(player.RoomID, app.Event("chat", map[string]any{
		"room_id":   player.RoomID,
		"player_id": player.ID,
		"name":      player.Name,
		"text":      p.Text,
	}))
}

func (ctl *SessionController) handlePayment(sid core.SessionID, c *WsConn, data []byte) {
	pid, err := ctl.playerOf(sid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.AmountEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	balance, err := ctl.Orch.Players.ProcessPayment(pid, p.Amount)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	ctl.send(c, app.Event("balance", map[string]any{
		"player_id": pid,
		"balance":   balance,
	}))
}

func (ctl *SessionController) handleWithdraw(sid core.SessionID, c *WsConn, data []byte) {
	pid, err := ctl.playerOf(sid)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	var p domain.AmountEvent
	if err := domain.Decode(data, &p); err != nil {
		ctl.sendErr(c, err)
		return
	}
	balance, err := ctl.Orch.Players.ProcessWithdrawal(pid, p.Amount)
	if err != nil {
		ctl.sendErr(c, err)
		return
	}
	ctl.send(c, app.Event("balance", map[string]any{
		"player_id": pid,
		"balance":   balance,
	}))
}
