package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/app"
	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

func (ctl *SessionController) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.TrySend(app.Event(domain.EvPing, nil))
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SessionController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		ctl.Orch.OnDisconnect(sid, c)
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleEvent(sid, c, data)
		}
	}
}

func (ctl *SessionController) handleEvent(sid core.SessionID, c *WsConn, data []byte) {
	ctl.Orch.Registry.MarkHeartbeat(sid)

	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		ctl.sendErr(c, domain.ErrBadPayload)
		return
	}

	switch env.Type {
	case domain.EvHello:
		ctl.handleHello(sid, c, data)
	case domain.EvRegister:
		ctl.handleRegister(sid, c, data)
	case domain.EvJoinRoom:
		ctl.handleJoin(sid, c, data)
	case domain.EvLeaveRoom:
		ctl.handleLeave(sid, c)
	case domain.EvStartGame:
		ctl.handleStart(sid, c, data)
	case domain.EvNumberCalled:
		ctl.handleNumberCalled(sid, c, data)
	case domain.EvMark:
		ctl.handleMark(sid, c, data)
	case domain.EvWin:
		ctl.handleWin(sid, c, data)
	case domain.EvChat:
		ctl.handleChat(sid, c, data)
	case domain.EvPayment:
		ctl.handlePayment(sid, c, data)
	case domain.EvWithdraw:
		ctl.handleWithdraw(sid, c, data)
	case domain.EvAdminCommand:
		ctl.handleAdminCommand(sid, c, data)
	case domain.EvPing:
		ctl.Orch.Registry.MarkPong(sid)
		ctl.send(c, app.Event(domain.EvPong, nil))
	case domain.EvPong:
		ctl.Orch.Registry.MarkPong(sid)
	default:
		ctl.sendErr(c, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, env.Type))
	}
}

func (ctl *SessionController) send(c *WsConn, frame core.Frame) {
	if frame == nil {
		return
	}
	if err := c.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("send dropped")
	}
}

// sendErr converts any failure into a single-recipient error event;
// nothing propagates as a process-level failure.
func (ctl *SessionController) sendErr(c *WsConn, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		log.Error().Err(err).Str("module", "signal").Msg("internal error")
	}
	ctl.send(c, app.Event("error", map[string]any{
		"kind":    kind,
		"message": err.Error(),
	}))
}

// playerOf resolves the registered player bound to this endpoint.
func (ctl *SessionController) playerOf(sid core.SessionID) (domain.PlayerID, error) {
	pid, ok := ctl.Orch.Registry.PlayerOf(sid)
	if !ok {
		return "", domain.ErrPlayerNotFound
	}
	return pid, nil
}

func (ctl *SessionController) requireAdmin(sid core.SessionID) error {
	role, ok := ctl.Orch.Registry.RoleOf(sid)
	if !ok || role != app.RoleAdmin {
		return domain.ErrNotAdmin
	}
	return nil
}
