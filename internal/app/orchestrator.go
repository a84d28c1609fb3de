package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

// Orchestrator owns the cross-store reconciliation that no single
// store can do alone: disconnects, evictions and the liveness sweep.
type Orchestrator struct {
	Registry *Registry
	Players  *core.PlayerStore
	Rooms    *core.RoomStore
	Dispatch *Dispatcher
}

// OnDisconnect reconciles one endpoint going away. ep is the
// disconnecting connection when the caller has it; a read loop whose
// socket was replaced by a reconnect then reaps nothing. Idempotent:
// the registry hands out each entry exactly once, so a read-loop exit
// racing the sweep for the same sid reconciles a single time.
func (o *Orchestrator) OnDisconnect(sid core.SessionID, ep core.Endpoint) {
	info, ok := o.Registry.Unregister(sid, ep)
	if !ok {
		return
	}
	o.reconcile(info)
}

func (o *Orchestrator) reconcile(info EndpointInfo) {
	info.Endpoint.Close()

	if info.Role == RoleAdmin {
		// Clears the admin binding only; the room keeps its state.
		o.Rooms.DetachAdmin(info.SID)
		return
	}
	if info.PlayerID == "" {
		return
	}

	p, err := o.Players.Get(info.PlayerID)
	if err != nil {
		return
	}
	roomID := p.RoomID
	if roomID != "" {
		destroyed, err := o.Rooms.Leave(info.PlayerID)
		if err == nil && !destroyed {
			o.Dispatch.BroadcastToRoom(roomID, Event("member_left", map[string]any{
				"player_id": p.ID,
				"name":      p.Name,
			}))
		}
	}
	// Detach-from-room above must precede removal, or membership and
	// store would disagree.
	if err := o.Players.Remove(info.PlayerID); err != nil {
		log.Debug().Err(err).Str("module", "app.orch").Str("player", string(info.PlayerID)).Msg("remove after disconnect")
	}
}

// EvictPlayer force-disconnects a player on admin command.
func (o *Orchestrator) EvictPlayer(playerID domain.PlayerID) error {
	sid, ep, ok := o.Registry.LookupPlayer(playerID)
	if !ok {
		// Not connected; still drop the volatile record.
		if _, err := o.Players.Get(playerID); err != nil {
			return err
		}
		if _, err := o.Rooms.Leave(playerID); err != nil && !errors.Is(err, domain.ErrNotInRoom) {
			return err
		}
		return o.Players.Remove(playerID)
	}
	_ = ep.TrySend(Event("kicked", map[string]any{"reason": "removed by admin"}))
	o.OnDisconnect(sid, ep)
	return nil
}

// RunSweeper drives the periodic liveness sweep until ctx ends. Both
// thresholds are checked against current registry state, never a
// captured copy, so it is safe next to live traffic.
func (o *Orchestrator) RunSweeper(ctx context.Context, interval, maxSilence, pongWait time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Str("module", "app.orch").Dur("interval", interval).Msg("liveness sweep started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.orch").Msg("liveness sweep stopped")
			return
		case <-ticker.C:
			for _, info := range o.Registry.SweepStale(maxSilence, pongWait) {
				o.reconcile(info)
			}
		}
	}
}
