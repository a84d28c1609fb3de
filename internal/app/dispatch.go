package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

// Event marshals an outbound event with its type tag and an ISO-8601
// timestamp; every message leaving the server goes through here.
func Event(t string, fields map[string]any) core.Frame {
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["type"] = t
	m["ts"] = time.Now().UTC().Format(time.RFC3339)
	b, err := json.Marshal(m)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Str("event", t).Msg("marshal event")
		return nil
	}
	return core.Frame(b)
}

type roomBatch struct {
	lastFlush time.Time
	queue     []core.Frame
	timer     *time.Timer
}

// Dispatcher converts domain events into deliveries. Fan-out is
// best-effort and at-most-once per live endpoint: a failed TrySend is
// logged and never aborts the rest of the audience.
type Dispatcher struct {
	Registry *Registry
	Rooms    *core.RoomStore

	MinInterval time.Duration // floor between rate-limited flushes per room

	mu      sync.Mutex
	batches map[domain.RoomID]*roomBatch
}

func NewDispatcher(reg *Registry, rooms *core.RoomStore, minInterval time.Duration) *Dispatcher {
	return &Dispatcher{
		Registry:    reg,
		Rooms:       rooms,
		MinInterval: minInterval,
		batches:     make(map[domain.RoomID]*roomBatch),
	}
}

func (d *Dispatcher) SendTo(sid core.SessionID, frame core.Frame) {
	ep, ok := d.Registry.EndpointOf(sid)
	if !ok {
		return
	}
	if err := ep.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Str("sid", string(sid)).Msg("send dropped")
	}
}

func (d *Dispatcher) SendToPlayer(playerID domain.PlayerID, frame core.Frame) {
	_, ep, ok := d.Registry.LookupPlayer(playerID)
	if !ok {
		return
	}
	if err := ep.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Str("player", string(playerID)).Msg("send dropped")
	}
}

// BroadcastToRoom fans out to every currently-live member endpoint
// plus the room's bound admin endpoint, if present.
func (d *Dispatcher) BroadcastToRoom(roomID domain.RoomID, frame core.Frame) {
	sent, dropped := 0, 0
	for _, pid := range d.Rooms.MembersOf(roomID) {
		_, ep, ok := d.Registry.LookupPlayer(pid)
		if !ok {
			continue
		}
		if err := ep.TrySend(frame); err != nil {
			dropped++
			continue
		}
		sent++
	}
	if sid, ok := d.Rooms.AdminOf(roomID); ok {
		if ep, ok := d.Registry.EndpointOf(sid); ok {
			if err := ep.TrySend(frame); err != nil {
				dropped++
			} else {
				sent++
			}
		}
	}
	log.Debug().Str("module", "app.dispatch").Str("room", string(roomID)).
		Int("sent", sent).Int("dropped", dropped).Msg("room broadcast")
}

func (d *Dispatcher) BroadcastToAdmins(frame core.Frame) {
	for _, ep := range d.Registry.Admins() {
		if err := ep.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.dispatch").Msg("admin send dropped")
		}
	}
}

// Announce sends to every registered endpoint regardless of room.
func (d *Dispatcher) Announce(frame core.Frame) {
	for _, ep := range d.Registry.All() {
		if err := ep.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.dispatch").Msg("announce send dropped")
		}
	}
}

// RateLimitedBroadcast bounds the per-room broadcast frequency
// without losing events. Inside the interval the frame is queued; one
// deferred flush coalesces whatever accumulated, wrapping multiple
// frames in a single batch envelope that preserves arrival order.
func (d *Dispatcher) RateLimitedBroadcast(roomID domain.RoomID, frame core.Frame) {
	d.mu.Lock()
	b, ok := d.batches[roomID]
	if !ok {
		b = &roomBatch{}
		d.batches[roomID] = b
	}
	now := time.Now()
	if len(b.queue) == 0 && b.timer == nil && now.Sub(b.lastFlush) >= d.MinInterval {
		b.lastFlush = now
		d.mu.Unlock()
		d.BroadcastToRoom(roomID, frame)
		return
	}
	b.queue = append(b.queue, frame)
	if b.timer == nil {
		wait := d.MinInterval - now.Sub(b.lastFlush)
		if wait < 0 {
			wait = 0
		}
		b.timer = time.AfterFunc(wait, func() { d.flush(roomID) })
	}
	d.mu.Unlock()
}

func (d *Dispatcher) flush(roomID domain.RoomID) {
	d.mu.Lock()
	b, ok := d.batches[roomID]
	if !ok || len(b.queue) == 0 {
		if ok {
			b.timer = nil
		}
		d.mu.Unlock()
		return
	}
	queued := b.queue
	b.queue = nil
	b.timer = nil
	b.lastFlush = time.Now()
	d.mu.Unlock()

	if len(queued) == 1 {
		d.BroadcastToRoom(roomID, queued[0])
		return
	}
	events := make([]json.RawMessage, len(queued))
	for i, f := range queued {
		events[i] = json.RawMessage(f)
	}
	d.BroadcastToRoom(roomID, Event("batch", map[string]any{"events": events}))
}
