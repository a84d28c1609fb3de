package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/domain"
)

type Role string

const (
	RoleAnonymous Role = "anonymous"
	RolePlayer    Role = "player"
	RoleAdmin     Role = "admin"
)

type regEntry struct {
	Role        Role
	PlayerID    domain.PlayerID
	Endpoint    core.Endpoint
	ConnectedAt time.Time
	LastSeen    time.Time
	LastPong    time.Time
}

// EndpointInfo is a copy of a registry entry handed to the
// reconciliation path; it stays valid after the entry is gone.
type EndpointInfo struct {
	SID      core.SessionID
	Role     Role
	PlayerID domain.PlayerID
	Endpoint core.Endpoint
}

// Registry owns the set of live transport endpoints, their role
// classification and liveness timestamps. It knows nothing about
// rooms or balances.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[core.SessionID]*regEntry
	byPlayer  map[domain.PlayerID]core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{
		endpoints: make(map[core.SessionID]*regEntry),
		byPlayer:  make(map[domain.PlayerID]core.SessionID),
	}
}

// Register records a fresh endpoint. A reconnect on the same session
// id replaces the previous endpoint, which is closed.
func (r *Registry) Register(sid core.SessionID, ep core.Endpoint, role Role) {
	now := time.Now()
	r.mu.Lock()
	if old, ok := r.endpoints[sid]; ok {
		old.Endpoint.Close()
		if old.PlayerID != "" {
			delete(r.byPlayer, old.PlayerID)
		}
	}
	r.endpoints[sid] = &regEntry{
		Role:        role,
		Endpoint:    ep,
		ConnectedAt: now,
		LastSeen:    now,
		LastPong:    now,
	}
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("role", string(role)).Msg("endpoint registered")
}

// BindPlayer attaches a player identity for O(1) reverse lookup. A
// player reconnecting on a new socket steals the binding.
func (r *Registry) BindPlayer(sid core.SessionID, playerID domain.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.endpoints[sid]
	if !ok {
		return false
	}
	if prev, ok := r.byPlayer[playerID]; ok && prev != sid {
		if old, ok := r.endpoints[prev]; ok {
			old.Endpoint.Close()
		}
		delete(r.endpoints, prev)
	}
	e.Role = RolePlayer
	e.PlayerID = playerID
	r.byPlayer[playerID] = sid
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("player", string(playerID)).Msg("player bound")
	return true
}

// Unregister removes the endpoint and returns its last known state.
// A non-nil ep must match the registered endpoint: a socket that was
// replaced by a reconnect on the same sid reports its own teardown
// with the dead connection, and that must not reap the replacement.
// Idempotent: a second call for the same sid reports ok=false, so a
// sweep racing a real disconnect reconciles only once.
func (r *Registry) Unregister(sid core.SessionID, ep core.Endpoint) (EndpointInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.endpoints[sid]
	if !ok {
		return EndpointInfo{}, false
	}
	if ep != nil && e.Endpoint != ep {
		return EndpointInfo{}, false
	}
	delete(r.endpoints, sid)
	if e.PlayerID != "" && r.byPlayer[e.PlayerID] == sid {
		delete(r.byPlayer, e.PlayerID)
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("endpoint unregistered")
	return EndpointInfo{SID: sid, Role: e.Role, PlayerID: e.PlayerID, Endpoint: e.Endpoint}, true
}

func (r *Registry) EndpointOf(sid core.SessionID) (core.Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.endpoints[sid]; ok {
		return e.Endpoint, true
	}
	return nil, false
}

func (r *Registry) RoleOf(sid core.SessionID) (Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.endpoints[sid]; ok {
		return e.Role, true
	}
	return "", false
}

func (r *Registry) PlayerOf(sid core.SessionID) (domain.PlayerID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.endpoints[sid]
	if !ok || e.PlayerID == "" {
		return "", false
	}
	return e.PlayerID, true
}

// LookupPlayer finds the live endpoint of a player id.
func (r *Registry) LookupPlayer(playerID domain.PlayerID) (core.SessionID, core.Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byPlayer[playerID]
	if !ok {
		return "", nil, false
	}
	e, ok := r.endpoints[sid]
	if !ok {
		return "", nil, false
	}
	return sid, e.Endpoint, true
}

// Admins snapshots every privileged endpoint.
func (r *Registry) Admins() []core.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Endpoint, 0, 4)
	for _, e := range r.endpoints {
		if e.Role == RoleAdmin {
			out = append(out, e.Endpoint)
		}
	}
	return out
}

// All snapshots every endpoint, for admin announcements.
func (r *Registry) All() []core.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Endpoint, 0, len(r.endpoints))
	for _, e := range r.endpoints {
		out = append(out, e.Endpoint)
	}
	return out
}

// MarkHeartbeat records inbound traffic for the silence threshold.
func (r *Registry) MarkHeartbeat(sid core.SessionID) {
	r.mu.Lock()
	if e, ok := r.endpoints[sid]; ok {
		e.LastSeen = time.Now()
	}
	r.mu.Unlock()
}

// MarkPong records a liveness reply for the ping/pong threshold.
func (r *Registry) MarkPong(sid core.SessionID) {
	r.mu.Lock()
	if e, ok := r.endpoints[sid]; ok {
		now := time.Now()
		e.LastPong = now
		e.LastSeen = now
	}
	r.mu.Unlock()
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}

// SweepStale evicts every endpoint whose silence exceeds maxSilence
// or whose last pong is older than pongWait; the two thresholds are
// evaluated independently. Reaped entries are returned for the
// orchestrator to reconcile.
func (r *Registry) SweepStale(maxSilence, pongWait time.Duration) []EndpointInfo {
	now := time.Now()
	r.mu.Lock()
	var reaped []EndpointInfo
	for sid, e := range r.endpoints {
		silent := now.Sub(e.LastSeen) > maxSilence
		unresponsive := now.Sub(e.LastPong) > pongWait
		if !silent && !unresponsive {
			continue
		}
		delete(r.endpoints, sid)
		if e.PlayerID != "" && r.byPlayer[e.PlayerID] == sid {
			delete(r.byPlayer, e.PlayerID)
		}
		reaped = append(reaped, EndpointInfo{SID: sid, Role: e.Role, PlayerID: e.PlayerID, Endpoint: e.Endpoint})
	}
	r.mu.Unlock()
	for _, e := range reaped {
		log.Warn().Str("module", "app.registry").Str("sid", string(e.SID)).Msg("stale endpoint reaped")
	}
	return reaped
}
