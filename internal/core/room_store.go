package core

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/domain"
)

// RoomConfig bounds room behavior; values come from config.
type RoomConfig struct {
	MinPlayers    int
	MaxPlayers    int
	ServiceCharge float64 // fraction of the pot kept by the house
}

type roomState struct {
	meta      domain.Room
	members   map[domain.PlayerID]struct{}
	adminSID  SessionID // admin-of-record endpoint, empty when unbound
	called    []int
	calledSet map[int]bool
	winners   []domain.Winner
	settled   bool
}

// RoomStore owns rooms, their lifecycle machine and payout math. All
// multi-step mutations (join = debit + membership, leave = refund +
// removal + possible destroy) run under one store-level lock so a
// concurrent sweep or broadcast never observes them half-done.
// Player mutations go through the PlayerStore's own operations.
type RoomStore struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]*roomState
	players *PlayerStore
	verify  WinVerifier
	cfg     RoomConfig
}

func NewRoomStore(players *PlayerStore, verify WinVerifier, cfg RoomConfig) *RoomStore {
	if cfg.MinPlayers < 2 {
		cfg.MinPlayers = 2
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 50
	}
	return &RoomStore{
		rooms:   make(map[domain.RoomID]*roomState),
		players: players,
		verify:  verify,
		cfg:     cfg,
	}
}

// Join adds a player to a room, debiting the stake first. An unknown
// room id is created lazily with the joiner's variant and stake.
// Late joins into an active game are allowed.
func (s *RoomStore) Join(playerID domain.PlayerID, roomID domain.RoomID) (RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The affiliation guard must read under the store lock: two
	// sockets racing the same player would otherwise both pass it and
	// debit the stake twice for one membership.
	p, err := s.players.Get(playerID)
	if err != nil {
		return RoomSnapshot{}, err
	}
	if p.RoomID != "" {
		return RoomSnapshot{}, domain.ErrAlreadyInRoom
	}

	rs, ok := s.rooms[roomID]
	if !ok {
		rs = &roomState{
			meta: domain.Room{
				ID:        roomID,
				Variant:   p.Variant,
				Stake:     p.Stake,
				State:     domain.RoomWaiting,
				CreatedAt: time.Now(),
			},
			members:   make(map[domain.PlayerID]struct{}),
			calledSet: make(map[int]bool),
		}
		s.rooms[roomID] = rs
		log.Info().Str("module", "core.rooms").Str("room", string(roomID)).
			Str("variant", string(p.Variant)).Float64("stake", p.Stake).Msg("room created")
	}

	if rs.meta.State == domain.RoomEnded {
		return RoomSnapshot{}, domain.ErrGameNotActive
	}
	if len(rs.members) >= s.cfg.MaxPlayers {
		return RoomSnapshot{}, domain.ErrRoomFull
	}
	if p.Variant != rs.meta.Variant {
		return RoomSnapshot{}, domain.ErrVariantMismatch
	}
	if p.Stake != rs.meta.Stake {
		return RoomSnapshot{}, domain.ErrStakeMismatch
	}

	// Debit before membership; a failed debit leaves the room as-is.
	if _, err := s.players.ProcessWithdrawal(playerID, rs.meta.Stake); err != nil {
		return RoomSnapshot{}, err
	}
	if err := s.players.JoinRoom(playerID, roomID); err != nil {
		// Roll the debit back; the player never made it in.
		_, _ = s.players.ProcessPayment(playerID, rs.meta.Stake)
		return RoomSnapshot{}, err
	}
	rs.members[playerID] = struct{}{}
	log.Info().Str("module", "core.rooms").Str("room", string(roomID)).
		Str("player", string(playerID)).Int("members", len(rs.members)).Msg("member joined")
	return s.snapshotLocked(rs), nil
}

// Leave removes the player from their room. The stake is refunded
// only while the game has not started. An emptied room is destroyed
// synchronously. Safe to call for a player who is in no room.
func (s *RoomStore) Leave(playerID domain.PlayerID) (destroyed bool, err error) {
	p, err := s.players.Get(playerID)
	if err != nil {
		return false, err
	}
	if p.RoomID == "" {
		return false, domain.ErrNotInRoom
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rs, ok := s.rooms[p.RoomID]
	if !ok {
		// Affiliation outlived the room somehow; heal it.
		_ = s.players.LeaveRoom(playerID)
		return false, nil
	}
	if _, member := rs.members[playerID]; !member {
		_ = s.players.LeaveRoom(playerID)
		return false, nil
	}

	if rs.meta.State == domain.RoomWaiting {
		_, _ = s.players.ProcessPayment(playerID, rs.meta.Stake)
	}
	delete(rs.members, playerID)
	_ = s.players.LeaveRoom(playerID)
	log.Info().Str("module", "core.rooms").Str("room", string(rs.meta.ID)).
		Str("player", string(playerID)).Int("members", len(rs.members)).Msg("member left")

	if len(rs.members) == 0 {
		delete(s.rooms, rs.meta.ID)
		log.Info().Str("module", "core.rooms").Str("room", string(rs.meta.ID)).Msg("room destroyed")
		return true, nil
	}
	return false, nil
}

// Start moves a waiting room into its active session and binds the
// invoking endpoint as admin-of-record, replacing any previous one.
func (s *RoomStore) Start(roomID domain.RoomID, sid SessionID) (RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, domain.ErrRoomNotFound
	}
	if rs.meta.State == domain.RoomActive {
		return RoomSnapshot{}, domain.ErrGameActive
	}
	if len(rs.members) < s.cfg.MinPlayers {
		return RoomSnapshot{}, domain.ErrNotEnoughPlayers
	}
	rs.meta.State = domain.RoomActive
	rs.meta.StartedAt = time.Now()
	rs.adminSID = sid
	rs.called = nil
	rs.calledSet = make(map[int]bool)
	rs.winners = nil
	rs.settled = false
	log.Info().Str("module", "core.rooms").Str("room", string(roomID)).
		Str("admin", string(sid)).Int("members", len(rs.members)).Msg("game started")
	return s.snapshotLocked(rs), nil
}

// CallNumber appends to the active session's call history. Duplicate
// or out-of-range calls are rejected without mutation.
func (s *RoomStore) CallNumber(roomID domain.RoomID, sid SessionID, number int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if rs.meta.State != domain.RoomActive {
		return nil, domain.ErrGameNotActive
	}
	if rs.adminSID == "" || rs.adminSID != sid {
		return nil, domain.ErrNotAdmin
	}
	if number < 1 || number > rs.meta.Variant.Range() {
		return nil, domain.ErrBadNumber
	}
	if rs.calledSet[number] {
		return nil, domain.ErrNumberCalled
	}
	rs.called = append(rs.called, number)
	rs.calledSet[number] = true
	return append([]int(nil), rs.called...), nil
}

// ClaimWin runs the external verifier against the claimant's marks
// and the call history. An accepted claim appends a winner record and
// triggers payout distribution; a rejected one changes nothing.
func (s *RoomStore) ClaimWin(playerID domain.PlayerID, pattern string) (domain.Winner, error) {
	p, err := s.players.Get(playerID)
	if err != nil {
		return domain.Winner{}, err
	}
	if p.RoomID == "" {
		return domain.Winner{}, domain.ErrNotInRoom
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.rooms[p.RoomID]
	if !ok {
		return domain.Winner{}, domain.ErrRoomNotFound
	}
	if rs.meta.State != domain.RoomActive {
		return domain.Winner{}, domain.ErrGameNotActive
	}
	if rs.settled {
		// The pool is already distributed; a later claim has nothing
		// left to win.
		return domain.Winner{}, domain.ErrClaimRejected
	}
	claim := WinClaim{
		Pattern: pattern,
		Variant: rs.meta.Variant,
		Marked:  p.MarkedNumbers(),
		Called:  append([]int(nil), rs.called...),
	}
	if !s.verify.Verify(claim) {
		return domain.Winner{}, domain.ErrClaimRejected
	}
	rs.winners = append(rs.winners, domain.Winner{
		PlayerID: playerID,
		Name:     p.Name,
		Pattern:  pattern,
		At:       time.Now(),
	})
	s.settleLocked(rs)
	log.Info().Str("module", "core.rooms").Str("room", string(rs.meta.ID)).
		Str("player", string(playerID)).Str("pattern", pattern).Msg("win accepted")
	return rs.winners[len(rs.winners)-1], nil
}

// End stops the active session. force bypasses the admin-of-record
// check for the explicit admin end_game command. Distribution runs
// here if no accepted claim already triggered it.
func (s *RoomStore) End(roomID domain.RoomID, sid SessionID, force bool) (RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, domain.ErrRoomNotFound
	}
	if rs.meta.State != domain.RoomActive {
		return RoomSnapshot{}, domain.ErrGameNotActive
	}
	if !force && rs.adminSID != sid {
		return RoomSnapshot{}, domain.ErrNotAdmin
	}
	s.settleLocked(rs)
	rs.meta.State = domain.RoomEnded
	rs.meta.EndedAt = time.Now()
	log.Info().Str("module", "core.rooms").Str("room", string(roomID)).Msg("game ended")
	return s.snapshotLocked(rs), nil
}

// Reset returns an active or ended room to waiting: call history,
// winners and every member's marks are cleared; membership is not.
func (s *RoomStore) Reset(roomID domain.RoomID) (RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, domain.ErrRoomNotFound
	}
	if rs.meta.State == domain.RoomWaiting {
		return RoomSnapshot{}, domain.ErrGameNotActive
	}
	rs.meta.State = domain.RoomWaiting
	rs.meta.StartedAt = time.Time{}
	rs.meta.EndedAt = time.Time{}
	rs.called = nil
	rs.calledSet = make(map[int]bool)
	rs.winners = nil
	rs.settled = false
	for id := range rs.members {
		s.players.ClearMarks(id)
	}
	log.Info().Str("module", "core.rooms").Str("room", string(roomID)).Msg("room reset")
	return s.snapshotLocked(rs), nil
}

// DetachAdmin clears the admin binding of any room this endpoint was
// the caller for. The game keeps its current state; the room is not
// destroyed.
func (s *RoomStore) DetachAdmin(sid SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rs := range s.rooms {
		if rs.adminSID == sid {
			rs.adminSID = ""
			log.Info().Str("module", "core.rooms").Str("room", string(rs.meta.ID)).Msg("admin detached")
		}
	}
}

// settleLocked distributes the prize pool exactly once per session.
// Pool = member stakes minus the service charge; each recorded winner
// gets the floored share proportional to their stake.
func (s *RoomStore) settleLocked(rs *roomState) {
	if rs.settled || len(rs.winners) == 0 {
		return
	}
	total := rs.meta.Stake * float64(len(rs.members))
	pool := total * (1 - s.cfg.ServiceCharge)

	var stakeSum float64
	stakes := make([]float64, len(rs.winners))
	for i, w := range rs.winners {
		st := rs.meta.Stake
		if p, err := s.players.Get(w.PlayerID); err == nil {
			st = p.Stake
		}
		stakes[i] = st
		stakeSum += st
	}
	if stakeSum <= 0 {
		return
	}
	for i := range rs.winners {
		share := math.Floor(pool * stakes[i] / stakeSum)
		rs.winners[i].Amount = share
		if _, err := s.players.ProcessWin(rs.winners[i].PlayerID, share); err != nil {
			log.Error().Err(err).Str("module", "core.rooms").
				Str("player", string(rs.winners[i].PlayerID)).Msg("payout credit failed")
		}
	}
	rs.settled = true
	log.Info().Str("module", "core.rooms").Str("room", string(rs.meta.ID)).
		Float64("pool", pool).Int("winners", len(rs.winners)).Msg("payout distributed")
}

func (s *RoomStore) Get(roomID domain.RoomID) (RoomSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, domain.ErrRoomNotFound
	}
	return s.snapshotLocked(rs), nil
}

func (s *RoomStore) List() []RoomSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomSnapshot, 0, len(s.rooms))
	for _, rs := range s.rooms {
		out = append(out, s.snapshotLocked(rs))
	}
	return out
}

// MembersOf returns the membership set for fan-out.
func (s *RoomStore) MembersOf(roomID domain.RoomID) []domain.PlayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.PlayerID, 0, len(rs.members))
	for id := range rs.members {
		out = append(out, id)
	}
	return out
}

// AdminOf reports the room's bound admin endpoint, if any.
func (s *RoomStore) AdminOf(roomID domain.RoomID) (SessionID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.rooms[roomID]
	if !ok || rs.adminSID == "" {
		return "", false
	}
	return rs.adminSID, true
}

func (s *RoomStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Players: s.players.Count(), Rooms: len(s.rooms)}
	for _, rs := range s.rooms {
		if rs.meta.State == domain.RoomActive {
			st.ActiveGames++
		}
	}
	return st
}

func (s *RoomStore) snapshotLocked(rs *roomState) RoomSnapshot {
	members := make([]MemberDTO, 0, len(rs.members))
	for id := range rs.members {
		if p, err := s.players.Get(id); err == nil {
			members = append(members, MemberDTO{ID: p.ID, Name: p.Name, Balance: p.Balance()})
		}
	}
	pot := rs.meta.Stake * float64(len(rs.members))
	return RoomSnapshot{
		Room:      rs.meta,
		Members:   members,
		Called:    append([]int(nil), rs.called...),
		Winners:   append([]domain.Winner(nil), rs.winners...),
		Pot:       pot,
		PrizePool: pot * (1 - s.cfg.ServiceCharge),
	}
}
