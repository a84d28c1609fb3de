package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/domain"
)

// PlayerStore is the threadsafe in-memory registry of players. It is
// the only component allowed to mutate player entities; cross-entity
// effects (stake debits, refunds, payouts) arrive through its ledger
// operations, never by direct field writes from outside.
type PlayerStore struct {
	mu      sync.RWMutex
	players map[domain.PlayerID]*domain.Player
}

func NewPlayerStore() *PlayerStore {
	return &PlayerStore{players: make(map[domain.PlayerID]*domain.Player)}
}

func (s *PlayerStore) Create(name, phone string, stake float64, variant domain.Variant) (*domain.Player, error) {
	p, err := domain.NewPlayer(name, phone, stake, variant)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.players[p.ID] = p
	s.mu.Unlock()
	log.Info().Str("module", "core.players").Str("player", string(p.ID)).Str("name", name).Msg("player created")
	return p.Clone(), nil
}

func (s *PlayerStore) Get(id domain.PlayerID) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return p.Clone(), nil
}

// PlayerPatch is a partial update; nil fields are left untouched.
type PlayerPatch struct {
	Name    *string
	Phone   *string
	Stake   *float64
	Variant *domain.Variant
}

func (s *PlayerStore) Update(id domain.PlayerID, patch PlayerPatch) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, domain.ErrNameEmpty
		}
		if len(*patch.Name) > domain.MaxNameLen {
			return nil, domain.ErrNameTooLong
		}
		p.Name = *patch.Name
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Stake != nil {
		if *patch.Stake <= 0 {
			return nil, domain.ErrBadAmount
		}
		p.Stake = *patch.Stake
	}
	if patch.Variant != nil {
		if !patch.Variant.Valid() {
			return nil, domain.ErrBadVariant
		}
		p.Variant = *patch.Variant
	}
	p.LastActive = time.Now()
	return p.Clone(), nil
}

// Remove must only be called after the player has been detached from
// any room membership set; the room store owns that ordering.
func (s *PlayerStore) Remove(id domain.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[id]; !ok {
		return domain.ErrPlayerNotFound
	}
	delete(s.players, id)
	log.Info().Str("module", "core.players").Str("player", string(id)).Msg("player removed")
	return nil
}

// ProcessPayment credits the ledger; always succeeds for a known id.
func (s *PlayerStore) ProcessPayment(id domain.PlayerID, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, domain.ErrBadAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return 0, domain.ErrPlayerNotFound
	}
	p.Payment += amount
	p.LastActive = time.Now()
	return p.Balance(), nil
}

func (s *PlayerStore) ProcessWin(id domain.PlayerID, amount float64) (float64, error) {
	if amount < 0 {
		return 0, domain.ErrBadAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return 0, domain.ErrPlayerNotFound
	}
	p.Won += amount
	p.LastActive = time.Now()
	return p.Balance(), nil
}

// ProcessWithdrawal rejects before mutating: a request exceeding the
// current balance leaves the ledger untouched.
func (s *PlayerStore) ProcessWithdrawal(id domain.PlayerID, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, domain.ErrBadAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return 0, domain.ErrPlayerNotFound
	}
	if amount > p.Balance() {
		return p.Balance(), domain.ErrInsufficientBalance
	}
	p.Withdrawn += amount
	p.LastActive = time.Now()
	return p.Balance(), nil
}

// Mark toggles a marked number. Marks only exist inside a room.
func (s *PlayerStore) Mark(id domain.PlayerID, number int, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if p.RoomID == "" {
		return domain.ErrNotInRoom
	}
	if number < 1 || number > p.Variant.Range() {
		return domain.ErrBadNumber
	}
	if on {
		p.Marked[number] = true
	} else {
		delete(p.Marked, number)
	}
	p.LastActive = time.Now()
	return nil
}

// JoinRoom records the affiliation only; the room store keeps the
// membership set and calls this under its own lock.
func (s *PlayerStore) JoinRoom(id domain.PlayerID, roomID domain.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if p.RoomID != "" && p.RoomID != roomID {
		return domain.ErrAlreadyInRoom
	}
	p.RoomID = roomID
	p.LastActive = time.Now()
	return nil
}

// LeaveRoom clears the affiliation and the mark set; marks are
// meaningless outside a room and must not leak into the next one.
func (s *PlayerStore) LeaveRoom(id domain.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	p.RoomID = ""
	p.Marked = make(map[int]bool)
	p.LastActive = time.Now()
	return nil
}

// ClearMarks keeps the affiliation; used by room reset.
func (s *PlayerStore) ClearMarks(id domain.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[id]; ok {
		p.Marked = make(map[int]bool)
	}
}

func (s *PlayerStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

func (s *PlayerStore) Snapshot() []domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, *p.Clone())
	}
	return out
}
