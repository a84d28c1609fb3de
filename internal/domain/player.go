// Package domain contains entities without transport or storage logic.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const MaxNameLen = 36

type PlayerID string

// Player is a registered participant. Balance is never stored: it is
// derived from the cumulative ledger counters and kept non-negative by
// validating every mutation before it happens.
type Player struct {
	ID        PlayerID `json:"id"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone,omitempty"`
	Stake     float64  `json:"stake"`
	Variant   Variant  `json:"variant"`
	Payment   float64  `json:"payment"`
	Won       float64  `json:"won"`
	Withdrawn float64  `json:"withdrawn"`

	RoomID     RoomID       `json:"room_id,omitempty"`
	Marked     map[int]bool `json:"-"`
	LastActive time.Time    `json:"last_active"`
}

func NewPlayer(name, phone string, stake float64, variant Variant) (*Player, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	if stake <= 0 {
		return nil, ErrBadAmount
	}
	if !variant.Valid() {
		return nil, ErrBadVariant
	}
	return &Player{
		ID:         PlayerID(uuid.NewString()),
		Name:       name,
		Phone:      phone,
		Stake:      stake,
		Variant:    variant,
		Marked:     make(map[int]bool),
		LastActive: time.Now(),
	}, nil
}

func (p *Player) Balance() float64 {
	return p.Payment + p.Won - p.Withdrawn
}

// MarkedNumbers returns the mark set as a slice; order is not defined.
func (p *Player) MarkedNumbers() []int {
	out := make([]int, 0, len(p.Marked))
	for n := range p.Marked {
		out = append(out, n)
	}
	return out
}

// Clone returns a deep copy safe to hand outside the store lock.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Marked = make(map[int]bool, len(p.Marked))
	for n := range p.Marked {
		cp.Marked[n] = true
	}
	return &cp
}
