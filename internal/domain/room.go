package domain

import "time"

type RoomID string

// Variant selects the legal number range of a room's session.
type Variant string

const (
	VariantClassic75 Variant = "classic75"
	VariantUK90      Variant = "uk90"
)

func (v Variant) Valid() bool {
	return v == VariantClassic75 || v == VariantUK90
}

// Range is the inclusive upper bound of callable numbers; the lower
// bound is always 1.
func (v Variant) Range() int {
	switch v {
	case VariantUK90:
		return 90
	default:
		return 75
	}
}

type RoomState string

const (
	RoomWaiting RoomState = "waiting"
	RoomActive  RoomState = "active"
	RoomEnded   RoomState = "ended"
)

// Room is the meta of a room; membership, called numbers and winners
// live in the room store, which owns the lifecycle machine around
// this struct.
type Room struct {
	ID        RoomID    `json:"id"`
	Variant   Variant   `json:"variant"`
	Stake     float64   `json:"stake"`
	State     RoomState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitzero"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
}

// Winner is append-only. Amount may be zero at append time and is
// populated once by payout distribution; it is never decremented.
type Winner struct {
	PlayerID PlayerID  `json:"player_id"`
	Name     string    `json:"name"`
	Pattern  string    `json:"pattern"`
	Amount   float64   `json:"amount"`
	At       time.Time `json:"at"`
}
