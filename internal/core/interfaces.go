package core

import "github.com/habeshagames/bingohub/internal/domain"

// Frame is a marshaled outbound event.
type Frame []byte

// SessionID identifies one transport endpoint (a websocket).
type SessionID string

// Endpoint abstracts the outbound half of a connection.
// Owned by the adapter; the adapter must Close() it.
type Endpoint interface {
	TrySend(Frame) error
	Close()
}

// WinClaim is everything the pattern predicate may look at.
type WinClaim struct {
	Pattern string
	Variant domain.Variant
	Marked  []int
	Called  []int
}

// WinVerifier decides whether a claimed win is legitimate. The room
// store treats it as an external capability and assumes nothing
// beyond the boolean answer.
type WinVerifier interface {
	Verify(claim WinClaim) bool
}

// MemberDTO is a read-only member view for snapshots (no transport
// fields, no mark set).
type MemberDTO struct {
	ID      domain.PlayerID `json:"id"`
	Name    string          `json:"name"`
	Balance float64         `json:"balance"`
}

// RoomSnapshot is the projection served over HTTP and in room_state
// events.
type RoomSnapshot struct {
	Room      domain.Room     `json:"room"`
	Members   []MemberDTO     `json:"members"`
	Called    []int           `json:"called"`
	Winners   []domain.Winner `json:"winners"`
	Pot       float64         `json:"pot"`
	PrizePool float64         `json:"prize_pool"`
}

// Stats is the global read-only projection.
type Stats struct {
	Players     int `json:"players"`
	Rooms       int `json:"rooms"`
	ActiveGames int `json:"active_games"`
}
