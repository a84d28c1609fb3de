package domain

import "encoding/json"

// Inbound event types. The set is closed: anything else is rejected
// at the boundary before it can reach a handler.
const (
	EvHello        = "hello"
	EvRegister     = "register"
	EvJoinRoom     = "join_room"
	EvLeaveRoom    = "leave_room"
	EvStartGame    = "start_game"
	EvNumberCalled = "number_called"
	EvMark         = "mark"
	EvWin          = "win"
	EvChat         = "chat"
	EvPayment      = "payment"
	EvWithdraw     = "withdraw"
	EvAdminCommand = "admin_command"
	EvPing         = "ping"
	EvPong         = "pong"
)

// Admin sub-commands carried by admin_command events.
const (
	CmdBroadcast  = "broadcast"
	CmdKick       = "kick"
	CmdGetStats   = "get_stats"
	CmdGetPlayers = "get_players"
	CmdEndGame    = "end_game"
	CmdResetRoom  = "reset_room"
)

// Envelope is the minimal probe used to pick a handler.
type Envelope struct {
	Type string `json:"type"`
}

type HelloEvent struct {
	Role     string `json:"role"`
	PlayerID string `json:"player_id,omitempty"`
}

type RegisterEvent struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Stake   float64 `json:"stake"`
	Variant Variant `json:"variant"`
}

func (e RegisterEvent) Validate() error {
	if e.Name == "" {
		return ErrNameEmpty
	}
	if len(e.Name) > MaxNameLen {
		return ErrNameTooLong
	}
	if e.Stake <= 0 {
		return ErrBadAmount
	}
	if !e.Variant.Valid() {
		return ErrBadVariant
	}
	return nil
}

type JoinRoomEvent struct {
	RoomID string `json:"room_id"`
}

func (e JoinRoomEvent) Validate() error {
	if e.RoomID == "" {
		return ErrBadPayload
	}
	return nil
}

type StartGameEvent struct {
	RoomID string `json:"room_id"`
}

func (e StartGameEvent) Validate() error {
	if e.RoomID == "" {
		return ErrBadPayload
	}
	return nil
}

type NumberCalledEvent struct {
	RoomID string `json:"room_id"`
	Number int    `json:"number"`
}

func (e NumberCalledEvent) Validate() error {
	if e.RoomID == "" || e.Number <= 0 {
		return ErrBadPayload
	}
	return nil
}

type MarkEvent struct {
	Number int  `json:"number"`
	On     bool `json:"on"`
}

func (e MarkEvent) Validate() error {
	if e.Number <= 0 {
		return ErrBadPayload
	}
	return nil
}

type WinEvent struct {
	Pattern string `json:"pattern"`
}

func (e WinEvent) Validate() error {
	if e.Pattern == "" {
		return ErrBadPattern
	}
	return nil
}

type ChatEvent struct {
	Text string `json:"text"`
}

func (e ChatEvent) Validate() error {
	if e.Text == "" {
		return ErrBadPayload
	}
	return nil
}

type AmountEvent struct {
	Amount float64 `json:"amount"`
}

func (e AmountEvent) Validate() error {
	if e.Amount <= 0 {
		return ErrBadAmount
	}
	return nil
}

type AdminCommandEvent struct {
	Command  string `json:"command"`
	RoomID   string `json:"room_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (e AdminCommandEvent) Validate() error {
	switch e.Command {
	case CmdBroadcast:
		if e.Message == "" {
			return ErrBadPayload
		}
	case CmdKick:
		if e.PlayerID == "" {
			return ErrBadPayload
		}
	case CmdEndGame, CmdResetRoom:
		if e.RoomID == "" {
			return ErrBadPayload
		}
	case CmdGetStats, CmdGetPlayers:
	default:
		return ErrBadPayload
	}
	return nil
}

// Decode unmarshals raw into dst and runs its validation, so handlers
// never see a half-formed payload.
func Decode[E interface{ Validate() error }](raw []byte, dst *E) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrBadPayload
	}
	return (*dst).Validate()
}
