package domain

import "errors"

// Kind buckets domain errors for the protocol boundary, which turns
// every failure into a single error event for the sender.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindCapacity     Kind = "capacity"
	KindInternal     Kind = "internal"
)

var (
	ErrBadPayload     = errors.New("malformed payload")
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrNameEmpty      = errors.New("name empty")
	ErrNameTooLong    = errors.New("name too long")
	ErrBadAmount      = errors.New("amount must be positive")
	ErrBadVariant     = errors.New("unknown game variant")
	ErrBadPattern     = errors.New("unknown win pattern")
	ErrBadNumber      = errors.New("number outside variant range")
	ErrPlayerNotFound = errors.New("player not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotAdmin       = errors.New("admin-only action")
	ErrNotInRoom      = errors.New("player is not in this room")
	ErrAlreadyInRoom  = errors.New("player already in a room")

	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrGameActive          = errors.New("game already active")
	ErrGameNotActive       = errors.New("game not active")
	ErrNumberCalled        = errors.New("number already called")
	ErrNotEnoughPlayers    = errors.New("not enough players to start")
	ErrVariantMismatch     = errors.New("variant does not match room")
	ErrStakeMismatch       = errors.New("stake does not match room")
	ErrClaimRejected       = errors.New("win claim rejected")

	ErrRoomFull = errors.New("room is full")
)

// KindOf maps an error to its taxonomy bucket. Anything unclassified
// is internal: unexpected dispatch or transport failures.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrBadPayload),
		errors.Is(err, ErrUnknownEvent),
		errors.Is(err, ErrNameEmpty),
		errors.Is(err, ErrNameTooLong),
		errors.Is(err, ErrBadAmount),
		errors.Is(err, ErrBadVariant),
		errors.Is(err, ErrBadPattern),
		errors.Is(err, ErrBadNumber):
		return KindValidation
	case errors.Is(err, ErrPlayerNotFound),
		errors.Is(err, ErrRoomNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotAdmin),
		errors.Is(err, ErrNotInRoom):
		return KindUnauthorized
	case errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrGameActive),
		errors.Is(err, ErrGameNotActive),
		errors.Is(err, ErrNumberCalled),
		errors.Is(err, ErrNotEnoughPlayers),
		errors.Is(err, ErrVariantMismatch),
		errors.Is(err, ErrStakeMismatch),
		errors.Is(err, ErrAlreadyInRoom),
		errors.Is(err, ErrClaimRejected):
		return KindConflict
	case errors.Is(err, ErrRoomFull):
		return KindCapacity
	default:
		return KindInternal
	}
}
