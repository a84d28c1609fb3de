package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidates(t *testing.T) {
	var reg RegisterEvent
	err := Decode([]byte(`{"name":"abebe","stake":50,"variant":"classic75"}`), &reg)
	require.NoError(t, err)
	assert.Equal(t, "abebe", reg.Name)
	assert.Equal(t, 50.0, reg.Stake)
	assert.Equal(t, VariantClassic75, reg.Variant)

	assert.ErrorIs(t, Decode([]byte(`{"stake":50,"variant":"classic75"}`), &RegisterEvent{}), ErrNameEmpty)
	assert.ErrorIs(t, Decode([]byte(`{"name":"abebe","stake":0,"variant":"classic75"}`), &RegisterEvent{}), ErrBadAmount)
	assert.ErrorIs(t, Decode([]byte(`{"name":"abebe","stake":50,"variant":"keno"}`), &RegisterEvent{}), ErrBadVariant)
	assert.ErrorIs(t, Decode([]byte(`{"name":`), &RegisterEvent{}), ErrBadPayload)

	var join JoinRoomEvent
	assert.ErrorIs(t, Decode([]byte(`{}`), &join), ErrBadPayload)
	assert.NoError(t, Decode([]byte(`{"room_id":"R1"}`), &join))

	var mark MarkEvent
	assert.ErrorIs(t, Decode([]byte(`{"number":0,"on":true}`), &mark), ErrBadPayload)
	assert.NoError(t, Decode([]byte(`{"number":7,"on":true}`), &mark))

	var win WinEvent
	assert.ErrorIs(t, Decode([]byte(`{}`), &win), ErrBadPattern)

	var amt AmountEvent
	assert.ErrorIs(t, Decode([]byte(`{"amount":-3}`), &amt), ErrBadAmount)
	assert.NoError(t, Decode([]byte(`{"amount":25}`), &amt))
}

func TestAdminCommandValidation(t *testing.T) {
	cases := []struct {
		name string
		ev   AdminCommandEvent
		err  error
	}{
		{"broadcast needs message", AdminCommandEvent{Command: CmdBroadcast}, ErrBadPayload},
		{"broadcast ok", AdminCommandEvent{Command: CmdBroadcast, Message: "hi"}, nil},
		{"kick needs player", AdminCommandEvent{Command: CmdKick}, ErrBadPayload},
		{"kick ok", AdminCommandEvent{Command: CmdKick, PlayerID: "p1"}, nil},
		{"end_game needs room", AdminCommandEvent{Command: CmdEndGame}, ErrBadPayload},
		{"reset_room ok", AdminCommandEvent{Command: CmdResetRoom, RoomID: "R1"}, nil},
		{"get_stats bare", AdminCommandEvent{Command: CmdGetStats}, nil},
		{"unknown command", AdminCommandEvent{Command: "shutdown"}, ErrBadPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ev.Validate()
			if tc.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(ErrBadNumber))
	assert.Equal(t, KindNotFound, KindOf(ErrPlayerNotFound))
	assert.Equal(t, KindUnauthorized, KindOf(ErrNotAdmin))
	assert.Equal(t, KindConflict, KindOf(ErrNumberCalled))
	assert.Equal(t, KindCapacity, KindOf(ErrRoomFull))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}

func TestPlayerBalance(t *testing.T) {
	p, err := NewPlayer("abebe", "+251911000000", 25, VariantClassic75)
	require.NoError(t, err)
	assert.Zero(t, p.Balance())

	p.Payment = 100
	p.Won = 30
	p.Withdrawn = 45
	assert.Equal(t, 85.0, p.Balance())
}
