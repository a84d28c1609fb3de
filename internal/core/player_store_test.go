package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habeshagames/bingohub/internal/domain"
)

func newTestPlayer(t *testing.T, s *PlayerStore, name string, stake float64) *domain.Player {
	t.Helper()
	p, err := s.Create(name, "+251911000000", stake, domain.VariantClassic75)
	require.NoError(t, err)
	return p
}

func TestPlayerStoreCreateValidation(t *testing.T) {
	s := NewPlayerStore()

	_, err := s.Create("", "", 10, domain.VariantClassic75)
	assert.ErrorIs(t, err, domain.ErrNameEmpty)

	_, err = s.Create("abebe", "", 0, domain.VariantClassic75)
	assert.ErrorIs(t, err, domain.ErrBadAmount)

	_, err = s.Create("abebe", "", 10, domain.Variant("roulette"))
	assert.ErrorIs(t, err, domain.ErrBadVariant)

	p, err := s.Create("abebe", "", 10, domain.VariantUK90)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Zero(t, p.Balance())
}

func TestPlayerStoreLedger(t *testing.T) {
	s := NewPlayerStore()
	p := newTestPlayer(t, s, "abebe", 10)

	balance, err := s.ProcessPayment(p.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)

	balance, err = s.ProcessWin(p.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 140.0, balance)

	balance, err = s.ProcessWithdrawal(p.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 50.0, balance)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Payment)
	assert.Equal(t, 40.0, got.Won)
	assert.Equal(t, 90.0, got.Withdrawn)
}

func TestPlayerStoreWithdrawalInsufficientLeavesBalance(t *testing.T) {
	s := NewPlayerStore()
	p := newTestPlayer(t, s, "abebe", 10)
	_, err := s.ProcessPayment(p.ID, 30)
	require.NoError(t, err)

	balance, err := s.ProcessWithdrawal(p.ID, 31)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, 30.0, balance)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Balance())
	assert.Zero(t, got.Withdrawn)
}

func TestPlayerStoreUnknownID(t *testing.T) {
	s := NewPlayerStore()

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	_, err = s.ProcessPayment("nope", 5)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	assert.ErrorIs(t, s.Remove("nope"), domain.ErrPlayerNotFound)
}

func TestPlayerStoreMarkRequiresRoom(t *testing.T) {
	s := NewPlayerStore()
	p := newTestPlayer(t, s, "abebe", 10)

	assert.ErrorIs(t, s.Mark(p.ID, 5, true), domain.ErrNotInRoom)

	require.NoError(t, s.JoinRoom(p.ID, "r1"))
	require.NoError(t, s.Mark(p.ID, 5, true))
	assert.ErrorIs(t, s.Mark(p.ID, 76, true), domain.ErrBadNumber)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.True(t, got.Marked[5])

	require.NoError(t, s.Mark(p.ID, 5, false))
	got, _ = s.Get(p.ID)
	assert.False(t, got.Marked[5])
}

func TestPlayerStoreLeaveRoomClearsMarks(t *testing.T) {
	s := NewPlayerStore()
	p := newTestPlayer(t, s, "abebe", 10)
	require.NoError(t, s.JoinRoom(p.ID, "r1"))
	require.NoError(t, s.Mark(p.ID, 3, true))
	require.NoError(t, s.Mark(p.ID, 7, true))

	require.NoError(t, s.LeaveRoom(p.ID))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Marked)
	assert.Empty(t, got.RoomID)
}

func TestPlayerStoreJoinRoomExclusive(t *testing.T) {
	s := NewPlayerStore()
	p := newTestPlayer(t, s, "abebe", 10)
	require.NoError(t, s.JoinRoom(p.ID, "r1"))
	assert.ErrorIs(t, s.JoinRoom(p.ID, "r2"), domain.ErrAlreadyInRoom)
	// Re-affirming the same room is not a conflict.
	assert.NoError(t, s.JoinRoom(p.ID, "r1"))
}

func TestPlayerStoreUpdatePatch(t *testing.T) {
	s := NewPlayerStore()
	p := newTestPlayer(t, s, "abebe", 10)

	name := "kebede"
	stake := 25.0
	got, err := s.Update(p.ID, PlayerPatch{Name: &name, Stake: &stake})
	require.NoError(t, err)
	assert.Equal(t, "kebede", got.Name)
	assert.Equal(t, 25.0, got.Stake)

	bad := ""
	_, err = s.Update(p.ID, PlayerPatch{Name: &bad})
	assert.ErrorIs(t, err, domain.ErrNameEmpty)
}

func TestPlayerStoreCloneIsolation(t *testing.T) {
	s := NewPlayerStore()
	p := newTestPlayer(t, s, "abebe", 10)
	require.NoError(t, s.JoinRoom(p.ID, "r1"))

	got, _ := s.Get(p.ID)
	got.Marked[42] = true
	got.Payment = 9999

	fresh, _ := s.Get(p.ID)
	assert.False(t, fresh.Marked[42])
	assert.Zero(t, fresh.Payment)
}
