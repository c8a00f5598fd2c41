package reconcile

import (
	"context"
	"testing"

	"ward-manager/feature/occupancy/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_CreatesRoomWithStrippedNumber(t *testing.T) {
	s := newFakeStore()
	r := NewResolver(s)

	room, err := r.Room(context.Background(), "R1", "Палата № 101")
	require.NoError(t, err)
	assert.Equal(t, "101", room.Number)
	assert.Equal(t, "Палата № 101", room.Name)
	assert.Equal(t, 1, s.roomCreates)
}

func TestResolver_RawHintWithoutPrefix(t *testing.T) {
	s := newFakeStore()
	r := NewResolver(s)

	room, err := r.Room(context.Background(), "R1", "Бокс 3")
	require.NoError(t, err)
	assert.Equal(t, "Бокс 3", room.Number, "unknown label falls back to the raw hint")

	bed, err := r.Bed(context.Background(), "B1", "Место 2", room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Место 2", bed.Number)
}

func TestResolver_ReturnsExistingRoom(t *testing.T) {
	s := newFakeStore()
	require.NoError(t, s.CreateRoom(context.Background(), &models.Room{ExternalID: "R1", Number: "101"}))
	s.roomCreates = 0

	r := NewResolver(s)
	room, err := r.Room(context.Background(), "R1", "Палата № 101")
	require.NoError(t, err)
	assert.Equal(t, "101", room.Number)
	assert.Equal(t, 0, s.roomCreates)
}

func TestResolver_MemoizesWithinPass(t *testing.T) {
	s := newFakeStore()
	r := NewResolver(s)

	first, err := r.Room(context.Background(), "R1", "Палата № 101")
	require.NoError(t, err)
	second, err := r.Room(context.Background(), "R1", "Палата № 101")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, s.roomLookups)
	assert.Equal(t, 1, s.roomCreates)
}

func TestResolver_RetriesOnCreationConflict(t *testing.T) {
	s := newFakeStore()
	s.conflictRoomCreate = true

	r := NewResolver(s)
	room, err := r.Room(context.Background(), "R1", "Палата № 101")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.NotZero(t, room.ID, "the winner's row is refetched")
	assert.Equal(t, 2, s.roomLookups)

	// Only one row exists for the external id.
	rooms, err := s.RoomsWithBeds(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestResolver_BedScopedToRoom(t *testing.T) {
	s := newFakeStore()
	r := NewResolver(s)

	room, err := r.Room(context.Background(), "R1", "Палата № 101")
	require.NoError(t, err)

	bed, err := r.Bed(context.Background(), "B1", "Койка № 2", room.ID)
	require.NoError(t, err)
	assert.Equal(t, "2", bed.Number)
	assert.Equal(t, room.ID, bed.RoomID)
}
