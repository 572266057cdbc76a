package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatwire/chatwire/internal/types"
)

func TestMemoryRoomStoreCreateAndGet(t *testing.T) {
	s := NewMemoryRoomStore()

	_, err := s.GetRoom("general")
	assert.ErrorIs(t, err, ErrRoomNotFound, "expected missing room to return ErrRoomNotFound")

	room, err := s.CreateRoom("general")
	assert.NoError(t, err, "expected create to succeed")
	assert.Equal(t, "general", room.Name, "expected room name to be set")
	assert.Empty(t, room.Messages, "expected new room to have no history")
	assert.False(t, room.CreatedAt.IsZero(), "expected creation time to be set")

	got, err := s.GetRoom("general")
	assert.NoError(t, err, "expected get to succeed after create")
	assert.Equal(t, room.Name, got.Name, "expected same room back")
}

func TestMemoryRoomStoreCreateExistingReturnsRoom(t *testing.T) {
	s := NewMemoryRoomStore()

	_, err := s.CreateRoom("general")
	assert.NoError(t, err, "expected create to succeed")
	_, err = s.AddMessage("general", types.Message{Id: "m1", Content: "hi"})
	assert.NoError(t, err, "expected add message to succeed")

	room, err := s.CreateRoom("general")
	assert.NoError(t, err, "expected re-create not to error")
	assert.Len(t, room.Messages, 1, "expected existing room returned with its history intact")
}

func TestMemoryRoomStoreAddMessageOrder(t *testing.T) {
	s := NewMemoryRoomStore()
	s.CreateRoom("general")

	for _, id := range []string{"m1", "m2", "m3"} {
		_, err := s.AddMessage("general", types.Message{Id: id})
		assert.NoError(t, err, "expected add message to succeed")
	}

	room, err := s.GetRoom("general")
	assert.NoError(t, err, "expected get to succeed")
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{
		room.Messages[0].Id, room.Messages[1].Id, room.Messages[2].Id,
	}, "expected history ordered oldest first")

	_, err = s.AddMessage("nope", types.Message{Id: "m4"})
	assert.ErrorIs(t, err, ErrRoomNotFound, "expected add to missing room to fail")
}

func TestMemoryRoomStoreParticipants(t *testing.T) {
	s := NewMemoryRoomStore()
	s.CreateRoom("general")

	room, err := s.AddParticipant("general", "alice")
	assert.NoError(t, err, "expected add participant to succeed")
	assert.Equal(t, []string{"alice"}, room.Participants, "expected alice in participant set")

	// set semantics: adding twice keeps one entry
	room, err = s.AddParticipant("general", "alice")
	assert.NoError(t, err, "expected duplicate add not to error")
	assert.Len(t, room.Participants, 1, "expected participant set semantics")

	room, err = s.AddParticipant("general", "bob")
	assert.NoError(t, err, "expected second participant to succeed")
	assert.Len(t, room.Participants, 2, "expected two participants")

	room, err = s.RemoveParticipant("general", "alice")
	assert.NoError(t, err, "expected remove to succeed")
	assert.Equal(t, []string{"bob"}, room.Participants, "expected only bob to remain")

	room, err = s.RemoveParticipant("general", "alice")
	assert.NoError(t, err, "expected removing absent handle not to error")
	assert.Len(t, room.Participants, 1, "expected participant set unchanged")

	_, err = s.AddParticipant("nope", "alice")
	assert.ErrorIs(t, err, ErrRoomNotFound, "expected add to missing room to fail")
	_, err = s.RemoveParticipant("nope", "alice")
	assert.ErrorIs(t, err, ErrRoomNotFound, "expected remove from missing room to fail")
}

func TestMemoryRoomStoreListRooms(t *testing.T) {
	s := NewMemoryRoomStore()

	assert.Empty(t, s.ListRooms(), "expected no rooms initially")

	s.CreateRoom("zebra")
	s.CreateRoom("alpha")
	s.AddParticipant("alpha", "alice")
	s.AddParticipant("alpha", "bob")

	infos := s.ListRooms()
	assert.Equal(t, []types.RoomInfo{
		{Name: "alpha", ParticipantCount: 2},
		{Name: "zebra", ParticipantCount: 0},
	}, infos, "expected rooms sorted by name with participant counts")
}

func TestMemoryRoomStoreSnapshotsAreIsolated(t *testing.T) {
	s := NewMemoryRoomStore()
	s.CreateRoom("general")
	s.AddParticipant("general", "alice")
	s.AddMessage("general", types.Message{Id: "m1"})

	room, err := s.GetRoom("general")
	assert.NoError(t, err, "expected get to succeed")

	room.Participants[0] = "mallory"
	room.Messages[0].Id = "forged"

	fresh, err := s.GetRoom("general")
	assert.NoError(t, err, "expected get to succeed")
	assert.Equal(t, "alice", fresh.Participants[0], "expected stored participants untouched")
	assert.Equal(t, "m1", fresh.Messages[0].Id, "expected stored history untouched")
}

func TestRoomHasParticipant(t *testing.T) {
	room := &Room{Participants: []string{"alice", "bob"}}
	assert.True(t, room.HasParticipant("alice"), "expected alice present")
	assert.False(t, room.HasParticipant("carol"), "expected carol absent")
}
