package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatwire/chatwire/internal/types"
)

func TestCommandRoundTrip(t *testing.T) {
	codec := NewJSONCodec()

	tcases := []struct {
		name string
		cmd  *Command
	}{
		{
			name: "join room",
			cmd:  &Command{Type: CmdJoinRoom, JoinRoom: &JoinRoomCommand{Handle: "alice", Room: "general"}},
		},
		{
			name: "leave room",
			cmd:  &Command{Type: CmdLeaveRoom, LeaveRoom: &LeaveRoomCommand{Handle: "alice"}},
		},
		{
			name: "send message",
			cmd:  &Command{Type: CmdSendMessage, SendMessage: &SendMessageCommand{Handle: "alice", Room: "general", Content: "hi"}},
		},
		{
			name: "list rooms",
			cmd:  &Command{Type: CmdListRooms, ListRooms: &ListRoomsCommand{}},
		},
		{
			name: "list users with room",
			cmd:  &Command{Type: CmdListUsers, ListUsers: &ListUsersCommand{Room: "general"}},
		},
		{
			name: "list users without room",
			cmd:  &Command{Type: CmdListUsers, ListUsers: &ListUsersCommand{}},
		},
		{
			name: "room history",
			cmd:  &Command{Type: CmdRoomHistory, RoomHistory: &RoomHistoryCommand{Room: "general"}},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := codec.EncodeCommand(tc.cmd)
			assert.NoError(t, err, "expected encode to succeed")

			got, err := codec.DecodeCommand(data)
			assert.NoError(t, err, "expected decode to succeed")
			assert.Equal(t, tc.cmd, got, "expected command to round trip unchanged")
		})
	}
}

func TestEventRoundTrip(t *testing.T) {
	codec := NewJSONCodec()

	msg := types.Message{
		Id:        "EoGKUXPHgz",
		Content:   "hello",
		Author:    "alice",
		Room:      "general",
		Timestamp: Now(),
	}

	tcases := []struct {
		name string
		evt  *Event
	}{
		{name: "joined room", evt: NewJoinedRoomEvent("general", []types.Message{msg})},
		{name: "joined room empty history", evt: NewJoinedRoomEvent("general", nil)},
		{name: "left room", evt: NewLeftRoomEvent("general")},
		{name: "message", evt: NewMessageEvent(msg)},
		{name: "room list", evt: NewRoomListEvent([]types.RoomInfo{{Name: "general", ParticipantCount: 2}})},
		{name: "user list", evt: NewUserListEvent("general", []string{"alice", "bob"})},
		{name: "room history", evt: NewRoomHistoryEvent("general", []types.Message{msg})},
		{name: "user joined", evt: NewUserJoinedEvent("alice", "general")},
		{name: "user left", evt: NewUserLeftEvent("alice", "general")},
		{name: "error", evt: NewErrorEvent("room not found")},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := codec.EncodeEvent(tc.evt)
			assert.NoError(t, err, "expected encode to succeed")

			got, err := codec.DecodeEvent(data)
			assert.NoError(t, err, "expected decode to succeed")
			assert.Equal(t, tc.evt, got, "expected event to round trip unchanged")
		})
	}
}

func TestDecodeCommandRejectsMalformedPayloads(t *testing.T) {
	codec := NewJSONCodec()

	tcases := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{{`},
		{name: "unknown type", data: `{"type":"shout"}`},
		{name: "missing discriminator", data: `{"join_room":{"handle":"a","room":"b"}}`},
		{name: "missing variant payload", data: `{"type":"join_room"}`},
		{name: "mismatched variant payload", data: `{"type":"send_message","join_room":{"handle":"a","room":"b"}}`},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.DecodeCommand([]byte(tc.data))
			var serErr *SerializationError
			assert.ErrorAs(t, err, &serErr, "expected a SerializationError")
		})
	}
}

func TestDecodeCommandNormalizesBareListRooms(t *testing.T) {
	codec := NewJSONCodec()

	cmd, err := codec.DecodeCommand([]byte(`{"type":"list_rooms"}`))
	assert.NoError(t, err, "expected bare list_rooms to decode")
	assert.NotNil(t, cmd.ListRooms, "expected list_rooms payload to be populated")
}

func TestDecodeEventRejectsMalformedPayloads(t *testing.T) {
	codec := NewJSONCodec()

	tcases := []struct {
		name string
		data string
	}{
		{name: "not json", data: `]`},
		{name: "unknown type", data: `{"type":"presence"}`},
		{name: "missing variant payload", data: `{"type":"user_joined"}`},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.DecodeEvent([]byte(tc.data))
			var serErr *SerializationError
			assert.ErrorAs(t, err, &serErr, "expected a SerializationError")
		})
	}
}
