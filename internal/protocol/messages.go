package protocol

import (
	"time"

	"github.com/chatwire/chatwire/internal/types"
)

// CommandType discriminates client-to-server payloads.
type CommandType string

const (
	CmdJoinRoom    CommandType = "join_room"
	CmdLeaveRoom   CommandType = "leave_room"
	CmdSendMessage CommandType = "send_message"
	CmdListRooms   CommandType = "list_rooms"
	CmdListUsers   CommandType = "list_users"
	CmdRoomHistory CommandType = "room_history"
)

// Command is a tagged union of every client-to-server payload. Exactly one
// variant field matching Type is set.
type Command struct {
	Type        CommandType         `json:"type"`
	JoinRoom    *JoinRoomCommand    `json:"join_room,omitempty"`
	LeaveRoom   *LeaveRoomCommand   `json:"leave_room,omitempty"`
	SendMessage *SendMessageCommand `json:"send_message,omitempty"`
	ListRooms   *ListRoomsCommand   `json:"list_rooms,omitempty"`
	ListUsers   *ListUsersCommand   `json:"list_users,omitempty"`
	RoomHistory *RoomHistoryCommand `json:"room_history,omitempty"`
}

type JoinRoomCommand struct {
	Handle string `json:"handle"`
	Room   string `json:"room"`
}

type LeaveRoomCommand struct {
	Handle string `json:"handle"`
}

type SendMessageCommand struct {
	Handle  string `json:"handle"`
	Room    string `json:"room"`
	Content string `json:"content"`
}

type ListRoomsCommand struct{}

// ListUsersCommand names a room, or targets the caller's current room when
// Room is empty.
type ListUsersCommand struct {
	Room string `json:"room,omitempty"`
}

type RoomHistoryCommand struct {
	Room string `json:"room"`
}

// EventType discriminates server-to-client payloads.
type EventType string

const (
	EvtJoinedRoom  EventType = "joined_room"
	EvtLeftRoom    EventType = "left_room"
	EvtMessage     EventType = "message"
	EvtRoomList    EventType = "room_list"
	EvtUserList    EventType = "user_list"
	EvtRoomHistory EventType = "room_history"
	EvtUserJoined  EventType = "user_joined"
	EvtUserLeft    EventType = "user_left"
	EvtError       EventType = "error"
)

// Event is a tagged union of every server-to-client payload.
type Event struct {
	Type        EventType         `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	JoinedRoom  *JoinedRoomEvent  `json:"joined_room,omitempty"`
	LeftRoom    *LeftRoomEvent    `json:"left_room,omitempty"`
	Message     *MessageEvent     `json:"message,omitempty"`
	RoomList    *RoomListEvent    `json:"room_list,omitempty"`
	UserList    *UserListEvent    `json:"user_list,omitempty"`
	RoomHistory *RoomHistoryEvent `json:"room_history,omitempty"`
	UserJoined  *UserJoinedEvent  `json:"user_joined,omitempty"`
	UserLeft    *UserLeftEvent    `json:"user_left,omitempty"`
	Error       *ErrorEvent       `json:"error,omitempty"`
}

// JoinedRoomEvent confirms a join to the joining connection. Messages holds
// the room's history, oldest first.
type JoinedRoomEvent struct {
	Room     string          `json:"room"`
	Messages []types.Message `json:"messages"`
}

type LeftRoomEvent struct {
	Room string `json:"room"`
}

type MessageEvent struct {
	Message types.Message `json:"message"`
}

type RoomListEvent struct {
	Rooms []types.RoomInfo `json:"rooms"`
}

type UserListEvent struct {
	Room    string   `json:"room"`
	Handles []string `json:"handles"`
}

type RoomHistoryEvent struct {
	Room     string          `json:"room"`
	Messages []types.Message `json:"messages"`
}

type UserJoinedEvent struct {
	Handle string `json:"handle"`
	Room   string `json:"room"`
}

type UserLeftEvent struct {
	Handle string `json:"handle"`
	Room   string `json:"room"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

func NewJoinedRoomEvent(room string, messages []types.Message) *Event {
	return &Event{
		Type:       EvtJoinedRoom,
		Timestamp:  Now(),
		JoinedRoom: &JoinedRoomEvent{Room: room, Messages: messages},
	}
}

func NewLeftRoomEvent(room string) *Event {
	return &Event{
		Type:      EvtLeftRoom,
		Timestamp: Now(),
		LeftRoom:  &LeftRoomEvent{Room: room},
	}
}

func NewMessageEvent(msg types.Message) *Event {
	return &Event{
		Type:      EvtMessage,
		Timestamp: Now(),
		Message:   &MessageEvent{Message: msg},
	}
}

func NewRoomListEvent(rooms []types.RoomInfo) *Event {
	return &Event{
		Type:      EvtRoomList,
		Timestamp: Now(),
		RoomList:  &RoomListEvent{Rooms: rooms},
	}
}

func NewUserListEvent(room string, handles []string) *Event {
	return &Event{
		Type:      EvtUserList,
		Timestamp: Now(),
		UserList:  &UserListEvent{Room: room, Handles: handles},
	}
}

func NewRoomHistoryEvent(room string, messages []types.Message) *Event {
	return &Event{
		Type:        EvtRoomHistory,
		Timestamp:   Now(),
		RoomHistory: &RoomHistoryEvent{Room: room, Messages: messages},
	}
}

func NewUserJoinedEvent(handle, room string) *Event {
	return &Event{
		Type:       EvtUserJoined,
		Timestamp:  Now(),
		UserJoined: &UserJoinedEvent{Handle: handle, Room: room},
	}
}

func NewUserLeftEvent(handle, room string) *Event {
	return &Event{
		Type:      EvtUserLeft,
		Timestamp: Now(),
		UserLeft:  &UserLeftEvent{Handle: handle, Room: room},
	}
}

func NewErrorEvent(message string) *Event {
	return &Event{
		Type:      EvtError,
		Timestamp: Now(),
		Error:     &ErrorEvent{Message: message},
	}
}

// Now returns the current UTC time rounded to millisecond precision so
// timestamps survive a JSON round trip unchanged.
func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
