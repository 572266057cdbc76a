package protocol

import (
	"encoding/json"
	"fmt"
)

// Codec converts typed commands and events to and from opaque payload
// bytes. The engine and client loops depend only on this capability, so
// the wire encoding can change without touching either.
type Codec interface {
	EncodeCommand(cmd *Command) ([]byte, error)
	DecodeCommand(data []byte) (*Command, error)
	EncodeEvent(evt *Event) ([]byte, error)
	DecodeEvent(data []byte) (*Event, error)
}

// JSONCodec encodes commands and events as UTF-8 JSON.
type JSONCodec struct{}

func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

func (c *JSONCodec) EncodeCommand(cmd *Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return data, nil
}

func (c *JSONCodec) DecodeCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, &SerializationError{Err: err}
	}
	if err := validateCommand(&cmd); err != nil {
		return nil, &SerializationError{Err: err}
	}
	return &cmd, nil
}

func (c *JSONCodec) EncodeEvent(evt *Event) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return data, nil
}

func (c *JSONCodec) DecodeEvent(data []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, &SerializationError{Err: err}
	}
	if err := validateEvent(&evt); err != nil {
		return nil, &SerializationError{Err: err}
	}
	return &evt, nil
}

// validateCommand checks that the variant field named by the discriminator
// is present. list_rooms carries no arguments, so a nil body is accepted
// and normalized.
func validateCommand(cmd *Command) error {
	switch cmd.Type {
	case CmdJoinRoom:
		if cmd.JoinRoom == nil {
			return fmt.Errorf("missing %s payload", cmd.Type)
		}
	case CmdLeaveRoom:
		if cmd.LeaveRoom == nil {
			return fmt.Errorf("missing %s payload", cmd.Type)
		}
	case CmdSendMessage:
		if cmd.SendMessage == nil {
			return fmt.Errorf("missing %s payload", cmd.Type)
		}
	case CmdListRooms:
		if cmd.ListRooms == nil {
			cmd.ListRooms = &ListRoomsCommand{}
		}
	case CmdListUsers:
		if cmd.ListUsers == nil {
			cmd.ListUsers = &ListUsersCommand{}
		}
	case CmdRoomHistory:
		if cmd.RoomHistory == nil {
			return fmt.Errorf("missing %s payload", cmd.Type)
		}
	default:
		return fmt.Errorf("unknown command type %q", cmd.Type)
	}

	return nil
}

func validateEvent(evt *Event) error {
	switch evt.Type {
	case EvtJoinedRoom:
		if evt.JoinedRoom == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	case EvtLeftRoom:
		if evt.LeftRoom == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	case EvtMessage:
		if evt.Message == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	case EvtRoomList:
		if evt.RoomList == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	case EvtUserList:
		if evt.UserList == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	case EvtRoomHistory:
		if evt.RoomHistory == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	case EvtUserJoined:
		if evt.UserJoined == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	case EvtUserLeft:
		if evt.UserLeft == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	case EvtError:
		if evt.Error == nil {
			return fmt.Errorf("missing %s payload", evt.Type)
		}
	default:
		return fmt.Errorf("unknown event type %q", evt.Type)
	}

	return nil
}
