// Package store holds the room directory behind a small capability
// interface so an alternate backing implementation can be substituted
// without touching the engine.
package store

import (
	"errors"
	"time"

	"github.com/chatwire/chatwire/internal/types"
)

var ErrRoomNotFound = errors.New("room not found")

// Room is a named channel: an append-only, oldest-first message history
// and the set of handles currently present.
type Room struct {
	Name         string
	Messages     []types.Message
	Participants []string
	CreatedAt    time.Time
}

// Info returns the room's list-snapshot form.
func (r *Room) Info() types.RoomInfo {
	return types.RoomInfo{
		Name:             r.Name,
		ParticipantCount: len(r.Participants),
	}
}

// HasParticipant reports whether handle is in the room's participant set.
func (r *Room) HasParticipant(handle string) bool {
	for _, h := range r.Participants {
		if h == handle {
			return true
		}
	}
	return false
}

// RoomStore is the engine's view of room state. The engine is the only
// writer; implementations shared with other readers must synchronize
// internally.
type RoomStore interface {
	// GetRoom returns the named room or ErrRoomNotFound.
	GetRoom(name string) (*Room, error)
	// CreateRoom creates the named room. Creating a room that already
	// exists is not an error; the existing room is returned.
	CreateRoom(name string) (*Room, error)
	// AddMessage appends a message to the named room's history.
	AddMessage(name string, msg types.Message) (*Room, error)
	// AddParticipant adds a handle to the named room's participant set.
	// Adding a handle that is already present is a no-op.
	AddParticipant(name, handle string) (*Room, error)
	// RemoveParticipant removes a handle from the named room's
	// participant set.
	RemoveParticipant(name, handle string) (*Room, error)
	// ListRooms returns a snapshot of every known room with its current
	// participant count.
	ListRooms() []types.RoomInfo
}
