package store

import (
	"slices"
	"sync"
	"time"

	"github.com/chatwire/chatwire/internal/types"
)

// MemoryRoomStore keeps the room directory in process memory. Accessors
// return copies, so a caller never holds a reference into live state.
type MemoryRoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{
		rooms: make(map[string]*Room),
	}
}

func (s *MemoryRoomStore) GetRoom(name string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return snapshot(room), nil
}

func (s *MemoryRoomStore) CreateRoom(name string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[name]; ok {
		return snapshot(room), nil
	}

	room := &Room{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	s.rooms[name] = room

	return snapshot(room), nil
}

func (s *MemoryRoomStore) AddMessage(name string, msg types.Message) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.Messages = append(room.Messages, msg)

	return snapshot(room), nil
}

func (s *MemoryRoomStore) AddParticipant(name, handle string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}

	if !room.HasParticipant(handle) {
		room.Participants = append(room.Participants, handle)
	}

	return snapshot(room), nil
}

func (s *MemoryRoomStore) RemoveParticipant(name, handle string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}

	for i, h := range room.Participants {
		if h == handle {
			room.Participants = slices.Delete(room.Participants, i, i+1)
			break
		}
	}

	return snapshot(room), nil
}

func (s *MemoryRoomStore) ListRooms() []types.RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]types.RoomInfo, 0, len(s.rooms))
	for _, room := range s.rooms {
		infos = append(infos, room.Info())
	}

	slices.SortFunc(infos, func(a, b types.RoomInfo) int {
		return cmpString(a.Name, b.Name)
	})

	return infos
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func snapshot(room *Room) *Room {
	return &Room{
		Name:         room.Name,
		Messages:     slices.Clone(room.Messages),
		Participants: slices.Clone(room.Participants),
		CreatedAt:    room.CreatedAt,
	}
}
