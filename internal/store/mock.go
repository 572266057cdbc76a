package store

import (
	"github.com/stretchr/testify/mock"

	"github.com/chatwire/chatwire/internal/types"
)

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) GetRoom(name string) (*Room, error) {
	args := m.Called(name)
	if room, ok := args.Get(0).(*Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomStore) CreateRoom(name string) (*Room, error) {
	args := m.Called(name)
	if room, ok := args.Get(0).(*Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomStore) AddMessage(name string, msg types.Message) (*Room, error) {
	args := m.Called(name, msg)
	if room, ok := args.Get(0).(*Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomStore) AddParticipant(name, handle string) (*Room, error) {
	args := m.Called(name, handle)
	if room, ok := args.Get(0).(*Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomStore) RemoveParticipant(name, handle string) (*Room, error) {
	args := m.Called(name, handle)
	if room, ok := args.Get(0).(*Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoomStore) ListRooms() []types.RoomInfo {
	args := m.Called()
	return args.Get(0).([]types.RoomInfo)
}
