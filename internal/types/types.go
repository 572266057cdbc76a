package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxHandleLen  = 32
	maxRoomLen    = 64
	maxContentLen = 4096
)

var identPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidationError reports a rejected domain value. It is surfaced to the
// originating client as an error event and never reaches the room store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UserHandle is a validated user identity. Handles are not reserved: the
// same handle may be bound to multiple connections at once.
type UserHandle string

func NewUserHandle(s string) (UserHandle, error) {
	if s == "" {
		return "", &ValidationError{Field: "handle", Reason: "cannot be empty"}
	}
	if utf8.RuneCountInString(s) > maxHandleLen {
		return "", &ValidationError{Field: "handle", Reason: fmt.Sprintf("longer than %d characters", maxHandleLen)}
	}
	if !identPattern.MatchString(s) {
		return "", &ValidationError{Field: "handle", Reason: "may only contain letters, digits, '_' and '-'"}
	}
	return UserHandle(s), nil
}

func (h UserHandle) String() string { return string(h) }

// RoomName is a validated room identity.
type RoomName string

func NewRoomName(s string) (RoomName, error) {
	if s == "" {
		return "", &ValidationError{Field: "room", Reason: "cannot be empty"}
	}
	if utf8.RuneCountInString(s) > maxRoomLen {
		return "", &ValidationError{Field: "room", Reason: fmt.Sprintf("longer than %d characters", maxRoomLen)}
	}
	if !identPattern.MatchString(s) {
		return "", &ValidationError{Field: "room", Reason: "may only contain letters, digits, '_' and '-'"}
	}
	return RoomName(s), nil
}

func (r RoomName) String() string { return string(r) }

// MessageContent is a validated message body.
type MessageContent string

func NewMessageContent(s string) (MessageContent, error) {
	if strings.TrimSpace(s) == "" {
		return "", &ValidationError{Field: "content", Reason: "cannot be empty"}
	}
	if len(s) > maxContentLen {
		return "", &ValidationError{Field: "content", Reason: fmt.Sprintf("longer than %d bytes", maxContentLen)}
	}
	return MessageContent(s), nil
}

func (c MessageContent) String() string { return string(c) }

// Message is one chat message. Once minted it is never mutated; room
// histories are append-only and ordered oldest first.
type Message struct {
	Id        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Room      string    `json:"room"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomInfo is one element of a room-list snapshot.
type RoomInfo struct {
	Name             string `json:"name"`
	ParticipantCount int    `json:"participant_count"`
}
