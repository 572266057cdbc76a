// Package protocol implements the wire protocol: length-prefixed framing
// over a byte stream and the tagged command/event payloads carried inside
// each frame.
package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionClosed indicates the peer closed the stream at a frame
	// boundary or mid-payload.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrInvalidMessageFormat indicates a malformed frame: a truncated or
	// out-of-range length prefix, or an oversized payload.
	ErrInvalidMessageFormat = errors.New("invalid message format")
)

// NetworkError wraps a transport-level read or write failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %s", e.Op, e.Err.Error())
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SerializationError wraps a failure to encode or decode a payload.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error: %s", e.Err.Error())
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
