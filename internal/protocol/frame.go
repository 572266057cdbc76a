package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxPayloadSize is the largest payload a single frame may carry.
const MaxPayloadSize = 1 << 20

const lengthPrefixSize = 4

// WriteFrame writes one frame: a 4-byte big-endian length prefix followed
// by the payload. The prefix and payload go out in a single write so a
// frame is never interleaved with another writer's output.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > MaxPayloadSize {
		return ErrInvalidMessageFormat
	}

	buf := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[lengthPrefixSize:], payload)

	if _, err := w.Write(buf); err != nil {
		return &NetworkError{Op: "write frame", Err: err}
	}

	return nil
}

// ReadFrame blocks until exactly one frame is available and returns its
// payload. A stream that ends cleanly at a frame boundary yields
// ErrConnectionClosed; one that ends inside the length prefix yields
// ErrInvalidMessageFormat. A declared length of zero or above
// MaxPayloadSize is rejected before any payload bytes are read, so a
// corrupt prefix cannot trigger an unbounded allocation.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [lengthPrefixSize]byte
	n, err := io.ReadFull(r, prefix[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, ErrConnectionClosed
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrInvalidMessageFormat
		}
		return nil, &NetworkError{Op: "read length prefix", Err: err}
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length == 0 || length > MaxPayloadSize {
		return nil, ErrInvalidMessageFormat
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrConnectionClosed
		}
		return nil, &NetworkError{Op: "read payload", Err: err}
	}

	return payload, nil
}
