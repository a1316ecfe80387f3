package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrShortBuffer    = errors.New("buffer too short")
	ErrInvalidUserKey = errors.New("invalid user key encoding")
)

// DecodeError reports a malformed payload for a recognized message type.
// It always wraps the underlying cause (truncation, bad point encoding).
type DecodeError struct {
	Type uint16
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode message type %d: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(msgType uint16, err error) *DecodeError {
	return &DecodeError{Type: msgType, Err: err}
}
