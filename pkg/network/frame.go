// Package network carries tower messages between peers over libp2p
// streams. It owns everything the message core treats as external: stream
// framing, the warning channel for protocol errors, and the send loop that
// drains the handler's pending queue.
package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/libp2p/go-libp2p/core/protocol"
)

// TowerProtocolID is the libp2p protocol for tower custom messages
const TowerProtocolID = protocol.ID("/towermsg/1.0.0")

// MsgTypeWarning is the transport-level warning message (mirrors the
// surrounding protocol, where type 1 is a non-fatal warning carrying UTF-8
// text). It lives in this package because warnings belong to the channel,
// not to the tower message set.
const MsgTypeWarning uint16 = 1

// MaxFrameSize bounds a single frame (type id + payload)
const MaxFrameSize = 65535

var (
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
	ErrFrameTooSmall = errors.New("frame shorter than a type id")
)

// WriteFrame writes one length-delimited frame: a 4-byte big-endian length
// followed by the wire bytes (type id + payload). The length prefix belongs
// to this plumbing layer, not to the message encoding itself.
//
// The frame goes out as a single Write so that writers serialized by a lock
// can never interleave a length prefix with another frame's body.
func WriteFrame(w io.Writer, wire []byte) error {
	if len(wire) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	frame := make([]byte, 4+len(wire))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(wire)))
	copy(frame[4:], wire)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one frame and splits it into the message type id and the
// raw payload bytes
func ReadFrame(r io.Reader) (uint16, []byte, error) {
	var length [4]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return 0, nil, err
	}

	size := binary.BigEndian.Uint32(length[:])
	if size > MaxFrameSize {
		return 0, nil, ErrFrameTooLarge
	}
	if size < 2 {
		return 0, nil, ErrFrameTooSmall
	}

	wire := make([]byte, size)
	if _, err := io.ReadFull(r, wire); err != nil {
		return 0, nil, fmt.Errorf("read frame body: %w", err)
	}

	return binary.BigEndian.Uint16(wire[0:2]), wire[2:], nil
}
