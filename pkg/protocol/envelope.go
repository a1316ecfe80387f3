package protocol

import "encoding/binary"

// Message is the closed set of tower messages. Each variant reports its wire
// type identifier and encodes its own payload; the unexported marker keeps
// the set closed so dispatch can match exhaustively.
type Message interface {
	TypeID() uint16
	Encode() []byte

	towerMessage()
}

// ReadMessage decodes the payload for the given type identifier.
//
// An unrecognized type id returns (nil, nil) rather than an error: it means
// "not one of my messages", letting a generic outer dispatcher offer the
// bytes to other handlers. A recognized type id with a malformed payload
// returns a *DecodeError.
func ReadMessage(msgType uint16, payload []byte) (Message, error) {
	switch msgType {
	case MsgTypeRegister:
		msg := &Register{}
		if err := msg.Decode(payload); err != nil {
			return nil, err
		}
		return msg, nil

	case MsgTypeSubscriptionDetails:
		// The tower never expects this one inbound, but decoding it keeps
		// the codec symmetric; the dispatcher rejects it.
		msg := &SubscriptionDetails{}
		if err := msg.Decode(payload); err != nil {
			return nil, err
		}
		return msg, nil

	default:
		// Unknown message.
		return nil, nil
	}
}

// WriteMessage encodes a message for the wire: the 2-byte big-endian type
// identifier immediately followed by the payload. No length prefix or
// terminator; length is implied by the type's fixed field widths.
func WriteMessage(msg Message) []byte {
	payload := msg.Encode()
	buf := make([]byte, 2+len(payload))

	binary.BigEndian.PutUint16(buf[0:2], msg.TypeID())
	copy(buf[2:], payload)

	return buf
}
