package protocol

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Payload sizes implied by the fixed field widths of each message type
const (
	RegisterSize            = UserKeySize + 4 + 4
	SubscriptionDetailsSize = 2 + 4
)

// ===== REGISTER =====

// Register is sent by a client to register for the watching service
type Register struct {
	UserKey            UserKey // Compressed public key of the registering user
	AppointmentSlots   uint32  // Concurrent appointments requested
	SubscriptionPeriod uint32  // Duration of the subscription
}

// TypeID returns the wire type identifier
func (m *Register) TypeID() uint16 { return MsgTypeRegister }

func (m *Register) towerMessage() {}

// Encode encodes the register message to bytes
func (m *Register) Encode() []byte {
	buf := make([]byte, RegisterSize)
	offset := 0

	copy(buf[offset:], m.UserKey[:])
	offset += UserKeySize

	binary.BigEndian.PutUint32(buf[offset:], m.AppointmentSlots)
	offset += 4

	binary.BigEndian.PutUint32(buf[offset:], m.SubscriptionPeriod)

	return buf
}

// Decode decodes the register message from bytes
func (m *Register) Decode(buf []byte) error {
	if len(buf) < RegisterSize {
		return decodeErr(MsgTypeRegister, ErrShortBuffer)
	}

	offset := 0

	copy(m.UserKey[:], buf[offset:offset+UserKeySize])
	offset += UserKeySize

	// The key is a fixed-width point encoding, so decoding must fail if the
	// bytes are not a valid point, not just if they are missing.
	if _, err := secp256k1.ParsePubKey(m.UserKey[:]); err != nil {
		return decodeErr(MsgTypeRegister, ErrInvalidUserKey)
	}

	m.AppointmentSlots = binary.BigEndian.Uint32(buf[offset:])
	offset += 4

	m.SubscriptionPeriod = binary.BigEndian.Uint32(buf[offset:])

	return nil
}

// ===== SUBSCRIPTION DETAILS =====

// SubscriptionDetails is the tower's reply to a register message, carrying
// the maximum appointment size and the subscription fee in msat
type SubscriptionDetails struct {
	AppointmentMaxSize uint16 // Per-appointment byte-size cap
	AmountMsat         uint32 // Subscription fee in millisatoshi
}

// TypeID returns the wire type identifier
func (m *SubscriptionDetails) TypeID() uint16 { return MsgTypeSubscriptionDetails }

func (m *SubscriptionDetails) towerMessage() {}

// Encode encodes the subscription details message to bytes
func (m *SubscriptionDetails) Encode() []byte {
	buf := make([]byte, SubscriptionDetailsSize)

	binary.BigEndian.PutUint16(buf[0:2], m.AppointmentMaxSize)
	binary.BigEndian.PutUint32(buf[2:6], m.AmountMsat)

	return buf
}

// Decode decodes the subscription details message from bytes
func (m *SubscriptionDetails) Decode(buf []byte) error {
	if len(buf) < SubscriptionDetailsSize {
		return decodeErr(MsgTypeSubscriptionDetails, ErrShortBuffer)
	}

	m.AppointmentMaxSize = binary.BigEndian.Uint16(buf[0:2])
	m.AmountMsat = binary.BigEndian.Uint32(buf[2:6])

	return nil
}
