package protocol

import (
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Message type identifiers. Both are even: the surrounding protocol treats
// even types as optional features that unaware peers may ignore.
const (
	MsgTypeRegister            uint16 = 45768
	MsgTypeSubscriptionDetails uint16 = 45770
)

// UserKeySize is the length of a compressed secp256k1 public key
const UserKeySize = 33

// UserKey identifies the registering user (compressed secp256k1 point)
type UserKey [UserKeySize]byte

// UserKeyFromBytes copies and validates a compressed public key
func UserKeyFromBytes(b []byte) (UserKey, error) {
	var k UserKey
	if len(b) != UserKeySize {
		return k, ErrInvalidUserKey
	}
	if _, err := secp256k1.ParsePubKey(b); err != nil {
		return k, ErrInvalidUserKey
	}
	copy(k[:], b)
	return k, nil
}

// Valid reports whether the key parses as a point on the curve
func (k UserKey) Valid() bool {
	_, err := secp256k1.ParsePubKey(k[:])
	return err == nil
}

// String returns the hex form of the key
func (k UserKey) String() string {
	return hex.EncodeToString(k[:])
}
