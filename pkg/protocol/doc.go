// Package protocol implements the tower custom-message wire protocol.
//
// The protocol package defines the message types exchanged between a
// watchtower and its clients, together with their binary encoding and
// decoding. It is deliberately transport-agnostic: the surrounding peer
// channel hands this package raw (type id, payload) pairs and gets back
// decoded messages, or encoded bytes to put on the wire.
//
// # Message Types
//
// The protocol currently defines two messages:
//
//   - Register (45768): sent by a client to subscribe to the watching
//     service, carrying the client's public key, the number of appointment
//     slots requested and the subscription period.
//   - SubscriptionDetails (45770): the tower's reply, carrying the maximum
//     appointment size and the subscription fee in millisatoshi.
//
// Both type identifiers are even, following the surrounding protocol's
// convention that even types mark optional features a peer may safely
// ignore.
//
// # Wire Format
//
// Every message is the 2-byte big-endian type identifier immediately
// followed by the message fields in declared order, big-endian, with no
// padding, length prefix or terminator. Message length is implied by the
// fixed field widths of each type:
//
//   - Register: user key (33 bytes, compressed secp256k1 point),
//     appointment slots (4 bytes), subscription period (4 bytes)
//   - SubscriptionDetails: appointment max size (2 bytes),
//     amount msat (4 bytes)
//
// # Decoding
//
// ReadMessage dispatches a (type id, payload) pair to the matching decoder.
// An unrecognized type id is not an error: ReadMessage returns (nil, nil) so
// an outer handler chain can offer the message to other handlers. A payload
// that is truncated or structurally invalid for a recognized type id yields
// a *DecodeError.
package protocol
