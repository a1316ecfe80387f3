// Package tower implements the watchtower side of the custom-message
// protocol: a pure dispatcher that turns inbound messages into replies, and
// a handler that queues those replies for the transport's send loop.
package tower

import (
	"sync"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/meryacine/towerd/pkg/protocol"
)

// PendingMessage is one outbound message destined for one peer
type PendingMessage struct {
	Peer    peer.ID
	Message protocol.Message
}

// MessageHandler accepts inbound tower messages and buffers the outbound
// replies until the transport's send loop drains them.
//
// Any number of goroutines may call HandleIncoming and SendMessage
// concurrently; the queue is the only shared state and is held under the
// mutex only for the duration of an append or a swap. Entries from a single
// caller keep that caller's order; a queued entry shows up in exactly one
// DrainPending result.
type MessageHandler struct {
	mu      sync.Mutex
	pending []PendingMessage
}

// NewMessageHandler creates a handler with an empty queue
func NewMessageHandler() *MessageHandler {
	return &MessageHandler{}
}

// HandleIncoming dispatches one inbound message from sender and queues the
// reply for them. On a dispatch error nothing is queued and the error is
// returned to the caller, who owns delivering any embedded warning to the
// peer.
func (h *MessageHandler) HandleIncoming(msg protocol.Message, sender peer.ID) error {
	reply, err := Dispatch(msg)
	if err != nil {
		return err
	}

	h.SendMessage(sender, reply)
	return nil
}

// SendMessage queues a locally-initiated message for a peer, bypassing
// dispatch
func (h *MessageHandler) SendMessage(to peer.ID, msg protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, PendingMessage{Peer: to, Message: msg})
}

// DrainPending atomically removes and returns everything currently queued.
// Draining an empty queue returns nil. Enqueues racing with a drain land in
// either this result or the next one, never both, never neither.
func (h *MessageHandler) DrainPending() []PendingMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	pending := h.pending
	h.pending = nil
	return pending
}

// PendingCount reports the current queue depth without draining it
func (h *MessageHandler) PendingCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}
