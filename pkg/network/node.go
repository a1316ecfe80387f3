package network

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	p2pnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/meryacine/towerd/pkg/protocol"
	"github.com/meryacine/towerd/pkg/tower"
)

// DefaultFlushInterval is how often the send loop drains the pending queue
const DefaultFlushInterval = 100 * time.Millisecond

// NodeConfig contains configuration for creating a tower node
type NodeConfig struct {
	ListenAddr    string         // Multiaddr to listen on, e.g. /ip4/0.0.0.0/tcp/9735
	PrivateKey    crypto.PrivKey // Optional: provide your own identity key
	FlushInterval time.Duration  // Optional: send loop cadence
}

// TowerNode is a running watchtower endpoint: a libp2p host that feeds
// inbound custom messages to a tower.MessageHandler and flushes the
// handler's pending replies back to their peers.
type TowerNode struct {
	host    host.Host
	handler *tower.MessageHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	streams map[peer.ID]*towerStream // live inbound streams, for replies

	startedAt time.Time
}

// towerStream pairs a stream with a write lock. Two goroutines write to the
// same inbound stream — the reader (warnings) and the send loop (queued
// replies) — so every frame write must hold the lock or the peer sees
// interleaved framing.
type towerStream struct {
	s  p2pnet.Stream
	mu sync.Mutex
}

func (ts *towerStream) writeFrame(wire []byte) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return WriteFrame(ts.s, wire)
}

// NewTowerNode creates the libp2p host, registers the tower stream handler
// and starts the outbound send loop.
func NewTowerNode(ctx context.Context, config *NodeConfig) (*TowerNode, error) {
	if config == nil {
		config = &NodeConfig{}
	}
	listenAddr := config.ListenAddr
	if listenAddr == "" {
		listenAddr = "/ip4/0.0.0.0/tcp/9735"
	}

	opts := []libp2p.Option{
		libp2p.ListenAddrStrings(listenAddr),
		libp2p.DefaultTransports,
		libp2p.DefaultMuxers,
		libp2p.DefaultSecurity,
	}
	if config.PrivateKey != nil {
		opts = append(opts, libp2p.Identity(config.PrivateKey))
	}

	h, err := libp2p.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create libp2p host: %w", err)
	}

	nodeCtx, cancel := context.WithCancel(ctx)
	node := &TowerNode{
		host:      h,
		handler:   tower.NewMessageHandler(),
		ctx:       nodeCtx,
		cancel:    cancel,
		streams:   make(map[peer.ID]*towerStream),
		startedAt: time.Now(),
	}

	h.SetStreamHandler(TowerProtocolID, node.handleStream)

	flush := config.FlushInterval
	if flush <= 0 {
		flush = DefaultFlushInterval
	}
	node.wg.Add(1)
	go node.sendLoop(flush)

	log.Printf("Tower node %s listening on %v", h.ID(), h.Addrs())
	return node, nil
}

// Host returns the underlying libp2p host
func (n *TowerNode) Host() host.Host {
	return n.host
}

// Handler returns the message handler owning the pending queue
func (n *TowerNode) Handler() *tower.MessageHandler {
	return n.handler
}

// StartedAt returns when the node came up
func (n *TowerNode) StartedAt() time.Time {
	return n.startedAt
}

// Close stops the send loop and shuts the host down
func (n *TowerNode) Close() error {
	n.cancel()
	n.wg.Wait()
	return n.host.Close()
}

// handleStream reads frames off one inbound stream for as long as the peer
// keeps it open
func (n *TowerNode) handleStream(s p2pnet.Stream) {
	remote := s.Conn().RemotePeer()
	ts := &towerStream{s: s}

	// Keep-first: if the peer opens more streams while one is live, replies
	// keep going out on the stream registered first.
	n.mu.Lock()
	if _, ok := n.streams[remote]; !ok {
		n.streams[remote] = ts
	}
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		if n.streams[remote] == ts {
			delete(n.streams, remote)
		}
		n.mu.Unlock()
		s.Close()
	}()

	for {
		if err := n.readOne(ts, remote); err != nil {
			return
		}
	}
}

// readOne reads and processes a single frame. A returned error means the
// stream is done (EOF, malformed bytes, or context gone).
func (n *TowerNode) readOne(ts *towerStream, remote peer.ID) error {
	msgType, payload, err := ReadFrame(ts.s)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Printf("Read frame from %s: %v", remote, err)
			ts.s.Reset()
		}
		return err
	}

	switch {
	case msgType == MsgTypeWarning:
		// Peers may warn us too; log and carry on.
		log.Printf("Warning from %s: %s", remote, string(payload))

	default:
		msg, err := protocol.ReadMessage(msgType, payload)
		if err != nil {
			// Malformed bytes for a type we do recognize: this layer owns
			// the connection policy, and it drops the stream.
			log.Printf("Decode from %s: %v", remote, err)
			ts.s.Reset()
			return err
		}
		if msg == nil {
			// Not one of ours. Even type ids are optional features, safe to
			// skip for peers that don't speak them.
			log.Printf("Ignoring unknown message type %d from %s", msgType, remote)
			break
		}

		if err := n.handler.HandleIncoming(msg, remote); err != nil {
			var protoErr *tower.ProtocolError
			if errors.As(err, &protoErr) {
				log.Printf("Protocol error from %s: %s", remote, protoErr.Reason)
				n.sendWarning(ts, protoErr.Warning)
			} else {
				log.Printf("Handle message from %s: %v", remote, err)
			}
		}
	}

	return nil
}

// sendWarning relays a protocol error to the offending peer as a non-fatal
// transport warning
func (n *TowerNode) sendWarning(ts *towerStream, warning string) {
	wire := make([]byte, 2+len(warning))
	binary.BigEndian.PutUint16(wire[0:2], MsgTypeWarning)
	copy(wire[2:], warning)

	if err := ts.writeFrame(wire); err != nil {
		log.Printf("Send warning: %v", err)
	}
}

// sendLoop is the single consumer of the pending queue: at every tick it
// drains whatever the handler has buffered and writes each entry to its
// peer.
func (n *TowerNode) sendLoop(interval time.Duration) {
	defer n.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			n.flush()
			return
		case <-ticker.C:
			n.flush()
		}
	}
}

func (n *TowerNode) flush() {
	for _, pending := range n.handler.DrainPending() {
		if err := n.deliver(pending.Peer, pending.Message); err != nil {
			log.Printf("Deliver %T to %s: %v", pending.Message, pending.Peer, err)
		}
	}
}

// deliver writes one message to a peer, preferring the peer's live inbound
// stream and falling back to opening a fresh one
func (n *TowerNode) deliver(to peer.ID, msg protocol.Message) error {
	n.mu.RLock()
	ts, ok := n.streams[to]
	n.mu.RUnlock()

	if !ok {
		fresh, err := n.host.NewStream(n.ctx, to, TowerProtocolID)
		if err != nil {
			return fmt.Errorf("open stream: %w", err)
		}
		defer fresh.Close()
		return WriteFrame(fresh, protocol.WriteMessage(msg))
	}

	return ts.writeFrame(protocol.WriteMessage(msg))
}
