package network

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	"github.com/meryacine/towerd/pkg/protocol"
)

var ErrNoSubscriptionOffer = errors.New("tower closed the stream without an offer")

// WarningError surfaces a transport warning the tower sent back instead of
// an offer
type WarningError struct {
	Warning string
}

func (e *WarningError) Error() string {
	return fmt.Sprintf("tower warning: %s", e.Warning)
}

// Client registers with a watchtower on behalf of one user key
type Client struct {
	host    host.Host
	userKey *secp256k1.PrivateKey
}

// NewClient creates a dial-only libp2p host and a fresh user key
func NewClient() (*Client, error) {
	h, err := libp2p.New(libp2p.NoListenAddrs)
	if err != nil {
		return nil, fmt.Errorf("failed to create libp2p host: %w", err)
	}

	userKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to generate user key: %w", err)
	}

	return &Client{host: h, userKey: userKey}, nil
}

// UserKey returns the compressed public key the client registers under
func (c *Client) UserKey() protocol.UserKey {
	var k protocol.UserKey
	copy(k[:], c.userKey.PubKey().SerializeCompressed())
	return k
}

// Close shuts the client host down
func (c *Client) Close() error {
	return c.host.Close()
}

// ParseTowerAddr parses a full p2p multiaddr
// (e.g. /ip4/1.2.3.4/tcp/9735/p2p/12D3Koo...) into dialable peer info
func ParseTowerAddr(addr string) (*peer.AddrInfo, error) {
	maddr, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid tower address: %w", err)
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return nil, fmt.Errorf("tower address has no peer id: %w", err)
	}
	return info, nil
}

// Register connects to the tower, asks for the given capacity and period,
// and waits for the subscription terms. A transport warning from the tower
// is returned as a *WarningError.
func (c *Client) Register(ctx context.Context, tower peer.AddrInfo, slots, period uint32) (*protocol.SubscriptionDetails, error) {
	if err := c.host.Connect(ctx, tower); err != nil {
		return nil, fmt.Errorf("connect to tower: %w", err)
	}

	s, err := c.host.NewStream(ctx, tower.ID, TowerProtocolID)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer s.Close()

	if deadline, ok := ctx.Deadline(); ok {
		s.SetDeadline(deadline)
	}

	register := &protocol.Register{
		UserKey:            c.UserKey(),
		AppointmentSlots:   slots,
		SubscriptionPeriod: period,
	}
	if err := WriteFrame(s, protocol.WriteMessage(register)); err != nil {
		return nil, fmt.Errorf("send register: %w", err)
	}

	for {
		msgType, payload, err := ReadFrame(s)
		if err != nil {
			return nil, fmt.Errorf("await offer: %w", err)
		}

		if msgType == MsgTypeWarning {
			return nil, &WarningError{Warning: string(payload)}
		}

		msg, err := protocol.ReadMessage(msgType, payload)
		if err != nil {
			return nil, err
		}
		if msg == nil {
			log.Printf("Ignoring unknown message type %d from tower", msgType)
			continue
		}

		details, ok := msg.(*protocol.SubscriptionDetails)
		if !ok {
			log.Printf("Ignoring unexpected %T from tower", msg)
			continue
		}
		return details, nil
	}
}
