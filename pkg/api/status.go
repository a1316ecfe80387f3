package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	p2pnet "github.com/libp2p/go-libp2p/core/network"

	"github.com/meryacine/towerd/pkg/tower"
)

// StatusResponse describes the running tower node
type StatusResponse struct {
	Success        bool     `json:"success"`
	NodeID         string   `json:"nodeId"`
	Addresses      []string `json:"addresses"`
	ConnectedPeers int      `json:"connectedPeers"`
	PendingQueue   int      `json:"pendingQueue"`
	Uptime         string   `json:"uptime"`
}

// QuoteResponse carries the terms the tower would offer for an ask
type QuoteResponse struct {
	Success            bool   `json:"success"`
	AppointmentSlots   uint32 `json:"appointmentSlots"`
	SubscriptionPeriod uint32 `json:"subscriptionPeriod"`
	AppointmentMaxSize uint16 `json:"appointmentMaxSize"`
	AmountMsat         uint32 `json:"amountMsat"`
}

// ErrorResponse is the error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleStatus handles GET /api/v1/status
func (s *Server) handleStatus(c *gin.Context) {
	h := s.node.Host()

	addrs := make([]string, 0, len(h.Addrs()))
	for _, addr := range h.Addrs() {
		addrs = append(addrs, addr.String())
	}

	connected := 0
	for _, p := range h.Network().Peers() {
		if h.Network().Connectedness(p) == p2pnet.Connected {
			connected++
		}
	}

	c.JSON(http.StatusOK, StatusResponse{
		Success:        true,
		NodeID:         h.ID().String(),
		Addresses:      addrs,
		ConnectedPeers: connected,
		PendingQueue:   s.node.Handler().PendingCount(),
		Uptime:         time.Since(s.node.StartedAt()).Round(time.Second).String(),
	})
}

// handleQuote handles GET /api/v1/quote?slots=N&period=M, pricing an ask
// with the same policy the dispatcher applies to a Register message
func (s *Server) handleQuote(c *gin.Context) {
	slots, err := parseUint32(c.Query("slots"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid slots",
			Message: "slots must be an unsigned 32-bit integer",
		})
		return
	}

	period, err := parseUint32(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid period",
			Message: "period must be an unsigned 32-bit integer",
		})
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		Success:            true,
		AppointmentSlots:   slots,
		SubscriptionPeriod: period,
		AppointmentMaxSize: tower.DefaultAppointmentMaxSize,
		AmountMsat:         tower.Quote(slots, period),
	})
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
