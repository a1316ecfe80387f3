package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meryacine/towerd/pkg/network"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	node, err := network.NewTowerNode(context.Background(), &network.NodeConfig{
		ListenAddr: "/ip4/127.0.0.1/tcp/0",
	})
	require.NoError(t, err)
	t.Cleanup(func() { node.Close() })

	return NewServer(node, DefaultConfig())
}

func TestStatusEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response.Success)
	assert.NotEmpty(t, response.NodeID)
	assert.NotEmpty(t, response.Addresses)
	assert.Zero(t, response.PendingQueue)
}

func TestQuoteEndpoint(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantAmount uint32
	}{
		{name: "typical ask", query: "slots=10&period=3", wantCode: http.StatusOK, wantAmount: 30},
		{name: "zero ask", query: "slots=0&period=0", wantCode: http.StatusOK, wantAmount: 0},
		{name: "saturating ask", query: "slots=4294967295&period=2", wantCode: http.StatusOK, wantAmount: math.MaxUint32},
		{name: "missing slots", query: "period=3", wantCode: http.StatusBadRequest},
		{name: "negative period", query: "slots=1&period=-2", wantCode: http.StatusBadRequest},
		{name: "non-numeric", query: "slots=many&period=3", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/quote?"+tt.query, nil)
			w := httptest.NewRecorder()
			server.router.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var response QuoteResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.True(t, response.Success)
			assert.Equal(t, uint16(30), response.AppointmentMaxSize)
			assert.Equal(t, tt.wantAmount, response.AmountMsat)
		})
	}
}
