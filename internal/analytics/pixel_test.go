package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

type capture struct {
	mu     sync.Mutex
	names  []string
	tokens []string
	bodies []map[string]any
}

func (c *capture) server(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		c.mu.Lock()
		for _, d := range body.Data {
			c.names = append(c.names, d["event_name"].(string))
			c.bodies = append(c.bodies, d)
		}
		c.tokens = append(c.tokens, r.URL.Query().Get("access_token"))
		c.mu.Unlock()
		assert.Equal(t, "/px-1/events", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"events_received":1}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTrackIsNoopUntilInitialized(t *testing.T) {
	c := &capture{}
	srv := c.server(t, http.StatusOK)
	p := NewPixel(Config{PixelID: "px-1", AccessToken: "tok", GraphURL: srv.URL}, srv.Client())

	require.NoError(t, p.Track(context.Background(), EventLead, "", model.OrderPayload{}, CustomData{}))
	assert.Empty(t, c.names)

	assert.True(t, p.Initialize())
	assert.False(t, p.Initialize(), "second initialize does nothing")
	assert.True(t, p.Initialized())

	require.NoError(t, p.Track(context.Background(), EventLead, "", model.OrderPayload{}, CustomData{}))
	assert.Equal(t, []string{EventLead}, c.names)
	assert.Equal(t, []string{"tok"}, c.tokens)
}

func TestDisabledPixelNeverInitializes(t *testing.T) {
	p := NewPixel(Config{}, nil)
	assert.False(t, p.Enabled())
	assert.False(t, p.Initialize())
	assert.False(t, p.Initialized())
	assert.NoError(t, p.Handle(context.Background(), model.OrderEvent{Type: model.EventOrderPlaced}))
}

func TestHandleMapsOrderEvents(t *testing.T) {
	c := &capture{}
	srv := c.server(t, http.StatusOK)
	p := NewPixel(Config{PixelID: "px-1", GraphURL: srv.URL, ContentName: "كؤوس الحجامة"}, srv.Client())
	p.Initialize()

	order := model.OrderPayload{Phone: "0771234567", TotalPrice: 170000, Quantity: 1, Fingerprint: "fp"}
	require.NoError(t, p.Handle(context.Background(), model.OrderEvent{ID: "e1", Type: model.EventCheckoutInitiated, Payload: order}))
	require.NoError(t, p.Handle(context.Background(), model.OrderEvent{ID: "e2", Type: model.EventOrderPlaced, Payload: order}))

	assert.Equal(t, []string{EventInitiateCheckout, EventPurchase, EventLead}, c.names)
	purchase := c.bodies[1]
	assert.Equal(t, "e2:Purchase", purchase["event_id"])
	assert.Equal(t, "website", purchase["action_source"])
	cd := purchase["custom_data"].(map[string]any)
	assert.Equal(t, float64(170000), cd["value"])
	assert.Equal(t, "DZD", cd["currency"])
	ud := purchase["user_data"].(map[string]any)
	assert.Equal(t, []any{hash("213771234567")}, ud["ph"])
}

func TestTrackReportsHTTPError(t *testing.T) {
	c := &capture{}
	srv := c.server(t, http.StatusBadRequest)
	p := NewPixel(Config{PixelID: "px-1", GraphURL: srv.URL}, srv.Client())
	p.Initialize()
	err := p.Track(context.Background(), EventPurchase, "", model.OrderPayload{}, CustomData{})
	assert.ErrorContains(t, err, "status 400")
}
