package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/fairyhunter13/amiral-order-service/internal/analytics"
	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/config"
	"github.com/fairyhunter13/amiral-order-service/internal/dispatch"
	"github.com/fairyhunter13/amiral-order-service/internal/events"
	httpapi "github.com/fairyhunter13/amiral-order-service/internal/http"
	"github.com/fairyhunter13/amiral-order-service/internal/order"
	"github.com/fairyhunter13/amiral-order-service/internal/pricing"
	"github.com/fairyhunter13/amiral-order-service/internal/queue"
	"github.com/fairyhunter13/amiral-order-service/internal/ratelimit"
	"github.com/fairyhunter13/amiral-order-service/internal/sink"
	"github.com/fairyhunter13/amiral-order-service/internal/validation"
)

// upstream fakes the Sheets API, the Bot API and the Graph API in one server.
type upstream struct {
	mu         sync.Mutex
	rows       [][]any
	messages   []string
	pixelNames []string

	sheetsStatus   int
	telegramStatus int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.Contains(r.URL.Path, "/v4/spreadsheets/"):
		if u.sheetsStatus != http.StatusOK {
			w.WriteHeader(u.sheetsStatus)
			_, _ = io.WriteString(w, `{"error":{"code":500,"message":"backend error"}}`)
			return
		}
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		u.rows = append(u.rows, body.Values...)
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1"}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if u.telegramStatus != http.StatusOK {
			w.WriteHeader(u.telegramStatus)
			_, _ = io.WriteString(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
			return
		}
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		u.messages = append(u.messages, body.Text)
		_, _ = io.WriteString(w, `{"ok":true}`)
	case strings.HasSuffix(r.URL.Path, "/events"):
		var body struct {
			Data []struct {
				EventName string `json:"event_name"`
			} `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, d := range body.Data {
			u.pixelNames = append(u.pixelNames, d.EventName)
		}
		_, _ = io.WriteString(w, `{"events_received":1}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type stack struct {
	up  *upstream
	mgr *queue.Manager
	h   http.Handler
}

func newStack(t *testing.T) *stack {
	t.Helper()
	up := &upstream{sheetsStatus: http.StatusOK, telegramStatus: http.StatusOK}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		InitialWorkerCount: 1,
		WorkerMin:          1,
		WorkerMax:          2,
		ScaleInterval:      50 * time.Millisecond,
		SinkTimeout:        5 * time.Second,
		RateLimitCooldown:  time.Hour,
		CORSAllowOrigin:    "*",
	}
	line, err := catalog.Line("cupping")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	gs, err := sink.NewGoogleSheets(ctx, "sheet-1", sink.DefaultRange,
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	tg := sink.NewTelegram(sink.TelegramConfig{APIURL: srv.URL, BotToken: "123:abc", ChatID: "-100"}, line, srv.Client())
	d := dispatch.New(sink.NewSheets(gs, line), tg, cfg.SinkTimeout)

	pixel := analytics.NewPixel(analytics.Config{PixelID: "px-1", GraphURL: srv.URL, ContentName: line.ProductName}, srv.Client())
	pixel.Initialize()

	mgr := queue.NewManager(cfg, queue.New(64), events.Fanout(pixel))
	mgr.Start(ctx)
	t.Cleanup(func() { cancel(); mgr.Stop() })

	lim := ratelimit.New(ratelimit.NewMemoryStore(), cfg.RateLimitCooldown, 24*time.Hour)
	svc := order.NewService(validation.New(line), pricing.New(line), lim, d, mgr)
	app := httpapi.NewApp(cfg, httpapi.Deps{Line: line, Orders: svc, Dispatcher: d, Manager: mgr, Pixel: pixel})
	return &stack{up: up, mgr: mgr, h: httpapi.NewRouter(app)}
}

func (s *stack) post(body, ua string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("User-Agent", ua)
	w := httptest.NewRecorder()
	s.h.ServeHTTP(w, r)
	return w
}

const form = `{"fullName":"أمين بن علي","phone":"0551234567","wilaya":"الجزائر","baladia":"باب الوادي","cupType":"large_size_1","unit":"carton","quantity":1,"notes":"اتصلوا مساء"}`

func TestIntegration_OrderReachesBothSinks(t *testing.T) {
	s := newStack(t)
	w := s.post(form, "Mozilla/5.0")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ack struct {
		OrderID string `json:"orderId"`
		Order   struct {
			TotalPrice  int64  `json:"totalPrice"`
			TotalCups   int    `json:"totalCups"`
			PricingTier string `json:"pricingTier"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.True(t, strings.HasPrefix(ack.OrderID, "ORDER-"))
	assert.Equal(t, int64(1700000), ack.Order.TotalPrice)
	assert.Equal(t, 600, ack.Order.TotalCups)
	assert.Equal(t, "wholesale", ack.Order.PricingTier)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.True(t, s.mgr.DrainUntil(ctx), "drain timeout")

	s.up.mu.Lock()
	defer s.up.mu.Unlock()
	require.Len(t, s.up.rows, 1)
	row := s.up.rows[0]
	require.Len(t, row, len(sink.Header))
	assert.Equal(t, ack.OrderID, row[1])
	assert.Equal(t, "أمين بن علي", row[2])
	assert.Equal(t, "كرتون", row[9])
	require.Len(t, s.up.messages, 1)
	assert.Contains(t, s.up.messages[0], "0551234567")
	assert.Contains(t, s.up.messages[0], "اتصلوا مساء")
	assert.Equal(t, []string{analytics.EventInitiateCheckout, analytics.EventPurchase, analytics.EventLead}, s.up.pixelNames)
}

func TestIntegration_OneSinkDownStillPlaces(t *testing.T) {
	s := newStack(t)
	s.up.telegramStatus = http.StatusBadRequest

	w := s.post(form, "Mozilla/5.0")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ack struct {
		Dispatch struct {
			Telegram struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			} `json:"telegram"`
		} `json:"dispatch"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.False(t, ack.Dispatch.Telegram.Success)
	assert.Contains(t, ack.Dispatch.Telegram.Error, "chat not found")

	// recorded even though only one sink took it
	assert.Equal(t, http.StatusTooManyRequests, s.post(form, "Mozilla/5.0").Code)
}

func TestIntegration_TotalFailureAllowsRetry(t *testing.T) {
	s := newStack(t)
	s.up.sheetsStatus = http.StatusForbidden
	s.up.telegramStatus = http.StatusInternalServerError

	w := s.post(form, "Mozilla/5.0")
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), " | ")

	s.up.mu.Lock()
	s.up.sheetsStatus = http.StatusOK
	s.up.mu.Unlock()
	assert.Equal(t, http.StatusCreated, s.post(form, "Mozilla/5.0").Code)
}
