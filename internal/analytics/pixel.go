// Package analytics reports storefront conversions to the Facebook
// Conversions API.
package analytics

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
	"github.com/fairyhunter13/amiral-order-service/internal/obs"
)

// Standard event names.
const (
	EventInitiateCheckout = "InitiateCheckout"
	EventPurchase         = "Purchase"
	EventLead             = "Lead"
)

// Config identifies the pixel. An empty PixelID disables tracking.
type Config struct {
	PixelID     string
	AccessToken string
	GraphURL    string
	Currency    string
	ContentName string
}

// CustomData is the event's custom_data object.
type CustomData struct {
	Value       int64  `json:"value,omitempty"`
	Currency    string `json:"currency,omitempty"`
	ContentName string `json:"content_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	NumItems    int    `json:"num_items,omitempty"`
}

type userData struct {
	Phone      []string `json:"ph,omitempty"`
	ExternalID []string `json:"external_id,omitempty"`
}

type serverEvent struct {
	EventName    string     `json:"event_name"`
	EventTime    int64      `json:"event_time"`
	EventID      string     `json:"event_id,omitempty"`
	ActionSource string     `json:"action_source"`
	UserData     userData   `json:"user_data"`
	CustomData   CustomData `json:"custom_data"`
}

// Pixel sends server-side conversion events. It must be initialized before
// Track does anything; Initialize may be called any number of times.
type Pixel struct {
	cfg         Config
	client      *http.Client
	now         func() time.Time
	initialized atomic.Bool
}

// NewPixel returns an uninitialized Pixel. A nil client uses a 10s-timeout default.
func NewPixel(cfg Config, client *http.Client) *Pixel {
	if cfg.GraphURL == "" {
		cfg.GraphURL = "https://graph.facebook.com/v18.0"
	}
	if cfg.Currency == "" {
		cfg.Currency = "DZD"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Pixel{cfg: cfg, client: client, now: time.Now}
}

// Enabled reports whether a pixel id is configured.
func (p *Pixel) Enabled() bool { return p.cfg.PixelID != "" }

// Initialize arms the pixel. It reports whether this call did the work.
func (p *Pixel) Initialize() bool {
	if !p.Enabled() {
		return false
	}
	if !p.initialized.CompareAndSwap(false, true) {
		return false
	}
	obs.Logger.Info("analytics_initialized", "pixel_id", p.cfg.PixelID)
	return true
}

// Initialized reports whether Initialize has run.
func (p *Pixel) Initialized() bool { return p.initialized.Load() }

func (p *Pixel) Name() string { return "analytics" }

// Handle maps order events to conversions.
func (p *Pixel) Handle(ctx context.Context, ev model.OrderEvent) error {
	cd := CustomData{
		Value:       ev.Payload.TotalPrice,
		Currency:    p.cfg.Currency,
		ContentName: p.cfg.ContentName,
		ContentType: "product",
		NumItems:    ev.Payload.Quantity,
	}
	switch ev.Type {
	case model.EventCheckoutInitiated:
		return p.Track(ctx, EventInitiateCheckout, ev.ID, ev.Payload, cd)
	case model.EventOrderPlaced:
		return errors.Join(
			p.Track(ctx, EventPurchase, ev.ID, ev.Payload, cd),
			p.Track(ctx, EventLead, ev.ID, ev.Payload, CustomData{ContentName: p.cfg.ContentName}),
		)
	}
	return nil
}

// Track sends one event. It is a no-op until the pixel is initialized.
func (p *Pixel) Track(ctx context.Context, name, eventID string, order model.OrderPayload, cd CustomData) error {
	if !p.initialized.Load() {
		return nil
	}
	se := serverEvent{
		EventName:    name,
		EventTime:    p.now().Unix(),
		ActionSource: "website",
		CustomData:   cd,
		UserData:     userData{},
	}
	if eventID != "" {
		se.EventID = eventID + ":" + name
	}
	if order.Phone != "" {
		se.UserData.Phone = []string{hashPhone(order.Phone)}
	}
	if order.Fingerprint != "" {
		se.UserData.ExternalID = []string{hash(order.Fingerprint)}
	}
	body, err := json.Marshal(map[string]any{"data": []serverEvent{se}})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	endpoint := fmt.Sprintf("%s/%s/events?access_token=%s",
		strings.TrimRight(p.cfg.GraphURL, "/"), url.PathEscape(p.cfg.PixelID), url.QueryEscape(p.cfg.AccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("send %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("send %s: status %d", name, resp.StatusCode)
	}
	return nil
}

// hashPhone normalizes a national number to international form before hashing.
func hashPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if strings.HasPrefix(digits, "0") {
		digits = "213" + digits[1:]
	}
	return hash(digits)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(s))))
	return hex.EncodeToString(sum[:])
}
