// Package model defines domain types used by the service.
package model

import "time"

// DeliveryType selects between delivery to a carrier office and to the customer's home.
type DeliveryType string

const (
	DeliveryOffice DeliveryType = "office"
	DeliveryHome   DeliveryType = "home"
)

// ClientSignals carries the browser attributes a fingerprint is derived from.
// UserAgent and Language are filled from request headers when empty.
type ClientSignals struct {
	UserAgent           string   `json:"userAgent,omitempty"`
	Language            string   `json:"language,omitempty"`
	Platform            string   `json:"platform,omitempty"`
	Screen              string   `json:"screen,omitempty"`
	TimezoneOffset      *int     `json:"timezoneOffset,omitempty"`
	HardwareConcurrency *int     `json:"hardwareConcurrency,omitempty"`
	DeviceMemory        *float64 `json:"deviceMemory,omitempty"`
	Canvas              string   `json:"canvas,omitempty"`
	PixelRatio          *float64 `json:"pixelRatio,omitempty"`
}

// OrderForm is the order form as submitted by the storefront.
type OrderForm struct {
	FullName     string         `json:"fullName" validate:"fullname"`
	Phone        string         `json:"phone" validate:"phone"`
	AltPhone     string         `json:"altPhone,omitempty" validate:"omitempty,phone"`
	Wilaya       string         `json:"wilaya" validate:"wilaya"`
	Baladia      string         `json:"baladia" validate:"baladia"`
	CupType      string         `json:"cupType,omitempty" validate:"variant"`
	Unit         string         `json:"unit,omitempty" validate:"unit"`
	DeliveryType DeliveryType   `json:"deliveryType,omitempty" validate:"oneof=office home"`
	Quantity     int            `json:"quantity" validate:"quantity"`
	Notes        string         `json:"notes,omitempty"`
	Client       *ClientSignals `json:"client,omitempty"`
}

// OrderPayload is the validated, price-annotated order sent to every sink.
type OrderPayload struct {
	FullName      string       `json:"fullName"`
	Phone         string       `json:"phone"`
	AltPhone      string       `json:"altPhone,omitempty"`
	Wilaya        string       `json:"wilaya"`
	Baladia       string       `json:"baladia"`
	CupType       string       `json:"cupType"`
	CupTypeArabic string       `json:"cupTypeArabic"`
	Unit          string       `json:"unit"`
	DeliveryType  DeliveryType `json:"deliveryType"`
	Quantity      int          `json:"quantity"`
	Notes         string       `json:"notes,omitempty"`
	UnitPrice     int64        `json:"unitPrice"`
	ProductPrice  int64        `json:"productPrice"`
	DeliveryPrice int64        `json:"deliveryPrice"`
	TotalPrice    int64        `json:"totalPrice"`
	EffectiveBase int          `json:"effectiveBags"`
	TotalCups     int          `json:"totalCups"`
	PricingTier   string       `json:"pricingTier"`
	Fingerprint   string       `json:"fingerprint,omitempty"`
	SubmittedAt   time.Time    `json:"submittedAt"`
}

// SinkResult is the outcome of delivering one order to one sink.
type SinkResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// DispatchResult combines the outcomes of both sinks.
type DispatchResult struct {
	Telegram       SinkResult `json:"telegram"`
	GoogleSheets   SinkResult `json:"googleSheets"`
	OverallSuccess bool       `json:"overallSuccess"`
}

// RateLimitRecord is one accepted submission remembered by the rate limiter.
type RateLimitRecord struct {
	Fingerprint string `json:"fingerprint"`
	Timestamp   int64  `json:"timestamp"`
	UserAgent   string `json:"userAgent,omitempty"`
}

// EventType names a post-submission event.
type EventType string

const (
	EventCheckoutInitiated EventType = "checkout_initiated"
	EventOrderPlaced       EventType = "order_placed"
)

// OrderEvent is a post-submission side effect queued for asynchronous delivery.
type OrderEvent struct {
	ID         string       `json:"id"`
	Type       EventType    `json:"type"`
	Sequence   uint64       `json:"sequence"`
	Payload    OrderPayload `json:"payload"`
	OccurredAt time.Time    `json:"occurredAt"`
}
