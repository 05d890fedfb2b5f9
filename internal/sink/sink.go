// Package sink delivers orders to the external systems that record them.
package sink

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// Sink receives a copy of every order. Send never returns an error:
// failures are reported in the result.
type Sink interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, p model.OrderPayload) model.SinkResult
}

// algiers is UTC+1 all year.
var algiers = time.FixedZone("CET", 60*60)

const timestampLayout = "2006/01/02 15:04:05"

// NewOrderID returns a timestamp-derived order id. Each sink generates its
// own, so two sinks can record different ids for the same order.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORDER-%d", now.UnixMilli())
}

// FormatTimestamp renders t in Algerian local time.
func FormatTimestamp(t time.Time) string {
	return t.In(algiers).Format(timestampLayout)
}

func deliveryLabel(t model.DeliveryType) string {
	if t == model.DeliveryHome {
		return "منزلي"
	}
	return "مكتبي"
}

func failure(message string, err error) model.SinkResult {
	return model.SinkResult{Success: false, Message: fmt.Sprintf("%s: %v", message, err), Error: err.Error()}
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}
