// Package dispatch sends an order to the spreadsheet and chat sinks at once.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
	"github.com/fairyhunter13/amiral-order-service/internal/obs"
	"github.com/fairyhunter13/amiral-order-service/internal/sink"
)

// DefaultTimeout bounds a single sink call.
const DefaultTimeout = 10 * time.Second

// Dispatcher fans an order out to both sinks. The order counts as placed
// when at least one sink accepts it.
type Dispatcher struct {
	sheets   sink.Sink
	telegram sink.Sink
	timeout  time.Duration
}

// New returns a Dispatcher. A non-positive timeout takes DefaultTimeout.
func New(sheets, telegram sink.Sink, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{sheets: sheets, telegram: telegram, timeout: timeout}
}

// Sinks returns the spreadsheet and chat sinks, in that order.
func (d *Dispatcher) Sinks() []sink.Sink { return []sink.Sink{d.sheets, d.telegram} }

// Dispatch calls both sinks concurrently and waits for both. Neither call
// cancels the other.
func (d *Dispatcher) Dispatch(ctx context.Context, p model.OrderPayload) model.DispatchResult {
	var (
		wg     sync.WaitGroup
		result model.DispatchResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.GoogleSheets = d.send(ctx, d.sheets, p)
	}()
	go func() {
		defer wg.Done()
		result.Telegram = d.send(ctx, d.telegram, p)
	}()
	wg.Wait()

	result.OverallSuccess = result.GoogleSheets.Success || result.Telegram.Success
	switch {
	case !result.OverallSuccess:
		obs.Logger.Error("order_dispatch_failed",
			"sheets_error", result.GoogleSheets.Error,
			"telegram_error", result.Telegram.Error,
		)
	case !result.GoogleSheets.Success:
		obs.Logger.Warn("sink_failed", "sink", d.sheets.Name(), "error", result.GoogleSheets.Error)
	case !result.Telegram.Success:
		obs.Logger.Warn("sink_failed", "sink", d.telegram.Name(), "error", result.Telegram.Error)
	}
	return result
}

func (d *Dispatcher) send(ctx context.Context, s sink.Sink, p model.OrderPayload) (res model.SinkResult) {
	defer func() {
		if r := recover(); r != nil {
			obs.Logger.Error("sink_panic", "sink", s.Name(), "panic", fmt.Sprint(r))
			res = model.SinkResult{Success: false, Message: "خطأ غير متوقع", Error: fmt.Sprint(r)}
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	start := time.Now()
	res = s.Send(ctx, p)
	obs.Logger.Info("sink_call",
		"sink", s.Name(),
		"success", res.Success,
		"order_id", res.OrderID,
		"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return res
}

// CombinedMessage joins both sink messages, as shown when every sink failed.
func CombinedMessage(r model.DispatchResult) string {
	parts := make([]string, 0, 2)
	for _, m := range []string{r.GoogleSheets.Message, r.Telegram.Message} {
		if m != "" {
			parts = append(parts, m)
		}
	}
	return strings.Join(parts, " | ")
}

// OrderID returns the first id assigned by a successful sink, spreadsheet first.
func OrderID(r model.DispatchResult) string {
	if r.GoogleSheets.Success && r.GoogleSheets.OrderID != "" {
		return r.GoogleSheets.OrderID
	}
	if r.Telegram.Success {
		return r.Telegram.OrderID
	}
	return ""
}
