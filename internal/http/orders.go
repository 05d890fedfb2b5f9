package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
	"github.com/fairyhunter13/amiral-order-service/internal/obs"
	"github.com/fairyhunter13/amiral-order-service/internal/order"
	"github.com/fairyhunter13/amiral-order-service/internal/pricing"
)

const maxBodyBytes = 64 << 10

type orderAck struct {
	Success   bool                 `json:"success"`
	OrderID   string               `json:"orderId"`
	Message   string               `json:"message"`
	RequestID string               `json:"requestId"`
	Order     model.OrderPayload   `json:"order"`
	Dispatch  model.DispatchResult `json:"dispatch"`
}

// decodeJSON enforces a JSON content type and strict decoding. It writes the
// error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (a *App) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	if a.isClosing() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	var form model.OrderForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if form.Client == nil {
		form.Client = &model.ClientSignals{}
	}
	if form.Client.UserAgent == "" {
		form.Client.UserAgent = r.UserAgent()
	}
	if form.Client.Language == "" {
		form.Client.Language = r.Header.Get("Accept-Language")
	}

	reqID := RequestIDFromContext(r.Context())
	res, err := a.Deps.Orders.Submit(r.Context(), form)
	if err != nil {
		a.writeOrderError(w, reqID, err)
		return
	}
	orderStats.Add("placed", 1)
	writeJSON(w, http.StatusCreated, orderAck{
		Success:   true,
		OrderID:   res.OrderID,
		Message:   res.Message,
		RequestID: reqID,
		Order:     res.Order,
		Dispatch:  res.Dispatch,
	})
}

func (a *App) writeOrderError(w http.ResponseWriter, reqID string, err error) {
	var (
		verr *order.ValidationError
		derr *order.DispatchError
	)
	switch {
	case errors.As(err, &verr):
		orderStats.Add("invalid", 1)
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, order.ErrInFlight):
		WriteJSONError(w, http.StatusConflict, "in_flight", order.InFlightMessage)
	case errors.Is(err, order.ErrRateLimited):
		orderStats.Add("rate_limited", 1)
		w.Header().Set("Retry-After", strconv.Itoa(int(a.Cfg.RateLimitCooldown.Seconds())))
		WriteJSONError(w, http.StatusTooManyRequests, "rate_limited", order.RateLimitedMessage)
	case errors.As(err, &derr):
		orderStats.Add("failed", 1)
		writeJSON(w, http.StatusBadGateway, jsonError{Error: "dispatch_failed", Details: derr.Message, Result: derr.Result})
	default:
		obs.Logger.Error("order_submit_error", "request_id", reqID, "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func (a *App) quoteHandler(w http.ResponseWriter, r *http.Request) {
	var req pricing.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := a.Deps.Orders.Quote(req)
	if err != nil {
		WriteJSONError(w, http.StatusUnprocessableEntity, "invalid_quote", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type catalogResponse struct {
	Line     catalog.ProductLine      `json:"line"`
	Variants []catalog.ProductVariant `json:"variants"`
	Units    []catalog.Unit           `json:"units"`
	Tiers    []catalog.PricingTier    `json:"tiers"`
	Regions  []catalog.Region         `json:"regions"`
}

func (a *App) catalogHandler(w http.ResponseWriter, r *http.Request) {
	line := a.Deps.Line
	writeJSON(w, http.StatusOK, catalogResponse{
		Line:     line,
		Variants: line.AvailableVariants(),
		Units:    line.Units(),
		Tiers:    catalog.Tiers(),
		Regions:  catalog.Regions(),
	})
}
