// Package order runs the storefront's order submission pipeline.
package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/dispatch"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
	"github.com/fairyhunter13/amiral-order-service/internal/obs"
	"github.com/fairyhunter13/amiral-order-service/internal/pricing"
	"github.com/fairyhunter13/amiral-order-service/internal/ratelimit"
	"github.com/fairyhunter13/amiral-order-service/internal/validation"
)

// SuccessMessage is shown to the customer once an order is placed.
const SuccessMessage = "تم إرسال طلبك بنجاح! سنتواصل معك قريباً لتأكيد الطلب."

const unexpectedMessage = "حدث خطأ غير متوقع. يرجى المحاولة مرة أخرى."

// Dispatcher delivers a priced order to the sinks.
type Dispatcher interface {
	Dispatch(ctx context.Context, p model.OrderPayload) model.DispatchResult
}

// Limiter is the advisory per-fingerprint submission limiter.
type Limiter interface {
	Allow(ctx context.Context, fingerprint string) (bool, error)
	Record(ctx context.Context, fingerprint, userAgent string) error
}

// Emitter queues post-submission events. It reports false when intake is closed.
type Emitter interface {
	Emit(t model.EventType, p model.OrderPayload) bool
}

// Result describes a placed order.
type Result struct {
	OrderID  string               `json:"orderId"`
	Message  string               `json:"message"`
	Order    model.OrderPayload   `json:"order"`
	Dispatch model.DispatchResult `json:"dispatch"`
}

// Service validates, prices, rate-limits and dispatches orders.
type Service struct {
	validator  *validation.Validator
	calc       *pricing.Calculator
	limiter    Limiter
	dispatcher Dispatcher
	emitter    Emitter
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService wires a Service. emitter may be nil.
func NewService(v *validation.Validator, calc *pricing.Calculator, l Limiter, d Dispatcher, e Emitter) *Service {
	return &Service{
		validator:  v,
		calc:       calc,
		limiter:    l,
		dispatcher: d,
		emitter:    e,
		now:        time.Now,
		inFlight:   make(map[string]struct{}),
	}
}

// Quote prices a request with the active product line.
func (s *Service) Quote(req pricing.QuoteRequest) (pricing.Quote, error) {
	return s.calc.Quote(req)
}

// Submit places an order. Failures are one of *ValidationError,
// ErrInFlight, ErrRateLimited or *DispatchError.
//
// Once dispatch starts the submission runs to completion even if ctx is
// cancelled.
func (s *Service) Submit(ctx context.Context, form model.OrderForm) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			obs.Logger.Error("order_submit_panic", "panic", fmt.Sprint(r))
			err = &DispatchError{Message: unexpectedMessage}
		}
	}()

	form = s.validator.Normalize(form)
	if fields := s.validator.Validate(form); len(fields) > 0 {
		return Result{}, &ValidationError{Fields: fields}
	}

	var signals model.ClientSignals
	if form.Client != nil {
		signals = *form.Client
	}
	fp := ratelimit.Fingerprint(signals)

	if !s.acquire(fp) {
		return Result{}, ErrInFlight
	}
	defer s.release(fp)

	allowed, lerr := s.limiter.Allow(ctx, fp)
	if lerr != nil {
		obs.Logger.Warn("rate_limit_check_failed", "fingerprint", fp, "error", lerr)
	}
	if !allowed {
		obs.Logger.Info("order_rate_limited", "fingerprint", fp)
		return Result{}, ErrRateLimited
	}

	payload, err := s.payload(form, fp)
	if err != nil {
		return Result{}, err
	}
	s.emit(model.EventCheckoutInitiated, payload)

	ctx = context.WithoutCancel(ctx)
	dr := s.dispatcher.Dispatch(ctx, payload)
	if !dr.OverallSuccess {
		return Result{}, &DispatchError{Result: dr, Message: dispatch.CombinedMessage(dr)}
	}

	if err := s.limiter.Record(ctx, fp, signals.UserAgent); err != nil {
		obs.Logger.Warn("rate_limit_record_failed", "fingerprint", fp, "error", err)
	}
	s.emit(model.EventOrderPlaced, payload)

	orderID := dispatch.OrderID(dr)
	obs.Logger.Info("order_placed",
		"order_id", orderID,
		"fingerprint", fp,
		"total_price", payload.TotalPrice,
		"pricing_tier", payload.PricingTier,
		"sheets_ok", dr.GoogleSheets.Success,
		"telegram_ok", dr.Telegram.Success,
	)
	return Result{OrderID: orderID, Message: SuccessMessage, Order: payload, Dispatch: dr}, nil
}

func (s *Service) payload(form model.OrderForm, fp string) (model.OrderPayload, error) {
	q, err := s.calc.Quote(pricing.QuoteRequest{
		VariantID:    form.CupType,
		UnitID:       form.Unit,
		Quantity:     form.Quantity,
		Region:       form.Wilaya,
		DeliveryType: form.DeliveryType,
	})
	if err != nil {
		return model.OrderPayload{}, &ValidationError{Fields: []validation.FieldError{{Field: fieldOf(err), Message: err.Error()}}}
	}
	variant, _ := s.calc.Line().Variant(q.VariantID)
	return model.OrderPayload{
		FullName:      form.FullName,
		Phone:         form.Phone,
		AltPhone:      form.AltPhone,
		Wilaya:        form.Wilaya,
		Baladia:       form.Baladia,
		CupType:       q.VariantID,
		CupTypeArabic: variant.NameArabic,
		Unit:          q.UnitID,
		DeliveryType:  q.DeliveryType,
		Quantity:      q.Quantity,
		Notes:         form.Notes,
		UnitPrice:     q.UnitPrice,
		ProductPrice:  q.ProductPrice,
		DeliveryPrice: q.DeliveryPrice,
		TotalPrice:    q.TotalPrice,
		EffectiveBase: q.BaseUnits,
		TotalCups:     q.TotalCups,
		PricingTier:   q.Tier.ID,
		Fingerprint:   fp,
		SubmittedAt:   s.now().UTC(),
	}, nil
}

func fieldOf(err error) string {
	switch {
	case errors.Is(err, pricing.ErrUnknownRegion):
		return "wilaya"
	case errors.Is(err, pricing.ErrUnknownVariant):
		return "cupType"
	case errors.Is(err, pricing.ErrUnknownUnit):
		return "unit"
	case errors.Is(err, pricing.ErrQuantityOutOfRange):
		return "quantity"
	default:
		return "quantity"
	}
}

func (s *Service) emit(t model.EventType, p model.OrderPayload) {
	if s.emitter == nil {
		return
	}
	if !s.emitter.Emit(t, p) {
		obs.Logger.Warn("order_event_dropped", "type", string(t), "fingerprint", p.Fingerprint)
	}
}

func (s *Service) acquire(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[fp]; busy {
		return false
	}
	s.inFlight[fp] = struct{}{}
	return true
}

func (s *Service) release(fp string) {
	s.mu.Lock()
	delete(s.inFlight, fp)
	s.mu.Unlock()
}
