package order

import (
	"errors"
	"strings"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
	"github.com/fairyhunter13/amiral-order-service/internal/validation"
)

var (
	// ErrRateLimited means the fingerprint already ordered within the cooldown.
	ErrRateLimited = errors.New("rate limited")
	// ErrInFlight means a submission for the same fingerprint is still running.
	ErrInFlight = errors.New("order submission in progress")
)

// Customer-facing texts for the outcomes above.
const (
	RateLimitedMessage = "لقد قمت بإرسال طلب مؤخراً. يرجى الانتظار ساعة واحدة قبل إرسال طلب آخر."
	InFlightMessage    = "جاري إرسال الطلب..."
)

// ValidationError lists every rejected form field.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "invalid order: " + strings.Join(msgs, "; ")
}

// DispatchError means no sink accepted the order.
type DispatchError struct {
	Result  model.DispatchResult
	Message string
}

func (e *DispatchError) Error() string { return e.Message }
