// Package events forwards queued order events to their subscribers.
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// Subscriber receives every order event.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, ev model.OrderEvent) error
}

// Fanout returns a handler delivering each event to every subscriber in
// turn. One failing subscriber does not stop the others.
func Fanout(subs ...Subscriber) func(ctx context.Context, ev model.OrderEvent) error {
	return func(ctx context.Context, ev model.OrderEvent) error {
		var errs []error
		for _, s := range subs {
			if err := s.Handle(ctx, ev); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			}
		}
		return errors.Join(errs...)
	}
}
