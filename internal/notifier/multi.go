package notifier

import (
	"context"
	"errors"

	"github.com/gdg-garage/retreat-booking-api/internal/booking"
	"github.com/gdg-garage/retreat-booking-api/internal/models"
)

// Multi forwards every notification to all of its notifiers, even when
// some of them fail.
type Multi []booking.Notifier

func (m Multi) each(fn func(booking.Notifier) error) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := fn(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) NotifyCreated(ctx context.Context, b models.Booking) error {
	return m.each(func(n booking.Notifier) error { return n.NotifyCreated(ctx, b) })
}

func (m Multi) NotifyStatusChanged(ctx context.Context, b models.Booking, previous models.Status) error {
	return m.each(func(n booking.Notifier) error { return n.NotifyStatusChanged(ctx, b, previous) })
}

func (m Multi) NotifyCancelled(ctx context.Context, b models.Booking, reason string) error {
	return m.each(func(n booking.Notifier) error { return n.NotifyCancelled(ctx, b, reason) })
}
