package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"go.uber.org/zap"
)

// Actor is the caller of an admin operation.
type Actor struct {
	Name string
	// Override allows moving a booking between any two statuses. Without
	// it only the regular lifecycle transitions are accepted.
	Override bool
}

type PaymentPatch struct {
	Status        *models.PaymentStatus `json:"status,omitempty" validate:"omitempty,oneof=pending partial paid refunded cancelled"`
	Amount        *float64              `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Currency      *string               `json:"currency,omitempty" validate:"omitempty,len=3"`
	Method        *models.PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=cash card bank-transfer online"`
	TransactionID *string               `json:"transactionId,omitempty" validate:"omitempty,max=100"`
	PaidAt        *time.Time            `json:"paidAt,omitempty"`
}

// Patch is an admin change to a booking. Nil fields are left untouched.
type Patch struct {
	Status  *models.Status `json:"status,omitempty" validate:"omitempty,oneof=inquiry confirmed checked-in checked-out cancelled no-show"`
	Payment *PaymentPatch  `json:"payment,omitempty"`
	Note    string         `json:"note,omitempty" validate:"max=1000"`
}

func (p *Patch) empty() bool {
	return p.Status == nil && p.Payment == nil && strings.TrimSpace(p.Note) == ""
}

// Update applies patch to the booking with the given id as one atomic
// write. Payment fields are merged one by one.
func (s *Service) Update(ctx context.Context, id string, patch Patch, actor Actor) (*models.Booking, error) {
	if problems := collect(s.validator, patch); len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}

	author := strings.TrimSpace(actor.Name)
	if author == "" {
		author = models.AuthorAdmin
	}

	var previous models.Status
	updated, err := s.store.UpdateByID(ctx, id, func(b *models.Booking) error {
		now := s.now()
		previous = b.Status

		if patch.Status != nil && *patch.Status != b.Status {
			if !b.Status.CanTransition(*patch.Status, actor.Override) {
				return &TransitionError{From: b.Status, To: *patch.Status}
			}
			b.Status = *patch.Status
		}
		if patch.Payment != nil {
			mergePayment(&b.Payment, patch.Payment, now)
		}
		if note := strings.TrimSpace(patch.Note); note != "" {
			b.Notes = append(b.Notes, models.Note{Content: note, Author: author, Timestamp: now})
		}
		if !patch.empty() {
			b.UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, s.lifecycleFailure("update", id, err)
	}

	s.log.Info("booking updated",
		zap.String("booking_id", id),
		zap.String("actor", author),
		zap.String("status", string(updated.Status)),
	)

	if updated.Status != previous {
		s.metrics.StatusChanged(string(updated.Status))
		if s.notifier != nil {
			snapshot := *updated
			s.dispatch(ctx, "status_changed", id, func(ctx context.Context) error {
				return s.notifier.NotifyStatusChanged(ctx, snapshot, previous)
			})
		}
	}
	return updated, nil
}

// mergePayment copies the set fields of p onto dst. A move to paid stamps
// paidAt unless the patch carries one or the payment was already paid.
func mergePayment(dst *models.Payment, p *PaymentPatch, now time.Time) {
	wasPaid := dst.Status == models.PaymentPaid && dst.PaidAt != nil

	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.Amount != nil {
		dst.Amount = *p.Amount
	}
	if p.Currency != nil {
		dst.Currency = strings.ToUpper(*p.Currency)
	}
	if p.Method != nil {
		dst.Method = *p.Method
	}
	if p.TransactionID != nil {
		dst.TransactionID = *p.TransactionID
	}
	if p.PaidAt != nil {
		t := p.PaidAt.UTC()
		dst.PaidAt = &t
	} else if dst.Status == models.PaymentPaid && !wasPaid {
		t := now
		dst.PaidAt = &t
	}
}

// Cancel moves a booking to cancelled on the guest's request. Bookings
// that are already cancelled or checked out cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "No reason provided"
	}

	var previous models.Status
	updated, err := s.store.UpdateByID(ctx, id, func(b *models.Booking) error {
		if !b.Status.CanTransition(models.StatusCancelled, false) {
			return &TransitionError{From: b.Status, To: models.StatusCancelled}
		}
		now := s.now()
		previous = b.Status
		b.Status = models.StatusCancelled
		b.Notes = append(b.Notes, models.Note{
			Content:   "Cancelled by user. Reason: " + reason,
			Author:    models.AuthorCustomer,
			Timestamp: now,
		})
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.lifecycleFailure("cancel", id, err)
	}

	s.log.Info("booking cancelled",
		zap.String("booking_id", id),
		zap.String("previous_status", string(previous)),
		zap.String("reason", reason),
	)
	s.metrics.BookingCancelled()
	s.metrics.StatusChanged(string(models.StatusCancelled))

	if s.notifier != nil {
		snapshot := *updated
		s.dispatch(ctx, "cancelled", id, func(ctx context.Context) error {
			return s.notifier.NotifyCancelled(ctx, snapshot, reason)
		})
	}
	return updated, nil
}

// lifecycleFailure passes expected errors through and logs the rest.
func (s *Service) lifecycleFailure(op, id string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrIllegalTransition), errors.Is(err, ErrValidation):
		return err
	case errors.Is(err, ErrConflict):
		s.log.Warn("booking update conflict", zap.String("operation", op), zap.String("booking_id", id))
		return err
	}
	return s.storeFailure(op, id, err)
}
