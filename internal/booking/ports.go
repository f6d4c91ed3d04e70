package booking

import (
	"context"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
)

// Filter selects bookings. Zero-valued fields are ignored; set fields are
// combined with AND.
type Filter struct {
	Statuses      []models.Status
	ProgramType   models.ProgramType
	PaymentStatus models.PaymentStatus

	// Bounds on program.startDate and program.endDate, inclusive.
	StartFrom *time.Time
	StartTo   *time.Time
	EndFrom   *time.Time

	// Bounds on payment.paidAt, inclusive.
	PaidFrom *time.Time
	PaidTo   *time.Time

	// Search is a case-insensitive substring match on first name, last
	// name or email.
	Search string
}

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortStartDate SortField = "startDate"
)

type FindOptions struct {
	Sort      SortField
	Ascending bool
	Skip      int
	Limit     int // 0 means no limit
}

// Store persists bookings. It is the sole source of truth and the only
// serialization point for concurrent requests.
type Store interface {
	Insert(ctx context.Context, b *models.Booking) error
	// FindByID returns ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Find(ctx context.Context, f Filter, opts FindOptions) ([]models.Booking, error)
	Count(ctx context.Context, f Filter) (int64, error)
	// UpdateByID loads the booking, applies mutate and writes the result
	// back as a single compare-and-swap. If mutate returns an error nothing
	// is written and that error is returned. Notes appended by mutate are
	// persisted; existing notes are never rewritten.
	UpdateByID(ctx context.Context, id string, mutate func(*models.Booking) error) (*models.Booking, error)
}

// Notifier delivers booking notifications to guests and staff. Errors are
// logged by the caller and never change the outcome of the operation.
type Notifier interface {
	NotifyCreated(ctx context.Context, b models.Booking) error
	NotifyStatusChanged(ctx context.Context, b models.Booking, previous models.Status) error
	NotifyCancelled(ctx context.Context, b models.Booking, reason string) error
}
