package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/metrics"
	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notifyTimeout bounds a single background notification.
const notifyTimeout = 30 * time.Second

// Service implements booking availability and lifecycle on top of a Store.
// It keeps no booking state of its own.
type Service struct {
	store     Store
	notifier  Notifier
	log       *zap.Logger
	metrics   *metrics.Metrics
	validator *validator.Validate

	now   func() time.Time
	newID func() string

	pending sync.WaitGroup
}

func NewService(store Store, notifier Notifier, log *zap.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		notifier:  notifier,
		log:       log,
		metrics:   m,
		validator: newValidator(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// Create validates the input and persists a new booking in the inquiry
// state. Guest and staff notifications are sent in the background.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	b, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b.ID = s.newID()
	b.Status = models.StatusInquiry
	b.Notes = []models.Note{}
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.store.Insert(ctx, b); err != nil {
		return nil, s.storeFailure("insert", b.ID, err)
	}

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("reference", b.Reference()),
		zap.String("program", string(b.Program.Type)),
		zap.Int("participants", b.TotalParticipants()),
	)
	s.metrics.BookingCreated()

	if s.notifier != nil {
		snapshot := *b
		s.dispatch(ctx, "created", b.ID, func(ctx context.Context) error {
			return s.notifier.NotifyCreated(ctx, snapshot)
		})
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, s.storeFailure("find_by_id", id, err)
	}
	return b, nil
}

type ListQuery struct {
	Filter Filter
	Page   int
	Limit  int
}

type Page struct {
	Items []models.Booking `json:"data"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int64            `json:"total"`
	Pages int              `json:"pages"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// List returns one page of bookings matching the filter, newest first.
func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}

	items, err := s.store.Find(ctx, q.Filter, FindOptions{
		Sort:  SortCreatedAt,
		Skip:  (q.Page - 1) * q.Limit,
		Limit: q.Limit,
	})
	if err != nil {
		return nil, s.storeFailure("find", "", err)
	}
	total, err := s.store.Count(ctx, q.Filter)
	if err != nil {
		return nil, s.storeFailure("count", "", err)
	}

	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	if items == nil {
		items = []models.Booking{}
	}
	return &Page{Items: items, Page: q.Page, Limit: q.Limit, Total: total, Pages: pages}, nil
}

// Wait blocks until background notifications finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch runs send in the background. The outcome is only logged.
func (s *Service) dispatch(ctx context.Context, event, bookingID string, send func(context.Context) error) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("notification panicked",
					zap.String("event", event),
					zap.String("booking_id", bookingID),
					zap.Any("panic", r),
				)
				s.metrics.Notification(event, fmt.Errorf("panic: %v", r))
			}
		}()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		err := send(nctx)
		s.metrics.Notification(event, err)
		if err != nil {
			s.log.Warn("booking notification failed",
				zap.String("event", event),
				zap.String("booking_id", bookingID),
				zap.Error(err),
			)
			return
		}
		s.log.Debug("booking notification sent",
			zap.String("event", event),
			zap.String("booking_id", bookingID),
		)
	}()
}

func (s *Service) storeFailure(op, id string, err error) error {
	s.log.Error("store operation failed",
		zap.String("operation", op),
		zap.String("booking_id", id),
		zap.Time("at", s.now()),
		zap.Error(err),
	)
	s.metrics.StoreError(op)
	return fmt.Errorf("%s booking: %w", op, err)
}
