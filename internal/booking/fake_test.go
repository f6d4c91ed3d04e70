package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	err      error
}

func newMemStore() *memStore {
	return &memStore{bookings: make(map[string]models.Booking)}
}

func clone(b models.Booking) models.Booking {
	b.Notes = append([]models.Note{}, b.Notes...)
	return b
}

func (s *memStore) Insert(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.bookings[b.ID] = clone(*b)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(b)
	return &c, nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func matches(b models.Booking, f Filter) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			ok = ok || b.Status == s
		}
		if !ok {
			return false
		}
	}
	if f.ProgramType != "" && b.Program.Type != f.ProgramType {
		return false
	}
	if f.PaymentStatus != "" && b.Payment.Status != f.PaymentStatus {
		return false
	}
	if !inRange(b.Program.StartDate, f.StartFrom, f.StartTo) {
		return false
	}
	if !inRange(b.Program.EndDate, f.EndFrom, nil) {
		return false
	}
	if f.PaidFrom != nil || f.PaidTo != nil {
		if b.Payment.PaidAt == nil || !inRange(*b.Payment.PaidAt, f.PaidFrom, f.PaidTo) {
			return false
		}
	}
	if q := strings.ToLower(f.Search); q != "" {
		p := b.PersonalInfo
		hay := strings.ToLower(p.FirstName + "\x00" + p.LastName + "\x00" + p.Email)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func (s *memStore) Find(_ context.Context, f Filter, opts FindOptions) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Booking
	for _, b := range s.bookings {
		if matches(b, f) {
			out = append(out, clone(b))
		}
	}
	key := func(b models.Booking) time.Time {
		if opts.Sort == SortStartDate {
			return b.Program.StartDate
		}
		return b.CreatedAt
	}
	sort.SliceStable(out, func(i, j int) bool {
		if opts.Ascending {
			return key(out[i]).Before(key(out[j]))
		}
		return key(out[i]).After(key(out[j]))
	})
	if opts.Skip > 0 {
		if opts.Skip >= len(out) {
			return []models.Booking{}, nil
		}
		out = out[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *memStore) Count(ctx context.Context, f Filter) (int64, error) {
	items, err := s.Find(ctx, f, FindOptions{})
	return int64(len(items)), err
}

func (s *memStore) UpdateByID(_ context.Context, id string, mutate func(*models.Booking) error) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(b)
	if err := mutate(&c); err != nil {
		return nil, err
	}
	c.Version++
	s.bookings[id] = clone(c)
	return &c, nil
}

func (s *memStore) put(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = clone(b)
}

type call struct {
	event    string
	booking  models.Booking
	previous models.Status
	reason   string
}

// recordingNotifier records calls and fails with err if set.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []call
	err   error
	block chan struct{}
}

func (n *recordingNotifier) record(c call) error {
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c)
	return n.err
}

func (n *recordingNotifier) NotifyCreated(_ context.Context, b models.Booking) error {
	return n.record(call{event: "created", booking: b})
}

func (n *recordingNotifier) NotifyStatusChanged(_ context.Context, b models.Booking, previous models.Status) error {
	return n.record(call{event: "status_changed", booking: b, previous: previous})
}

func (n *recordingNotifier) NotifyCancelled(_ context.Context, b models.Booking, reason string) error {
	return n.record(call{event: "cancelled", booking: b, reason: reason})
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.calls))
	for _, c := range n.calls {
		out = append(out, c.event)
	}
	return out
}

func (n *recordingNotifier) last() call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[len(n.calls)-1]
}

type panickingNotifier struct{ recordingNotifier }

func (p *panickingNotifier) NotifyCreated(context.Context, models.Booking) error {
	panic("boom")
}

var errStoreDown = errors.New("connection refused")
