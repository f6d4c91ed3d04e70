package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"go.uber.org/zap"
)

// Capacity is the number of concurrent participants allowed per program
// type in any overlap window.
const Capacity = 25

type AvailabilityQuery struct {
	ProgramType  models.ProgramType `json:"programType" validate:"required,oneof=day-visit retreat yoga-class private-yoga treatment custom"`
	StartDate    time.Time          `json:"startDate"`
	EndDate      time.Time          `json:"endDate"`
	Participants int                `json:"participants" validate:"min=1,max=25"`
}

type Availability struct {
	Available         bool `json:"available"`
	CurrentBookings   int  `json:"currentBookings"`
	TotalParticipants int  `json:"totalParticipants"`
	// RemainingCapacity is not clamped; a negative value means overbooked.
	RemainingCapacity int `json:"remainingCapacity"`
}

// Overlaps reports whether [s1,e1] and [s2,e2] share at least one instant.
// Touching boundaries count as overlapping.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

func occupies(s models.Status) bool {
	for _, o := range models.OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// Evaluate computes availability for q from the given bookings. Bookings
// of other program types, non-occupying states or outside the window are
// ignored.
func Evaluate(q AvailabilityQuery, bookings []models.Booking) Availability {
	var count, total int
	for i := range bookings {
		b := &bookings[i]
		if b.Program.Type != q.ProgramType || !occupies(b.Status) {
			continue
		}
		if !Overlaps(b.Program.StartDate, b.Program.EndDate, q.StartDate, q.EndDate) {
			continue
		}
		count++
		total += b.TotalParticipants()
	}
	return Availability{
		Available:         total+q.Participants <= Capacity,
		CurrentBookings:   count,
		TotalParticipants: total,
		RemainingCapacity: Capacity - total,
	}
}

// CheckAvailability reports whether q.Participants more guests fit into
// the program window. It reads a point-in-time snapshot and reserves
// nothing.
func (s *Service) CheckAvailability(ctx context.Context, q AvailabilityQuery) (*Availability, error) {
	if !q.StartDate.Before(q.EndDate) {
		return nil, fmt.Errorf("%w: start %s, end %s", ErrInvalidRange,
			q.StartDate.Format(time.DateOnly), q.EndDate.Format(time.DateOnly))
	}
	if problems := collect(s.validator, q); len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}

	start, end := q.StartDate, q.EndDate
	existing, err := s.store.Find(ctx, Filter{
		ProgramType: q.ProgramType,
		Statuses:    models.OccupyingStatuses,
		StartTo:     &end,
		EndFrom:     &start,
	}, FindOptions{})
	if err != nil {
		return nil, s.storeFailure("find_overlapping", "", err)
	}

	res := Evaluate(q, existing)
	s.metrics.AvailabilityChecked(string(q.ProgramType), res.Available)
	s.log.Debug("availability checked",
		zap.String("program", string(q.ProgramType)),
		zap.Int("requested", q.Participants),
		zap.Int("booked", res.TotalParticipants),
		zap.Bool("available", res.Available),
	)
	return &res, nil
}
