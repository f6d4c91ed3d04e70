package booking

import (
	"context"
	"sort"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
)

const DefaultUpcomingDays = 7

type StatusStat struct {
	Status      models.Status `json:"status"`
	Count       int           `json:"count"`
	TotalAmount float64       `json:"totalAmount"`
}

type MonthlyRevenue struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Revenue  float64 `json:"revenue"`
	Bookings int     `json:"bookings"`
}

type Stats struct {
	StatusCounts []StatusStat     `json:"statusCounts"`
	Upcoming     []models.Booking `json:"upcomingBookings"`
	Revenue      []MonthlyRevenue `json:"revenueStats,omitempty"`
}

type StatsQuery struct {
	// Revenue is reported only when both bounds are set.
	From *time.Time
	To   *time.Time
	// UpcomingDays is the look-ahead window; DefaultUpcomingDays if <= 0.
	UpcomingDays int
}

// GroupByStatus counts bookings and sums their payment amounts per status.
// Groups come out in lifecycle order; empty groups are omitted.
func GroupByStatus(bookings []models.Booking) []StatusStat {
	idx := make(map[models.Status]*StatusStat)
	for i := range bookings {
		b := &bookings[i]
		st, ok := idx[b.Status]
		if !ok {
			st = &StatusStat{Status: b.Status}
			idx[b.Status] = st
		}
		st.Count++
		st.TotalAmount += b.Payment.Amount
	}

	out := make([]StatusStat, 0, len(idx))
	for _, s := range models.Statuses {
		if st, ok := idx[s]; ok {
			out = append(out, *st)
			delete(idx, s)
		}
	}
	// unknown statuses from old records
	rest := make([]StatusStat, 0, len(idx))
	for _, st := range idx {
		rest = append(rest, *st)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Status < rest[j].Status })
	return append(out, rest...)
}

// MonthlyRevenueOf sums paid amounts by the UTC month of paidAt for
// payments made within [from, to].
func MonthlyRevenueOf(bookings []models.Booking, from, to time.Time) []MonthlyRevenue {
	type key struct{ year, month int }
	idx := make(map[key]*MonthlyRevenue)
	for i := range bookings {
		p := bookings[i].Payment
		if p.Status != models.PaymentPaid || p.PaidAt == nil {
			continue
		}
		if p.PaidAt.Before(from) || p.PaidAt.After(to) {
			continue
		}
		at := p.PaidAt.UTC()
		k := key{at.Year(), int(at.Month())}
		m, ok := idx[k]
		if !ok {
			m = &MonthlyRevenue{Year: k.year, Month: k.month}
			idx[k] = m
		}
		m.Revenue += p.Amount
		m.Bookings++
	}

	out := make([]MonthlyRevenue, 0, len(idx))
	for _, m := range idx {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// Stats aggregates the dashboard figures.
func (s *Service) Stats(ctx context.Context, q StatsQuery) (*Stats, error) {
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, ErrInvalidRange
	}
	days := q.UpcomingDays
	if days <= 0 {
		days = DefaultUpcomingDays
	}

	all, err := s.store.Find(ctx, Filter{}, FindOptions{})
	if err != nil {
		return nil, s.storeFailure("find_all", "", err)
	}

	now := s.now()
	horizon := now.AddDate(0, 0, days)
	upcoming, err := s.store.Find(ctx, Filter{
		Statuses:  models.OccupyingStatuses,
		StartFrom: &now,
		StartTo:   &horizon,
	}, FindOptions{Sort: SortStartDate, Ascending: true})
	if err != nil {
		return nil, s.storeFailure("find_upcoming", "", err)
	}
	if upcoming == nil {
		upcoming = []models.Booking{}
	}

	out := &Stats{
		StatusCounts: GroupByStatus(all),
		Upcoming:     upcoming,
	}

	if q.From != nil && q.To != nil {
		paid, err := s.store.Find(ctx, Filter{
			PaymentStatus: models.PaymentPaid,
			PaidFrom:      q.From,
			PaidTo:        q.To,
		}, FindOptions{})
		if err != nil {
			return nil, s.storeFailure("find_paid", "", err)
		}
		out.Revenue = MonthlyRevenueOf(paid, *q.From, *q.To)
	}
	return out, nil
}
