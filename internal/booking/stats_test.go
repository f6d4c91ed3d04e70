package booking

import (
	"context"
	"testing"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByStatus(t *testing.T) {
	bookings := []models.Booking{
		{Status: models.StatusInquiry, Payment: models.Payment{Amount: 100}},
		{Status: models.StatusInquiry, Payment: models.Payment{Amount: 50.5}},
		{Status: models.StatusConfirmed, Payment: models.Payment{Amount: 300}},
	}

	got := GroupByStatus(bookings)
	assert.Equal(t, []StatusStat{
		{Status: models.StatusInquiry, Count: 2, TotalAmount: 150.5},
		{Status: models.StatusConfirmed, Count: 1, TotalAmount: 300},
	}, got)

	assert.Empty(t, GroupByStatus(nil))
}

func paid(amount float64, at time.Time) models.Booking {
	return models.Booking{
		Status:  models.StatusConfirmed,
		Payment: models.Payment{Status: models.PaymentPaid, Amount: amount, PaidAt: &at},
	}
}

func TestMonthlyRevenueOf(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	pending := paid(999, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	pending.Payment.Status = models.PaymentPending

	got := MonthlyRevenueOf([]models.Booking{
		paid(200, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)),
		paid(100, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)),
		paid(50, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)),
		paid(75, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)), // before range
		pending,
	}, from, to)

	assert.Equal(t, []MonthlyRevenue{
		{Year: 2026, Month: 1, Revenue: 150, Bookings: 2},
		{Year: 2026, Month: 3, Revenue: 200, Bookings: 1},
	}, got)
}

func TestStats(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, nil)

	soon := existing("soon", models.ProgramRetreat, models.StatusConfirmed, testNow.AddDate(0, 0, 2), testNow.AddDate(0, 0, 5), 2, 0)
	sooner := existing("sooner", models.ProgramYogaClass, models.StatusCheckedIn, testNow.Add(time.Hour), testNow.AddDate(0, 0, 1), 1, 0)
	later := existing("later", models.ProgramRetreat, models.StatusConfirmed, testNow.AddDate(0, 0, 30), testNow.AddDate(0, 0, 35), 2, 0)
	inquiry := existing("inquiry", models.ProgramRetreat, models.StatusInquiry, testNow.AddDate(0, 0, 3), testNow.AddDate(0, 0, 4), 2, 0)
	paidAt := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	soon.Payment = models.Payment{Status: models.PaymentPaid, Amount: 600, PaidAt: &paidAt}
	for _, b := range []models.Booking{soon, sooner, later, inquiry} {
		store.put(b)
	}

	stats, err := svc.Stats(context.Background(), StatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, []StatusStat{
		{Status: models.StatusInquiry, Count: 1},
		{Status: models.StatusConfirmed, Count: 2, TotalAmount: 600},
		{Status: models.StatusCheckedIn, Count: 1},
	}, stats.StatusCounts)

	require.Len(t, stats.Upcoming, 2)
	assert.Equal(t, "sooner", stats.Upcoming[0].ID)
	assert.Equal(t, "soon", stats.Upcoming[1].ID)
	assert.Nil(t, stats.Revenue, "revenue needs both bounds")

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	stats, err = svc.Stats(context.Background(), StatsQuery{From: &from, To: &to, UpcomingDays: 60})
	require.NoError(t, err)
	assert.Len(t, stats.Upcoming, 3)
	assert.Equal(t, []MonthlyRevenue{{Year: 2026, Month: 9, Revenue: 600, Bookings: 1}}, stats.Revenue)
}

func TestStats_InvalidRange(t *testing.T) {
	svc := newTestService(t, newMemStore(), nil)
	from := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Stats(context.Background(), StatsQuery{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestStats_UpcomingStartsFromNow(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, nil)

	// already in progress: started yesterday, guest checked in
	store.put(existing("in-house", models.ProgramRetreat, models.StatusCheckedIn, testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, 3), 2, 0))
	store.put(existing("tomorrow", models.ProgramRetreat, models.StatusConfirmed, testNow.AddDate(0, 0, 1), testNow.AddDate(0, 0, 4), 2, 0))

	stats, err := svc.Stats(context.Background(), StatsQuery{})
	require.NoError(t, err)
	require.Len(t, stats.Upcoming, 1)
	assert.Equal(t, "tomorrow", stats.Upcoming[0].ID)
}
