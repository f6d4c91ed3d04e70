package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/booking"
	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Setup in-memory DB
	db, err := Open("sqlite", ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

var base = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func sample(id string, status models.Status, startOffset, days int) *models.Booking {
	start := base.AddDate(0, 0, startOffset)
	return &models.Booking{
		ID: id,
		PersonalInfo: models.PersonalInfo{
			FirstName: "Ananya",
			LastName:  "Rao-" + id,
			Email:     id + "@example.com",
			Phone:     "+91 12345",
			Country:   "India",
		},
		Program: models.Program{
			Type:         models.ProgramRetreat,
			Name:         "Spring Retreat",
			DurationDays: days,
			StartDate:    start,
			EndDate:      start.AddDate(0, 0, days),
			Participants: models.Participants{Adults: 2, Children: 1},
			Experience:   models.ExperienceBeginner,
		},
		Accommodation: models.Accommodation{Type: models.AccommodationNone},
		Payment:       models.Payment{Status: models.PaymentPending, Amount: 100, Currency: "USD", Method: models.PaymentOnline},
		Status:        status,
		Source:        models.SourceWebsite,
		CreatedAt:     base.Add(time.Duration(startOffset) * time.Hour),
		UpdatedAt:     base,
	}
}

func TestBookingStore_InsertAndFind(t *testing.T) {
	store := NewBookingStore(setupDB(t))
	ctx := context.Background()

	b := sample("bk-1", models.StatusInquiry, 0, 5)
	b.Notes = []models.Note{{Content: "hello", Author: models.AuthorCustomer, Timestamp: base}}
	require.NoError(t, store.Insert(ctx, b))

	got, err := store.FindByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1@example.com", got.PersonalInfo.Email)
	assert.Equal(t, 3, got.TotalParticipants())
	assert.True(t, b.Program.StartDate.Equal(got.Program.StartDate))
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "hello", got.Notes[0].Content)

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestBookingStore_Filters(t *testing.T) {
	store := NewBookingStore(setupDB(t))
	ctx := context.Background()

	early := sample("early", models.StatusConfirmed, 0, 5)
	late := sample("late", models.StatusConfirmed, 20, 5)
	inquiry := sample("inquiry", models.StatusInquiry, 2, 3)
	yoga := sample("yoga", models.StatusConfirmed, 1, 1)
	yoga.Program.Type = models.ProgramYogaClass
	paidAt := base.AddDate(0, 0, 3)
	late.Payment.Status = models.PaymentPaid
	late.Payment.PaidAt = &paidAt
	for _, b := range []*models.Booking{early, late, inquiry, yoga} {
		require.NoError(t, store.Insert(ctx, b))
	}

	ids := func(f booking.Filter, opts booking.FindOptions) []string {
		t.Helper()
		out, err := store.Find(ctx, f, opts)
		require.NoError(t, err)
		var got []string
		for _, b := range out {
			got = append(got, b.ID)
		}
		return got
	}

	assert.Equal(t, []string{"late", "inquiry", "yoga", "early"}, ids(booking.Filter{}, booking.FindOptions{}))
	assert.Equal(t, []string{"early", "yoga", "inquiry", "late"}, ids(booking.Filter{}, booking.FindOptions{Sort: booking.SortStartDate, Ascending: true}))

	assert.ElementsMatch(t, []string{"early", "late", "yoga"}, ids(booking.Filter{Statuses: models.OccupyingStatuses}, booking.FindOptions{}))
	assert.ElementsMatch(t, []string{"yoga"}, ids(booking.Filter{ProgramType: models.ProgramYogaClass}, booking.FindOptions{}))
	assert.ElementsMatch(t, []string{"late"}, ids(booking.Filter{PaymentStatus: models.PaymentPaid}, booking.FindOptions{}))

	// overlap window day 4..day 6: early ends on day 5, inquiry ends day 5
	from, to := base.AddDate(0, 0, 4), base.AddDate(0, 0, 6)
	assert.ElementsMatch(t, []string{"early", "inquiry"}, ids(booking.Filter{
		ProgramType: models.ProgramRetreat, StartTo: &to, EndFrom: &from,
	}, booking.FindOptions{}))

	paidFrom, paidTo := base, base.AddDate(0, 0, 7)
	assert.ElementsMatch(t, []string{"late"}, ids(booking.Filter{PaidFrom: &paidFrom, PaidTo: &paidTo}, booking.FindOptions{}))

	assert.ElementsMatch(t, []string{"yoga"}, ids(booking.Filter{Search: "RAO-YO"}, booking.FindOptions{}))
	assert.ElementsMatch(t, []string{"inquiry"}, ids(booking.Filter{Search: "inquiry@"}, booking.FindOptions{}))

	assert.Equal(t, []string{"inquiry", "yoga"}, ids(booking.Filter{}, booking.FindOptions{Skip: 1, Limit: 2}))

	n, err := store.Count(ctx, booking.Filter{Statuses: []models.Status{models.StatusConfirmed}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestBookingStore_UpdateByID(t *testing.T) {
	store := NewBookingStore(setupDB(t))
	ctx := context.Background()

	b := sample("bk-1", models.StatusInquiry, 0, 5)
	b.Notes = []models.Note{{Content: "first", Author: models.AuthorCustomer, Timestamp: base}}
	require.NoError(t, store.Insert(ctx, b))

	updated, err := store.UpdateByID(ctx, "bk-1", func(b *models.Booking) error {
		b.Status = models.StatusConfirmed
		b.Payment.Amount = 0
		b.Notes = append(b.Notes, models.Note{Content: "second", Author: models.AuthorAdmin, Timestamp: base})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Equal(t, 1, updated.Version)

	got, err := store.FindByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, 0.0, got.Payment.Amount, "zero values are written")
	require.Len(t, got.Notes, 2)
	assert.Equal(t, "first", got.Notes[0].Content)
	assert.Equal(t, "second", got.Notes[1].Content)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt), "created_at is never rewritten")

	// A failing mutation writes nothing.
	_, err = store.UpdateByID(ctx, "bk-1", func(b *models.Booking) error {
		b.Status = models.StatusCancelled
		return &booking.TransitionError{From: models.StatusConfirmed, To: models.StatusCancelled}
	})
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)
	got, _ = store.FindByID(ctx, "bk-1")
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, 1, got.Version)

	_, err = store.UpdateByID(ctx, "missing", func(*models.Booking) error { return nil })
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestBookingStore_ConcurrentNotesAreKept(t *testing.T) {
	store := NewBookingStore(setupDB(t))
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, sample("bk-1", models.StatusConfirmed, 0, 5)))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.UpdateByID(ctx, "bk-1", func(b *models.Booking) error {
				b.Notes = append(b.Notes, models.Note{Content: fmt.Sprintf("note %d", i), Author: models.AuthorAdmin, Timestamp: base})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.FindByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Len(t, got.Notes, 10)
	assert.Equal(t, 10, got.Version)
}

func TestBookingStore_WithService(t *testing.T) {
	svc := booking.NewService(NewBookingStore(setupDB(t)), nil, nil, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 2; i++ {
		b, err := svc.Create(ctx, booking.CreateInput{
			PersonalInfo: booking.GuestInput{FirstName: "Ravi", LastName: "Kumar", Email: "ravi@example.com", Phone: "12345", Country: "India"},
			Program: booking.ProgramInput{
				Type:         models.ProgramRetreat,
				Name:         "Autumn Retreat",
				DurationDays: 10,
				StartDate:    "2026-03-10",
				EndDate:      "2026-03-20",
				Participants: booking.ParticipantsInput{Adults: 10},
			},
		})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}
	for _, id := range ids {
		_, err := svc.Update(ctx, id, booking.Patch{Status: ptr(models.StatusConfirmed)}, booking.Actor{})
		require.NoError(t, err)
	}

	res, err := svc.CheckAvailability(ctx, booking.AvailabilityQuery{
		ProgramType:  models.ProgramRetreat,
		StartDate:    time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC),
		Participants: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentBookings)
	assert.Equal(t, 20, res.TotalParticipants)
	assert.False(t, res.Available)

	cancelled, err := svc.Cancel(ctx, ids[0], "")
	require.NoError(t, err)
	require.Len(t, cancelled.Notes, 1)

	_, err = svc.Cancel(ctx, ids[0], "")
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)

	require.NoError(t, svc.Wait(ctx))
}

func ptr[T any](v T) *T { return &v }
