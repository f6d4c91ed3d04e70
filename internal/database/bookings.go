package database

import (
	"context"
	"errors"
	"strings"

	"github.com/gdg-garage/retreat-booking-api/internal/booking"
	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxUpdateAttempts bounds the compare-and-swap retries of UpdateByID.
const maxUpdateAttempts = 5

var errStale = errors.New("stale booking version")

// BookingStore is the gorm implementation of booking.Store.
type BookingStore struct {
	db *gorm.DB
}

func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

func orderedNotes(db *gorm.DB) *gorm.DB {
	return db.Order("booking_notes.id ASC")
}

func (s *BookingStore) Insert(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		notes := b.Notes
		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return err
		}
		for i := range notes {
			notes[i].BookingID = b.ID
			if err := tx.Create(&notes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BookingStore) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	return s.load(s.db.WithContext(ctx), id)
}

func (s *BookingStore) load(db *gorm.DB, id string) (*models.Booking, error) {
	var b models.Booking
	err := db.Preload("Notes", orderedNotes).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.Notes == nil {
		b.Notes = []models.Note{}
	}
	return &b, nil
}

func applyFilter(db *gorm.DB, f booking.Filter) *gorm.DB {
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	if f.ProgramType != "" {
		db = db.Where("program_type = ?", f.ProgramType)
	}
	if f.PaymentStatus != "" {
		db = db.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.StartFrom != nil {
		db = db.Where("program_start_date >= ?", f.StartFrom.UTC())
	}
	if f.StartTo != nil {
		db = db.Where("program_start_date <= ?", f.StartTo.UTC())
	}
	if f.EndFrom != nil {
		db = db.Where("program_end_date >= ?", f.EndFrom.UTC())
	}
	if f.PaidFrom != nil {
		db = db.Where("payment_paid_at >= ?", f.PaidFrom.UTC())
	}
	if f.PaidTo != nil {
		db = db.Where("payment_paid_at <= ?", f.PaidTo.UTC())
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(guest_first_name) LIKE ? OR LOWER(guest_last_name) LIKE ? OR LOWER(guest_email) LIKE ?", like, like, like)
	}
	return db
}

func (s *BookingStore) Find(ctx context.Context, f booking.Filter, opts booking.FindOptions) ([]models.Booking, error) {
	db := applyFilter(s.db.WithContext(ctx).Model(&models.Booking{}), f)

	column := "created_at"
	if opts.Sort == booking.SortStartDate {
		column = "program_start_date"
	}
	db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: !opts.Ascending})

	if opts.Skip > 0 {
		db = db.Offset(opts.Skip)
	}
	if opts.Limit > 0 {
		db = db.Limit(opts.Limit)
	}

	var out []models.Booking
	if err := db.Preload("Notes", orderedNotes).Find(&out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Notes == nil {
			out[i].Notes = []models.Note{}
		}
	}
	return out, nil
}

func (s *BookingStore) Count(ctx context.Context, f booking.Filter) (int64, error) {
	var n int64
	err := applyFilter(s.db.WithContext(ctx).Model(&models.Booking{}), f).Count(&n).Error
	return n, err
}

// UpdateByID reads the booking, applies mutate and writes it back only if
// the stored version is unchanged. Lost races are retried with a fresh
// copy; booking.ErrConflict is returned once the attempts run out.
func (s *BookingStore) UpdateByID(ctx context.Context, id string, mutate func(*models.Booking) error) (*models.Booking, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var out *models.Booking
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			current, err := s.load(tx, id)
			if err != nil {
				return err
			}
			version := current.Version
			known := len(current.Notes)

			if err := mutate(current); err != nil {
				return err
			}
			current.Version = version + 1

			res := tx.Model(&models.Booking{}).
				Where("id = ? AND version = ?", id, version).
				Select("*").
				Omit(clause.Associations, "id", "created_at").
				Updates(current)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStale
			}

			for i := known; i < len(current.Notes); i++ {
				n := &current.Notes[i]
				n.ID = 0
				n.BookingID = id
				if err := tx.Create(n).Error; err != nil {
					return err
				}
			}
			out = current
			return nil
		})
		if errors.Is(err, errStale) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, booking.ErrConflict
}
