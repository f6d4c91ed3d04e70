package models

import "time"

// Note is an append-only entry on a booking. Notes are returned in
// insertion order.
type Note struct {
	ID        uint      `json:"-" gorm:"primaryKey" bson:"-"`
	BookingID string    `json:"-" gorm:"index;size:36" bson:"-"`
	Content   string    `json:"content" bson:"content"`
	Author    string    `json:"author" bson:"author"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

const (
	AuthorAdmin    = "Admin"
	AuthorCustomer = "Customer"
)

func (Note) TableName() string {
	return "booking_notes"
}
