package models

import (
	"strings"
	"time"
)

type ProgramType string

const (
	ProgramDayVisit    ProgramType = "day-visit"
	ProgramRetreat     ProgramType = "retreat"
	ProgramYogaClass   ProgramType = "yoga-class"
	ProgramPrivateYoga ProgramType = "private-yoga"
	ProgramTreatment   ProgramType = "treatment"
	ProgramCustom      ProgramType = "custom"
)

var ProgramTypes = []ProgramType{
	ProgramDayVisit, ProgramRetreat, ProgramYogaClass,
	ProgramPrivateYoga, ProgramTreatment, ProgramCustom,
}

type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceAdvanced     Experience = "advanced"
)

type AccommodationType string

const (
	AccommodationSingle    AccommodationType = "single"
	AccommodationDouble    AccommodationType = "double"
	AccommodationDormitory AccommodationType = "dormitory"
	AccommodationNone      AccommodationType = "no-accommodation"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentOnline       PaymentMethod = "online"
)

type Source string

const (
	SourceWebsite  Source = "website"
	SourceEmail    Source = "email"
	SourcePhone    Source = "phone"
	SourceWalkIn   Source = "walk-in"
	SourceReferral Source = "referral"
)

const DefaultCurrency = "USD"

type EmergencyContact struct {
	Name         string `json:"name,omitempty" bson:"name,omitempty"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
}

type PersonalInfo struct {
	FirstName        string           `json:"firstName" bson:"firstName"`
	LastName         string           `json:"lastName" bson:"lastName"`
	Email            string           `json:"email" gorm:"index" bson:"email"`
	Phone            string           `json:"phone" bson:"phone"`
	Country          string           `json:"country" bson:"country"`
	EmergencyContact EmergencyContact `json:"emergencyContact" gorm:"embedded;embeddedPrefix:emergency_" bson:"emergencyContact"`
}

type Participants struct {
	Adults   int `json:"adults" bson:"adults"`
	Children int `json:"children" bson:"children"`
}

type Program struct {
	Type            ProgramType  `json:"type" gorm:"index;size:20" bson:"type"`
	Name            string       `json:"name" bson:"name"`
	DurationDays    int          `json:"duration" bson:"duration"`
	StartDate       time.Time    `json:"startDate" gorm:"index" bson:"startDate"`
	EndDate         time.Time    `json:"endDate" bson:"endDate"`
	Participants    Participants `json:"participants" gorm:"embedded;embeddedPrefix:participants_" bson:"participants"`
	SpecialRequests string       `json:"specialRequests,omitempty" bson:"specialRequests,omitempty"`
	Experience      Experience   `json:"experience" bson:"experience"`
}

type Accommodation struct {
	Type         AccommodationType `json:"type" bson:"type"`
	CheckIn      *time.Time        `json:"checkIn,omitempty" bson:"checkIn,omitempty"`
	CheckOut     *time.Time        `json:"checkOut,omitempty" bson:"checkOut,omitempty"`
	SpecialNeeds string            `json:"specialNeeds,omitempty" bson:"specialNeeds,omitempty"`
}

type Payment struct {
	Status        PaymentStatus `json:"status" gorm:"index;size:20" bson:"status"`
	Amount        float64       `json:"amount" bson:"amount"`
	Currency      string        `json:"currency" bson:"currency"`
	Method        PaymentMethod `json:"method" bson:"method"`
	TransactionID string        `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

// Booking is the persisted booking document. Id, notes order and the
// version counter are owned by the store.
type Booking struct {
	ID            string        `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	PersonalInfo  PersonalInfo  `json:"personalInfo" gorm:"embedded;embeddedPrefix:guest_" bson:"personalInfo"`
	Program       Program       `json:"program" gorm:"embedded;embeddedPrefix:program_" bson:"program"`
	Accommodation Accommodation `json:"accommodation" gorm:"embedded;embeddedPrefix:accommodation_" bson:"accommodation"`
	Payment       Payment       `json:"payment" gorm:"embedded;embeddedPrefix:payment_" bson:"payment"`
	Status        Status        `json:"status" gorm:"index;size:20" bson:"status"`
	Source        Source        `json:"source" bson:"source"`
	Notes         []Note        `json:"notes" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" bson:"notes"`
	IPAddress     string        `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent     string        `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	Version       int           `json:"-" gorm:"not null;default:0" bson:"version"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// TotalParticipants is adults plus children.
func (b *Booking) TotalParticipants() int {
	return b.Program.Participants.Adults + b.Program.Participants.Children
}

// TotalNights is the number of started days between check-in and check-out,
// or 0 if either date is missing.
func (b *Booking) TotalNights() int {
	in, out := b.Accommodation.CheckIn, b.Accommodation.CheckOut
	if in == nil || out == nil {
		return 0
	}
	diff := out.Sub(*in)
	if diff < 0 {
		diff = -diff
	}
	day := 24 * time.Hour
	nights := int(diff / day)
	if diff%day != 0 {
		nights++
	}
	return nights
}

// BookingAmount prices the booking from the base-rate table.
func (b *Booking) BookingAmount() float64 {
	return BaseRate(b.Program.Type) * float64(b.TotalParticipants()) * float64(b.Program.DurationDays)
}

// Reference is the guest-facing booking code: "BK" plus the last six
// characters of the id, upper-cased.
func (b *Booking) Reference() string {
	return Reference(b.ID)
}

func Reference(id string) string {
	tail := id
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "BK" + strings.ToUpper(tail)
}
