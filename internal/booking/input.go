package booking

import (
	"reflect"
	"strings"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"github.com/go-playground/validator/v10"
)

type GuestInput struct {
	FirstName        string                  `json:"firstName,omitempty" validate:"min=2,max=50" doc:"Guest first name"`
	LastName         string                  `json:"lastName,omitempty" validate:"min=2,max=50" doc:"Guest last name"`
	Email            string                  `json:"email,omitempty" validate:"required,email" doc:"Guest email, stored lower-cased"`
	Phone            string                  `json:"phone,omitempty" validate:"required,max=20" doc:"Guest phone number"`
	Country          string                  `json:"country,omitempty" validate:"min=2,max=50"`
	EmergencyContact models.EmergencyContact `json:"emergencyContact,omitempty"`
}

type ParticipantsInput struct {
	Adults   int `json:"adults,omitempty" validate:"min=1,max=25"`
	Children int `json:"children,omitempty" validate:"min=0,max=10"`
}

type ProgramInput struct {
	Type            models.ProgramType `json:"type,omitempty" validate:"required,oneof=day-visit retreat yoga-class private-yoga treatment custom"`
	Name            string             `json:"name,omitempty" validate:"min=5,max=100"`
	DurationDays    int                `json:"duration,omitempty" validate:"min=1,max=30" doc:"Program length in days"`
	StartDate       string             `json:"startDate,omitempty" doc:"ISO 8601 date or date-time"`
	EndDate         string             `json:"endDate,omitempty" doc:"ISO 8601 date or date-time"`
	Participants    ParticipantsInput  `json:"participants,omitempty"`
	SpecialRequests string             `json:"specialRequests,omitempty" validate:"max=1000"`
	Experience      models.Experience  `json:"experience,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

type AccommodationInput struct {
	Type         models.AccommodationType `json:"type,omitempty" validate:"omitempty,oneof=single double dormitory no-accommodation"`
	CheckIn      string                   `json:"checkIn,omitempty"`
	CheckOut     string                   `json:"checkOut,omitempty"`
	SpecialNeeds string                   `json:"specialNeeds,omitempty" validate:"max=1000"`
}

type PaymentInput struct {
	Amount   float64              `json:"amount,omitempty" validate:"gte=0"`
	Currency string               `json:"currency,omitempty" validate:"omitempty,len=3"`
	Method   models.PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=cash card bank-transfer online"`
}

// CreateInput is the booking form as submitted by a guest.
type CreateInput struct {
	PersonalInfo  GuestInput         `json:"personalInfo,omitempty"`
	Program       ProgramInput       `json:"program,omitempty"`
	Accommodation AccommodationInput `json:"accommodation,omitempty"`
	Payment       PaymentInput       `json:"payment,omitempty"`
	Source        models.Source      `json:"source,omitempty" validate:"omitempty,oneof=website email phone walk-in referral"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

var fieldMessages = map[string]string{
	"personalInfo.firstName":        "First name must be between 2 and 50 characters",
	"personalInfo.lastName":         "Last name must be between 2 and 50 characters",
	"personalInfo.email":            "Please provide a valid email address",
	"personalInfo.phone":            "Please provide a valid phone number",
	"personalInfo.country":          "Country must be between 2 and 50 characters",
	"program.type":                  "Invalid program type",
	"program.name":                  "Program name must be between 5 and 100 characters",
	"program.duration":              "Duration must be between 1 and 30 days",
	"program.participants.adults":   "Adults must be between 1 and 25",
	"program.participants.children": "Children must be between 0 and 10",
	"program.experience":            "Invalid experience level",
	"accommodation.type":            "Invalid accommodation type",
	"payment.amount":                "Amount must be a positive number",
	"payment.method":                "Invalid payment method",
	"source":                        "Invalid booking source",
	"participants":                  "Participants must be between 1 and 25",
	"programType":                   "Invalid program type",
	"status":                        "Invalid booking status",
	"payment.status":                "Invalid payment status",
}

// dateLayouts are accepted for every date field, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func ParseDate(s string) (time.Time, error) {
	var err error
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, perr := time.Parse(layout, s)
		if perr == nil {
			return t.UTC(), nil
		}
		err = perr
	}
	return time.Time{}, err
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// collect runs struct-tag validation and converts every violation into a
// FieldError keyed by its JSON path.
func collect(v *validator.Validate, s any) []FieldError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "body", Reason: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		reason, ok := fieldMessages[path]
		if !ok {
			reason = "failed " + fe.Tag() + " validation"
		}
		out = append(out, FieldError{Field: path, Reason: reason, Value: fe.Value()})
	}
	return out
}

func (in *CreateInput) normalize() {
	p := &in.PersonalInfo
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Country = strings.TrimSpace(p.Country)
	in.Program.Name = strings.TrimSpace(in.Program.Name)
}

// validate checks every rule on the input and returns the parsed booking
// fields, or a ValidationError listing all problems found.
func (s *Service) validate(in CreateInput) (*models.Booking, error) {
	in.normalize()
	problems := collect(s.validator, in)

	date := func(field, value, reason string, required bool) *time.Time {
		if strings.TrimSpace(value) == "" {
			if required {
				problems = append(problems, FieldError{Field: field, Reason: reason})
			}
			return nil
		}
		t, err := ParseDate(value)
		if err != nil {
			problems = append(problems, FieldError{Field: field, Reason: reason, Value: value})
			return nil
		}
		return &t
	}

	start := date("program.startDate", in.Program.StartDate, "Please provide a valid start date", true)
	end := date("program.endDate", in.Program.EndDate, "Please provide a valid end date", true)
	checkIn := date("accommodation.checkIn", in.Accommodation.CheckIn, "Please provide a valid check-in date", false)
	checkOut := date("accommodation.checkOut", in.Accommodation.CheckOut, "Please provide a valid check-out date", false)

	if start != nil && end != nil && !start.Before(*end) {
		problems = append(problems, FieldError{Field: "program.endDate", Reason: "End date must be after start date", Value: in.Program.EndDate})
	}
	if checkIn != nil && checkOut != nil && !checkIn.Before(*checkOut) {
		problems = append(problems, FieldError{Field: "accommodation.checkOut", Reason: "Check-out date must be after check-in date", Value: in.Accommodation.CheckOut})
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}

	b := &models.Booking{
		PersonalInfo: models.PersonalInfo{
			FirstName:        in.PersonalInfo.FirstName,
			LastName:         in.PersonalInfo.LastName,
			Email:            in.PersonalInfo.Email,
			Phone:            in.PersonalInfo.Phone,
			Country:          in.PersonalInfo.Country,
			EmergencyContact: in.PersonalInfo.EmergencyContact,
		},
		Program: models.Program{
			Type:         in.Program.Type,
			Name:         in.Program.Name,
			DurationDays: in.Program.DurationDays,
			StartDate:    *start,
			EndDate:      *end,
			Participants: models.Participants{
				Adults:   in.Program.Participants.Adults,
				Children: in.Program.Participants.Children,
			},
			SpecialRequests: in.Program.SpecialRequests,
			Experience:      in.Program.Experience,
		},
		Accommodation: models.Accommodation{
			Type:         in.Accommodation.Type,
			CheckIn:      checkIn,
			CheckOut:     checkOut,
			SpecialNeeds: in.Accommodation.SpecialNeeds,
		},
		Payment: models.Payment{
			Status:   models.PaymentPending,
			Amount:   in.Payment.Amount,
			Currency: strings.ToUpper(in.Payment.Currency),
			Method:   in.Payment.Method,
		},
		Source:    in.Source,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	applyDefaults(b)
	return b, nil
}

func applyDefaults(b *models.Booking) {
	if b.Program.Experience == "" {
		b.Program.Experience = models.ExperienceBeginner
	}
	if b.Accommodation.Type == "" {
		b.Accommodation.Type = models.AccommodationNone
	}
	if b.Payment.Currency == "" {
		b.Payment.Currency = models.DefaultCurrency
	}
	if b.Payment.Method == "" {
		b.Payment.Method = models.PaymentOnline
	}
	if b.Source == "" {
		b.Source = models.SourceWebsite
	}
}
