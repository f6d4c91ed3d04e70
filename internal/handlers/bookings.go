package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/retreat-booking-api/internal/auth"
	"github.com/gdg-garage/retreat-booking-api/internal/booking"
	"github.com/gdg-garage/retreat-booking-api/internal/models"
)

type BookingHandler struct {
	svc          *booking.Service
	authHandler  *auth.AuthHandler
	upcomingDays int
}

func NewBookingHandler(svc *booking.Service, authHandler *auth.AuthHandler, upcomingDays int) *BookingHandler {
	return &BookingHandler{svc: svc, authHandler: authHandler, upcomingDays: upcomingDays}
}

// BookingView is a booking with its derived fields.
type BookingView struct {
	models.Booking
	BookingReference  string  `json:"bookingReference"`
	TotalParticipants int     `json:"totalParticipants"`
	TotalNights       int     `json:"totalNights"`
	BookingAmount     float64 `json:"bookingAmount"`
}

func viewOf(b *models.Booking) BookingView {
	return BookingView{
		Booking:           *b,
		BookingReference:  b.Reference(),
		TotalParticipants: b.TotalParticipants(),
		TotalNights:       b.TotalNights(),
		BookingAmount:     b.BookingAmount(),
	}
}

func viewsOf(bs []models.Booking) []BookingView {
	out := make([]BookingView, 0, len(bs))
	for i := range bs {
		out = append(out, viewOf(&bs[i]))
	}
	return out
}

type CreateBookingRequest struct {
	UserAgent string `header:"User-Agent"`
	Body      booking.CreateInput
}

type CreateBookingResponse struct {
	Body struct {
		Success           bool      `json:"success"`
		Message           string    `json:"message"`
		BookingID         string    `json:"bookingId"`
		BookingReference  string    `json:"bookingReference"`
		Program           string    `json:"program"`
		StartDate         time.Time `json:"startDate"`
		TotalParticipants int       `json:"totalParticipants"`
	}
}

func (h *BookingHandler) HandleCreate(ctx context.Context, input *CreateBookingRequest) (*CreateBookingResponse, error) {
	in := input.Body
	in.IPAddress = clientIPFromContext(ctx)
	in.UserAgent = input.UserAgent

	b, err := h.svc.Create(ctx, in)
	if err != nil {
		return nil, handleError(err)
	}

	res := &CreateBookingResponse{}
	res.Body.Success = true
	res.Body.Message = "Booking request submitted successfully! We will contact you within 24 hours to confirm your reservation."
	res.Body.BookingID = b.ID
	res.Body.BookingReference = b.Reference()
	res.Body.Program = b.Program.Name
	res.Body.StartDate = b.Program.StartDate
	res.Body.TotalParticipants = b.TotalParticipants()
	return res, nil
}

type CheckAvailabilityRequest struct {
	Body struct {
		ProgramType  models.ProgramType `json:"programType,omitempty" doc:"Program type to check"`
		StartDate    string             `json:"startDate,omitempty" doc:"ISO 8601 date or date-time"`
		EndDate      string             `json:"endDate,omitempty" doc:"ISO 8601 date or date-time"`
		Participants int                `json:"participants,omitempty" doc:"Number of guests to fit"`
	}
}

type CheckAvailabilityResponse struct {
	Body struct {
		Success bool                 `json:"success"`
		Data    booking.Availability `json:"data"`
	}
}

func (h *BookingHandler) HandleCheckAvailability(ctx context.Context, input *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error) {
	start, err := booking.ParseDate(input.Body.StartDate)
	if err != nil {
		return nil, dateError("body.startDate", input.Body.StartDate)
	}
	end, err := booking.ParseDate(input.Body.EndDate)
	if err != nil {
		return nil, dateError("body.endDate", input.Body.EndDate)
	}

	avail, err := h.svc.CheckAvailability(ctx, booking.AvailabilityQuery{
		ProgramType:  input.Body.ProgramType,
		StartDate:    start,
		EndDate:      end,
		Participants: input.Body.Participants,
	})
	if err != nil {
		return nil, handleError(err)
	}

	res := &CheckAvailabilityResponse{}
	res.Body.Success = true
	res.Body.Data = *avail
	return res, nil
}

type CancelBookingRequest struct {
	ID   string `path:"id" doc:"Booking id"`
	Body *struct {
		Reason string `json:"reason,omitempty" maxLength:"500" doc:"Why the guest cancels"`
	}
}

type CancelBookingResponse struct {
	Body struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		Data    BookingView `json:"data"`
	}
}

func (h *BookingHandler) HandleCancel(ctx context.Context, input *CancelBookingRequest) (*CancelBookingResponse, error) {
	var reason string
	if input.Body != nil {
		reason = input.Body.Reason
	}
	b, err := h.svc.Cancel(ctx, input.ID, reason)
	if err != nil {
		return nil, handleError(err)
	}

	res := &CancelBookingResponse{}
	res.Body.Success = true
	res.Body.Message = "Booking cancelled successfully"
	res.Body.Data = viewOf(b)
	return res, nil
}

type UpdateBookingRequest struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Booking id"`
	Body booking.Patch
}

type BookingResponse struct {
	Body struct {
		Success bool        `json:"success"`
		Data    BookingView `json:"data"`
	}
}

func (h *BookingHandler) HandleUpdate(ctx context.Context, input *UpdateBookingRequest) (*BookingResponse, error) {
	staff, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.Update(ctx, input.ID, input.Body, booking.Actor{
		Name:     staff.Username,
		Override: staff.Override,
	})
	if err != nil {
		return nil, handleError(err)
	}

	res := &BookingResponse{}
	res.Body.Success = true
	res.Body.Data = viewOf(b)
	return res, nil
}

type GetBookingRequest struct {
	auth.AuthInput
	ID string `path:"id" doc:"Booking id"`
}

func (h *BookingHandler) HandleGet(ctx context.Context, input *GetBookingRequest) (*BookingResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	b, err := h.svc.Get(ctx, input.ID)
	if err != nil {
		return nil, handleError(err)
	}

	res := &BookingResponse{}
	res.Body.Success = true
	res.Body.Data = viewOf(b)
	return res, nil
}

type ListBookingsRequest struct {
	auth.AuthInput
	Page        int    `query:"page" default:"1" minimum:"1"`
	Limit       int    `query:"limit" default:"10" minimum:"1" maximum:"100"`
	Status      string `query:"status" doc:"Comma separated booking statuses"`
	ProgramType string `query:"programType"`
	StartDate   string `query:"startDate" doc:"Earliest program start date"`
	EndDate     string `query:"endDate" doc:"Latest program start date"`
	Search      string `query:"search" doc:"Matches guest first name, last name or email"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type ListBookingsResponse struct {
	Body struct {
		Success    bool          `json:"success"`
		Data       []BookingView `json:"data"`
		Pagination Pagination    `json:"pagination"`
	}
}

func (h *BookingHandler) HandleList(ctx context.Context, input *ListBookingsRequest) (*ListBookingsResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	f := booking.Filter{
		ProgramType: models.ProgramType(input.ProgramType),
		Search:      input.Search,
	}
	for _, s := range strings.Split(input.Status, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		status, err := models.ParseStatus(s)
		if err != nil {
			return nil, huma.Error400BadRequest("Validation failed", &huma.ErrorDetail{
				Message:  "Invalid booking status",
				Location: "query.status",
				Value:    s,
			})
		}
		f.Statuses = append(f.Statuses, status)
	}
	if input.StartDate != "" {
		t, err := booking.ParseDate(input.StartDate)
		if err != nil {
			return nil, dateError("query.startDate", input.StartDate)
		}
		f.StartFrom = &t
	}
	if input.EndDate != "" {
		t, err := booking.ParseDate(input.EndDate)
		if err != nil {
			return nil, dateError("query.endDate", input.EndDate)
		}
		f.StartTo = &t
	}

	page, err := h.svc.List(ctx, booking.ListQuery{Filter: f, Page: input.Page, Limit: input.Limit})
	if err != nil {
		return nil, handleError(err)
	}

	res := &ListBookingsResponse{}
	res.Body.Success = true
	res.Body.Data = viewsOf(page.Items)
	res.Body.Pagination = Pagination{Page: page.Page, Limit: page.Limit, Total: page.Total, Pages: page.Pages}
	return res, nil
}

type StatsRequest struct {
	auth.AuthInput
	StartDate string `query:"startDate" doc:"Revenue window start"`
	EndDate   string `query:"endDate" doc:"Revenue window end"`
}

type StatsResponse struct {
	Body struct {
		Success bool `json:"success"`
		Data    struct {
			StatusCounts     []booking.StatusStat     `json:"statusCounts"`
			UpcomingBookings []BookingView            `json:"upcomingBookings"`
			RevenueStats     []booking.MonthlyRevenue `json:"revenueStats,omitempty"`
		} `json:"data"`
	}
}

func (h *BookingHandler) HandleStats(ctx context.Context, input *StatsRequest) (*StatsResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	q := booking.StatsQuery{UpcomingDays: h.upcomingDays}
	if input.StartDate != "" {
		t, err := booking.ParseDate(input.StartDate)
		if err != nil {
			return nil, dateError("query.startDate", input.StartDate)
		}
		q.From = &t
	}
	if input.EndDate != "" {
		t, err := booking.ParseDate(input.EndDate)
		if err != nil {
			return nil, dateError("query.endDate", input.EndDate)
		}
		q.To = &t
	}

	stats, err := h.svc.Stats(ctx, q)
	if err != nil {
		return nil, handleError(err)
	}

	res := &StatsResponse{}
	res.Body.Success = true
	res.Body.Data.StatusCounts = stats.StatusCounts
	res.Body.Data.UpcomingBookings = viewsOf(stats.Upcoming)
	res.Body.Data.RevenueStats = stats.Revenue
	return res, nil
}

// Register wires the booking operations into api. Public operations are
// expected to sit behind the rate limiter.
func (h *BookingHandler) Register(api huma.API) {
	cookieAuth := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}

	huma.Register(api, huma.Operation{
		OperationID:   "create-booking",
		Method:        http.MethodPost,
		Path:          "/api/bookings",
		Summary:       "Submit a booking request",
		Tags:          []string{"Bookings"},
		DefaultStatus: http.StatusCreated,
	}, h.HandleCreate)

	huma.Register(api, huma.Operation{
		OperationID: "check-availability",
		Method:      http.MethodPost,
		Path:        "/api/bookings/check-availability",
		Summary:     "Check program capacity for a date range",
		Tags:        []string{"Bookings"},
	}, h.HandleCheckAvailability)

	huma.Register(api, huma.Operation{
		OperationID: "cancel-booking",
		Method:      http.MethodPut,
		Path:        "/api/bookings/{id}/cancel",
		Summary:     "Cancel a booking",
		Tags:        []string{"Bookings"},
	}, h.HandleCancel)

	huma.Get(api, "/api/bookings", h.HandleList, cookieAuth)
	huma.Get(api, "/api/bookings/stats", h.HandleStats, cookieAuth)
	huma.Get(api, "/api/bookings/{id}", h.HandleGet, cookieAuth)
	huma.Put(api, "/api/bookings/{id}", h.HandleUpdate, cookieAuth)
}
