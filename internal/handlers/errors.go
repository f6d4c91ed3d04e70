package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/retreat-booking-api/internal/booking"
)

const serverErrorMessage = "Server error. Please try again later."

// handleError maps booking errors to API errors. Unexpected errors are
// already logged by the service and are reported without detail.
func handleError(err error) error {
	var verr *booking.ValidationError
	var terr *booking.TransitionError

	switch {
	case errors.As(err, &verr):
		details := make([]error, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, &huma.ErrorDetail{
				Message:  f.Reason,
				Location: "body." + f.Field,
				Value:    f.Value,
			})
		}
		return huma.Error400BadRequest("Validation failed", details...)
	case errors.As(err, &terr):
		return huma.Error400BadRequest("Cannot change booking from " + string(terr.From) + " to " + string(terr.To))
	case errors.Is(err, booking.ErrInvalidRange):
		return huma.Error400BadRequest("End date must be after start date")
	case errors.Is(err, booking.ErrNotFound):
		return huma.Error404NotFound("Booking not found")
	case errors.Is(err, booking.ErrConflict):
		return huma.Error409Conflict("Booking was modified by another request, please retry")
	}
	return huma.Error500InternalServerError(serverErrorMessage)
}

// dateError reports an unparsable query or body date.
func dateError(location, value string) error {
	return huma.Error400BadRequest("Validation failed", &huma.ErrorDetail{
		Message:  "Please provide a valid date",
		Location: location,
		Value:    value,
	})
}
