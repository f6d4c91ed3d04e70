package notifier

import (
	"context"
	"fmt"

	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers one message to a guest.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("guest email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

// GuestNotifier sends confirmation and update emails to the guest.
type GuestNotifier struct {
	mailer Mailer
}

func NewGuestNotifier(mailer Mailer) *GuestNotifier {
	return &GuestNotifier{mailer: mailer}
}

func (n *GuestNotifier) NotifyCreated(ctx context.Context, b models.Booking) error {
	return n.mailer.Send(ctx, Confirmation(b))
}

func (n *GuestNotifier) NotifyStatusChanged(ctx context.Context, b models.Booking, _ models.Status) error {
	return n.mailer.Send(ctx, Message{
		To:      b.PersonalInfo.Email,
		Subject: "Booking Status Update",
		Text: fmt.Sprintf("Your booking status has been updated to: %s\nBooking Reference: %s\nProgram: %s",
			b.Status, b.Reference(), b.Program.Name),
	})
}

func (n *GuestNotifier) NotifyCancelled(ctx context.Context, b models.Booking, reason string) error {
	return n.mailer.Send(ctx, Message{
		To:      b.PersonalInfo.Email,
		Subject: "Booking Cancelled",
		Text: fmt.Sprintf("Dear %s %s,\nyour booking %s for %s has been cancelled.\nReason: %s",
			b.PersonalInfo.FirstName, b.PersonalInfo.LastName, b.Reference(), b.Program.Name, reason),
	})
}

// Confirmation renders the email a guest receives after submitting a booking.
func Confirmation(b models.Booking) Message {
	p := b.Program
	return Message{
		To:      b.PersonalInfo.Email,
		Subject: "Booking Confirmation",
		Text: fmt.Sprintf(`Dear %s %s,

Thank you for your booking request! We have received your submission and will contact you soon to confirm your reservation.

Booking Reference: %s
Program: %s
Duration: %d days
Start Date: %s
End Date: %s
Participants: %d (%d adults, %d children)
`,
			b.PersonalInfo.FirstName, b.PersonalInfo.LastName,
			b.Reference(),
			p.Name,
			p.DurationDays,
			p.StartDate.Format("2006-01-02"),
			p.EndDate.Format("2006-01-02"),
			b.TotalParticipants(), p.Participants.Adults, p.Participants.Children,
		),
	}
}
