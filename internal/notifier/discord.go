package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/retreat-booking-api/internal/models"
)

// ChannelSender is the part of *discordgo.Session used for staff alerts.
type ChannelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts staff alerts into a Discord channel.
type DiscordNotifier struct {
	session   ChannelSender
	channelID string
}

func NewDiscordNotifier(session ChannelSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) send(ctx context.Context, message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	return nil
}

func (n *DiscordNotifier) NotifyCreated(ctx context.Context, b models.Booking) error {
	return n.send(ctx, CreatedAlert(b))
}

func (n *DiscordNotifier) NotifyStatusChanged(ctx context.Context, b models.Booking, previous models.Status) error {
	return n.send(ctx, fmt.Sprintf("🔄 **Booking %s**\n**Guest:** %s %s\n**Status:** %s → %s",
		b.Reference(),
		b.PersonalInfo.FirstName,
		b.PersonalInfo.LastName,
		previous,
		b.Status,
	))
}

func (n *DiscordNotifier) NotifyCancelled(ctx context.Context, b models.Booking, reason string) error {
	return n.send(ctx, fmt.Sprintf("❌ **Booking %s cancelled**\n**Guest:** %s %s (%s)\n**Program:** %s\n**Reason:** %s",
		b.Reference(),
		b.PersonalInfo.FirstName,
		b.PersonalInfo.LastName,
		b.PersonalInfo.Email,
		b.Program.Name,
		reason,
	))
}

// CreatedAlert renders the staff message for a new booking.
func CreatedAlert(b models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎉 **New Booking %s**\n", b.Reference())
	fmt.Fprintf(&sb, "**Name:** %s %s\n", b.PersonalInfo.FirstName, b.PersonalInfo.LastName)
	fmt.Fprintf(&sb, "**Email:** %s\n", b.PersonalInfo.Email)
	fmt.Fprintf(&sb, "**Phone:** %s\n", b.PersonalInfo.Phone)
	fmt.Fprintf(&sb, "**Program:** %s (%s)\n", b.Program.Name, b.Program.Type)
	fmt.Fprintf(&sb, "**Dates:** %s - %s\n", b.Program.StartDate.Format("2006-01-02"), b.Program.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "**Duration:** %d days\n", b.Program.DurationDays)
	fmt.Fprintf(&sb, "**Participants:** %d\n", b.TotalParticipants())
	fmt.Fprintf(&sb, "**Total Amount:** $%.2f", b.BookingAmount())
	if b.Program.SpecialRequests != "" {
		fmt.Fprintf(&sb, "\n**Special Requests:** %s", b.Program.SpecialRequests)
	}
	return sb.String()
}
