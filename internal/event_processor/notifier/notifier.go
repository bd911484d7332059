// Package notifier composes passenger notifications for booking status changes.
// Delivery is a structured log record; there is no mail transport.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/flight-booking-engine/internal/domain/shared"
)

// Email is a composed notification
type Email struct {
	To      string
	Subject string
	Body    string
}

var bodies = map[shared.EventType]*template.Template{
	shared.EventBookingConfirmed: template.Must(template.New("confirmed").Parse(
		`Dear {{.PassengerName}},

Your booking {{.TicketNumber}} is confirmed.
{{.Airline}} {{.FlightNumber}} {{.OriginCode}} -> {{.DestCode}}, departing {{.DepartureTime.Format "02 Jan 2006 15:04"}} UTC.
Amount paid: INR {{.Price.StringFixed 2}}

Your e-ticket can be downloaded from your bookings page.`)),
	shared.EventBookingCancelled: template.Must(template.New("cancelled").Parse(
		`Dear {{.PassengerName}},

Your booking {{.TicketNumber}} on {{.Airline}} {{.FlightNumber}} has been cancelled.
INR {{.Price.StringFixed 2}} has been refunded to your wallet.`)),
}

var subjects = map[shared.EventType]string{
	shared.EventBookingConfirmed: "Booking confirmed: %s",
	shared.EventBookingCancelled: "Booking cancelled: %s",
}

// Compose renders the email for a booking event
func Compose(eventType shared.EventType, notice shared.BookingNotice) (*Email, error) {
	tmpl, ok := bodies[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownEventType, eventType)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, notice); err != nil {
		return nil, fmt.Errorf("failed to render %s notification: %w", eventType, err)
	}

	to := notice.PassengerEmail
	if to == "" {
		to = notice.UserEmail
	}

	return &Email{
		To:      to,
		Subject: fmt.Sprintf(subjects[eventType], notice.TicketNumber),
		Body:    body.String(),
	}, nil
}

// LogNotifier writes each composed email to the log
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyBooking(ctx context.Context, eventType shared.EventType, notice shared.BookingNotice) error {
	email, err := Compose(eventType, notice)
	if err != nil {
		return err
	}

	n.logger.InfoContext(ctx, "Sending booking notification",
		"to", email.To,
		"subject", email.Subject,
		"booking_id", notice.BookingID.String(),
		"body", email.Body,
	)
	return nil
}
