package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
)

// NotificationSender delivers rendered text to a user. Implementations are
// best effort.
type NotificationSender interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType domain.EventType, text string) error
}

// LogSender writes notifications to the log.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Notify(_ context.Context, userID uuid.UUID, eventType domain.EventType, text string) error {
	s.log.Info("notification",
		slog.String("user_id", userID.String()),
		slog.String("event", string(eventType)),
		slog.String("text", text),
	)
	return nil
}

// Notification is one rendered message for one recipient.
type Notification struct {
	UserID uuid.UUID
	Text   string
}

// Render builds the messages an event produces. Events nobody needs to hear
// about render to nothing.
func Render(ev domain.Event) []Notification {
	n := ev.BookingNumber
	var out []Notification

	toCustomer := func(format string, args ...any) {
		out = append(out, Notification{UserID: ev.CustomerID, Text: fmt.Sprintf(format, args...)})
	}
	toPandit := func(format string, args ...any) {
		if ev.PanditID != nil {
			out = append(out, Notification{UserID: *ev.PanditID, Text: fmt.Sprintf(format, args...)})
		}
	}

	switch ev.Type {
	case domain.EventBookingCreated:
		toCustomer("Booking %s created. Complete the payment of Rs %d to confirm.", n, ev.Amount)
	case domain.EventPaymentReceived:
		toCustomer("Payment of Rs %d received for booking %s.", ev.Amount, n)
	case domain.EventPanditRequested:
		toPandit("New booking request %s for %s.", n, ev.EventDate.Format("02 Jan 2006"))
	case domain.EventBookingConfirmed:
		toCustomer("Your pandit accepted booking %s.", n)
	case domain.EventBookingRejected:
		toCustomer("Your pandit declined booking %s. Any payment will be refunded in full.", n)
	case domain.EventTravelBooked:
		toCustomer("Travel for booking %s is arranged.", n)
		toPandit("Travel for booking %s is booked. Check the details in the app.", n)
	case domain.EventProgressUpdated:
		toCustomer("Booking %s: %s.", n, progressText(ev.Status))
	case domain.EventBookingCompleted:
		toCustomer("Booking %s is complete. Thank you.", n)
	case domain.EventCancellationRequested:
		toCustomer("Cancellation request for booking %s received.", n)
	case domain.EventCancellationRejected:
		toCustomer("Cancellation request for booking %s was declined.", n)
	case domain.EventBookingCancelled:
		toCustomer("Booking %s was cancelled.", n)
		toPandit("Booking %s on %s was cancelled.", n, ev.EventDate.Format("02 Jan 2006"))
	case domain.EventRefundInitiated:
		toCustomer("Refund of Rs %d for booking %s has been initiated.", ev.Amount, n)
	case domain.EventRefundSettled:
		toCustomer("Refund for booking %s is complete.", n)
	case domain.EventPayoutCompleted:
		toPandit("Payout of Rs %d for booking %s has been sent.", ev.Amount, n)
	}

	return out
}

func progressText(s domain.Status) string {
	switch s {
	case domain.StatusPanditEnRoute:
		return "your pandit is on the way"
	case domain.StatusPanditArrived:
		return "your pandit has arrived"
	case domain.StatusPujaInProgress:
		return "the puja has started"
	}
	return string(s)
}

// Notifier renders events and hands them to a NotificationSender.
type Notifier struct {
	sender NotificationSender
}

func NewNotifier(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) Name() string { return "notify" }

func (n *Notifier) Send(ctx context.Context, ev domain.Event) error {
	var errs []error
	for _, msg := range Render(ev) {
		if err := n.sender.Notify(ctx, msg.UserID, ev.Type, msg.Text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
