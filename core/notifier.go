package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const startLayout = "1/2/2006, 3:04:05 PM"

// Sender submits a single text message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, to string, body string) (string, error)
}

// Notifier dispatches reminders without blocking the caller. The delivery
// outcome is logged and never reported back.
type Notifier interface {
	Notify(ctx context.Context, event Event)
	Close()
}

type notifier struct {
	sender   Sender
	location *time.Location
	metrics  *NotifyMetrics
	inflight sync.WaitGroup
}

func NewNotifier(sender Sender, location *time.Location) Notifier {
	if location == nil {
		location = time.Local
	}

	return &notifier{
		sender:   sender,
		location: location,
		metrics:  NewNotifyMetrics(),
	}
}

func FormatReminder(event Event, location *time.Location) string {
	return fmt.Sprintf("Reminder: You have an upcoming event: %s at %s. Click here to join: %s",
		event.Title, event.Start.In(location).Format(startLayout), event.Url)
}

func (n *notifier) Notify(ctx context.Context, event Event) {
	body := FormatReminder(event, n.location)

	// the request or sweep context may end before the provider answers
	ctx = context.WithoutCancel(ctx)

	n.inflight.Add(1)

	go func() {
		defer n.inflight.Done()

		logger := log.Ctx(ctx).With().Str("component", "notifier").Str("event_id", event.Id).Logger()

		sid, err := n.sender.Send(ctx, event.PhoneNumber, body)
		n.metrics.Observe(ctx, err)

		if err != nil {
			logger.Error().Err(err).Msg("error sending sms")
			return
		}

		logger.Info().Str("sid", sid).Msg("message sent")
	}()
}

// Close waits for the dispatches still in flight.
func (n *notifier) Close() {
	n.inflight.Wait()
}

/*

 */

type NotifyMetrics struct {
	sent   metric.Int64Counter
	failed metric.Int64Counter
}

func NewNotifyMetrics() *NotifyMetrics {
	meter := otel.Meter("event-reminder/notifier")

	sent, _ := meter.Int64Counter("notifier.messages.sent")
	failed, _ := meter.Int64Counter("notifier.messages.failed")

	return &NotifyMetrics{sent: sent, failed: failed}
}

func (m *NotifyMetrics) Observe(ctx context.Context, err error) {
	attrs := metric.WithAttributes(attribute.String("notifier.channel", "sms"))

	if err != nil {
		m.failed.Add(ctx, 1, attrs)
		return
	}

	m.sent.Add(ctx, 1, attrs)
}
