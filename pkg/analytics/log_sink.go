package analytics

import (
	"context"
	"log/slog"
)

// LogSink writes events to the structured log. It is the default sink for
// local development.
type LogSink struct{}

// NewLogSink returns a sink backed by the default slog logger.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Publish logs the event.
func (*LogSink) Publish(_ context.Context, event Event) error {
	slog.Info(
		"storefront_event",
		"event_id", event.ID,
		"type", event.Type,
		"book_id", event.BookID,
		"quantity", event.Quantity,
		"cart_total", event.CartTotal,
	)
	return nil
}
