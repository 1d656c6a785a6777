package analytics

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamSink appends events to a capped Redis stream that downstream
// consumers (dashboards, recommendation jobs) read at their own pace.
type StreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// StreamSinkConfig configures the Redis stream publisher.
type StreamSinkConfig struct {
	Addr     string
	Password string
	Stream   string
	MaxLen   int64
}

// NewStreamSink validates config and builds the sink.
func NewStreamSink(cfg StreamSinkConfig) (*StreamSink, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = "ikirezi:storefront:events"
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &StreamSink{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password}),
		stream: stream,
		maxLen: maxLen,
	}, nil
}

// Publish appends the event to the stream, trimming approximately to MaxLen.
func (s *StreamSink) Publish(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"event_id":   event.ID,
			"type":       event.Type,
			"book_id":    event.BookID,
			"quantity":   strconv.Itoa(event.Quantity),
			"cart_total": strconv.FormatFloat(event.CartTotal, 'f', 2, 64),
			"at":         event.At.Format(time.RFC3339Nano),
		},
	}).Err()
}
