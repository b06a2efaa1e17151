// Package analytics publishes query events to Kafka without blocking the
// query path: events go through a buffered channel and are dropped when the
// buffer is full.
package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/saket-vr/permafind/pkg/kafka"
	"github.com/saket-vr/permafind/pkg/logger"
)

// QueryEvent records one executed query.
type QueryEvent struct {
	Terms     []string  `json:"terms"`
	Outcome   string    `json:"outcome"`
	Hits      int       `json:"hits"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMs float64   `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Collector drains a buffered event channel into a Kafka producer.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan QueryEvent
	done     chan struct{}
	logger   *slog.Logger
}

// NewCollector returns a Collector with the given buffer size.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan QueryEvent, bufferSize),
		done:     make(chan struct{}),
		logger:   logger.WithComponent("analytics-collector"),
	}
}

// Start launches the background publisher goroutine.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues one event, dropping it when the buffer is full.
func (c *Collector) Track(event QueryEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("query event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the publisher to drain.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event QueryEvent) {
	err := c.producer.Publish(ctx, kafka.Event{
		Key:   "query",
		Value: event,
	})
	if err != nil {
		c.logger.Error("failed to publish query event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
