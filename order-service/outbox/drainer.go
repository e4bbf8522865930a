package outbox

import (
	"context"
	"log"
	"time"

	"github.com/jl681/order-processing/order-service/domain"
	"github.com/jl681/order-processing/shared/events"
	"github.com/jl681/order-processing/shared/models"
	"github.com/jl681/order-processing/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// DrainerConfig tunes the outbox drainer
type DrainerConfig struct {
	// Interval between drain cycles.
	Interval time.Duration

	// BatchSize caps the number of events loaded per cycle.
	BatchSize int

	// MaxBackoff caps the exponential backoff applied after failed cycles,
	// to avoid hot-looping against a down broker.
	MaxBackoff time.Duration
}

// Drainer is the background process that re-attempts delivery of queued
// events in creation order. It runs on its own schedule; no saga blocks on
// its progress. Running it redundantly risks duplicate delivery attempts,
// which at-least-once semantics already tolerate.
type Drainer struct {
	outbox domain.OutboxRepository
	broker events.Publisher
	cfg    DrainerConfig
}

// NewDrainer creates a drainer over the outbox store and broker publisher
func NewDrainer(outbox domain.OutboxRepository, broker events.Publisher, cfg DrainerConfig) *Drainer {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 2 * time.Minute
	}
	return &Drainer{
		outbox: outbox,
		broker: broker,
		cfg:    cfg,
	}
}

// Start runs drain cycles until the context is canceled. Failed cycles back
// off exponentially up to MaxBackoff; a successful cycle resets the delay.
func (d *Drainer) Start(ctx context.Context) {
	delay := d.cfg.Interval

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if _, err := d.RunOnce(ctx); err != nil {
				log.Printf("outbox drain cycle failed: %v", err)
				delay *= 2
				if delay > d.cfg.MaxBackoff {
					delay = d.cfg.MaxBackoff
				}
			} else {
				delay = d.cfg.Interval
			}
			timer.Reset(delay)
		}
	}
}

// RunOnce drains one batch of pending events, oldest first. It stops at the
// first delivery failure so creation order is preserved, leaving the failed
// event and everything after it for the next cycle. It returns the number of
// events delivered and removed.
func (d *Drainer) RunOnce(ctx context.Context) (int, error) {
	rows, err := d.outbox.FindPending(ctx, d.cfg.BatchSize)
	if err != nil {
		return 0, errors.Wrap(err, "failed to load pending events")
	}

	delivered := 0
	for _, row := range rows {
		if err := d.broker.Publish(ctx, rowToEvent(row)); err != nil {
			recordDrain(ctx, "failure")
			return delivered, errors.Wrapf(err, "failed to deliver event %s", row.ID)
		}

		if err := d.outbox.Delete(ctx, row.ID); err != nil {
			// The event was delivered but not removed; the next cycle
			// redelivers it. Consumers dedupe by event id.
			recordDrain(ctx, "redelivery")
			return delivered, errors.Wrapf(err, "failed to remove delivered event %s", row.ID)
		}

		recordDrain(ctx, "success")
		delivered++
	}

	return delivered, nil
}

// rowToEvent rebuilds the broker event from a queued outbox row. The queued
// payload doubles as the event-type marker for order events.
func rowToEvent(row *domain.OutboxEvent) *events.Event {
	return &events.Event{
		ID:        row.ID,
		Key:       models.ID(row.Key),
		Topic:     events.Topic(row.Topic),
		EventType: string(row.Payload),
		Data:      row.Payload,
		Metadata:  make(events.Metadata),
		Timestamp: row.CreatedAt,
	}
}

func recordDrain(ctx context.Context, status string) {
	telemetry.RecordCounter(ctx, "outbox_drained_total", "Total outbox drain deliveries", 1,
		attribute.String("status", status),
	)
}
