// Package events publishes domain events. Publishing happens on the worker
// pool, and an event is dropped rather than waited on when the pool's queue
// is full, so a slow or absent broker never holds up a request.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/baharkarakas/roamr-backend/internal/metrics"
	"github.com/baharkarakas/roamr-backend/internal/worker"
)

const (
	ListingCreated = "listing.created"
	ListingUpdated = "listing.updated"
	ListingDeleted = "listing.deleted"
	ReviewCreated  = "review.created"
	ReviewDeleted  = "review.deleted"
)

const publishTimeout = 5 * time.Second

// Event is the envelope written to the broker.
type Event struct {
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type Dispatcher struct {
	pub  Publisher
	pool *worker.Pool
	log  *slog.Logger
}

func NewDispatcher(pub Publisher, pool *worker.Pool, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{pub: pub, pool: pool, log: log}
}

// Emit queues the event for publishing without blocking. Failures and
// drops are logged and counted.
func (d *Dispatcher) Emit(ctx context.Context, subject string, payload any) {
	data, err := json.Marshal(Event{Subject: subject, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		d.log.Error("event marshal", "subject", subject, "err", err)
		metrics.EventsPublished.WithLabelValues(subject, "error").Inc()
		return
	}
	// request cancellation must not drop the event
	base := context.WithoutCancel(ctx)
	err = d.pool.TrySubmit(func() {
		pctx, cancel := context.WithTimeout(base, publishTimeout)
		defer cancel()
		if err := d.pub.Publish(pctx, subject, data); err != nil {
			d.log.Warn("event publish", "subject", subject, "err", err)
			metrics.EventsPublished.WithLabelValues(subject, "error").Inc()
			return
		}
		metrics.EventsPublished.WithLabelValues(subject, "ok").Inc()
	})
	if err != nil {
		d.log.Warn("event dropped", "subject", subject, "err", err)
		metrics.EventsPublished.WithLabelValues(subject, "dropped").Inc()
	}
}
