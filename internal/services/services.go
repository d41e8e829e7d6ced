package services

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/baharkarakas/roamr-backend/internal/metrics"
	"github.com/baharkarakas/roamr-backend/internal/models"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
)

var tracer = otel.Tracer("github.com/baharkarakas/roamr-backend/internal/services")

// DetailCache holds expanded listings between reads. Get reports a version
// on a miss; Set must skip the write once Invalidate has run for that
// listing since the version was read.
type DetailCache interface {
	Get(ctx context.Context, id string) (d models.ListingDetail, version int64, ok bool, err error)
	Set(ctx context.Context, d models.ListingDetail, version int64) error
	Invalidate(ctx context.Context, ids ...string) error
}

// Emitter hands domain events to the broker without blocking the caller.
type Emitter interface {
	Emit(ctx context.Context, subject string, payload any)
}

type noCache struct{}

func (noCache) Get(context.Context, string) (models.ListingDetail, int64, bool, error) {
	return models.ListingDetail{}, 0, false, nil
}
func (noCache) Set(context.Context, models.ListingDetail, int64) error { return nil }
func (noCache) Invalidate(context.Context, ...string) error            { return nil }

type noEvents struct{}

func (noEvents) Emit(context.Context, string, any) {}

type options struct {
	cache     DetailCache
	events    Emitter
	log       *slog.Logger
	batchSize int
}

type Option func(*options)

func WithCache(c DetailCache) Option { return func(o *options) { o.cache = c } }
func WithEvents(e Emitter) Option    { return func(o *options) { o.events = e } }
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithCascadeBatch sets how many review ids one bulk delete carries.
func WithCascadeBatch(n int) Option { return func(o *options) { o.batchSize = n } }

func buildOptions(opts []Option) options {
	o := options{cache: noCache{}, events: noEvents{}, log: slog.Default(), batchSize: DefaultCascadeBatch}
	for _, fn := range opts {
		fn(&o)
	}
	if o.cache == nil {
		o.cache = noCache{}
	}
	if o.events == nil {
		o.events = noEvents{}
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.batchSize <= 0 {
		o.batchSize = DefaultCascadeBatch
	}
	return o
}

// auditor writes best-effort audit rows; a failed write is only logged.
type auditor struct {
	logs repo.AuditLogs
	log  *slog.Logger
}

func (a auditor) record(ctx context.Context, entityType, entityID, principalID, action string, details map[string]any) {
	if a.logs == nil {
		return
	}
	err := a.logs.Create(ctx, models.AuditLog{
		EntityType:  entityType,
		EntityID:    entityID,
		PrincipalID: principalID,
		Action:      action,
		Details:     details,
	})
	if err != nil {
		a.log.Warn("audit write failed", "entity_type", entityType, "entity_id", entityID, "action", action, "err", err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case models.IsValidation(err):
		return "invalid"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrDenied):
		return "denied"
	default:
		return "unavailable"
	}
}

// finish closes the span and counts the operation.
func finish(span trace.Span, op string, err error) {
	metrics.OperationsTotal.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
	}
	span.End()
}
