package services

import (
	"context"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/baharkarakas/roamr-backend/internal/metrics"
	"github.com/baharkarakas/roamr-backend/internal/models"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
)

const DefaultCascadeBatch = 100

// Cascade removes the reviews a deleted listing referenced. Running it again
// with the same ids deletes whatever is still there and nothing else.
type Cascade struct {
	reviews   repo.Reviews
	batchSize int
	log       *slog.Logger
}

func NewCascade(reviews repo.Reviews, opts ...Option) *Cascade {
	o := buildOptions(opts)
	return &Cascade{reviews: reviews, batchSize: o.batchSize, log: o.log}
}

// Run returns how many reviews were removed. When a batch fails the error is
// a *models.CascadeError whose Pending holds that batch and every later one.
func (c *Cascade) Run(ctx context.Context, listingID string, reviewIDs []string) (int, error) {
	ids := uniqueIDs(reviewIDs)
	ctx, span := tracer.Start(ctx, "Cascade.Run")
	span.SetAttributes(attribute.String("listing.id", listingID), attribute.Int("cascade.reviews", len(ids)))

	var (
		deleted int
		err     error
	)
	defer func() { finish(span, "cascade", err) }()

	for start := 0; start < len(ids); start += c.batchSize {
		end := min(start+c.batchSize, len(ids))
		gone, derr := c.reviews.DeleteByIDs(ctx, ids[start:end])
		if derr != nil {
			pending := slices.Clone(ids[start:])
			metrics.CascadePending.Add(float64(len(pending)))
			c.log.Error("cascade batch failed",
				"listing_id", listingID, "deleted", deleted, "pending", len(pending), "err", derr)
			err = &models.CascadeError{ListingID: listingID, Pending: pending, Err: derr}
			return deleted, err
		}
		deleted += len(gone)
	}

	metrics.CascadeDeleted.Add(float64(deleted))
	c.log.Info("cascade done", "listing_id", listingID, "referenced", len(ids), "deleted", deleted)
	return deleted, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
