package services

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/events"
	"github.com/baharkarakas/roamr-backend/internal/models"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
)

type ReviewInput struct {
	Body   string `json:"body"`
	Rating int    `json:"rating"`
}

type ReviewService struct {
	reviews  repo.Reviews
	listings repo.Listings
	audit    auditor
	cache    DetailCache
	events   Emitter
	log      *slog.Logger
}

func NewReviewService(reviews repo.Reviews, listings repo.Listings, audit repo.AuditLogs, opts ...Option) *ReviewService {
	o := buildOptions(opts)
	return &ReviewService{
		reviews:  reviews,
		listings: listings,
		audit:    auditor{logs: audit, log: o.log},
		cache:    o.cache,
		events:   o.events,
		log:      o.log,
	}
}

// Create writes the review and appends it to the listing. If the listing
// disappears in between, the review is removed again.
func (s *ReviewService) Create(ctx context.Context, p auth.Principal, listingID string, in ReviewInput) (out models.Review, err error) {
	ctx, span := tracer.Start(ctx, "ReviewService.Create")
	span.SetAttributes(attribute.String("listing.id", listingID))
	defer func() { finish(span, "review_create", err) }()

	if p.Anonymous() {
		return models.Review{}, models.ErrDenied
	}
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return models.Review{}, err
	}

	out, err = s.reviews.Create(ctx, models.Review{AuthorID: p.ID, Body: in.Body, Rating: in.Rating})
	if err != nil {
		return models.Review{}, err
	}
	if err := s.listings.AppendReview(ctx, listingID, out.ID); err != nil {
		if _, derr := s.reviews.Delete(ctx, out.ID); derr != nil && !errors.Is(derr, models.ErrNotFound) {
			s.log.Error("orphaned review after failed append", "review_id", out.ID, "listing_id", listingID, "err", derr)
		}
		return models.Review{}, err
	}
	s.invalidate(ctx, listingID)

	s.log.Info("review created", "review_id", out.ID, "listing_id", listingID, "author_id", p.ID)
	s.audit.record(ctx, models.AuditEntityReview, out.ID, p.ID, "created", map[string]any{"listing_id": listingID, "rating": out.Rating})
	s.events.Emit(ctx, events.ReviewCreated, map[string]any{"listing_id": listingID, "review": out})
	return out, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (out models.Review, err error) {
	ctx, span := tracer.Start(ctx, "ReviewService.Get")
	defer func() { finish(span, "review_get", err) }()
	return s.reviews.GetByID(ctx, id)
}

// Delete lets the author remove a review. The reference is pulled from the
// listing first so a failure never leaves a dangling id behind.
func (s *ReviewService) Delete(ctx context.Context, p auth.Principal, listingID, reviewID string) (err error) {
	ctx, span := tracer.Start(ctx, "ReviewService.Delete")
	span.SetAttributes(attribute.String("listing.id", listingID), attribute.String("review.id", reviewID))
	defer func() { finish(span, "review_delete", err) }()

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !containsID(l.ReviewIDs, reviewID) {
		return models.NotFoundf("review", reviewID)
	}
	if p.Anonymous() || rv.AuthorID != p.ID {
		return models.ErrDenied
	}

	if err := s.listings.RemoveReview(ctx, listingID, reviewID); err != nil {
		return err
	}
	s.invalidate(ctx, listingID)
	if _, err := s.reviews.Delete(ctx, reviewID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}

	s.log.Info("review deleted", "review_id", reviewID, "listing_id", listingID, "principal_id", p.ID)
	s.audit.record(ctx, models.AuditEntityReview, reviewID, p.ID, "deleted", map[string]any{"listing_id": listingID})
	s.events.Emit(ctx, events.ReviewDeleted, map[string]any{"listing_id": listingID, "review_id": reviewID})
	return nil
}

func (s *ReviewService) invalidate(ctx context.Context, listingID string) {
	if err := s.cache.Invalidate(ctx, listingID); err != nil {
		s.log.Warn("listing cache invalidate", "listing_id", listingID, "err", err)
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
