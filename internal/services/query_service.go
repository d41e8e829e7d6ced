package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/baharkarakas/roamr-backend/internal/models"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
)

// QueryService resolves listing collections. Category and search are
// separate modes; results keep store insertion order.
type QueryService struct {
	listings repo.Listings
}

func NewQueryService(listings repo.Listings) *QueryService {
	return &QueryService{listings: listings}
}

func (s *QueryService) FindAll(ctx context.Context) (out []models.Listing, err error) {
	ctx, span := tracer.Start(ctx, "QueryService.FindAll")
	defer func() { finish(span, "find_all", err) }()
	return s.listings.List(ctx)
}

// FindByCategory matches tag exactly against each listing's category set.
// A tag outside the vocabulary matches nothing.
func (s *QueryService) FindByCategory(ctx context.Context, tag string) (out []models.Listing, err error) {
	ctx, span := tracer.Start(ctx, "QueryService.FindByCategory")
	span.SetAttributes(attribute.String("listing.category", tag))
	defer func() { finish(span, "find_by_category", err) }()

	if strings.TrimSpace(tag) == "" {
		return nil, models.NewValidationError("query", "category", "required")
	}
	if !models.IsCategory(tag) {
		return []models.Listing{}, nil
	}
	return s.listings.ListByCategory(ctx, tag)
}

// Search is a literal, case-insensitive substring match on title, location
// or country.
func (s *QueryService) Search(ctx context.Context, term string) (out []models.Listing, err error) {
	ctx, span := tracer.Start(ctx, "QueryService.Search")
	defer func() { finish(span, "search", err) }()

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, models.NewValidationError("query", "q", "search term is required")
	}
	return s.listings.Search(ctx, term)
}
