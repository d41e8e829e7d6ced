package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/events"
	"github.com/baharkarakas/roamr-backend/internal/models"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
)

// ListingInput is what a principal may set when creating a listing. The
// owner always comes from the principal.
type ListingInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Location    string   `json:"location"`
	Country     string   `json:"country"`
	Category    []string `json:"category"`
}

// EditView backs the owner's edit form.
type EditView struct {
	Listing    models.Listing `json:"listing"`
	PreviewURL string         `json:"preview_url"`
}

type ListingService struct {
	listings repo.Listings
	cascade  *Cascade
	audit    auditor
	cache    DetailCache
	events   Emitter
	log      *slog.Logger
}

func NewListingService(listings repo.Listings, reviews repo.Reviews, audit repo.AuditLogs, opts ...Option) *ListingService {
	o := buildOptions(opts)
	return &ListingService{
		listings: listings,
		cascade:  NewCascade(reviews, opts...),
		audit:    auditor{logs: audit, log: o.log},
		cache:    o.cache,
		events:   o.events,
		log:      o.log,
	}
}

func (s *ListingService) Create(ctx context.Context, p auth.Principal, in ListingInput, img *models.Image) (out models.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingService.Create")
	defer func() { finish(span, "listing_create", err) }()

	if p.Anonymous() {
		return models.Listing{}, models.ErrDenied
	}
	if err := models.ValidateImage(img); err != nil {
		return models.Listing{}, err
	}
	l := models.Listing{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Country:     in.Country,
		Category:    in.Category,
		OwnerID:     p.ID,
	}
	if img != nil {
		l.Image = *img
	}

	out, err = s.listings.Create(ctx, l)
	if err != nil {
		return models.Listing{}, err
	}
	span.SetAttributes(attribute.String("listing.id", out.ID))
	s.log.Info("listing created", "listing_id", out.ID, "owner_id", out.OwnerID)
	s.audit.record(ctx, models.AuditEntityListing, out.ID, p.ID, "created", map[string]any{"title": out.Title})
	s.events.Emit(ctx, events.ListingCreated, out)
	return out, nil
}

// Get returns the listing with owner, reviews and review authors resolved.
func (s *ListingService) Get(ctx context.Context, id string) (out models.ListingDetail, err error) {
	ctx, span := tracer.Start(ctx, "ListingService.Get")
	span.SetAttributes(attribute.String("listing.id", id))
	defer func() { finish(span, "listing_get", err) }()

	d, version, ok, cerr := s.cache.Get(ctx, id)
	if cerr != nil {
		s.log.Warn("listing cache read", "listing_id", id, "err", cerr)
	} else if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return d, nil
	}

	out, err = s.listings.GetDetail(ctx, id)
	if err != nil {
		return models.ListingDetail{}, err
	}
	// without a version from the read, a write could not be checked
	if cerr == nil {
		if cerr := s.cache.Set(ctx, out, version); cerr != nil {
			s.log.Warn("listing cache write", "listing_id", id, "err", cerr)
		}
	}
	return out, nil
}

// Edit loads a listing for its owner's edit form.
func (s *ListingService) Edit(ctx context.Context, p auth.Principal, id string) (out EditView, err error) {
	ctx, span := tracer.Start(ctx, "ListingService.Edit")
	span.SetAttributes(attribute.String("listing.id", id))
	defer func() { finish(span, "listing_edit", err) }()

	l, err := s.owned(ctx, p, id)
	if err != nil {
		return EditView{}, err
	}
	return EditView{Listing: l, PreviewURL: PreviewURL(l.Image.URL)}, nil
}

// Update applies patch for the owner. A non-nil img replaces url and filename
// in the same write; a nil img leaves the stored pair alone.
func (s *ListingService) Update(ctx context.Context, p auth.Principal, id string, patch *models.ListingPatch, img *models.Image) (out models.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingService.Update")
	span.SetAttributes(attribute.String("listing.id", id), attribute.Bool("listing.image_replaced", img != nil))
	defer func() { finish(span, "listing_update", err) }()

	if _, err := s.owned(ctx, p, id); err != nil {
		return models.Listing{}, err
	}
	if patch.IsEmpty() {
		return models.Listing{}, models.NewValidationError("listing", "listing", "send valid data for listing")
	}

	out, err = s.listings.Update(ctx, id, *patch, img)
	if err != nil {
		return models.Listing{}, err
	}
	s.invalidate(ctx, id)
	s.log.Info("listing updated", "listing_id", id, "principal_id", p.ID, "image_replaced", img != nil)
	s.audit.record(ctx, models.AuditEntityListing, id, p.ID, "updated", map[string]any{"fields": patchFields(patch, img)})
	s.events.Emit(ctx, events.ListingUpdated, out)
	return out, nil
}

// Delete removes the listing and then cascades to the reviews it referenced
// at deletion time. On a cascade failure the deleted listing is returned
// together with a *models.CascadeError.
func (s *ListingService) Delete(ctx context.Context, p auth.Principal, id string) (out models.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingService.Delete")
	span.SetAttributes(attribute.String("listing.id", id))
	defer func() { finish(span, "listing_delete", err) }()

	if _, err := s.owned(ctx, p, id); err != nil {
		return models.Listing{}, err
	}

	out, err = s.listings.Delete(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	s.invalidate(ctx, id)
	s.log.Info("listing deleted", "listing_id", id, "principal_id", p.ID, "reviews", len(out.ReviewIDs))

	deleted, cerr := s.cascade.Run(ctx, out.ID, out.ReviewIDs)
	details := map[string]any{"title": out.Title, "reviews_deleted": deleted}
	var ce *models.CascadeError
	if errors.As(cerr, &ce) {
		details["reviews_pending"] = ce.Pending
	}
	s.audit.record(ctx, models.AuditEntityListing, id, p.ID, "deleted", details)
	s.events.Emit(ctx, events.ListingDeleted, map[string]any{"listing_id": id, "review_ids": out.ReviewIDs})
	return out, cerr
}

// RetryCascade re-runs the cascade for a listing that is already gone, using
// the ids a previous CascadeError reported as pending.
func (s *ListingService) RetryCascade(ctx context.Context, listingID string, pending []string) (int, error) {
	return s.cascade.Run(ctx, listingID, pending)
}

// owned loads the listing and applies the ownership guard.
func (s *ListingService) owned(ctx context.Context, p auth.Principal, id string) (models.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	if err := auth.Authorize(p, l).Err(); err != nil {
		s.log.Info("listing mutation denied", "listing_id", id, "principal_id", p.ID)
		return models.Listing{}, err
	}
	return l, nil
}

func (s *ListingService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("listing cache invalidate", "listing_id", id, "err", err)
	}
}

// PreviewURL asks the image host for a 250px-wide rendition.
func PreviewURL(url string) string {
	return strings.Replace(url, "/upload", "/upload/w_250", 1)
}

func patchFields(p *models.ListingPatch, img *models.Image) []string {
	var f []string
	if p.Title != nil {
		f = append(f, "title")
	}
	if p.Description != nil {
		f = append(f, "description")
	}
	if p.Price != nil {
		f = append(f, "price")
	}
	if p.Location != nil {
		f = append(f, "location")
	}
	if p.Country != nil {
		f = append(f, "country")
	}
	if p.Category != nil {
		f = append(f, "category")
	}
	if img != nil {
		f = append(f, "image")
	}
	return f
}
