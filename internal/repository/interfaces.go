package repository

import (
	"context"

	"github.com/baharkarakas/roamr-backend/internal/models"
)

// Implementations return models.ErrNotFound for missing rows and
// models.ErrStoreUnavailable for any other storage failure.

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

type Listings interface {
	Create(ctx context.Context, l models.Listing) (models.Listing, error)
	GetByID(ctx context.Context, id string) (models.Listing, error)
	// GetDetail resolves owner, reviews and each review's author.
	GetDetail(ctx context.Context, id string) (models.ListingDetail, error)
	// Update applies patch and, when img is non-nil, replaces the image in the same write.
	Update(ctx context.Context, id string, patch models.ListingPatch, img *models.Image) (models.Listing, error)
	// Delete removes the listing and returns the row as it was at deletion time.
	Delete(ctx context.Context, id string) (models.Listing, error)

	List(ctx context.Context) ([]models.Listing, error)
	ListByCategory(ctx context.Context, tag string) ([]models.Listing, error)
	// Search matches term literally and case-insensitively against title, location or country.
	Search(ctx context.Context, term string) ([]models.Listing, error)

	AppendReview(ctx context.Context, listingID, reviewID string) error
	RemoveReview(ctx context.Context, listingID, reviewID string) error
}

type Reviews interface {
	Create(ctx context.Context, r models.Review) (models.Review, error)
	GetByID(ctx context.Context, id string) (models.Review, error)
	Delete(ctx context.Context, id string) (models.Review, error)
	// DeleteByIDs removes every listed review that still exists and returns the ids it removed.
	DeleteByIDs(ctx context.Context, ids []string) ([]string, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Set bundles one implementation of every repository.
type Set struct {
	Users     Users
	Listings  Listings
	Reviews   Reviews
	AuditLogs AuditLogs
}
