// Package memory keeps every entity in-process. Listings are returned in
// insertion order, matching the Postgres store's seq ordering.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/baharkarakas/roamr-backend/internal/models"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
	"github.com/google/uuid"
)

// Store backs all repository interfaces with maps guarded by one lock.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	names    map[string]string // username -> user ID
	listings map[string]models.Listing
	order    []string
	reviews  map[string]models.Review
	audit    []models.AuditLog
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]models.User),
		names:    make(map[string]string),
		listings: make(map[string]models.Listing),
		reviews:  make(map[string]models.Review),
	}
}

func (s *Store) Repositories() repo.Set {
	return repo.Set{
		Users:     (*usersRepo)(s),
		Listings:  (*listingsRepo)(s),
		Reviews:   (*reviewsRepo)(s),
		AuditLogs: (*auditLogsRepo)(s),
	}
}

// AuditTrail returns a copy of the recorded audit entries.
func (s *Store) AuditTrail() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.audit)
}

func cloneListing(l models.Listing) models.Listing {
	l.Category = slices.Clone(l.Category)
	l.ReviewIDs = slices.Clone(l.ReviewIDs)
	if l.ReviewIDs == nil {
		l.ReviewIDs = []string{}
	}
	if l.Price != nil {
		p := *l.Price
		l.Price = &p
	}
	return l
}

// ---------- users ----------

type usersRepo Store

func (r *usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.names[u.Username]; taken {
		return models.User{}, models.NewValidationError("user", "username", "already taken")
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return models.User{}, models.NewValidationError("user", "email", "already taken")
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = u
	s.names[u.Username] = u.ID
	return u, nil
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, models.NotFoundf("user", id)
	}
	return u, nil
}

func (r *usersRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.names[username]
	if !ok {
		return models.User{}, models.NotFoundf("user", username)
	}
	return s.users[id], nil
}

// ---------- listings ----------

type listingsRepo Store

func (r *listingsRepo) Create(_ context.Context, l models.Listing) (models.Listing, error) {
	l.Normalize()
	if err := l.Validate(); err != nil {
		return models.Listing{}, err
	}
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[l.OwnerID]; !ok {
		return models.Listing{}, models.NewValidationError("listing", "owner", "unknown user")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	l = cloneListing(l)
	s.listings[l.ID] = l
	s.order = append(s.order, l.ID)
	return cloneListing(l), nil
}

func (r *listingsRepo) GetByID(_ context.Context, id string) (models.Listing, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return models.Listing{}, models.NotFoundf("listing", id)
	}
	return cloneListing(l), nil
}

func (r *listingsRepo) GetDetail(_ context.Context, id string) (models.ListingDetail, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return models.ListingDetail{}, models.NotFoundf("listing", id)
	}
	d := models.ListingDetail{
		Listing: cloneListing(l),
		Owner:   s.users[l.OwnerID],
		Reviews: []models.ReviewDetail{},
	}
	for _, rid := range l.ReviewIDs {
		rv, ok := s.reviews[rid]
		if !ok {
			continue
		}
		d.Reviews = append(d.Reviews, models.ReviewDetail{Review: rv, Author: s.users[rv.AuthorID]})
	}
	return d, nil
}

func (r *listingsRepo) Update(_ context.Context, id string, patch models.ListingPatch, img *models.Image) (models.Listing, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return models.Listing{}, err
	}
	if err := models.ValidateImage(img); err != nil {
		return models.Listing{}, err
	}
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return models.Listing{}, models.NotFoundf("listing", id)
	}
	l = cloneListing(l)
	patch.Apply(&l)
	if img != nil {
		l.Image = *img
	}
	l.UpdatedAt = time.Now().UTC()
	s.listings[id] = l
	return cloneListing(l), nil
}

func (r *listingsRepo) Delete(_ context.Context, id string) (models.Listing, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return models.Listing{}, models.NotFoundf("listing", id)
	}
	delete(s.listings, id)
	s.order = slices.DeleteFunc(s.order, func(item string) bool { return item == id })
	return cloneListing(l), nil
}

func (r *listingsRepo) List(_ context.Context) ([]models.Listing, error) {
	return (*Store)(r).filter(func(models.Listing) bool { return true }), nil
}

func (r *listingsRepo) ListByCategory(_ context.Context, tag string) ([]models.Listing, error) {
	return (*Store)(r).filter(func(l models.Listing) bool { return l.HasCategory(tag) }), nil
}

func (r *listingsRepo) Search(_ context.Context, term string) ([]models.Listing, error) {
	needle := strings.ToLower(term)
	return (*Store)(r).filter(func(l models.Listing) bool {
		return strings.Contains(strings.ToLower(l.Title), needle) ||
			strings.Contains(strings.ToLower(l.Location), needle) ||
			strings.Contains(strings.ToLower(l.Country), needle)
	}), nil
}

func (r *listingsRepo) AppendReview(_ context.Context, listingID, reviewID string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return models.NotFoundf("listing", listingID)
	}
	l.ReviewIDs = append(slices.Clone(l.ReviewIDs), reviewID)
	l.UpdatedAt = time.Now().UTC()
	s.listings[listingID] = l
	return nil
}

func (r *listingsRepo) RemoveReview(_ context.Context, listingID, reviewID string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return models.NotFoundf("listing", listingID)
	}
	l.ReviewIDs = slices.DeleteFunc(slices.Clone(l.ReviewIDs), func(id string) bool { return id == reviewID })
	l.UpdatedAt = time.Now().UTC()
	s.listings[listingID] = l
	return nil
}

func (s *Store) filter(keep func(models.Listing) bool) []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Listing, 0, len(s.order))
	for _, id := range s.order {
		if l, ok := s.listings[id]; ok && keep(l) {
			out = append(out, cloneListing(l))
		}
	}
	return out
}

// ---------- reviews ----------

type reviewsRepo Store

func (r *reviewsRepo) Create(_ context.Context, rv models.Review) (models.Review, error) {
	if err := rv.Validate(); err != nil {
		return models.Review{}, err
	}
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[rv.AuthorID]; !ok {
		return models.Review{}, models.NewValidationError("review", "author", "unknown user")
	}
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	rv.CreatedAt = time.Now().UTC()
	s.reviews[rv.ID] = rv
	return rv, nil
}

func (r *reviewsRepo) GetByID(_ context.Context, id string) (models.Review, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	rv, ok := s.reviews[id]
	if !ok {
		return models.Review{}, models.NotFoundf("review", id)
	}
	return rv, nil
}

func (r *reviewsRepo) Delete(_ context.Context, id string) (models.Review, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reviews[id]
	if !ok {
		return models.Review{}, models.NotFoundf("review", id)
	}
	delete(s.reviews, id)
	return rv, nil
}

func (r *reviewsRepo) DeleteByIDs(_ context.Context, ids []string) ([]string, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted []string
	for _, id := range ids {
		if _, ok := s.reviews[id]; ok {
			delete(s.reviews, id)
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

// ---------- audit ----------

type auditLogsRepo Store

func (r *auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = int64(len(s.audit) + 1)
	l.CreatedAt = time.Now().UTC()
	s.audit = append(s.audit, l)
	return nil
}
