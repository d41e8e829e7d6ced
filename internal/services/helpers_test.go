package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/models"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
	"github.com/baharkarakas/roamr-backend/internal/repository/memory"
)

type fixture struct {
	store    *memory.Store
	repos    repo.Set
	listings *ListingService
	reviews  *ReviewService
	query    *QueryService
	users    *UserService
	cache    *mapCache
	events   *recordingEmitter

	owner, guest auth.Principal
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	st := memory.NewStore()
	rs := st.Repositories()
	f := &fixture{store: st, repos: rs, cache: newMapCache(), events: &recordingEmitter{}}

	opts = append([]Option{WithCache(f.cache), WithEvents(f.events)}, opts...)
	tm := auth.NewTokenManager("test", "access", "refresh", time.Minute, time.Hour)
	f.listings = NewListingService(rs.Listings, rs.Reviews, rs.AuditLogs, opts...)
	f.reviews = NewReviewService(rs.Reviews, rs.Listings, rs.AuditLogs, opts...)
	f.query = NewQueryService(rs.Listings)
	f.users = NewUserService(rs.Users, tm, opts...)

	u1, err := f.users.Register(context.Background(), "owner", "owner@example.com", "secret1")
	require.NoError(t, err)
	u2, err := f.users.Register(context.Background(), "guest", "guest@example.com", "secret2")
	require.NoError(t, err)
	f.owner, f.guest = auth.Principal{ID: u1.ID}, auth.Principal{ID: u2.ID}
	return f
}

func (f *fixture) createListing(t *testing.T, title string, cats ...string) models.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), f.owner, ListingInput{
		Title:    title,
		Location: "Somewhere",
		Country:  "Nowhere",
		Category: cats,
	}, nil)
	require.NoError(t, err)
	return l
}

func (f *fixture) addReview(t *testing.T, listingID string, p auth.Principal) models.Review {
	t.Helper()
	r, err := f.reviews.Create(context.Background(), p, listingID, ReviewInput{Body: "lovely", Rating: 4})
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T { return &v }

type mapCache struct {
	mu       sync.Mutex
	m        map[string]models.ListingDetail
	versions map[string]int64
}

func newMapCache() *mapCache {
	return &mapCache{m: map[string]models.ListingDetail{}, versions: map[string]int64{}}
}

func (c *mapCache) Get(_ context.Context, id string) (models.ListingDetail, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.m[id]
	return d, c.versions[id], ok, nil
}

func (c *mapCache) Set(_ context.Context, d models.ListingDetail, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[d.ID] == version {
		c.m[d.ID] = d
	}
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.m, id)
		c.versions[id]++
	}
	return nil
}

func (c *mapCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.m[id]
	return ok
}

type recordingEmitter struct {
	mu       sync.Mutex
	subjects []string
}

func (e *recordingEmitter) Emit(_ context.Context, subject string, _ any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subjects = append(e.subjects, subject)
}

// flakyReviews fails DeleteByIDs on the given call numbers (1-based).
type flakyReviews struct {
	repo.Reviews
	mu     sync.Mutex
	calls  int
	failOn map[int]bool
	seen   [][]string
}

var errBatch = errors.New("connection reset")

func (r *flakyReviews) DeleteByIDs(ctx context.Context, ids []string) ([]string, error) {
	r.mu.Lock()
	r.calls++
	n := r.calls
	r.seen = append(r.seen, append([]string(nil), ids...))
	r.mu.Unlock()
	if r.failOn[n] {
		return nil, models.StoreErr("reviews.delete_many", errBatch)
	}
	return r.Reviews.DeleteByIDs(ctx, ids)
}
