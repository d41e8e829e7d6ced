package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/events"
	"github.com/baharkarakas/roamr-backend/internal/models"
)

func TestListingCreate_ForcesOwnerAndDefaults(t *testing.T) {
	f := newFixture(t)
	l := f.createListing(t, "  Lake Cabin  ", "Cabins", "Mountains", "Cabins")

	assert.Equal(t, f.owner.ID, l.OwnerID)
	assert.Equal(t, "Lake Cabin", l.Title)
	assert.Equal(t, []string{"Cabins", "Mountains"}, l.Category)
	assert.Equal(t, models.DefaultImage(), l.Image)
	assert.Empty(t, l.ReviewIDs)
	assert.NotEmpty(t, l.ID)
	assert.Contains(t, f.events.subjects, events.ListingCreated)

	trail := f.store.AuditTrail()
	require.NotEmpty(t, trail)
	assert.Equal(t, "created", trail[len(trail)-1].Action)
}

func TestListingCreate_WithImage(t *testing.T) {
	f := newFixture(t)
	img := &models.Image{URL: "https://res.example.com/upload/a.jpg", Filename: "listings/a.jpg"}
	l, err := f.listings.Create(context.Background(), f.owner, ListingInput{Title: "Villa", Category: []string{"Villas"}}, img)
	require.NoError(t, err)
	assert.Equal(t, *img, l.Image)
}

func TestListingCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		in    ListingInput
		img   *models.Image
		field string
	}{
		"missing title":    {in: ListingInput{Category: []string{"City"}}, field: "title"},
		"no category":      {in: ListingInput{Title: "x"}, field: "category"},
		"unknown category": {in: ListingInput{Title: "x", Category: []string{"City", "Castle"}}, field: "category"},
		"negative price":   {in: ListingInput{Title: "x", Category: []string{"City"}, Price: ptr(-1.0)}, field: "price"},
		"half image":       {in: ListingInput{Title: "x", Category: []string{"City"}}, img: &models.Image{URL: "u"}, field: "image"},
		"empty image":      {in: ListingInput{Title: "x", Category: []string{"City"}}, img: &models.Image{}, field: "image"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.listings.Create(ctx, f.owner, tc.in, tc.img)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.True(t, ve.Fields.Has(tc.field), "fields: %v", ve.Fields)
		})
	}

	all, err := f.query.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListingCreate_AnonymousDenied(t *testing.T) {
	f := newFixture(t)
	_, err := f.listings.Create(context.Background(), auth.Principal{}, ListingInput{Title: "x", Category: []string{"City"}}, nil)
	assert.ErrorIs(t, err, models.ErrDenied)
}

func TestListingGet_ExpandsAndCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.createListing(t, "Lake Cabin", "Cabins")
	r := f.addReview(t, l.ID, f.guest)

	d, err := f.listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", d.Owner.Username)
	require.Len(t, d.Reviews, 1)
	assert.Equal(t, r.ID, d.Reviews[0].ID)
	assert.Equal(t, "guest", d.Reviews[0].Author.Username)
	assert.True(t, f.cache.has(l.ID))

	_, err = f.listings.Update(ctx, f.owner, l.ID, &models.ListingPatch{Title: ptr("Lake Lodge")}, nil)
	require.NoError(t, err)
	assert.False(t, f.cache.has(l.ID))

	d, err = f.listings.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lake Lodge", d.Title)
}

func TestListingGet_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.listings.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListingEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	img := &models.Image{URL: "https://res.example.com/image/upload/v1/a.jpg", Filename: "a"}
	l, err := f.listings.Create(ctx, f.owner, ListingInput{Title: "Villa", Category: []string{"Villas"}}, img)
	require.NoError(t, err)

	v, err := f.listings.Edit(ctx, f.owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://res.example.com/image/upload/w_250/v1/a.jpg", v.PreviewURL)

	_, err = f.listings.Edit(ctx, f.guest, l.ID)
	assert.ErrorIs(t, err, models.ErrDenied)

	_, err = f.listings.Edit(ctx, f.owner, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListingUpdate_NonOwnerDeniedAndUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.createListing(t, "Lake Cabin", "Cabins", "Mountains")

	_, err := f.listings.Update(ctx, f.guest, l.ID, &models.ListingPatch{Title: ptr("Mine now")}, nil)
	assert.ErrorIs(t, err, models.ErrDenied)
	assert.False(t, errors.Is(err, models.ErrNotFound))

	_, err = f.listings.Update(ctx, auth.Principal{}, l.ID, &models.ListingPatch{Title: ptr("Mine now")}, nil)
	assert.ErrorIs(t, err, models.ErrDenied)

	got, err := f.repos.Listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lake Cabin", got.Title)
	assert.Equal(t, f.owner.ID, got.OwnerID)
}

func TestListingUpdate_EmptyPatchRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.createListing(t, "Lake Cabin", "Cabins")
	img := &models.Image{URL: "x", Filename: "y"}

	for name, patch := range map[string]*models.ListingPatch{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			_, err := f.listings.Update(ctx, f.owner, l.ID, patch, img)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.True(t, ve.Fields.Has("listing"))
		})
	}

	got, err := f.repos.Listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultImage(), got.Image)
}

func TestListingUpdate_ImageReplacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.createListing(t, "Lake Cabin", "Cabins")

	out, err := f.listings.Update(ctx, f.owner, l.ID, &models.ListingPatch{Price: ptr(120.0)}, &models.Image{URL: "x", Filename: "y"})
	require.NoError(t, err)
	assert.Equal(t, models.Image{URL: "x", Filename: "y"}, out.Image)
	require.NotNil(t, out.Price)
	assert.Equal(t, 120.0, *out.Price)

	out, err = f.listings.Update(ctx, f.owner, l.ID, &models.ListingPatch{Title: ptr("Lake Lodge")}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Image{URL: "x", Filename: "y"}, out.Image)
	assert.Equal(t, "Lake Lodge", out.Title)
	assert.Equal(t, []string{"Cabins"}, out.Category)
}

func TestListingUpdate_InvalidPatchWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.createListing(t, "Lake Cabin", "Cabins")

	_, err := f.listings.Update(ctx, f.owner, l.ID, &models.ListingPatch{
		Title:    ptr("Lake Lodge"),
		Category: []string{"Igloo"},
	}, nil)
	assert.True(t, models.IsValidation(err))

	got, err := f.repos.Listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lake Cabin", got.Title)
}

func TestListingUpdate_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.listings.Update(context.Background(), f.owner, "missing", &models.ListingPatch{Title: ptr("x")}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListingDelete_CascadesReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.createListing(t, "Lake Cabin", "Cabins", "Mountains")
	r1 := f.addReview(t, l.ID, f.guest)
	r2 := f.addReview(t, l.ID, f.owner)

	deleted, err := f.listings.Delete(ctx, f.owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, deleted.ID)
	assert.Equal(t, []string{r1.ID, r2.ID}, deleted.ReviewIDs)

	for _, id := range []string{r1.ID, r2.ID} {
		_, err := f.reviews.Get(ctx, id)
		assert.ErrorIs(t, err, models.ErrNotFound)
	}
	_, err = f.listings.Get(ctx, l.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, f.events.subjects, events.ListingDeleted)

	// re-running the cascade with the stale snapshot is a no-op
	n, err := f.listings.RetryCascade(ctx, l.ID, deleted.ReviewIDs)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListingDelete_NonOwnerDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.createListing(t, "Lake Cabin", "Cabins")
	r := f.addReview(t, l.ID, f.guest)

	_, err := f.listings.Delete(ctx, f.guest, l.ID)
	assert.ErrorIs(t, err, models.ErrDenied)

	got, err := f.repos.Listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, got.ReviewIDs)
	_, err = f.reviews.Get(ctx, r.ID)
	assert.NoError(t, err)
}

func TestListingDelete_CascadeFailureReturnsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.createListing(t, "Lake Cabin", "Cabins")
	r := f.addReview(t, l.ID, f.guest)

	flaky := &flakyReviews{Reviews: f.repos.Reviews, failOn: map[int]bool{1: true}}
	svc := NewListingService(f.repos.Listings, flaky, f.repos.AuditLogs)

	deleted, err := svc.Delete(ctx, f.owner, l.ID)
	assert.Equal(t, l.ID, deleted.ID)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	var ce *models.CascadeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{r.ID}, ce.Pending)

	_, err = f.repos.Listings.GetByID(ctx, l.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	n, err := svc.RetryCascade(ctx, l.ID, ce.Pending)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListingDelete_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.listings.Delete(context.Background(), f.owner, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
