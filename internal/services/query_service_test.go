package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/roamr-backend/internal/models"
)

func titles(ls []models.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Title
	}
	return out
}

func TestFindByCategory_ExactMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createListing(t, "Lake Cabin", "Cabins", "Mountains")
	f.createListing(t, "Sea Villa", "Villas", "Beach")
	f.createListing(t, "Ridge Hut", "Cabins")

	got, err := f.query.FindByCategory(ctx, "Cabins")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lake Cabin", "Ridge Hut"}, titles(got))

	got, err = f.query.FindByCategory(ctx, "Beach")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sea Villa"}, titles(got))

	for _, tag := range []string{"Cabin", "cabins", "Castle"} {
		got, err = f.query.FindByCategory(ctx, tag)
		require.NoError(t, err)
		assert.Empty(t, got, tag)
	}
}

func TestFindByCategory_EmptyTag(t *testing.T) {
	f := newFixture(t)
	_, err := f.query.FindByCategory(context.Background(), "  ")
	assert.True(t, models.IsValidation(err))
}

func TestFindAll_InsertionOrder(t *testing.T) {
	f := newFixture(t)
	for _, title := range []string{"C", "A", "B"} {
		f.createListing(t, title, "City")
	}
	got, err := f.query.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, titles(got))
}

func TestSearch_CaseInsensitiveAcrossFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mk := func(title, location, country string) {
		_, err := f.listings.Create(ctx, f.owner, ListingInput{
			Title: title, Location: location, Country: country, Category: []string{"Beach"},
		}, nil)
		require.NoError(t, err)
	}
	mk("Goa Beach Hut", "Anjuna", "India")
	mk("Palm Stay", "Goa", "India")
	mk("Fjord Cabin", "Bergen", "Norway")

	upper, err := f.query.Search(ctx, "Goa")
	require.NoError(t, err)
	lower, err := f.query.Search(ctx, "goa")
	require.NoError(t, err)
	assert.Equal(t, titles(upper), titles(lower))
	assert.Equal(t, []string{"Goa Beach Hut", "Palm Stay"}, titles(upper))

	got, err := f.query.Search(ctx, "  NORWAY ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fjord Cabin"}, titles(got))

	got, err = f.query.Search(ctx, "atlantis")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_TermIsLiteral(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createListing(t, "100% Sea View", "Beach")
	f.createListing(t, "Sea Side", "Beach")

	got, err := f.query.Search(ctx, "100%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Sea View"}, titles(got))

	got, err = f.query.Search(ctx, "%")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearch_EmptyTerm(t *testing.T) {
	f := newFixture(t)
	_, err := f.query.Search(context.Background(), " \t")
	assert.True(t, models.IsValidation(err))
}
