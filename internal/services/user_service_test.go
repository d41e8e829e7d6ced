package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/models"
)

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "newbie", "newbie@example.com", "123")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Fields.Has("password"))

	_, err = f.users.Register(ctx, "owner", "other@example.com", "secret99")
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Fields.Has("username"))

	_, err = f.users.Register(ctx, "x", "bad", "secret99")
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Fields.Has("username"))
	assert.True(t, ve.Fields.Has("email"))
}

func TestAuthenticateAndRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pair, err := f.users.Authenticate(ctx, "owner", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = f.users.Authenticate(ctx, "owner", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = f.users.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	next, err := f.users.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = f.users.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
