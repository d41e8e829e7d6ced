package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/roamr-backend/internal/models"
)

func TestAuthorize(t *testing.T) {
	l := models.Listing{ID: "l1", OwnerID: "u1"}

	assert.Equal(t, Allowed, Authorize(Principal{ID: "u1"}, l))
	assert.NoError(t, Authorize(Principal{ID: "u1"}, l).Err())

	d := Authorize(Principal{ID: "u2"}, l)
	assert.Equal(t, Denied, d)
	assert.ErrorIs(t, d.Err(), models.ErrDenied)
	assert.NotErrorIs(t, d.Err(), models.ErrNotFound)

	assert.Equal(t, Denied, Authorize(Principal{}, models.Listing{ID: "l2"}))
	assert.Equal(t, "denied", Denied.String())
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("roamr", "a-secret", "r-secret", time.Minute, time.Hour)
	pair, err := tm.GeneratePair("u1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), pair.ExpiresAt, 5*time.Second)

	p, err := tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)

	p, err = tm.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)

	_, err = tm.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("roamr", "a-secret", "r-secret", time.Minute, time.Hour)

	other := NewTokenManager("someone-else", "a-secret", "r-secret", time.Minute, time.Hour)
	pair, err := other.GeneratePair("u1")
	require.NoError(t, err)
	_, err = tm.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong issuer")

	expired := NewTokenManager("roamr", "a-secret", "r-secret", -time.Minute, time.Hour)
	pair, err = expired.GeneratePair("u1")
	require.NoError(t, err)
	_, err = tm.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1", Type: "access"})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.ParseAccess(s)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.NoError(t, VerifyPassword("hunter22", hash))
	assert.ErrorIs(t, VerifyPassword("hunter23", hash), ErrInvalidCredentials)
}
