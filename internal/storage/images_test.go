package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/roamr-backend/internal/models"
)

func TestObjectKey(t *testing.T) {
	key, ct, err := objectKey("Beach House.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, objectPrefix+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "image/jpeg", ct)

	other, _, err := objectKey("Beach House.JPG")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestObjectKey_RejectsUnknownType(t *testing.T) {
	_, _, err := objectKey("notes.pdf")
	require.Error(t, err)

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Fields.Has("image"))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/listings/listings/a.png",
		objectURL("http://localhost:9000", "listings", "listings/a.png"))
	assert.Equal(t, "https://cdn.example.com/b/listings/a.png",
		objectURL("https://cdn.example.com/", "b", "listings/a.png"))
}
