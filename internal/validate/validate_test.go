package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpers(t *testing.T) {
	assert.NotNil(t, Required("title", "  "))
	assert.Nil(t, Required("title", "x"))

	assert.NotNil(t, RangeInt("rating", 0, 1, 5))
	assert.NotNil(t, RangeInt("rating", 6, 1, 5))
	assert.Nil(t, RangeInt("rating", 5, 1, 5))

	assert.NotNil(t, NonNegative("price", -0.01))
	assert.NotNil(t, NonNegative("price", math.NaN()))
	assert.NotNil(t, NonNegative("price", math.Inf(1)))
	assert.Nil(t, NonNegative("price", 0))

	assert.NotNil(t, MaxLen("title", "abcd", 3))
	assert.Nil(t, MaxLen("title", "abc", 3))
	assert.NotNil(t, MinInt("n", 1, 2))
}

func TestErrs(t *testing.T) {
	var errs Errs
	errs = errs.Add(nil, Required("title", ""), nil, MaxLen("body", "long", 1))
	assert.Len(t, errs, 2)
	assert.True(t, errs.Has("body"))
	assert.False(t, errs.Has("price"))
	assert.Equal(t, "title: required; body: must be at most 1 characters", errs.Error())
}
