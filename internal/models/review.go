package models

import (
	"strings"
	"time"

	"github.com/baharkarakas/roamr-backend/internal/validate"
)

const (
	MinRating = 1
	MaxRating = 5

	maxReviewLen = 2000
)

// Review belongs to exactly one listing through Listing.ReviewIDs.
type Review struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) Validate() error {
	r.Body = strings.TrimSpace(r.Body)
	var errs validate.Errs
	errs = errs.Add(
		validate.Required("author", r.AuthorID),
		validate.Required("body", r.Body),
		validate.MaxLen("body", r.Body, maxReviewLen),
		validate.RangeInt("rating", int64(r.Rating), MinRating, MaxRating),
	)
	if len(errs) > 0 {
		return &ValidationError{Entity: "review", Fields: errs}
	}
	return nil
}

type ReviewDetail struct {
	Review
	Author User `json:"author"`
}
