package models

import (
	"strings"
	"time"

	"github.com/baharkarakas/roamr-backend/internal/validate"
)

const (
	DefaultImageURL      = "https://images.unsplash.com/photo-1552733407-5d5c46c3bb3b"
	DefaultImageFilename = "listingimage"

	maxTitleLen = 200
)

// Categories is the closed tag vocabulary, in display order.
var Categories = []string{
	"Trending",
	"New",
	"Top Rated",

	"Rooms",
	"Apartments",
	"Villas",
	"Cabins",

	"Beach",
	"Mountains",
	"City",
	"Countryside",

	"Luxury",
	"Budget",
	"Pet Friendly",
	"Family Friendly",
	"Unique Stays",
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

func IsCategory(tag string) bool {
	_, ok := categorySet[tag]
	return ok
}

type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

func DefaultImage() Image {
	return Image{URL: DefaultImageURL, Filename: DefaultImageFilename}
}

// IsZero means "no image supplied".
func (i Image) IsZero() bool { return i.URL == "" && i.Filename == "" }

func (i Image) validate(field string) *validate.ErrField {
	if (strings.TrimSpace(i.URL) == "") != (strings.TrimSpace(i.Filename) == "") {
		return &validate.ErrField{Field: field, Msg: "url and filename must be set together"}
	}
	return nil
}

type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       *float64  `json:"price,omitempty"`
	Location    string    `json:"location"`
	Country     string    `json:"country"`
	Image       Image     `json:"image"`
	Category    []string  `json:"category"`
	OwnerID     string    `json:"owner_id"`
	ReviewIDs   []string  `json:"review_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Normalize trims text fields, collapses duplicate tags and fills the
// placeholder image when none was given.
func (l *Listing) Normalize() {
	l.Title = strings.TrimSpace(l.Title)
	l.Location = strings.TrimSpace(l.Location)
	l.Country = strings.TrimSpace(l.Country)
	l.Category = dedupe(l.Category)
	if l.Image.IsZero() {
		l.Image = DefaultImage()
	}
	if l.ReviewIDs == nil {
		l.ReviewIDs = []string{}
	}
}

func (l *Listing) Validate() error {
	var errs validate.Errs
	errs = errs.Add(
		validate.Required("title", l.Title),
		validate.MaxLen("title", l.Title, maxTitleLen),
		validate.Required("owner", l.OwnerID),
		l.Image.validate("image"),
	)
	if l.Price != nil {
		errs = errs.Add(validate.NonNegative("price", *l.Price))
	}
	errs = append(errs, validateCategory(l.Category)...)
	if len(errs) > 0 {
		return &ValidationError{Entity: "listing", Fields: errs}
	}
	return nil
}

// HasCategory is an exact, case-sensitive membership test.
func (l Listing) HasCategory(tag string) bool {
	for _, c := range l.Category {
		if c == tag {
			return true
		}
	}
	return false
}

func validateCategory(tags []string) validate.Errs {
	if len(tags) == 0 {
		return validate.Errs{{Field: "category", Msg: "at least one category is required"}}
	}
	var errs validate.Errs
	for _, t := range tags {
		if !IsCategory(t) {
			errs = append(errs, validate.ErrField{Field: "category", Msg: "unknown category " + `"` + t + `"`})
		}
	}
	return errs
}

func dedupe(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ListingPatch enumerates the fields an owner may change. Nil means "leave as is".
type ListingPatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Country     *string  `json:"country,omitempty"`
	Category    []string `json:"category,omitempty"`
}

func (p *ListingPatch) IsEmpty() bool {
	return p == nil || (p.Title == nil && p.Description == nil && p.Price == nil &&
		p.Location == nil && p.Country == nil && p.Category == nil)
}

func (p *ListingPatch) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(p.Title)
	trim(p.Location)
	trim(p.Country)
	p.Category = dedupe(p.Category)
}

func (p *ListingPatch) Validate() error {
	if p.IsEmpty() {
		return NewValidationError("listing", "listing", "send valid data for listing")
	}
	var errs validate.Errs
	if p.Title != nil {
		errs = errs.Add(validate.Required("title", *p.Title), validate.MaxLen("title", *p.Title, maxTitleLen))
	}
	if p.Price != nil {
		errs = errs.Add(validate.NonNegative("price", *p.Price))
	}
	if p.Category != nil {
		errs = append(errs, validateCategory(p.Category)...)
	}
	if len(errs) > 0 {
		return &ValidationError{Entity: "listing", Fields: errs}
	}
	return nil
}

// Apply copies the set fields of p onto l.
func (p *ListingPatch) Apply(l *Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Price != nil {
		v := *p.Price
		l.Price = &v
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Country != nil {
		l.Country = *p.Country
	}
	if p.Category != nil {
		l.Category = append([]string(nil), p.Category...)
	}
}

// ValidateImage checks an uploaded image pair before it replaces the stored one.
func ValidateImage(img *Image) error {
	if img == nil {
		return nil
	}
	if img.IsZero() {
		return NewValidationError("listing", "image", "url and filename are required")
	}
	if f := img.validate("image"); f != nil {
		return &ValidationError{Entity: "listing", Fields: validate.Errs{*f}}
	}
	return nil
}

// ListingDetail is a listing with its owner and reviews resolved.
type ListingDetail struct {
	Listing
	Owner   User           `json:"owner"`
	Reviews []ReviewDetail `json:"reviews"`
}
