package auth

import "github.com/baharkarakas/roamr-backend/internal/models"

// Principal is the identity a request acts as. The zero value is anonymous.
type Principal struct {
	ID string
}

func (p Principal) Anonymous() bool { return p.ID == "" }

type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}

// Err returns models.ErrDenied for a Denied decision and nil otherwise.
func (d Decision) Err() error {
	if d == Allowed {
		return nil
	}
	return models.ErrDenied
}

// Authorize allows a mutation only when the principal owns the listing.
func Authorize(p Principal, l models.Listing) Decision {
	if p.Anonymous() || l.OwnerID == "" || p.ID != l.OwnerID {
		return Denied
	}
	return Allowed
}
