package models

import (
	"strings"
	"time"

	"github.com/baharkarakas/roamr-backend/internal/validate"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	var errs validate.Errs
	if len(strings.TrimSpace(u.Username)) < 3 {
		errs = append(errs, validate.ErrField{Field: "username", Msg: "must be at least 3 characters"})
	}
	if !strings.Contains(u.Email, "@") {
		errs = append(errs, validate.ErrField{Field: "email", Msg: "invalid email"})
	}
	errs = errs.Add(validate.Required("password_hash", u.PasswordHash))
	if len(errs) > 0 {
		return &ValidationError{Entity: "user", Fields: errs}
	}
	return nil
}
