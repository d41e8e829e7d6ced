package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/baharkarakas/roamr-backend/internal/auth"
	"github.com/baharkarakas/roamr-backend/internal/models"
	repo "github.com/baharkarakas/roamr-backend/internal/repository"
	"github.com/baharkarakas/roamr-backend/internal/validate"
)

type UserService struct {
	r   repo.Users
	tm  *auth.TokenManager
	log *slog.Logger
}

func NewUserService(r repo.Users, tm *auth.TokenManager, opts ...Option) *UserService {
	o := buildOptions(opts)
	return &UserService{r: r, tm: tm, log: o.log}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	u := models.User{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email)}

	var errs validate.Errs
	if len(password) < auth.MinPasswordLen {
		errs = append(errs, validate.ErrField{Field: "password", Msg: "must be at least 6 characters"})
	}
	if len(password) > auth.MaxPasswordLen {
		errs = append(errs, validate.ErrField{Field: "password", Msg: "must be at most 72 bytes"})
	}
	if len(errs) > 0 {
		return models.User{}, &models.ValidationError{Entity: "user", Fields: errs}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = hash
	created, err := s.r.Create(ctx, u)
	if err != nil {
		return models.User{}, err
	}
	s.log.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Authenticate checks credentials and issues a token pair. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (auth.TokenPair, error) {
	u, err := s.r.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return auth.TokenPair{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		s.log.Info("login failed", "username", u.Username)
		return auth.TokenPair{}, err
	}
	return s.tm.GeneratePair(u.ID)
}

// Refresh exchanges a refresh token for a new pair, provided the user still exists.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	p, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if _, err := s.r.GetByID(ctx, p.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return auth.TokenPair{}, auth.ErrInvalidToken
		}
		return auth.TokenPair{}, err
	}
	return s.tm.GeneratePair(p.ID)
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	return s.r.GetByID(ctx, id)
}
