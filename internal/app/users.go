package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/auth"
	"github.com/parley-chat/parley/internal/core"
	"github.com/parley-chat/parley/internal/domain"
)

// RegisterInput carries a registration request into the service layer.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// ProfileUpdate carries the optional fields of a profile update; empty
// strings mean "leave unchanged", matching the original API contract.
type ProfileUpdate struct {
	Username string
	Email    string
	ImageURL string
	Password string
}

// UserService owns account lifecycle: registration, profiles, removal,
// and password verification at login.
type UserService struct {
	users core.UserDirectory
}

func NewUserService(users core.UserDirectory) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := domain.NewUser(in.Username, in.Email, hash)
	if err != nil {
		return nil, err
	}
	user.ImageURL = in.ImageURL
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.users").Str("user", string(user.ID)).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate verifies a username/password pair and returns the user on
// success. Unknown user and bad password both come back as
// domain.ErrAccessDenied so the login endpoint leaks nothing.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, domain.ErrAccessDenied
	}
	ok, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrAccessDenied
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateByID(ctx context.Context, id domain.UserID, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Username != "" {
		if err := user.SetUsername(upd.Username); err != nil {
			return nil, err
		}
	}
	if upd.Email != "" {
		user.Email = upd.Email
	}
	if upd.ImageURL != "" {
		user.ImageURL = upd.ImageURL
	}
	if upd.Password != "" {
		hash, err := auth.HashPassword(upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.users").Str("user", string(id)).Msg("profile updated")
	return user, nil
}

// DeleteByID reports whether a user was actually removed.
func (s *UserService) DeleteByID(ctx context.Context, id domain.UserID) (bool, error) {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		log.Info().Str("module", "app.users").Str("user", string(id)).Msg("user deleted")
	}
	return deleted, nil
}
