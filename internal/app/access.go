package app

import (
	"context"
	"fmt"

	"github.com/parley-chat/parley/internal/core"
	"github.com/parley-chat/parley/internal/domain"
)

// Credentials is what a connect attempt carries: the username to admit
// and, for private rooms, the room password.
type Credentials struct {
	Username string
	Password string
}

// AccessController decides whether a connect attempt is admissible,
// independent of capacity.
type AccessController struct {
	users core.UserDirectory
}

func NewAccessController(users core.UserDirectory) *AccessController {
	return &AccessController{users: users}
}

// Authorize resolves the user and, for private rooms, checks the room
// password. Room passwords are compared verbatim; they are shared room
// secrets, not account credentials, and are stored as entered.
func (a *AccessController) Authorize(ctx context.Context, room *domain.Room, creds Credentials) (*domain.User, error) {
	user, err := a.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", creds.Username, err)
	}
	if room.Private && creds.Password != room.Password {
		return nil, domain.ErrWrongPassword
	}
	return user, nil
}
