package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/internal/domain"
)

func TestAccess_PublicRoom_IgnoresPassword(t *testing.T) {
	req := require.New(t)
	alice := &domain.User{ID: "u1", Username: "alice", ImageURL: "alice.png"}
	access := NewAccessController(newFakeDirectory(alice))
	room := &domain.Room{ID: "r1", Name: "lobby", Private: false, Password: "ignored", Capacity: 5}

	user, err := access.Authorize(context.Background(), room, Credentials{Username: "alice", Password: "whatever"})

	req.NoError(err)
	req.Equal(alice, user)
}

func TestAccess_PrivateRoom_WrongPassword(t *testing.T) {
	req := require.New(t)
	access := NewAccessController(newFakeDirectory(&domain.User{ID: "u1", Username: "carol"}))
	room := &domain.Room{ID: "r2", Name: "vault", Private: true, Password: "secret", Capacity: 5}

	_, err := access.Authorize(context.Background(), room, Credentials{Username: "carol", Password: "wrong"})

	req.ErrorIs(err, domain.ErrWrongPassword)
}

func TestAccess_PrivateRoom_CorrectPassword(t *testing.T) {
	req := require.New(t)
	access := NewAccessController(newFakeDirectory(&domain.User{ID: "u1", Username: "carol"}))
	room := &domain.Room{ID: "r2", Name: "vault", Private: true, Password: "secret", Capacity: 5}

	user, err := access.Authorize(context.Background(), room, Credentials{Username: "carol", Password: "secret"})

	req.NoError(err)
	req.Equal("carol", user.Username)
}

func TestAccess_UnknownUser(t *testing.T) {
	req := require.New(t)
	access := NewAccessController(newFakeDirectory())
	room := &domain.Room{ID: "r1", Name: "lobby", Capacity: 5}

	_, err := access.Authorize(context.Background(), room, Credentials{Username: "ghost"})

	req.ErrorIs(err, domain.ErrUserNotFound)
}
