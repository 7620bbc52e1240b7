package core

import (
	"context"

	"github.com/parley-chat/parley/internal/domain"
)

// RoomCatalog is the durable store of room definitions. The core only
// reads room snapshots from it at connect time; ownership of the records
// stays with the storage adapter.
type RoomCatalog interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	GetByName(ctx context.Context, name domain.RoomName) (*domain.Room, error)
	List(ctx context.Context, page, size int) ([]domain.Room, int, error)
	ListByOwner(ctx context.Context, owner domain.UserID, page, size int) ([]domain.Room, int, error)
	Delete(ctx context.Context, id domain.RoomID) error
}

// UserDirectory is the durable store of user identities.
type UserDirectory interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id domain.UserID) (bool, error)
}
