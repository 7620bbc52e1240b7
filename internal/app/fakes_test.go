package app

import (
	"context"

	"github.com/parley-chat/parley/internal/domain"
)

// fakeCatalog and fakeDirectory are in-memory stand-ins for the Badger
// stores, enough to drive the orchestration layer in tests.

type fakeCatalog struct {
	rooms map[domain.RoomID]*domain.Room
}

func newFakeCatalog(rooms ...*domain.Room) *fakeCatalog {
	c := &fakeCatalog{rooms: make(map[domain.RoomID]*domain.Room)}
	for _, r := range rooms {
		c.rooms[r.ID] = r
	}
	return c
}

func (c *fakeCatalog) Create(_ context.Context, room *domain.Room) error {
	for _, r := range c.rooms {
		if r.Name == room.Name {
			return domain.ErrRoomNameTaken
		}
	}
	c.rooms[room.ID] = room
	return nil
}

func (c *fakeCatalog) GetByID(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	if r, ok := c.rooms[id]; ok {
		return r, nil
	}
	return nil, domain.ErrRoomNotFound
}

func (c *fakeCatalog) GetByName(_ context.Context, name domain.RoomName) (*domain.Room, error) {
	for _, r := range c.rooms {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, domain.ErrRoomNotFound
}

func (c *fakeCatalog) List(_ context.Context, page, size int) ([]domain.Room, int, error) {
	var all []domain.Room
	for _, r := range c.rooms {
		all = append(all, *r)
	}
	return all, len(all), nil
}

func (c *fakeCatalog) ListByOwner(_ context.Context, owner domain.UserID, page, size int) ([]domain.Room, int, error) {
	var out []domain.Room
	for _, r := range c.rooms {
		if r.OwnerID == owner {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (c *fakeCatalog) Delete(_ context.Context, id domain.RoomID) error {
	if _, ok := c.rooms[id]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(c.rooms, id)
	return nil
}

// slowCatalog blocks every lookup until the caller's context expires.
type slowCatalog struct {
	fakeCatalog
}

func (c *slowCatalog) GetByID(ctx context.Context, _ domain.RoomID) (*domain.Room, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeDirectory struct {
	users map[string]*domain.User
}

func newFakeDirectory(users ...*domain.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]*domain.User)}
	for _, u := range users {
		d.users[u.Username] = u
	}
	return d
}

func (d *fakeDirectory) Create(_ context.Context, user *domain.User) error {
	if _, ok := d.users[user.Username]; ok {
		return domain.ErrUserAlreadyExists
	}
	d.users[user.Username] = user
	return nil
}

func (d *fakeDirectory) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (d *fakeDirectory) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := d.users[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (d *fakeDirectory) Update(_ context.Context, user *domain.User) error {
	for name, u := range d.users {
		if u.ID == user.ID {
			delete(d.users, name)
			d.users[user.Username] = user
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (d *fakeDirectory) Delete(_ context.Context, id domain.UserID) (bool, error) {
	for name, u := range d.users {
		if u.ID == id {
			delete(d.users, name)
			return true, nil
		}
	}
	return false, nil
}
