package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/core"
	"github.com/parley-chat/parley/internal/domain"
)

// ErrLookupTimeout reports that a catalog or directory lookup exceeded
// the configured deadline. The registry itself never blocks on I/O.
var ErrLookupTimeout = errors.New("lookup timed out")

// RoomPage is one page of catalog listing results.
type RoomPage struct {
	Rooms []domain.Room `json:"rooms"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

// RoomService composes the room catalog, the access controller and the
// membership registry into the connect/disconnect operations, and fronts
// the catalog CRUD used by the HTTP adapter.
type RoomService struct {
	catalog       core.RoomCatalog
	registry      *core.MembershipRegistry
	access        *AccessController
	lookupTimeout time.Duration
}

func NewRoomService(catalog core.RoomCatalog, users core.UserDirectory, registry *core.MembershipRegistry, lookupTimeout time.Duration) *RoomService {
	return &RoomService{
		catalog:       catalog,
		registry:      registry,
		access:        NewAccessController(users),
		lookupTimeout: lookupTimeout,
	}
}

// Connect runs the end-to-end admission: catalog lookup, authorization,
// then an atomic capacity-checked add. All I/O happens before the
// registry is touched, so a slow catalog never blocks other rooms.
// On success the updated member list is returned.
func (s *RoomService) Connect(ctx context.Context, roomID domain.RoomID, creds Credentials) ([]domain.ConnectedMember, error) {
	lookupCtx := ctx
	if s.lookupTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, s.lookupTimeout)
		defer cancel()
	}

	room, err := s.catalog.GetByID(lookupCtx, roomID)
	if err != nil {
		return nil, wrapLookupErr(err)
	}
	user, err := s.access.Authorize(lookupCtx, room, creds)
	if err != nil {
		return nil, wrapLookupErr(err)
	}

	member := domain.NewConnectedMember(user)
	members, err := s.registry.TryAdd(roomID, member, room.Capacity)
	if err != nil {
		log.Warn().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", creds.Username).Int("capacity", room.Capacity).Msg("room full")
		return nil, err
	}
	return members, nil
}

// Disconnect removes a member from the room. Disconnecting a user that is
// not connected is a no-op; racing cleanup callers expect that.
func (s *RoomService) Disconnect(roomID domain.RoomID, username string) {
	if !s.registry.Remove(roomID, username) {
		log.Debug().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", username).Msg("disconnect of absent member")
	}
}

// Members returns a snapshot of the room's currently connected members.
func (s *RoomService) Members(roomID domain.RoomID) []domain.ConnectedMember {
	return s.registry.MembersOf(roomID)
}

// Create registers a new room in the catalog on behalf of owner.
func (s *RoomService) Create(ctx context.Context, name domain.RoomName, owner domain.UserID, private bool, password string, capacity int) (*domain.Room, error) {
	room, err := domain.NewRoom(name, owner, private, password, capacity)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room %q: %w", name, err)
	}
	log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Str("name", string(name)).Int("capacity", capacity).Msg("room created")
	return room, nil
}

// RoomIDByName resolves a room id from its unique name.
func (s *RoomService) RoomIDByName(ctx context.Context, name domain.RoomName) (domain.RoomID, error) {
	room, err := s.catalog.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	return room.ID, nil
}

func (s *RoomService) All(ctx context.Context, page, size int) (*RoomPage, error) {
	rooms, total, err := s.catalog.List(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return &RoomPage{Rooms: rooms, Total: total, Page: page, Size: size}, nil
}

func (s *RoomService) ByOwner(ctx context.Context, owner domain.UserID, page, size int) (*RoomPage, error) {
	rooms, total, err := s.catalog.ListByOwner(ctx, owner, page, size)
	if err != nil {
		return nil, err
	}
	return &RoomPage{Rooms: rooms, Total: total, Page: page, Size: size}, nil
}

// Delete drops the room from the catalog and evicts any live members.
func (s *RoomService) Delete(ctx context.Context, roomID domain.RoomID) error {
	if err := s.catalog.Delete(ctx, roomID); err != nil {
		return err
	}
	s.registry.Purge(roomID)
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Msg("room deleted")
	return nil
}

func wrapLookupErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrLookupTimeout
	}
	return err
}
