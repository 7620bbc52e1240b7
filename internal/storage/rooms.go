package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/parley-chat/parley/internal/domain"
)

const (
	roomKeyPrefix     = "room:id:"
	roomNameKeyPrefix = "room:name:"
)

// roomRecord is the persisted shape of a room. Password is stored here on
// purpose; domain.Room hides it from JSON responses, the record must not.
type roomRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OwnerID  string `json:"ownerId"`
	Private  bool   `json:"private"`
	Password string `json:"password,omitempty"`
	Capacity int    `json:"capacity"`
}

// RoomStore is the Badger-backed room catalog.
type RoomStore struct {
	db *badger.DB
}

func NewRoomStore(db *badger.DB) *RoomStore {
	return &RoomStore{db: db}
}

func roomKey(id domain.RoomID) []byte {
	return []byte(roomKeyPrefix + string(id))
}

func roomNameKey(name domain.RoomName) []byte {
	return []byte(roomNameKeyPrefix + string(name))
}

// Create persists the room, claiming its unique name in the same
// transaction.
func (s *RoomStore) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(toRoomRecord(room))
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(roomNameKey(room.Name)); err == nil {
			return domain.ErrRoomNameTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(roomKey(room.ID), data); err != nil {
			return err
		}
		return txn.Set(roomNameKey(room.Name), []byte(room.ID))
	})
}

func (s *RoomStore) GetByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec roomRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, roomKey(id), &rec)
	})
	if err != nil {
		return nil, notFoundAs(err, domain.ErrRoomNotFound)
	}
	return fromRoomRecord(&rec), nil
}

func (s *RoomStore) GetByName(ctx context.Context, name domain.RoomName) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec roomRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomNameKey(name))
		if err != nil {
			return err
		}
		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return getJSON(txn, roomKey(domain.RoomID(id)), &rec)
	})
	if err != nil {
		return nil, notFoundAs(err, domain.ErrRoomNotFound)
	}
	return fromRoomRecord(&rec), nil
}

// List returns one page of all rooms ordered by name. page is zero-based.
func (s *RoomStore) List(ctx context.Context, page, size int) ([]domain.Room, int, error) {
	return s.list(ctx, page, size, func(*domain.Room) bool { return true })
}

// ListByOwner returns one page of the rooms created by owner.
func (s *RoomStore) ListByOwner(ctx context.Context, owner domain.UserID, page, size int) ([]domain.Room, int, error) {
	return s.list(ctx, page, size, func(r *domain.Room) bool { return r.OwnerID == owner })
}

func (s *RoomStore) list(ctx context.Context, page, size int, keep func(*domain.Room) bool) ([]domain.Room, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	var all []domain.Room
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(roomKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec roomRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			if room := fromRoomRecord(&rec); keep(room) {
				all = append(all, *room)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return pageOf(all, page, size), len(all), nil
}

// Delete removes the room and its name index. Deleting an unknown room
// reports domain.ErrRoomNotFound.
func (s *RoomStore) Delete(ctx context.Context, id domain.RoomID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var rec roomRecord
		if err := getJSON(txn, roomKey(id), &rec); err != nil {
			return err
		}
		if err := txn.Delete(roomNameKey(domain.RoomName(rec.Name))); err != nil {
			return err
		}
		return txn.Delete(roomKey(id))
	})
	return notFoundAs(err, domain.ErrRoomNotFound)
}

func toRoomRecord(r *domain.Room) *roomRecord {
	return &roomRecord{
		ID:       string(r.ID),
		Name:     string(r.Name),
		OwnerID:  string(r.OwnerID),
		Private:  r.Private,
		Password: r.Password,
		Capacity: r.Capacity,
	}
}

func fromRoomRecord(rec *roomRecord) *domain.Room {
	return &domain.Room{
		ID:       domain.RoomID(rec.ID),
		Name:     domain.RoomName(rec.Name),
		OwnerID:  domain.UserID(rec.OwnerID),
		Private:  rec.Private,
		Password: rec.Password,
		Capacity: rec.Capacity,
	}
}

func getJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return sentinel
	}
	return err
}

func pageOf(all []domain.Room, page, size int) []domain.Room {
	if size <= 0 || page < 0 {
		return []domain.Room{}
	}
	start := page * size
	if start >= len(all) {
		return []domain.Room{}
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
