package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/parley-chat/parley/internal/domain"
)

const (
	userKeyPrefix      = "user:id:"
	userNameKeyPrefix  = "user:name:"
	userEmailKeyPrefix = "user:email:"
)

type userRecord struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ImageURL     string `json:"imageUrl,omitempty"`
	PasswordHash string `json:"passwordHash"`
}

// UserStore is the Badger-backed user directory.
type UserStore struct {
	db *badger.DB
}

func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

func userKey(id domain.UserID) []byte {
	return []byte(userKeyPrefix + string(id))
}

func userNameKey(username string) []byte {
	return []byte(userNameKeyPrefix + username)
}

func userEmailKey(email string) []byte {
	return []byte(userEmailKeyPrefix + email)
}

// Create persists the user, claiming the unique username and email in the
// same transaction.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(toUserRecord(user))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range [][]byte{userNameKey(user.Username), userEmailKey(user.Email)} {
			if _, err := txn.Get(key); err == nil {
				return domain.ErrUserAlreadyExists
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}
		if err := txn.Set(userNameKey(user.Username), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(userEmailKey(user.Email), []byte(user.ID))
	})
}

func (s *UserStore) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &rec)
	})
	if err != nil {
		return nil, notFoundAs(err, domain.ErrUserNotFound)
	}
	return fromUserRecord(&rec), nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userNameKey(username))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, userKey(domain.UserID(id)), &rec)
	})
	if err != nil {
		return nil, notFoundAs(err, domain.ErrUserNotFound)
	}
	return fromUserRecord(&rec), nil
}

// Update rewrites the user record, moving the username and email index
// keys when those fields changed. Uniqueness of the new values is checked
// in the same transaction.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(toUserRecord(user))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		var old userRecord
		if err := getJSON(txn, userKey(user.ID), &old); err != nil {
			return err
		}
		if old.Username != user.Username {
			if err := moveIndex(txn, userNameKey(old.Username), userNameKey(user.Username), user.ID); err != nil {
				return err
			}
		}
		if old.Email != user.Email {
			if err := moveIndex(txn, userEmailKey(old.Email), userEmailKey(user.Email), user.ID); err != nil {
				return err
			}
		}
		return txn.Set(userKey(user.ID), data)
	})
	return notFoundAs(err, domain.ErrUserNotFound)
}

// Delete removes the user and its index keys, reporting whether the user
// existed.
func (s *UserStore) Delete(ctx context.Context, id domain.UserID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var rec userRecord
		if err := getJSON(txn, userKey(id), &rec); err != nil {
			return err
		}
		if err := txn.Delete(userNameKey(rec.Username)); err != nil {
			return err
		}
		if err := txn.Delete(userEmailKey(rec.Email)); err != nil {
			return err
		}
		return txn.Delete(userKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func moveIndex(txn *badger.Txn, oldKey, newKey []byte, id domain.UserID) error {
	if _, err := txn.Get(newKey); err == nil {
		return domain.ErrUserAlreadyExists
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	if err := txn.Delete(oldKey); err != nil {
		return err
	}
	return txn.Set(newKey, []byte(id))
}

func toUserRecord(u *domain.User) *userRecord {
	return &userRecord{
		ID:           string(u.ID),
		Username:     u.Username,
		Email:        u.Email,
		ImageURL:     u.ImageURL,
		PasswordHash: u.PasswordHash,
	}
}

func fromUserRecord(rec *userRecord) *domain.User {
	return &domain.User{
		ID:           domain.UserID(rec.ID),
		Username:     rec.Username,
		Email:        rec.Email,
		ImageURL:     rec.ImageURL,
		PasswordHash: rec.PasswordHash,
	}
}
