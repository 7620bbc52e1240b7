package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxRoomNameLen = 64
)

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
	ErrRoomNameTaken   = errors.New("room name already taken")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrWrongPassword   = errors.New("wrong room password")
	ErrBadCapacity     = errors.New("room capacity must be positive")
)

type (
	RoomID   string
	RoomName string
)

// Room is the catalog's read-only definition of a room. The live member
// set is owned by core.MembershipRegistry, never by this struct.
type Room struct {
	ID       RoomID   `json:"id"`
	Name     RoomName `json:"name"`
	OwnerID  UserID   `json:"ownerId"`
	Private  bool     `json:"private"`
	Password string   `json:"-"`
	Capacity int      `json:"capacity"`
}

func NewRoom(name RoomName, ownerID UserID, private bool, password string, capacity int) (*Room, error) {
	if len(name) == 0 {
		return nil, ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return nil, ErrRoomNameTooLong
	}
	if capacity <= 0 {
		return nil, ErrBadCapacity
	}
	return &Room{
		ID:       RoomID(uuid.NewString()),
		Name:     name,
		OwnerID:  ownerID,
		Private:  private,
		Password: password,
		Capacity: capacity,
	}, nil
}
