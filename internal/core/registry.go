package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/domain"
)

// roomMembers is the live member list of one room, guarded by its own
// mutex so that rooms never contend with each other.
type roomMembers struct {
	mu      sync.Mutex
	members []domain.ConnectedMember
}

// MembershipRegistry is the process-wide room -> connected members map.
// The outer RWMutex guards only the map of entries; the check-and-mutate
// step for a room happens under that room's entry lock, with no I/O.
//
// An entry is created lazily on the first TryAdd and retained (possibly
// empty) after the last Remove; emptiness is observable only through
// MembersOf, which reports an empty list either way.
type MembershipRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomMembers
}

func NewMembershipRegistry() *MembershipRegistry {
	return &MembershipRegistry{rooms: make(map[domain.RoomID]*roomMembers)}
}

func (r *MembershipRegistry) entry(id domain.RoomID) *roomMembers {
	r.mu.RLock()
	e, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return e
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok = r.rooms[id]; ok {
		return e
	}
	e = &roomMembers{}
	r.rooms[id] = e
	return e
}

// MembersOf returns a copy of the room's current members. Empty slice if
// nobody is connected.
func (r *MembershipRegistry) MembersOf(id domain.RoomID) []domain.ConnectedMember {
	r.mu.RLock()
	e, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return []domain.ConnectedMember{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.members)
}

// TryAdd atomically admits member into the room unless it is at capacity.
// A second add with an already-present username is an idempotent success
// and leaves the list unchanged. On success the updated member list is
// returned; on ErrRoomFull nothing is mutated.
func (r *MembershipRegistry) TryAdd(id domain.RoomID, member domain.ConnectedMember, capacity int) ([]domain.ConnectedMember, error) {
	e := r.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, cur := range e.members {
		if cur.Username == member.Username {
			return snapshot(e.members), nil
		}
	}
	if len(e.members) >= capacity {
		return nil, domain.ErrRoomFull
	}
	e.members = append(e.members, member)
	log.Info().Str("module", "core.registry").Str("room", string(id)).Str("user", member.Username).Int("members", len(e.members)).Msg("member added")
	return snapshot(e.members), nil
}

// Remove drops the member with the given username, reporting whether a
// removal occurred. Removing an absent member is a no-op.
func (r *MembershipRegistry) Remove(id domain.RoomID, username string) bool {
	r.mu.RLock()
	e, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cur := range e.members {
		if cur.Username == username {
			e.members = append(e.members[:i], e.members[i+1:]...)
			log.Info().Str("module", "core.registry").Str("room", string(id)).Str("user", username).Int("members", len(e.members)).Msg("member removed")
			return true
		}
	}
	return false
}

// Purge discards a room's entry entirely. Used when the room itself is
// deleted from the catalog.
func (r *MembershipRegistry) Purge(id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; ok {
		delete(r.rooms, id)
		log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room purged")
	}
}

func snapshot(members []domain.ConnectedMember) []domain.ConnectedMember {
	out := make([]domain.ConnectedMember, len(members))
	copy(out, members)
	return out
}
