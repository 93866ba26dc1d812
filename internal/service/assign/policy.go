package assign

import (
	"errors"
	"sync"

	"github.com/b4bharath-source/faculty-admin-link/internal/model/admin"
	"github.com/b4bharath-source/faculty-admin-link/internal/model/chat"
)

var (
	ErrNoAdminAvailable = errors.New("no admin available")
	ErrAdminNotFound    = errors.New("admin not found")
	ErrAdminOffline     = errors.New("admin offline")
)

// RoundRobin selects admins cyclically. The cursor is one piece of
// process-wide state shared by every automatic assignment, so rotation
// is fair across the whole process rather than per caller.
type RoundRobin struct {
	mu     sync.Mutex
	cursor int
}

// NewRoundRobin returns a policy with the cursor at the first admin.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Next picks the admin at the cursor and advances it with wraparound.
// The cursor is reduced modulo the current list length first, so a
// roster that shrank between calls cannot index out of range.
func (r *RoundRobin) Next(available []chat.User) (chat.User, error) {
	if len(available) == 0 {
		return chat.User{}, ErrNoAdminAvailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	picked := available[r.cursor%len(available)]
	r.cursor = (r.cursor + 1) % len(available)
	return picked, nil
}

// Reset rewinds the cursor to the start of the rotation.
func (r *RoundRobin) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = 0
}

// Explicit resolves a directly chosen admin, bypassing the rotation.
func Explicit(id string, registry admin.Registry) (chat.User, error) {
	target, ok := registry.FindByID(id)
	if !ok {
		return chat.User{}, ErrAdminNotFound
	}
	if !target.IsOnline {
		return chat.User{}, ErrAdminOffline
	}
	return target, nil
}
