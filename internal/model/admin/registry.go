package admin

import "github.com/b4bharath-source/faculty-admin-link/internal/model/chat"

// Registry exposes admin lookup for assignment and HTTP handlers.
type Registry interface {
	List() []chat.User
	ListAvailable() []chat.User
	FindByID(id string) (chat.User, bool)
}

// MemoryRegistry implements Registry with an in-memory slice. Online
// flags are fixed at construction; there is no runtime toggling.
type MemoryRegistry struct {
	items []chat.User
}

// NewMemoryRegistry returns a MemoryRegistry preloaded with the supplied admins.
func NewMemoryRegistry(items []chat.User) *MemoryRegistry {
	return &MemoryRegistry{items: append([]chat.User(nil), items...)}
}

// List returns every registered admin in registry order.
func (r *MemoryRegistry) List() []chat.User {
	return append([]chat.User(nil), r.items...)
}

// ListAvailable returns the online admins, preserving registry order.
func (r *MemoryRegistry) ListAvailable() []chat.User {
	available := make([]chat.User, 0, len(r.items))
	for _, item := range r.items {
		if item.IsOnline {
			available = append(available, item)
		}
	}
	return available
}

// FindByID looks up an admin by identifier.
func (r *MemoryRegistry) FindByID(id string) (chat.User, bool) {
	for _, item := range r.items {
		if item.ID == id {
			return item, true
		}
	}
	return chat.User{}, false
}

// Seed provides the default support-desk roster. Mr. Davis is kept
// offline so the availability filter is visible in the demo.
func Seed() []chat.User {
	return []chat.User{
		{ID: "admin1", Name: "Dr. Smith", Role: chat.RoleAdmin, IsOnline: true},
		{ID: "admin2", Name: "Prof. Johnson", Role: chat.RoleAdmin, IsOnline: true},
		{ID: "admin3", Name: "Ms. Williams", Role: chat.RoleAdmin, IsOnline: true},
		{ID: "admin4", Name: "Mr. Davis", Role: chat.RoleAdmin, IsOnline: false},
	}
}
