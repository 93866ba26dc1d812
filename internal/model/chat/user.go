package chat

// Role distinguishes the two sides of a support conversation.
type Role string

const (
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the two supported values.
func (r Role) Valid() bool {
	return r == RoleFaculty || r == RoleAdmin
}

// User identifies a participant. Identity is immutable after creation;
// faculty and admin users are created at login, mock admins at startup.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	IsOnline bool   `json:"isOnline"`
}
