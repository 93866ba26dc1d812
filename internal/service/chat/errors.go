package chat

import "errors"

var (
	ErrNameRequired    = errors.New("name is required")
	ErrInvalidRole     = errors.New("invalid role")
	ErrNotLoggedIn     = errors.New("no user logged in")
	ErrFacultyOnly     = errors.New("operation requires a faculty user")
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionNotFound = errors.New("session not found")
)
