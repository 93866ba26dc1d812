package chat

import "time"

// Status tracks the session lifecycle: queued -> active -> closed.
type Status string

const (
	StatusQueued Status = "queued"
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Session captures one faculty-admin conversation. AdminID is set once
// an admin has been assigned (active and closed sessions always carry
// one); ClosedAt is stamped exactly when the session closes.
type Session struct {
	ID          string     `json:"id"`
	FacultyID   string     `json:"facultyId"`
	FacultyName string     `json:"facultyName"`
	AdminID     string     `json:"adminId,omitempty"`
	AdminName   string     `json:"adminName,omitempty"`
	Status      Status     `json:"status"`
	Messages    []Message  `json:"messages"`
	CreatedAt   time.Time  `json:"createdAt"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
}

// Clone returns a copy safe to hand outside the store; the message
// slice is duplicated so callers cannot alter stored history.
func (s *Session) Clone() Session {
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	return out
}
