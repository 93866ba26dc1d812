package chat

import "time"

// MessageKind separates regular turns from system notices.
type MessageKind string

const (
	KindText   MessageKind = "text"
	KindSystem MessageKind = "system"
)

// Message records a single turn. Messages are immutable once appended;
// within a session they keep insertion order and non-decreasing timestamps.
type Message struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"sessionId"`
	SenderID   string      `json:"senderId"`
	SenderName string      `json:"senderName"`
	Content    string      `json:"content"`
	Kind       MessageKind `json:"kind"`
	CreatedAt  time.Time   `json:"createdAt"`
}
