package domain

import (
	"time"
)

// NoticeKind classifies notice presentation.
type NoticeKind string

const (
	NoticePending NoticeKind = "pending"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is one transient message. A tracked notice keeps its ID while it moves
// from pending to success or error.
type Notice struct {
	ID        string     `json:"id"`
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Settled reports whether the notice is no longer pending.
func (n Notice) Settled() bool {
	return n.Kind != NoticePending
}
