package domain

import (
	"time"
)

// Product is the subset of a catalog product the client keeps around.
type Product struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Stream is a sales stream (referral link) owned by the current user.
// ID is the identifier used by the cache; RemoteID keeps the server-assigned one.
type Stream struct {
	ID        string    `json:"_id"`
	RemoteID  string    `json:"remote_id,omitempty"`
	Name      string    `json:"name"`
	ProductID string    `json:"product_id,omitempty"`
	Product   *Product  `json:"product,omitempty"`
	IsNew     bool      `json:"is_new,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the signed-in account as mirrored by the client.
type User struct {
	ID        string  `json:"_id"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Balance   float64 `json:"balance"`
}

// UserPatch replaces the non-nil fields of the current user.
type UserPatch struct {
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	Balance   *float64 `json:"balance,omitempty"`
}

// Apply returns u with the patch applied.
func (p UserPatch) Apply(u User) User {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Balance != nil {
		u.Balance = *p.Balance
	}
	return u
}

// AttemptKind groups fallback attempts by the action that produced them.
type AttemptKind string

const (
	AttemptComment AttemptKind = "comment"
)

// Attempt is a failed mutation kept in durable storage for manual retry.
// Payload holds the exact serialized form that was sent.
type Attempt struct {
	ID        string      `json:"id"`
	Kind      AttemptKind `json:"kind"`
	TargetID  string      `json:"target_id,omitempty"`
	Payload   []byte      `json:"payload"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
