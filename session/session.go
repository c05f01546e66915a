package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated principal for the current request.
// It is created by the external auth provider; this code only reads it.
type Session struct {
	Subject   uuid.UUID `json:"sub"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role,omitempty"` // empty when the claim was missing or unknown
	ExpiresAt time.Time `json:"expires_at"`

	// AccessToken is the opaque token material the session was derived from.
	// It is never serialized into caches.
	AccessToken string `json:"-"`
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// HasAnyRole reports whether the session's role is one of roles
func (s *Session) HasAnyRole(roles ...Role) bool {
	if s == nil || !s.Role.Valid() {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy safe to hand to another request
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
