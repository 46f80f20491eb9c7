package auth

import (
	"time"

	"leadboard/internal/errors"
)

// Session is the caller's proven access level. Gated operations take it explicitly.
type Session struct {
	ID        string    `json:"id,omitempty"`
	Admin     bool      `json:"admin"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Anonymous is the session of a viewer who has not logged in
func Anonymous() Session {
	return Session{}
}

// Expired reports whether the session ended before now
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// RequireAdmin fails with UNAUTHORIZED unless s is a live admin session
func (s Session) RequireAdmin() error {
	if !s.Admin {
		return errors.Unauthorized("admin session required")
	}
	if s.Expired(time.Now()) {
		return errors.Unauthorized("admin session expired")
	}
	return nil
}
