package session

import (
	"time"

	"github.com/google/uuid"
)

// Type fixes the capability set of a session. It never changes after
// creation.
type Type string

const (
	TypeCommissioner Type = "commissioner"
	TypePlayer       Type = "player"
	TypeSpectator    Type = "spectator"
)

// Valid reports whether t is one of the known session types.
func (t Type) Valid() bool {
	switch t {
	case TypeCommissioner, TypePlayer, TypeSpectator:
		return true
	}
	return false
}

// Session binds an anonymous token to a role and an optional game/roster
// association.
type Session struct {
	ID           int64     `json:"id"`
	Token        string    `json:"token"`
	Type         Type      `json:"session_type"`
	DisplayName  string    `json:"display_name,omitempty"`
	GameID       string    `json:"game_id,omitempty"`
	PlayerCode   string    `json:"player_code,omitempty"`
	IsActive     bool      `json:"is_active"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// IsExpired reports whether the session is at or past its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.After(now)
}

// DaysUntilExpiry returns whole days remaining until expiry, never negative.
func (s *Session) DaysUntilExpiry(now time.Time) int {
	if s == nil {
		return 0
	}
	d := int(s.ExpiresAt.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// RemainingSeconds returns seconds until expiry, never negative. It becomes
// the Max-Age of the refreshed session cookie.
func (s *Session) RemainingSeconds(now time.Time) int {
	if s == nil {
		return 0
	}
	secs := int(s.ExpiresAt.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// ClientMeta carries audit metadata captured at session creation.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// validToken reports whether raw is a well-formed UUID. Tokens are validated
// before any store access so malformed input never reaches SQL.
func validToken(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil
}
