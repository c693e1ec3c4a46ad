package session

import (
	"context"
	"time"
)

// Store is the persistence interface for sessions. Every state transition is
// a single atomic operation: implementations must never read-then-write the
// same logical transition, or concurrent toggles and extensions lose
// updates.
//
// Methods return ErrNotFound when no row matches. Other failures are
// reported raw; the manager classifies them.
type Store interface {
	// Insert stores a new session and fills in the store-assigned ID and
	// CreatedAt/LastActivity timestamps.
	Insert(ctx context.Context, s *Session, meta ClientMeta) error

	// GetActiveByToken returns the active session with the given token,
	// regardless of expiry. Inactive rows are invisible to this lookup.
	GetActiveByToken(ctx context.Context, token string) (*Session, error)

	// Deactivate marks an active session inactive. It is conditional on the
	// row still being active so concurrent expiry detection deactivates
	// exactly once; deactivating an already-inactive row returns
	// ErrNotFound.
	Deactivate(ctx context.Context, token string) error

	// CheckAndTouch returns the session row for token whether or not it is
	// valid, updating LastActivity only when it is active and unexpired.
	// The check and the touch are one atomic statement.
	CheckAndTouch(ctx context.Context, token string, now time.Time) (*Session, error)

	// ExtendActive advances ExpiresAt by the given number of days relative
	// to its current value, only while the session is active. Returns the
	// new expiry, or ErrNotFound when the session is missing or inactive.
	ExtendActive(ctx context.Context, token string, days int) (time.Time, error)

	// ToggleByToken atomically flips IsActive and updates LastActivity,
	// returning the updated row.
	ToggleByToken(ctx context.Context, token string) (*Session, error)

	// ToggleByGamePlayer is the legacy pair lookup: among player-type
	// sessions matching (gameID, playerCode) it flips the earliest-created
	// one. The returned count is the number of candidates, letting the
	// caller warn on ambiguity.
	ToggleByGamePlayer(ctx context.Context, gameID, playerCode string) (*Session, int, error)

	// DeleteByToken removes the session row, returning the deleted row.
	// Roster data owned by the session is removed by the store's cascading
	// referential constraint, not re-derived here.
	DeleteByToken(ctx context.Context, token string) (*Session, error)

	// DeleteByGamePlayer is the legacy pair variant of DeleteByToken with
	// the same earliest-created tie-break and candidate count as
	// ToggleByGamePlayer.
	DeleteByGamePlayer(ctx context.Context, gameID, playerCode string) (*Session, int, error)
}
