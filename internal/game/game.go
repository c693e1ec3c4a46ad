// Package game maintains the game records player sessions attach to: each
// game keeps the list of player codes that joined it, and roster entries
// owned by a session hang off it via a cascading foreign key.
package game

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no game with the requested ID exists.
var ErrNotFound = errors.New("game.not_found")

// Game is one draft game instance. PlayerCodes is append-only and
// duplicate-free.
type Game struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	PlayerCodes []string  `json:"player_codes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the persistence interface for games.
type Store interface {
	// EnsureWithPlayer creates the game when absent (with a singleton
	// player list) and idempotently appends playerCode otherwise, as one
	// atomic operation.
	EnsureWithPlayer(ctx context.Context, gameID, playerCode string) error

	// Get returns a game by ID.
	Get(ctx context.Context, gameID string) (*Game, error)
}
