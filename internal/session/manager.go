package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// GameRegistrar is the collaborator that keeps the game's player list in
// sync when player sessions are created. Failures of this secondary effect
// never abort session creation.
type GameRegistrar interface {
	EnsureWithPlayer(ctx context.Context, gameID, playerCode string) error
}

// Manager orchestrates the anonymous session lifecycle. It holds no mutable
// state of its own; consistency of concurrent transitions is delegated to
// the store's atomic primitives.
type Manager struct {
	store Store
	codec *Codec
	games GameRegistrar
	log   *slog.Logger
	cfg   Config
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithGameRegistrar wires the best-effort game player list updates.
func WithGameRegistrar(g GameRegistrar) Option {
	return func(m *Manager) { m.games = g }
}

// WithLogger sets the manager logger, ignoring nil.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a session manager backed by the given store.
func New(store Store, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		codec: NewCodec(cfg.SecureCookies),
		log:   slog.Default(),
		cfg:   cfg,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Codec exposes the cookie codec for the logout endpoint and middleware.
func (m *Manager) Codec() *Codec {
	return m.codec
}

// CreateRequest carries the caller-supplied fields for Create.
type CreateRequest struct {
	Type        Type
	DisplayName string
	GameID      string
	PlayerCode  string
	ExpiryDays  int // 0 means DefaultExpiryDays
}

// CreateResult echoes the created session plus the shareable URL.
type CreateResult struct {
	Token       string    `json:"token"`
	Type        Type      `json:"session_type"`
	DisplayName string    `json:"display_name,omitempty"`
	GameID      string    `json:"game_id,omitempty"`
	PlayerCode  string    `json:"player_code,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	ShareURL    string    `json:"share_url"`
}

// Create issues a new session and emits the descriptor cookie. For player
// sessions bound to a game it also appends the player to the game's roster
// list; that side effect is best-effort and never fails the creation.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, req CreateRequest, meta ClientMeta) (*CreateResult, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: session_type must be commissioner, player or spectator", ErrInvalidArgument)
	}
	expiryDays := req.ExpiryDays
	if expiryDays == 0 {
		expiryDays = DefaultExpiryDays
	}
	if expiryDays < 1 || expiryDays > MaxExpiryDays {
		return nil, fmt.Errorf("%w: expiry_days must be between 1 and %d", ErrInvalidArgument, MaxExpiryDays)
	}

	now := m.now()
	s := &Session{
		Token:       uuid.NewString(),
		Type:        req.Type,
		DisplayName: req.DisplayName,
		GameID:      req.GameID,
		PlayerCode:  req.PlayerCode,
		IsActive:    true,
		ExpiresAt:   now.Add(time.Duration(expiryDays) * 24 * time.Hour),
	}

	if err := m.store.Insert(ctx, s, meta); err != nil {
		return nil, m.classify(ctx, "insert session", err)
	}

	if req.Type == TypePlayer && req.GameID != "" && req.PlayerCode != "" && m.games != nil {
		if err := m.games.EnsureWithPlayer(ctx, req.GameID, req.PlayerCode); err != nil {
			// Best-effort: the session exists either way, the game list
			// self-heals on the next player join
			m.log.WarnContext(ctx, "failed to register player with game",
				"game_id", req.GameID, "player_code", req.PlayerCode, "error", err)
		}
	}

	if err := m.writeCookie(w, s); err != nil {
		m.log.ErrorContext(ctx, "failed to write session cookie", "error", err)
	}

	return &CreateResult{
		Token:       s.Token,
		Type:        s.Type,
		DisplayName: s.DisplayName,
		GameID:      s.GameID,
		PlayerCode:  s.PlayerCode,
		ExpiresAt:   s.ExpiresAt,
		ShareURL:    m.shareURL(s),
	}, nil
}

// Validate restores a session from its token, the path used when a player
// opens a shared URL. An expired match is deactivated (exactly once, the
// update is conditional) and reported as ErrExpired; a valid match
// refreshes the cookie with the remaining validity as Max-Age.
func (m *Manager) Validate(ctx context.Context, w http.ResponseWriter, token string) (*Session, error) {
	if !validToken(token) {
		return nil, fmt.Errorf("%w: token is not a valid UUID", ErrNotFound)
	}

	s, err := m.store.GetActiveByToken(ctx, token)
	if err != nil {
		return nil, m.classify(ctx, "lookup session", err)
	}

	now := m.now()
	if s.IsExpired(now) {
		if err := m.store.Deactivate(ctx, token); err != nil && !errors.Is(err, ErrNotFound) {
			m.log.ErrorContext(ctx, "failed to deactivate expired session", "error", err)
		}
		return nil, ErrExpired
	}

	if err := m.writeCookie(w, s); err != nil {
		m.log.ErrorContext(ctx, "failed to refresh session cookie", "error", err)
	}

	return s, nil
}

// VerifyResult is the check-and-touch outcome. A present-but-invalid session
// is a value-shaped failure (IsValid=false with ExpiresAt for client
// messaging), not an error; only a missing row is error-shaped.
type VerifyResult struct {
	IsValid         bool      `json:"is_valid"`
	SessionID       int64     `json:"session_id"`
	Type            Type      `json:"session_type"`
	DisplayName     string    `json:"display_name,omitempty"`
	GameID          string    `json:"game_id,omitempty"`
	PlayerCode      string    `json:"player_code,omitempty"`
	ExpiresAt       time.Time `json:"expires_at"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
}

// Verify delegates to the store's atomic check-and-touch: a valid session
// gets its LastActivity refreshed, never its expiry.
func (m *Manager) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	if !validToken(token) {
		return nil, fmt.Errorf("%w: token is not a valid UUID", ErrNotFound)
	}

	now := m.now()
	s, err := m.store.CheckAndTouch(ctx, token, now)
	if err != nil {
		return nil, m.classify(ctx, "verify session", err)
	}

	valid := s.IsActive && !s.IsExpired(now)
	return &VerifyResult{
		IsValid:         valid,
		SessionID:       s.ID,
		Type:            s.Type,
		DisplayName:     s.DisplayName,
		GameID:          s.GameID,
		PlayerCode:      s.PlayerCode,
		ExpiresAt:       s.ExpiresAt,
		DaysUntilExpiry: s.DaysUntilExpiry(now),
	}, nil
}

// Extend advances the session expiry by additionalDays relative to its
// current value, only while the session is active.
func (m *Manager) Extend(ctx context.Context, token string, additionalDays int) (time.Time, error) {
	if additionalDays == 0 {
		additionalDays = DefaultExpiryDays
	}
	if additionalDays < 1 || additionalDays > MaxExpiryDays {
		return time.Time{}, fmt.Errorf("%w: additional_days must be between 1 and %d", ErrInvalidArgument, MaxExpiryDays)
	}
	if !validToken(token) {
		return time.Time{}, fmt.Errorf("%w: token is not a valid UUID", ErrNotFound)
	}

	expiresAt, err := m.store.ExtendActive(ctx, token, additionalDays)
	if err != nil {
		return time.Time{}, m.classify(ctx, "extend session", err)
	}
	return expiresAt, nil
}

// Identifier selects a session either by token (preferred) or, behind the
// explicit Legacy flag, by the ambiguous (gameID, playerCode) pair.
type Identifier struct {
	Token      string
	GameID     string
	PlayerCode string
	// Legacy must be set to use the pair lookup. When several suspended
	// sessions share the pair the earliest-created one is picked and a
	// warning is logged.
	Legacy bool
}

func (id Identifier) validate() error {
	if id.Token != "" {
		if !validToken(id.Token) {
			return fmt.Errorf("%w: token is not a valid UUID", ErrNotFound)
		}
		return nil
	}
	if !id.Legacy {
		return fmt.Errorf("%w: token is required (or set the legacy pair lookup explicitly)", ErrInvalidArgument)
	}
	if id.GameID == "" || id.PlayerCode == "" {
		return fmt.Errorf("%w: legacy lookup needs both game_id and player_code", ErrInvalidArgument)
	}
	return nil
}

// ToggleResult reports the state after a suspend/reactivate flip.
type ToggleResult struct {
	Token       string `json:"token"`
	DisplayName string `json:"display_name,omitempty"`
	GameID      string `json:"game_id,omitempty"`
	PlayerCode  string `json:"player_code,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// ToggleActive flips IsActive in one atomic update. It deliberately ignores
// expiry: reactivating an expired session yields an active-but-expired row,
// which Validate and Verify then reject and deactivate again. This mirrors
// the long-standing observable behavior clients depend on.
func (m *Manager) ToggleActive(ctx context.Context, id Identifier) (*ToggleResult, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	var (
		s          *Session
		candidates int
		err        error
	)
	if id.Token != "" {
		s, err = m.store.ToggleByToken(ctx, id.Token)
	} else {
		s, candidates, err = m.store.ToggleByGamePlayer(ctx, id.GameID, id.PlayerCode)
	}
	if err != nil {
		return nil, m.classify(ctx, "toggle session", err)
	}
	m.warnAmbiguousPair(ctx, candidates, id)

	return &ToggleResult{
		Token:       s.Token,
		DisplayName: s.DisplayName,
		GameID:      s.GameID,
		PlayerCode:  s.PlayerCode,
		IsActive:    s.IsActive,
	}, nil
}

// DeleteResult identifies the session removed by a hard delete.
type DeleteResult struct {
	SessionID   int64  `json:"session_id"`
	DisplayName string `json:"display_name,omitempty"`
	GameID      string `json:"game_id,omitempty"`
	PlayerCode  string `json:"player_code,omitempty"`
}

// HardDelete irreversibly removes the session; the store's cascading
// constraint removes the roster rows it owned. A second call for the same
// identifier reports ErrNotFound.
func (m *Manager) HardDelete(ctx context.Context, w http.ResponseWriter, id Identifier) (*DeleteResult, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	var (
		s          *Session
		candidates int
		err        error
	)
	if id.Token != "" {
		s, err = m.store.DeleteByToken(ctx, id.Token)
	} else {
		s, candidates, err = m.store.DeleteByGamePlayer(ctx, id.GameID, id.PlayerCode)
	}
	if err != nil {
		return nil, m.classify(ctx, "delete session", err)
	}
	m.warnAmbiguousPair(ctx, candidates, id)

	if w != nil {
		m.codec.Clear(w)
	}

	return &DeleteResult{
		SessionID:   s.ID,
		DisplayName: s.DisplayName,
		GameID:      s.GameID,
		PlayerCode:  s.PlayerCode,
	}, nil
}

// Logout clears the descriptor cookie without touching the stored session.
func (m *Manager) Logout(w http.ResponseWriter) {
	m.codec.Clear(w)
}

func (m *Manager) writeCookie(w http.ResponseWriter, s *Session) error {
	if w == nil {
		return nil
	}
	return m.codec.Write(w, Descriptor{
		Token:       s.Token,
		SessionType: s.Type,
		DisplayName: s.DisplayName,
		GameID:      s.GameID,
		PlayerCode:  s.PlayerCode,
	}, s.RemainingSeconds(m.now()))
}

// shareURL embeds the token (and game when present) so a session survives a
// device switch through a plain link.
func (m *Manager) shareURL(s *Session) string {
	q := url.Values{}
	q.Set("session", s.Token)
	if s.GameID != "" {
		q.Set("game", s.GameID)
	}
	return m.cfg.BaseURL + "/join?" + q.Encode()
}

func (m *Manager) warnAmbiguousPair(ctx context.Context, candidates int, id Identifier) {
	if candidates > 1 {
		m.log.WarnContext(ctx, "ambiguous legacy pair matched multiple sessions, picked earliest created",
			"game_id", id.GameID, "player_code", id.PlayerCode, "candidates", candidates)
	}
}

// classify maps raw store failures onto the error taxonomy, logging the full
// detail before it is redacted for callers.
func (m *Manager) classify(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isTaxonomy(err):
		return err
	case isUnavailable(err):
		m.log.ErrorContext(ctx, "session store unavailable", "op", op, "error", err)
		return ErrUnavailable
	default:
		m.log.ErrorContext(ctx, "unexpected session store error", "op", op, "error", err)
		return ErrInternal
	}
}
