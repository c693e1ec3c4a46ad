// Package cookie centralizes cookie emission so every write and the matching
// clear share one canonical attribute set. A clear with mismatched Path or
// SameSite would leave the original cookie in the browser, so both paths go
// through the same Manager defaults.
package cookie

import (
	"errors"
	"net/http"
	"time"
)

var ErrCookieNotFound = errors.New("cookie: not found")

// Manager emits and reads cookies with a fixed set of default attributes.
type Manager struct {
	defaults Options
}

// New creates a Manager. Defaults are Path=/, HttpOnly and SameSite=Lax;
// options adjust them once at construction time.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{defaults: applyOptions(defaults, opts)}
}

// Set writes a cookie using the manager defaults merged with per-call options.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

// Get reads a cookie value from the request.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete clears a cookie by re-emitting it expired with attributes identical
// to the ones Set uses.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}
