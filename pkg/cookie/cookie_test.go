package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marathonfantasy/pkg/cookie"
)

func TestManager_SetAndGet(t *testing.T) {
	t.Parallel()

	m := cookie.New()

	w := httptest.NewRecorder()
	m.Set(w, "team", "runner-42", cookie.WithMaxAge(3600))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "team", c.Name)
	assert.Equal(t, "runner-42", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.False(t, c.Secure)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(c)
	got, err := m.Get(r, "team")
	require.NoError(t, err)
	assert.Equal(t, "runner-42", got)
}

func TestManager_GetMissing(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	r := httptest.NewRequest("GET", "/", nil)

	_, err := m.Get(r, "absent")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_SecureDefault(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecure(true))

	w := httptest.NewRecorder()
	m.Set(w, "team", "x")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestManager_DeleteMatchesSetAttributes(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecure(true))

	w := httptest.NewRecorder()
	m.Set(w, "team", "x", cookie.WithMaxAge(60))
	m.Delete(w, "team")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)

	set, clear := cookies[0], cookies[1]
	assert.Equal(t, set.Path, clear.Path)
	assert.Equal(t, set.HttpOnly, clear.HttpOnly)
	assert.Equal(t, set.SameSite, clear.SameSite)
	assert.Equal(t, set.Secure, clear.Secure)
	assert.Equal(t, -1, clear.MaxAge)
	assert.Empty(t, clear.Value)
}
