package binder_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marathonfantasy/pkg/binder"
)

type payload struct {
	SessionType string `json:"session_type"`
	ExpiryDays  int    `json:"expiry_days"`
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"session_type":"player","expiry_days":30}`))
		r.Header.Set("Content-Type", "application/json")

		var p payload
		require.NoError(t, binder.JSON(r, &p))
		assert.Equal(t, "player", p.SessionType)
		assert.Equal(t, 30, p.ExpiryDays)
	})

	t.Run("content type with charset", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		var p payload
		assert.NoError(t, binder.JSON(r, &p))
	})

	t.Run("missing content type", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))

		var p payload
		assert.ErrorIs(t, binder.JSON(r, &p), binder.ErrMissingContentType)
	})

	t.Run("wrong media type", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "text/plain")

		var p payload
		assert.ErrorIs(t, binder.JSON(r, &p), binder.ErrUnsupportedMediaType)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"nope":1}`))
		r.Header.Set("Content-Type", "application/json")

		var p payload
		assert.ErrorIs(t, binder.JSON(r, &p), binder.ErrInvalidJSON)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(""))
		r.Header.Set("Content-Type", "application/json")

		var p payload
		assert.ErrorIs(t, binder.JSON(r, &p), binder.ErrInvalidJSON)
	})

	t.Run("trailing data rejected", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/", strings.NewReader(`{}{}`))
		r.Header.Set("Content-Type", "application/json")

		var p payload
		assert.ErrorIs(t, binder.JSON(r, &p), binder.ErrInvalidJSON)
	})
}
