package session_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/marathonfantasy/internal/session"
)

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := session.NewCodec(false)

	t.Run("full descriptor", func(t *testing.T) {
		t.Parallel()
		d := session.Descriptor{
			Token:       "7b1e8a52-11a4-4a86-a7b6-0f54be8ad6c1",
			SessionType: session.TypePlayer,
			DisplayName: "Ana",
			GameID:      "G1",
			PlayerCode:  "P1",
		}
		value, err := codec.Encode(d)
		require.NoError(t, err)

		got, err := codec.Decode(value)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("absent optionals survive", func(t *testing.T) {
		t.Parallel()
		d := session.Descriptor{
			Token:       "7b1e8a52-11a4-4a86-a7b6-0f54be8ad6c1",
			SessionType: session.TypeSpectator,
		}
		value, err := codec.Encode(d)
		require.NoError(t, err)

		got, err := codec.Decode(value)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("json field names match the client contract", func(t *testing.T) {
		t.Parallel()
		value, err := codec.Encode(session.Descriptor{
			Token:       "7b1e8a52-11a4-4a86-a7b6-0f54be8ad6c1",
			SessionType: session.TypePlayer,
			DisplayName: "Ana",
			GameID:      "G1",
			PlayerCode:  "P1",
		})
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(value)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(raw, &fields))
		for _, key := range []string{"token", "sessionType", "displayName", "gameId", "playerCode"} {
			assert.Contains(t, fields, key)
		}
	})

	t.Run("rejects garbage values", func(t *testing.T) {
		t.Parallel()
		for _, value := range []string{"%%%not-base64", base64.RawURLEncoding.EncodeToString([]byte("not json"))} {
			_, err := codec.Decode(value)
			require.ErrorIs(t, err, session.ErrBadCookie)
		}
	})
}

func TestCodecCookie(t *testing.T) {
	t.Parallel()

	d := session.Descriptor{
		Token:       "7b1e8a52-11a4-4a86-a7b6-0f54be8ad6c1",
		SessionType: session.TypePlayer,
		GameID:      "G1",
		PlayerCode:  "P1",
	}

	t.Run("write sets the canonical attributes", func(t *testing.T) {
		t.Parallel()
		codec := session.NewCodec(false)
		rec := httptest.NewRecorder()
		require.NoError(t, codec.Write(rec, d, 3600))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, session.CookieName, c.Name)
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.False(t, c.Secure)
		assert.Equal(t, 3600, c.MaxAge)
	})

	t.Run("secure flag follows the deployment", func(t *testing.T) {
		t.Parallel()
		codec := session.NewCodec(true)
		rec := httptest.NewRecorder()
		require.NoError(t, codec.Write(rec, d, 3600))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.True(t, cookies[0].Secure)
	})

	t.Run("read restores what write emitted", func(t *testing.T) {
		t.Parallel()
		codec := session.NewCodec(false)
		rec := httptest.NewRecorder()
		require.NoError(t, codec.Write(rec, d, 3600))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
		got, err := codec.Read(req)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("missing cookie reads as bad cookie", func(t *testing.T) {
		t.Parallel()
		codec := session.NewCodec(false)
		_, err := codec.Read(httptest.NewRequest(http.MethodGet, "/", nil))
		require.ErrorIs(t, err, session.ErrBadCookie)
	})

	t.Run("clear matches the attributes it set", func(t *testing.T) {
		t.Parallel()
		codec := session.NewCodec(false)
		rec := httptest.NewRecorder()
		codec.Clear(rec)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, session.CookieName, c.Name)
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, -1, c.MaxAge)
	})
}
