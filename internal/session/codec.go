package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/marathonfantasy/pkg/cookie"
)

// ErrBadCookie indicates the descriptor cookie is missing or undecodable.
var ErrBadCookie = errors.New("session.bad_cookie")

// Descriptor is the compact session state embedded in the cookie. Field
// names match the JSON the original web client wrote, so either side can
// read a cookie written by the other.
type Descriptor struct {
	Token       string `json:"token"`
	SessionType Type   `json:"sessionType"`
	DisplayName string `json:"displayName,omitempty"`
	GameID      string `json:"gameId,omitempty"`
	PlayerCode  string `json:"playerCode,omitempty"`
}

// Codec serializes a Descriptor into the marathon_fantasy_team cookie and
// back. Write and Clear share one canonical attribute set through the
// cookie manager; a mismatch on Path or SameSite would leave the original
// cookie uncleared in the browser.
type Codec struct {
	cookies *cookie.Manager
}

// NewCodec builds the codec. The cookie is HttpOnly (clearing it requires
// the logout endpoint, not page script), SameSite=Lax so top-level
// navigation from a shared URL carries it, and Secure on production-like
// deployments.
func NewCodec(secure bool) *Codec {
	return &Codec{
		cookies: cookie.New(
			cookie.WithPath("/"),
			cookie.WithHTTPOnly(true),
			cookie.WithSameSite(http.SameSiteLaxMode),
			cookie.WithSecure(secure),
		),
	}
}

// Encode serializes d to the opaque cookie value. The encoding round-trips
// all fields, including absent optionals.
func (c *Codec) Encode(d Descriptor) (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode is the inverse of Encode.
func (c *Codec) Decode(value string) (Descriptor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Descriptor{}, errors.Join(ErrBadCookie, err)
	}
	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return Descriptor{}, errors.Join(ErrBadCookie, err)
	}
	return d, nil
}

// Write emits the descriptor cookie with Max-Age set to the session's
// remaining validity in seconds.
func (c *Codec) Write(w http.ResponseWriter, d Descriptor, maxAgeSeconds int) error {
	value, err := c.Encode(d)
	if err != nil {
		return err
	}
	c.cookies.Set(w, CookieName, value, cookie.WithMaxAge(maxAgeSeconds))
	return nil
}

// Read parses the incoming request's descriptor cookie.
func (c *Codec) Read(r *http.Request) (Descriptor, error) {
	value, err := c.cookies.Get(r, CookieName)
	if err != nil {
		return Descriptor{}, errors.Join(ErrBadCookie, err)
	}
	return c.Decode(value)
}

// Clear re-emits the cookie immediately expired with otherwise identical
// attributes.
func (c *Codec) Clear(w http.ResponseWriter) {
	c.cookies.Delete(w, CookieName)
}
