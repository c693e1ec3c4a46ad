package session

// CookieName is the session descriptor cookie. The name and its attribute
// set are an external contract shared with existing clients, so they must
// not change.
const CookieName = "marathon_fantasy_team"

const (
	// DefaultExpiryDays applies when a creation or extension request omits
	// the day count.
	DefaultExpiryDays = 90
	// MaxExpiryDays caps creation expiry and per-call extension.
	MaxExpiryDays = 365
)

// Config holds session manager settings, populated from the environment.
type Config struct {
	// BaseURL is the public origin used to build shareable session URLs.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// SecureCookies gates the Secure flag on the descriptor cookie.
	// Enabled on production-like deployments.
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}
