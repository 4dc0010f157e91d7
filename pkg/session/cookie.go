package session

import (
	"net/http"
	"strings"
)

// DefaultCookieName is the auth cookie set on login.
const DefaultCookieName = "auth_token"

// CookieStore reads and writes the session token cookie. The cookie is
// HttpOnly, SameSite=Lax, scoped to path "/", and carries no Max-Age on
// set: expiry is the API token's problem, not ours.
type CookieStore struct {
	name   string
	secure bool
}

// CookieOption configures a CookieStore.
type CookieOption func(*CookieStore)

// WithCookieName overrides the cookie name.
func WithCookieName(name string) CookieOption {
	return func(s *CookieStore) {
		if name != "" {
			s.name = name
		}
	}
}

// WithSecure controls the Secure attribute. Disable only for plain-HTTP
// local development.
func WithSecure(secure bool) CookieOption {
	return func(s *CookieStore) {
		s.secure = secure
	}
}

// NewCookieStore creates a store with secure defaults.
func NewCookieStore(opts ...CookieOption) *CookieStore {
	s := &CookieStore{
		name:   DefaultCookieName,
		secure: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the cookie name.
func (s *CookieStore) Name() string {
	return s.name
}

// Read returns the token from the request, or "" when the cookie is
// absent or empty.
func (s *CookieStore) Read(r *http.Request) string {
	cookie, err := r.Cookie(s.name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// Write sets the token cookie. Exactly one token per browser session:
// a login overwrites whatever was there.
func (s *CookieStore) Write(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the cookie with an empty value and immediate expiry.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
