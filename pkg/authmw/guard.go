package authmw

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/scribeapp/scribe-web/pkg/session"
)

// Guard decides which paths an anonymous visitor may reach. Public
// paths match exactly, never by prefix, so "/dashboard" can't sneak in
// under "/". Asset prefixes are the exception: static files are always
// public.
type Guard struct {
	public        map[string]struct{}
	loginPath     string
	apiPrefix     string
	assetPrefixes []string
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithPublicPaths replaces the public allow-list.
func WithPublicPaths(paths ...string) GuardOption {
	return func(g *Guard) {
		g.public = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			g.public[p] = struct{}{}
		}
	}
}

// WithLoginPath sets the redirect target for anonymous page requests.
func WithLoginPath(path string) GuardOption {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithAPIPrefix sets the prefix under which anonymous requests get a
// 401 instead of a redirect.
func WithAPIPrefix(prefix string) GuardOption {
	return func(g *Guard) {
		g.apiPrefix = prefix
	}
}

// WithAssetPrefixes marks path prefixes that are always public.
func WithAssetPrefixes(prefixes ...string) GuardOption {
	return func(g *Guard) {
		g.assetPrefixes = prefixes
	}
}

// New creates a guard. Defaults: "/", "/login", "/register", "/healthz"
// public; login at "/login"; API prefix "/api/".
func New(opts ...GuardOption) *Guard {
	g := &Guard{
		public: map[string]struct{}{
			"/":         {},
			"/login":    {},
			"/register": {},
			"/healthz":  {},
		},
		loginPath: "/login",
		apiPrefix: "/api/",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allowed reports whether path is reachable without a session.
func (g *Guard) Allowed(path string) bool {
	if _, ok := g.public[path]; ok {
		return true
	}
	for _, prefix := range g.assetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware aborts anonymous requests to protected paths. This is
// terminal: the wrapped handler never runs for a rejected request.
func (g *Guard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if g.Allowed(path) || session.FromRequest(r).Authenticated() {
				next.ServeHTTP(w, r)
				return
			}

			if g.apiPrefix != "" && strings.HasPrefix(path, g.apiPrefix) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "unauthorized"}`))
				return
			}

			http.Redirect(w, r, g.loginPath+"?redirectTo="+url.QueryEscape(path), http.StatusSeeOther)
		})
	}
}
