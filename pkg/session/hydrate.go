package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/scribeapp/scribe-web/pkg/upstream"
)

// UserResolver resolves a bearer token to a profile. Satisfied by
// *upstream.Client.
type UserResolver interface {
	Me(ctx context.Context, token string) (*upstream.User, error)
}

// Hydrator is middleware that turns the auth cookie into a request
// Context. It issues at most one whoami call per request, before any
// route logic runs.
type Hydrator struct {
	cookies  *CookieStore
	resolver UserResolver
	logger   *slog.Logger
}

// NewHydrator creates a hydrator backed by the given cookie store and
// resolver.
func NewHydrator(cookies *CookieStore, resolver UserResolver, logger *slog.Logger) *Hydrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hydrator{
		cookies:  cookies,
		resolver: resolver,
		logger:   logger.With("component", "session"),
	}
}

// Middleware hydrates the session context for every request.
//
// No cookie: the request proceeds anonymous with no upstream call.
// A present token is exchanged for a user via the resolver; any failure
// (rejection, transport error, malformed body) fails closed to an
// anonymous context, and the cookie is expired so the browser does not
// replay a dead token on every request.
func (h *Hydrator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := h.cookies.Read(r)
			if token == "" {
				next.ServeHTTP(w, r.WithContext(NewRequestContext(r.Context(), Context{})))
				return
			}

			user, err := h.resolver.Me(r.Context(), token)
			if err != nil {
				h.logger.Info("session hydration failed, clearing cookie", "err", err)
				h.cookies.Clear(w)
				next.ServeHTTP(w, r.WithContext(NewRequestContext(r.Context(), Context{})))
				return
			}

			sc := Context{Token: token, User: user}
			next.ServeHTTP(w, r.WithContext(NewRequestContext(r.Context(), sc)))
		})
	}
}
