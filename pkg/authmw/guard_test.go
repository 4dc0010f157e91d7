package authmw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scribeapp/scribe-web/pkg/session"
	"github.com/scribeapp/scribe-web/pkg/upstream"
)

func serveGuarded(t *testing.T, g *Guard, path string, sc session.Context) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	called := false
	handler := g.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, path, nil)
	r = r.WithContext(session.NewRequestContext(r.Context(), sc))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, r)
	return rr, called
}

func TestGuardRedirectsAnonymousFromProtectedPage(t *testing.T) {
	rr, called := serveGuarded(t, New(), "/dashboard", session.Context{})

	if called {
		t.Fatal("handler ran for a rejected request")
	}
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/login?redirectTo=%2Fdashboard" {
		t.Fatalf("Location = %q, want /login?redirectTo=%%2Fdashboard", got)
	}
}

func TestGuardPublicPathsRenderWithoutSession(t *testing.T) {
	for _, path := range []string{"/", "/login", "/register", "/healthz"} {
		t.Run(path, func(t *testing.T) {
			rr, called := serveGuarded(t, New(), path, session.Context{})
			if !called {
				t.Fatalf("handler did not run for public path %s", path)
			}
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
		})
	}
}

func TestGuardExactMatchNotPrefix(t *testing.T) {
	_, called := serveGuarded(t, New(), "/login/extra", session.Context{})
	if called {
		t.Fatal("prefix of a public path must not be public")
	}
}

func TestGuardPassesAuthenticatedUser(t *testing.T) {
	sc := session.Context{Token: "T", User: &upstream.User{ID: 1}}
	_, called := serveGuarded(t, New(), "/dashboard", sc)
	if !called {
		t.Fatal("handler did not run for authenticated request")
	}
}

func TestGuardAPIRequestsGet401NotRedirect(t *testing.T) {
	rr, called := serveGuarded(t, New(), "/api/notes/add", session.Context{})

	if called {
		t.Fatal("handler ran for anonymous API request")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", got)
	}
}

func TestGuardAssetPrefixAlwaysPublic(t *testing.T) {
	g := New(WithAssetPrefixes("/static/"))
	_, called := serveGuarded(t, g, "/static/app.css", session.Context{})
	if !called {
		t.Fatal("static asset was gated")
	}
}
