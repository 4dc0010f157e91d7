package session

import (
	"context"
	"net/http"

	"github.com/scribeapp/scribe-web/pkg/upstream"
)

// Context is the per-request session state. It is built once at request
// entry and never shared across requests.
//
// Invariant: User != nil implies Token != "". The converse does not
// hold; a token the API rejected is dropped from the context entirely.
type Context struct {
	Token string
	User  *upstream.User
}

// Authenticated reports whether the request has a hydrated user.
func (c Context) Authenticated() bool {
	return c.User != nil
}

type contextKey struct{}

// NewRequestContext returns ctx carrying the session context.
func NewRequestContext(ctx context.Context, sc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// FromContext returns the session context, or an anonymous one when the
// hydration middleware did not run.
func FromContext(ctx context.Context) Context {
	if sc, ok := ctx.Value(contextKey{}).(Context); ok {
		return sc
	}
	return Context{}
}

// FromRequest is FromContext on the request's context.
func FromRequest(r *http.Request) Context {
	return FromContext(r.Context())
}
