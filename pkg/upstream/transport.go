package upstream

import (
	"net/http"
	"net/url"
	"strings"
)

// DestinationRule decides which outbound destinations may carry the
// session bearer token.
//
// A destination matches when its hostname equals Host (case-insensitive)
// or its path starts with ProxyPrefix. Anything else must never see the
// token.
type DestinationRule struct {
	// Host is the API hostname, compared exactly.
	Host string

	// ProxyPrefix is the local proxy path prefix (e.g. "/api/").
	ProxyPrefix string
}

// Matches reports whether u is a destination the token may be sent to.
func (r DestinationRule) Matches(u *url.URL) bool {
	if u == nil {
		return false
	}
	if r.Host != "" && strings.EqualFold(u.Hostname(), r.Host) {
		return true
	}
	return r.ProxyPrefix != "" && strings.HasPrefix(u.Path, r.ProxyPrefix)
}

// Transport is a RoundTripper decorator that injects the bearer token
// into requests whose destination matches the rule. Requests that
// already carry an Authorization header are left alone, so a retried
// request is never double-signed.
type Transport struct {
	Token string
	Rule  DestinationRule
	Next  http.RoundTripper
}

// NewTransport wraps next with bearer injection for the given token and
// rule. A nil next falls back to http.DefaultTransport.
func NewTransport(token string, rule DestinationRule, next http.RoundTripper) *Transport {
	return &Transport{Token: token, Rule: rule, Next: next}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}

	if t.Token != "" && t.Rule.Matches(req.URL) && req.Header.Get("Authorization") == "" {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	return next.RoundTrip(req)
}
