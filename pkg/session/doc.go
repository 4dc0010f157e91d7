// Package session owns the browser session: the auth cookie, the
// per-request context holding the resolved token and user, and the
// hydration middleware that resolves one from the other.
//
// The only persistent state is the cookie. Everything else lives for
// exactly one request: middleware builds a Context at request entry and
// handlers read it back with FromRequest. A hydrated user always has a
// backing token; a present-but-rejected token yields an anonymous
// context and expires the cookie so the browser stops replaying it.
package session
