// Package upstream is the HTTP client for the Scribe API.
//
// Every outbound call the frontend makes to the API goes through this
// package. Credential injection is handled by Transport, a RoundTripper
// decorator that attaches the session bearer token only to destinations
// matched by a DestinationRule. Calls to any other host (for example
// the avatar storage endpoint) pass through untouched.
package upstream
