// Package middleware provides HTTP middleware for the Scribe frontend:
// OpenTelemetry request tracing and trusted-proxy-aware client IP
// resolution.
package middleware
