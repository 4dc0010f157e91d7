package upstream

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the API rejects the credentials or
// token with a 401.
var ErrUnauthorized = errors.New("upstream: unauthorized")

// ErrUnavailable is returned when the API could not be reached or its
// response could not be decoded. The caller treats this the same as a
// rejected call: fail closed.
var ErrUnavailable = errors.New("upstream: unavailable")

// StatusError carries a non-2xx API status plus the raw error body for
// relaying through a proxy endpoint.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: status %d", e.Status)
}

// Is maps 401 responses onto ErrUnauthorized so callers can use
// errors.Is without inspecting the status themselves.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}
