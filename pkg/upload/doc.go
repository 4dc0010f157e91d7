// Package upload stores profile pictures on an external object store.
//
// The upload target is a third-party destination: requests to it are
// signed with the store's own credentials and must never carry the
// session bearer token. That is why this package takes no dependency on
// pkg/session and builds its requests outside the upstream client.
package upload
