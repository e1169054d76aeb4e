package session

import "errors"

// Storage keys owned by the engine. The namespace holds exactly these two
// entries; they are written together and cleared together.
const (
	// KeyCredential holds the opaque bearer credential.
	KeyCredential = "token"
	// KeyIdentity holds the JSON-encoded identity.
	KeyIdentity = "identity"
)

// DefaultNamespace is the storage namespace used when none is configured.
const DefaultNamespace = "console-auth"

// ErrStoreUnavailable is returned when a store backend cannot be reached.
var ErrStoreUnavailable = errors.New("persisted store unavailable")

// Store is the durable client-side storage contract. Implementations map a
// small set of named string values under a single logical namespace and
// survive process restarts (the memory backend deliberately does not; it is
// the default for embedders that opt out of persistence, and the test
// double).
//
// Calls are synchronous. Get reports absence through the second return
// value, not through an error.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}
