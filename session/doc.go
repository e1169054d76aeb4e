// Package session provides the session data model and the persisted-store
// contract that lets a session survive process restarts.
//
// # Persistence layout
//
// A session is two named entries under one logical namespace: the opaque
// credential string and the JSON-encoded [Identity]. Both are written
// together and cleared together; a corrupted identity entry clears both
// during rehydration.
//
// # Architecture boundaries
//
// This package owns the [Store] contract and its backends (memory, file,
// Redis) plus the [Identity] codec. It does NOT decide authentication state,
// talk to the remote API, or evaluate roles beyond ranking — those
// responsibilities belong to the Engine and the route package.
//
// # What this package must NOT do
//
//   - Import opsconsole, route, or internal/api (no upward imports).
//   - Validate credentials. The credential is opaque to the client.
//   - Share the storage namespace with any other component.
package session
