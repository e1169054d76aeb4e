// Package opsconsole provides the session and synchronization core of a
// role-aware supervisory console for a remote face-tracking attendance
// pipeline: credential exchange and persisted sessions, a three-tier
// authorization gate over navigation, and a polling engine that keeps a
// cached snapshot of the pipeline's run state reconciled with
// user-triggered start/stop commands.
//
// The package is designed for long-lived client processes: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// opsconsole is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (SyncSnapshot, MetricsSnapshot, audit sinks).
// Transport wire formats and audit dispatch live under internal/ and are
// never exported; the session model and the authorization gate live in the
// session and route subpackages.
//
// # What this package must NOT do
//
//   - Validate credentials client-side. Tokens are opaque; the server is
//     the only authority, reached through the global 401 contract.
//   - Merge status snapshots. Each successful poll replaces the cached
//     status wholesale; a failed poll leaves the previous snapshot visible.
//   - Write to the persisted store from anywhere but the session engine.
package opsconsole
