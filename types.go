package opsconsole

import (
	"io"

	"github.com/faceattend/opsconsole/internal/api"
	internalaudit "github.com/faceattend/opsconsole/internal/audit"
)

// SystemStatus is the last known snapshot of the remote pipeline's run
// state. It is produced only by polls and replaced wholesale; consumers
// must treat it as read-only.
type SystemStatus = api.SystemStatus

// RemoteError is a failure reported by the remote API, carrying the
// server-supplied detail message when one was given.
type RemoteError = api.RemoteError

// SyncSnapshot is a read-only projection of the synchronization engine's
// state. Status is nil until the first successful poll and stays populated
// across later failures (stale-but-present beats absent). LastError holds
// the most recent poll or toggle failure and is cleared by the next
// successful poll.
type SyncSnapshot struct {
	Status         *SystemStatus
	Loading        bool
	LastError      string
	ToggleInFlight bool
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
