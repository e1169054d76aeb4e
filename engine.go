package opsconsole

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faceattend/opsconsole/internal/api"
	internalaudit "github.com/faceattend/opsconsole/internal/audit"
	"github.com/faceattend/opsconsole/session"
)

// Engine is the console core: it owns the current session, the persisted
// storage namespace, and the status synchronization loop. Engines are
// created through [Builder.Build] and are safe for concurrent use; all
// other components receive read-only projections.
type Engine struct {
	config  Config
	store   session.Store
	api     *api.Client
	audit   *internalaudit.Dispatcher
	metrics *Metrics
	closed  atomic.Bool

	// Session state. Mutated only by the session operations and the
	// unauthorized hook.
	sessionMu     sync.RWMutex
	identity      session.Identity
	credential    string
	authenticated bool

	// Synchronization state. Mutated only by the sync loop, Toggle, and
	// StopSync, all behind syncMu.
	syncMu      sync.Mutex
	sync        syncState
	syncGen     uint64
	syncCtx     context.Context
	syncCancel  context.CancelFunc
	syncWG      sync.WaitGroup
	settleTimer *time.Timer
}

// Close stops the synchronization loop and drains the audit dispatcher.
// The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closed.Store(true)
	e.StopSync()
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(eventType string, success bool, username string, err error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now(),
		EventType: eventType,
		Username:  username,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(context.Background(), event)
}
