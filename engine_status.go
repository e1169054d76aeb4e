package opsconsole

import (
	"context"
	"time"

	"github.com/faceattend/opsconsole/internal/api"
)

// syncState is the live-status projection shared with embedders. Guarded
// by Engine.syncMu.
type syncState struct {
	status     *api.SystemStatus
	loading    bool
	lastError  string
	toggleBusy bool
}

// StartSync starts the background status loop: an immediate poll, then one
// poll per configured interval. It requires an authenticated session.
// Calling it while a loop is already running is a no-op. Polls run
// concurrently with everything else; a slow poll never delays the next
// tick, and whichever result lands last wins.
func (e *Engine) StartSync() error {
	if e == nil || e.api == nil {
		return ErrEngineNotReady
	}
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if !e.Session().Authenticated {
		return ErrNotAuthenticated
	}

	e.syncMu.Lock()
	if e.syncCancel != nil {
		e.syncMu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.syncCtx = ctx
	e.syncCancel = cancel
	gen := e.syncGen
	e.syncMu.Unlock()

	e.emitAudit(auditEventSyncStarted, true, "", nil, nil)

	e.syncWG.Add(1)
	go func() {
		defer e.syncWG.Done()

		e.pollOnce(ctx, gen)

		ticker := time.NewTicker(e.config.Sync.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.syncWG.Add(1)
				go func() {
					defer e.syncWG.Done()
					e.pollOnce(ctx, gen)
				}()
			}
		}
	}()

	return nil
}

// StopSync cancels the status loop, the pending confirmation poll, and
// invalidates any in-flight poll so its result is discarded. It waits for
// outstanding polls to finish and is safe to call repeatedly.
func (e *Engine) StopSync() {
	e.syncMu.Lock()
	running := e.syncCancel != nil
	if running {
		e.syncCancel()
		e.syncCtx = nil
		e.syncCancel = nil
	}
	if e.settleTimer != nil {
		e.settleTimer.Stop()
		e.settleTimer = nil
	}
	e.syncGen++
	e.syncMu.Unlock()

	e.syncWG.Wait()

	if running {
		e.emitAudit(auditEventSyncStopped, true, "", nil, nil)
	}
}

// pollOnce fetches the remote status and folds the result into the shared
// state, unless gen has moved on in the meantime. A failed poll records
// the error message but keeps the previous status untouched.
func (e *Engine) pollOnce(parent context.Context, gen uint64) {
	e.syncMu.Lock()
	if gen != e.syncGen {
		e.syncMu.Unlock()
		return
	}
	e.sync.loading = true
	e.syncMu.Unlock()

	ctx, cancel := context.WithTimeout(parent, e.config.Sync.RequestTimeout)
	defer cancel()

	start := time.Now()
	status, err := e.api.SystemStatus(ctx)
	if e.metrics != nil {
		e.metrics.Observe(MetricPollLatency, time.Since(start))
	}

	e.syncMu.Lock()
	// Loading reflects only an in-flight request; it clears even when the
	// generation moved on and the result below is discarded.
	e.sync.loading = false
	if gen != e.syncGen {
		e.syncMu.Unlock()
		return
	}
	if err != nil {
		e.sync.lastError = api.Detail(err, "failed to fetch system status")
		e.syncMu.Unlock()
		e.metricInc(MetricPollFailure)
		e.emitAudit(auditEventPollFailure, false, "", err, nil)
		return
	}
	e.sync.status = status
	e.sync.lastError = ""
	e.syncMu.Unlock()

	e.metricInc(MetricPollSuccess)
}

// Toggle flips the running state of the remote system: stop when running,
// start when stopped, decided against the latest polled status. It reports
// whether a command was issued. Without a status baseline no command is
// sent and (false, nil) is returned; a toggle already in flight returns
// [ErrToggleBusy]. After a successful command a single confirmation poll
// is scheduled once the configured settle delay elapses, so the snapshot
// reflects the side the system actually landed on.
func (e *Engine) Toggle(ctx context.Context) (bool, error) {
	e.syncMu.Lock()
	if e.sync.toggleBusy {
		e.syncMu.Unlock()
		return false, ErrToggleBusy
	}
	if e.sync.status == nil {
		e.syncMu.Unlock()
		e.metricInc(MetricToggleSkipped)
		return false, nil
	}
	running := e.sync.status.Running
	gen := e.syncGen
	syncCtx := e.syncCtx
	e.sync.toggleBusy = true
	e.syncMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.config.API.RequestTimeout)
	defer cancel()

	var err error
	if running {
		err = e.api.StopSystem(ctx)
	} else {
		err = e.api.StartSystem(ctx)
	}

	e.syncMu.Lock()
	// The busy flag is local mutual exclusion, not polled state: it clears
	// on every exit path, even when the loop was torn down mid-command.
	// Only the error string and the confirmation poll stay generation-gated.
	e.sync.toggleBusy = false
	if gen == e.syncGen {
		if err != nil {
			e.sync.lastError = api.Detail(err, "failed to toggle system")
		} else if syncCtx != nil {
			// One out-of-band poll after the remote pipeline settles, so
			// the UI converges before the next scheduled tick.
			pollCtx := syncCtx
			e.settleTimer = time.AfterFunc(e.config.Sync.SettleDelay, func() {
				e.pollOnce(pollCtx, gen)
			})
		}
	}
	e.syncMu.Unlock()

	if err != nil {
		e.metricInc(MetricToggleFailure)
		e.emitAudit(auditEventToggleFailure, false, "", err, func() map[string]string {
			return map[string]string{"was_running": boolString(running)}
		})
		return true, err
	}

	e.metricInc(MetricToggleIssued)
	e.emitAudit(auditEventToggleIssued, true, "", nil, func() map[string]string {
		return map[string]string{"was_running": boolString(running)}
	})
	return true, nil
}

// StatusSnapshot returns a point-in-time copy of the synchronization
// state. The returned status is a private copy; mutating it does not
// affect the engine.
func (e *Engine) StatusSnapshot() SyncSnapshot {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	snap := SyncSnapshot{
		Loading:        e.sync.loading,
		LastError:      e.sync.lastError,
		ToggleInFlight: e.sync.toggleBusy,
	}
	if e.sync.status != nil {
		s := *e.sync.status
		snap.Status = &s
	}
	return snap
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
