package opsconsole

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faceattend/opsconsole/internal/api"
	"github.com/faceattend/opsconsole/route"
	"github.com/faceattend/opsconsole/session"
	"github.com/faceattend/opsconsole/token"
)

// Session returns a read-only snapshot of the current session.
func (e *Engine) Session() session.Snapshot {
	e.sessionMu.RLock()
	defer e.sessionMu.RUnlock()

	return session.Snapshot{
		Identity:      e.identity,
		Credential:    e.credential,
		Authenticated: e.authenticated,
	}
}

// credentialSnapshot supplies the bearer token for outgoing requests. It
// intentionally ignores the authenticated flag: the login flow holds a
// credential before the identity fetch completes the session.
func (e *Engine) credentialSnapshot() string {
	e.sessionMu.RLock()
	defer e.sessionMu.RUnlock()
	return e.credential
}

// Login sets and persists the session unconditionally. It trusts the
// caller to invoke it only after a server-confirmed exchange; no
// client-side validation of the identity or credential is performed. The
// in-memory session is authenticated even when persistence fails — the
// returned error concerns durability only.
func (e *Engine) Login(identity session.Identity, credential string) error {
	e.sessionMu.Lock()
	e.identity = identity
	e.credential = credential
	e.authenticated = true
	e.sessionMu.Unlock()

	return e.persistSession(identity, credential)
}

// LoginWithPassword performs the full login exchange: credential swap,
// identity fetch, session persistence. It returns the identity and its
// home view for the post-login redirect. A rejected exchange is reported
// as [ErrCredentialRejected] carrying the server's detail message; the
// session stays empty and the user must resubmit.
func (e *Engine) LoginWithPassword(ctx context.Context, username, password string) (session.Identity, route.View, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.API.RequestTimeout)
	defer cancel()

	credential, err := e.api.Login(ctx, username, password)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(auditEventLoginFailure, false, username, err, nil)
		return session.Identity{}, route.ViewLogin, fmt.Errorf("%w: %s", ErrCredentialRejected, api.Detail(err, "login failed"))
	}

	// Hold the credential so the identity fetch authenticates, but leave
	// the session unauthenticated until the identity arrives: a partial
	// session must never be observable.
	e.sessionMu.Lock()
	e.credential = credential
	e.sessionMu.Unlock()

	identity, err := e.api.CurrentIdentity(ctx)
	if err != nil {
		e.sessionMu.Lock()
		e.credential = ""
		e.sessionMu.Unlock()
		e.metricInc(MetricLoginFailure)
		e.emitAudit(auditEventLoginFailure, false, username, err, func() map[string]string {
			return map[string]string{"reason": "identity_fetch_failed"}
		})
		return session.Identity{}, route.ViewLogin, fmt.Errorf("%w: %s", ErrCredentialRejected, api.Detail(err, "failed to load profile"))
	}

	persistErr := e.Login(identity, credential)

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(auditEventLoginSuccess, true, identity.Username, nil, func() map[string]string {
		return map[string]string{"role": string(identity.Role)}
	})

	return identity, route.Home(identity.Role), persistErr
}

// Logout clears the session and the persisted namespace. It is idempotent
// on state; the storage clear is attempted every time, even when already
// logged out.
func (e *Engine) Logout() error {
	e.sessionMu.Lock()
	wasAuthenticated := e.authenticated
	username := e.identity.Username
	e.identity = session.Identity{}
	e.credential = ""
	e.authenticated = false
	e.sessionMu.Unlock()

	err := e.store.Clear()

	if wasAuthenticated {
		e.metricInc(MetricLogout)
		e.emitAudit(auditEventLogout, err == nil, username, err, nil)
	}
	return err
}

// UpdateIdentity replaces the identity of an authenticated session and
// re-persists it, leaving the credential untouched. Calling it while
// unauthenticated is caller misuse and a silent no-op.
func (e *Engine) UpdateIdentity(identity session.Identity) error {
	e.sessionMu.Lock()
	if !e.authenticated {
		e.sessionMu.Unlock()
		return nil
	}
	e.identity = identity
	e.sessionMu.Unlock()

	encoded, err := session.EncodeIdentity(identity)
	if err != nil {
		return err
	}
	return e.store.Set(session.KeyIdentity, encoded)
}

// Restore rehydrates the session from persisted storage, once at process
// start. It reports whether a session was restored. Every failure mode —
// unreadable backend, partial entries, corrupt identity, clearly expired
// credential — degrades to logged out, clearing the namespace where
// needed; corruption never surfaces as an error.
func (e *Engine) Restore() bool {
	credential, haveCredential, err := e.store.Get(session.KeyCredential)
	if err != nil {
		return false
	}
	raw, haveIdentity, err := e.store.Get(session.KeyIdentity)
	if err != nil {
		return false
	}

	if !haveCredential || !haveIdentity {
		// Partial state counts as logged out; drop the surviving half.
		if haveCredential || haveIdentity {
			_ = e.store.Clear()
		}
		return false
	}

	identity, err := session.DecodeIdentity(raw)
	if err != nil {
		_ = e.store.Clear()
		e.metricInc(MetricSessionCorrupted)
		e.emitAudit(auditEventSessionCorrupted, false, "", err, nil)
		return false
	}

	if token.Expired(credential, time.Now()) {
		_ = e.store.Clear()
		e.metricInc(MetricSessionExpired)
		e.emitAudit(auditEventSessionExpired, false, identity.Username, nil, nil)
		return false
	}

	_ = e.Login(identity, credential)

	e.metricInc(MetricSessionRestored)
	e.emitAudit(auditEventSessionRestored, true, identity.Username, nil, nil)
	return true
}

// handleUnauthorized is the global 401 contract: any authenticated call
// rejected by the remote API clears the session immediately. The caller of
// the failed request still receives [ErrUnauthorized]; navigation is the
// embedder's concern via [route.Decide].
func (e *Engine) handleUnauthorized() {
	e.sessionMu.Lock()
	if !e.authenticated {
		e.sessionMu.Unlock()
		return
	}
	username := e.identity.Username
	e.identity = session.Identity{}
	e.credential = ""
	e.authenticated = false
	e.sessionMu.Unlock()

	_ = e.store.Clear()

	e.metricInc(MetricForcedLogout)
	e.emitAudit(auditEventForcedLogout, false, username, ErrUnauthorized, nil)
}

func (e *Engine) persistSession(identity session.Identity, credential string) error {
	encoded, err := session.EncodeIdentity(identity)
	if err != nil {
		return err
	}
	return errors.Join(
		e.store.Set(session.KeyCredential, credential),
		e.store.Set(session.KeyIdentity, encoded),
	)
}
