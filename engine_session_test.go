package opsconsole

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/faceattend/opsconsole/route"
	"github.com/faceattend/opsconsole/session"
)

func TestLoginWithPasswordEstablishesAndPersistsSession(t *testing.T) {
	store := session.NewMemoryStore()
	engine, _ := buildTestEngine(t, newFakeRemote(), nil, store)

	identity, home, err := engine.LoginWithPassword(context.Background(), "alice", testPassword)
	if err != nil {
		t.Fatalf("LoginWithPassword failed: %v", err)
	}
	if identity.Username != "alice" || identity.Role != session.RoleSuperAdmin {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if home != route.ViewSuperAdminHome {
		t.Fatalf("expected super admin home, got %q", home)
	}

	snap := engine.Session()
	if !snap.Authenticated || snap.Credential != testToken {
		t.Fatalf("expected authenticated session, got %+v", snap)
	}

	// Both entries persisted together.
	if _, ok, _ := store.Get(session.KeyCredential); !ok {
		t.Fatal("expected credential persisted")
	}
	raw, ok, _ := store.Get(session.KeyIdentity)
	if !ok {
		t.Fatal("expected identity persisted")
	}
	persisted, err := session.DecodeIdentity(raw)
	if err != nil {
		t.Fatalf("persisted identity corrupt: %v", err)
	}
	if persisted != identity {
		t.Fatalf("persisted identity mismatch: %+v != %+v", persisted, identity)
	}
}

func TestLoginWithPasswordRejectedLeavesSessionEmpty(t *testing.T) {
	store := session.NewMemoryStore()
	engine, _ := buildTestEngine(t, newFakeRemote(), nil, store)

	_, view, err := engine.LoginWithPassword(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("expected ErrCredentialRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "incorrect username or password") {
		t.Fatalf("expected server detail in error, got %q", err)
	}
	if view != route.ViewLogin {
		t.Fatalf("expected login view, got %q", view)
	}

	if snap := engine.Session(); snap.Authenticated || snap.Credential != "" {
		t.Fatalf("expected empty session after rejection, got %+v", snap)
	}
	if _, ok, _ := store.Get(session.KeyCredential); ok {
		t.Fatal("expected nothing persisted after rejection")
	}

	if got := engine.MetricsSnapshot().Counters[MetricLoginFailure]; got != 1 {
		t.Fatalf("expected 1 login failure, got %d", got)
	}
}

func TestLogoutClearsSessionAndStorage(t *testing.T) {
	store := session.NewMemoryStore()
	engine, _ := buildTestEngine(t, newFakeRemote(), nil, store)

	if _, _, err := engine.LoginWithPassword(context.Background(), "alice", testPassword); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := engine.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if snap := engine.Session(); snap.Authenticated {
		t.Fatalf("expected logged out, got %+v", snap)
	}
	if _, ok, _ := store.Get(session.KeyCredential); ok {
		t.Fatal("expected storage cleared")
	}
	if _, ok, _ := store.Get(session.KeyIdentity); ok {
		t.Fatal("expected storage cleared")
	}

	// Logging out while logged out is harmless.
	if err := engine.Logout(); err != nil {
		t.Fatalf("repeat Logout failed: %v", err)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	store := session.NewMemoryStore()
	remote := newFakeRemote()

	first, _ := buildTestEngine(t, remote, nil, store)
	identity, _, err := first.LoginWithPassword(context.Background(), "alice", testPassword)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// A fresh engine over the same store picks the session up without any
	// remote traffic.
	second, _ := buildTestEngine(t, remote, nil, store)
	loginsBefore, _, _, _ := remote.counts()

	if !second.Restore() {
		t.Fatal("expected restore to succeed")
	}

	snap := second.Session()
	if !snap.Authenticated || snap.Identity != identity || snap.Credential != testToken {
		t.Fatalf("restored session mismatch: %+v", snap)
	}

	loginsAfter, _, _, _ := remote.counts()
	if loginsAfter != loginsBefore {
		t.Fatal("restore must not hit the remote API")
	}
	if got := second.MetricsSnapshot().Counters[MetricSessionRestored]; got != 1 {
		t.Fatalf("expected 1 restore, got %d", got)
	}
}

func TestRestoreEmptyStore(t *testing.T) {
	engine, _ := buildTestEngine(t, newFakeRemote(), nil, session.NewMemoryStore())

	if engine.Restore() {
		t.Fatal("expected restore to fail on empty store")
	}
	if engine.Session().Authenticated {
		t.Fatal("expected logged out")
	}
}

func TestRestoreCorruptIdentityClearsBothEntries(t *testing.T) {
	store := session.NewMemoryStore()
	_ = store.Set(session.KeyCredential, "tok")
	_ = store.Set(session.KeyIdentity, "{definitely not json")

	engine, _ := buildTestEngine(t, newFakeRemote(), nil, store)

	if engine.Restore() {
		t.Fatal("expected restore to fail on corrupt identity")
	}
	if _, ok, _ := store.Get(session.KeyCredential); ok {
		t.Fatal("expected credential cleared alongside corrupt identity")
	}
	if _, ok, _ := store.Get(session.KeyIdentity); ok {
		t.Fatal("expected corrupt identity cleared")
	}
	if got := engine.MetricsSnapshot().Counters[MetricSessionCorrupted]; got != 1 {
		t.Fatalf("expected 1 corruption recovery, got %d", got)
	}

	// The next restore starts from a clean slate.
	if engine.Restore() {
		t.Fatal("expected second restore to find nothing")
	}
}

func TestRestorePartialStateClearsSurvivor(t *testing.T) {
	encoded, err := session.EncodeIdentity(session.Identity{ID: 1, Username: "alice", Role: session.RoleAdmin, Active: true})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	cases := map[string]func(session.Store){
		"credential only": func(s session.Store) { _ = s.Set(session.KeyCredential, "tok") },
		"identity only":   func(s session.Store) { _ = s.Set(session.KeyIdentity, encoded) },
	}

	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			store := session.NewMemoryStore()
			seed(store)

			engine, _ := buildTestEngine(t, newFakeRemote(), nil, store)
			if engine.Restore() {
				t.Fatal("expected partial state to count as logged out")
			}
			if _, ok, _ := store.Get(session.KeyCredential); ok {
				t.Fatal("expected namespace cleared")
			}
			if _, ok, _ := store.Get(session.KeyIdentity); ok {
				t.Fatal("expected namespace cleared")
			}
		})
	}
}

func TestRestoreExpiredCredentialDropped(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	encoded, err := session.EncodeIdentity(session.Identity{ID: 1, Username: "alice", Role: session.RoleAdmin, Active: true})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	store := session.NewMemoryStore()
	_ = store.Set(session.KeyCredential, expired)
	_ = store.Set(session.KeyIdentity, encoded)

	engine, _ := buildTestEngine(t, newFakeRemote(), nil, store)

	if engine.Restore() {
		t.Fatal("expected expired credential to be dropped")
	}
	if _, ok, _ := store.Get(session.KeyCredential); ok {
		t.Fatal("expected namespace cleared")
	}
	if got := engine.MetricsSnapshot().Counters[MetricSessionExpired]; got != 1 {
		t.Fatalf("expected 1 expired drop, got %d", got)
	}
}

func TestRestoreOpaqueCredentialAccepted(t *testing.T) {
	encoded, err := session.EncodeIdentity(session.Identity{ID: 1, Username: "alice", Role: session.RoleEmployee, Active: true})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	store := session.NewMemoryStore()
	_ = store.Set(session.KeyCredential, "opaque-session-id")
	_ = store.Set(session.KeyIdentity, encoded)

	engine, _ := buildTestEngine(t, newFakeRemote(), nil, store)

	// Only the server can judge an opaque credential; restore optimistically.
	if !engine.Restore() {
		t.Fatal("expected opaque credential to restore")
	}
	if snap := engine.Session(); snap.Credential != "opaque-session-id" {
		t.Fatalf("unexpected session %+v", snap)
	}
}

func TestUpdateIdentity(t *testing.T) {
	store := session.NewMemoryStore()
	engine, _ := buildTestEngine(t, newFakeRemote(), nil, store)

	// Unauthenticated update is a silent no-op.
	if err := engine.UpdateIdentity(session.Identity{Username: "ghost"}); err != nil {
		t.Fatalf("unauthenticated UpdateIdentity errored: %v", err)
	}
	if _, ok, _ := store.Get(session.KeyIdentity); ok {
		t.Fatal("expected nothing persisted while unauthenticated")
	}

	if _, _, err := engine.LoginWithPassword(context.Background(), "alice", testPassword); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	updated := engine.Session().Identity
	updated.EmployeeID = "EMP-999"
	if err := engine.UpdateIdentity(updated); err != nil {
		t.Fatalf("UpdateIdentity failed: %v", err)
	}

	if got := engine.Session().Identity; got != updated {
		t.Fatalf("expected updated identity, got %+v", got)
	}
	raw, ok, _ := store.Get(session.KeyIdentity)
	if !ok {
		t.Fatal("expected identity persisted")
	}
	persisted, err := session.DecodeIdentity(raw)
	if err != nil || persisted != updated {
		t.Fatalf("persisted identity mismatch: %+v err=%v", persisted, err)
	}
	// Credential untouched.
	if cred, ok, _ := store.Get(session.KeyCredential); !ok || cred != testToken {
		t.Fatalf("expected credential untouched, got %q ok=%v", cred, ok)
	}
}

func TestUnauthorizedResponseForcesLogout(t *testing.T) {
	store := session.NewMemoryStore()
	remote := newFakeRemote()
	engine, _ := buildTestEngine(t, remote, nil, store)

	if _, _, err := engine.LoginWithPassword(context.Background(), "alice", testPassword); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// The server starts rejecting the credential; the next poll trips the
	// global 401 contract.
	remote.set(func(f *fakeRemote) { f.rejectAll = true })

	if err := engine.StartSync(); err != nil {
		t.Fatalf("StartSync failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return !engine.Session().Authenticated
	}, "expected forced logout after 401")

	if _, ok, _ := store.Get(session.KeyCredential); ok {
		t.Fatal("expected storage cleared on forced logout")
	}
	if got := engine.MetricsSnapshot().Counters[MetricForcedLogout]; got == 0 {
		t.Fatal("expected forced logout metric")
	}
}
