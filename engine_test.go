package opsconsole

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/faceattend/opsconsole/session"
)

const (
	testToken    = "test-access-token"
	testPassword = "correct-password-123"
)

// fakeRemote is an in-process stand-in for the attendance pipeline API.
type fakeRemote struct {
	mu sync.Mutex

	running   bool
	uptime    int64
	camCount  int
	role      session.Role
	rejectAll bool
	failPolls bool
	failCmds  bool
	slowCmds  time.Duration
	slowPolls time.Duration

	loginCalls  int
	statusCalls int
	startCalls  int
	stopCalls   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		running:  true,
		uptime:   120,
		camCount: 3,
		role:     session.RoleSuperAdmin,
	}
}

func (f *fakeRemote) set(fn func(*fakeRemote)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeRemote) counts() (login, status, start, stop int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.statusCalls, f.startCalls, f.stopCalls
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		f.handleLogin(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/auth/me":
		f.authed(w, r, f.handleMe)
	case r.Method == http.MethodGet && r.URL.Path == "/system/status":
		f.authed(w, r, f.handleStatus)
	case r.Method == http.MethodPost && r.URL.Path == "/system/start":
		f.authed(w, r, f.handleStart)
	case r.Method == http.MethodPost && r.URL.Path == "/system/stop":
		f.authed(w, r, f.handleStop)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeRemote) authed(w http.ResponseWriter, r *http.Request, next func(http.ResponseWriter, *http.Request)) {
	f.mu.Lock()
	reject := f.rejectAll
	f.mu.Unlock()

	if reject || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeTestJSON(w, http.StatusUnauthorized, map[string]string{"detail": "could not validate credentials"})
		return
	}
	next(w, r)
}

func (f *fakeRemote) handleLogin(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password != testPassword {
		writeTestJSON(w, http.StatusUnauthorized, map[string]string{"detail": "incorrect username or password"})
		return
	}
	writeTestJSON(w, http.StatusOK, map[string]string{"access_token": testToken})
}

func (f *fakeRemote) handleMe(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	role := f.role
	f.mu.Unlock()

	writeTestJSON(w, http.StatusOK, map[string]any{
		"id":          1,
		"username":    "alice",
		"role":        role,
		"employee_id": "EMP-001",
		"is_active":   true,
	})
}

func (f *fakeRemote) handleStatus(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.statusCalls++
	fail := f.failPolls
	delay := f.slowPolls
	running := f.running
	uptime := f.uptime
	cams := f.camCount
	f.mu.Unlock()

	time.Sleep(delay)
	if fail {
		writeTestJSON(w, http.StatusInternalServerError, map[string]string{"detail": "camera service down"})
		return
	}
	writeTestJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"is_running": running,
			"uptime":     uptime,
			"cam_count":  cams,
		},
	})
}

func (f *fakeRemote) handleStart(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.startCalls++
	delay := f.slowCmds
	fail := f.failCmds
	if !fail {
		f.running = true
	}
	f.mu.Unlock()

	time.Sleep(delay)
	if fail {
		writeTestJSON(w, http.StatusOK, map[string]any{"success": false, "detail": "scheduler rejected command"})
		return
	}
	writeTestJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (f *fakeRemote) handleStop(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.stopCalls++
	delay := f.slowCmds
	fail := f.failCmds
	if !fail {
		f.running = false
	}
	f.mu.Unlock()

	time.Sleep(delay)
	if fail {
		writeTestJSON(w, http.StatusOK, map[string]any{"success": false, "detail": "scheduler rejected command"})
		return
	}
	writeTestJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.RequestTimeout = 5 * time.Second
	cfg.Sync.PollInterval = 25 * time.Millisecond
	cfg.Sync.SettleDelay = 30 * time.Millisecond
	cfg.Sync.RequestTimeout = 5 * time.Second
	cfg.Metrics.Enabled = true
	return cfg
}

func buildTestEngine(t *testing.T, remote *fakeRemote, mutate func(*Config), store session.Store) (*Engine, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(remote)
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	if mutate != nil {
		mutate(&cfg)
	}

	builder := New().WithConfig(cfg).WithHTTPClient(server.Client())
	if store != nil {
		builder = builder.WithStore(store)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, server
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
