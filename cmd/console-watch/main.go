// Command console-watch is a terminal supervisory client for a remote
// face-detection attendance pipeline. It logs in (or restores a persisted
// session), follows the live system status, and prints each refresh.
//
// Run:
//
//	console-watch -api-url http://pipeline.local:8000 -username admin
//
// The password is read from CONSOLE_PASSWORD when not passed as a flag.
// Sessions persist across runs in a state file under the user config
// directory, or in Redis when -redis-addr (or REDIS_ADDR) is set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/faceattend/opsconsole"
	"github.com/faceattend/opsconsole/session"
)

func main() {
	var (
		apiURL    = flag.String("api-url", "", "remote API root; if empty, CONSOLE_API_URL env is used")
		username  = flag.String("username", "", "login username (required unless a session is restored)")
		password  = flag.String("password", "", "login password; if empty, CONSOLE_PASSWORD env is used")
		interval  = flag.Duration("interval", 30*time.Second, "status poll interval")
		redisAddr = flag.String("redis-addr", "", "redis address for session storage; if empty, REDIS_ADDR env or a local state file is used")
		stateFile = flag.String("state-file", "", "session state file; defaults to the user config directory")
		toggle    = flag.Bool("toggle", false, "issue one start/stop toggle after the first status arrives, then keep watching")
	)
	flag.Parse()

	baseURL := *apiURL
	if baseURL == "" {
		baseURL = os.Getenv("CONSOLE_API_URL")
	}
	if baseURL == "" {
		fmt.Fprintln(os.Stderr, "api-url is required (flag or CONSOLE_API_URL)")
		os.Exit(2)
	}

	pass := *password
	if pass == "" {
		pass = os.Getenv("CONSOLE_PASSWORD")
	}

	store, cleanup, err := buildStore(*redisAddr, *stateFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := opsconsole.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.Sync.PollInterval = *interval

	engine, err := opsconsole.New().
		WithConfig(cfg).
		WithStore(store).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()

	if engine.Restore() {
		snap := engine.Session()
		fmt.Printf("restored session for %s (%s)\n", snap.Identity.Username, snap.Identity.Role)
	} else {
		if *username == "" || pass == "" {
			fmt.Fprintln(os.Stderr, "no persisted session; -username and a password are required")
			os.Exit(2)
		}
		identity, _, err := engine.LoginWithPassword(ctx, *username, pass)
		if err != nil {
			fmt.Fprintf(os.Stderr, "login: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("logged in as %s (%s)\n", identity.Username, identity.Role)
	}

	if err := engine.StartSync(); err != nil {
		fmt.Fprintf(os.Stderr, "start sync: %v\n", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	// The engine refreshes on its own schedule; this loop only redraws.
	draw := time.NewTicker(time.Second)
	defer draw.Stop()

	toggled := !*toggle
	var lastLine string
	for {
		select {
		case <-sig:
			fmt.Println("\nshutting down")
			return
		case <-draw.C:
			snap := engine.StatusSnapshot()

			if !toggled && snap.Status != nil {
				issued, err := engine.Toggle(ctx)
				switch {
				case errors.Is(err, opsconsole.ErrToggleBusy):
					// Retry on the next redraw.
				case err != nil:
					fmt.Fprintf(os.Stderr, "toggle: %v\n", err)
					toggled = true
				case issued:
					fmt.Println("toggle issued")
					toggled = true
				}
			}

			line := renderStatus(snap)
			if line != lastLine {
				fmt.Println(line)
				lastLine = line
			}
		}
	}
}

func renderStatus(snap opsconsole.SyncSnapshot) string {
	if snap.Status == nil {
		if snap.LastError != "" {
			return fmt.Sprintf("status unavailable: %s", snap.LastError)
		}
		return "waiting for first status..."
	}

	state := "stopped"
	if snap.Status.Running {
		state = "running"
	}
	line := fmt.Sprintf("%s  uptime=%s cams=%d faces=%d attendance=%d load=%.2f",
		state,
		(time.Duration(snap.Status.UptimeSeconds) * time.Second).String(),
		snap.Status.CameraCount,
		snap.Status.FacesDetected,
		snap.Status.AttendanceCount,
		snap.Status.Load,
	)
	if snap.LastError != "" {
		line += fmt.Sprintf("  [stale: %s]", snap.LastError)
	}
	if snap.ToggleInFlight {
		line += "  [toggling]"
	}
	return line
}

func buildStore(redisAddr, stateFile string) (session.Store, func(), error) {
	addr := redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		return session.NewRedisStore(client, session.DefaultNamespace),
			func() { _ = client.Close() },
			nil
	}

	path := stateFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(dir, "console-watch", "session.json")
	}
	fs, err := session.NewFileStore(path)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}
