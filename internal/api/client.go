package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/faceattend/opsconsole/session"
)

// ErrUnauthorized is returned for any response with HTTP status 401. The
// client's unauthorized hook has already fired by the time a caller sees it.
var ErrUnauthorized = errors.New("unauthorized")

// RemoteError is a failure reported by the remote API, either as a non-2xx
// status or as a well-formed envelope with the success flag cleared.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("remote api error (status %d)", e.Status)
}

// SystemStatus is the remote pipeline's run-state snapshot as carried by
// the /system/status envelope.
type SystemStatus struct {
	Running         bool    `json:"is_running"`
	UptimeSeconds   int64   `json:"uptime"`
	CameraCount     int     `json:"cam_count"`
	FacesDetected   int64   `json:"faces_detected"`
	AttendanceCount int64   `json:"attendance_count"`
	Load            float64 `json:"load"`
}

// Config carries the transport settings the client needs.
type Config struct {
	BaseURL   string
	UserAgent string
}

// Client talks to the remote API. Every request except login attaches the
// current credential as a bearer token; any 401 response invokes the
// unauthorized hook exactly once before the error is returned. That hook is
// the single place session invalidation on credential rejection happens —
// callers never implement per-call 401 handling.
type Client struct {
	baseURL        string
	userAgent      string
	http           *http.Client
	credential     func() string
	onUnauthorized func()
}

// New creates a client. credential supplies the bearer token for
// authenticated calls (empty means none); onUnauthorized may be nil.
func New(cfg Config, httpClient *http.Client, credential func() string, onUnauthorized func()) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if credential == nil {
		credential = func() string { return "" }
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:      cfg.UserAgent,
		http:           httpClient,
		credential:     credential,
		onUnauthorized: onUnauthorized,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type statusEnvelope struct {
	Success bool          `json:"success"`
	Data    *SystemStatus `json:"data"`
	Detail  string        `json:"detail"`
}

type commandEnvelope struct {
	Success *bool  `json:"success"`
	Detail  string `json:"detail"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{
		Username: username,
		Password: password,
	}, false)
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", &RemoteError{Status: http.StatusOK, Detail: "login response missing access token"}
	}
	return resp.AccessToken, nil
}

// CurrentIdentity fetches the profile of the authenticated user.
func (c *Client) CurrentIdentity(ctx context.Context) (session.Identity, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/me", nil, true)
	if err != nil {
		return session.Identity{}, err
	}

	var id session.Identity
	if err := json.Unmarshal(body, &id); err != nil {
		return session.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	return id, nil
}

// SystemStatus fetches the pipeline run-state snapshot. A well-formed
// envelope with success=false or a missing payload is reported as a
// [RemoteError] so callers treat it like any other poll failure.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	body, err := c.do(ctx, http.MethodGet, "/system/status", nil, true)
	if err != nil {
		return nil, err
	}

	var envelope statusEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode status envelope: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, &RemoteError{Status: http.StatusOK, Detail: envelope.Detail}
	}
	return envelope.Data, nil
}

// StartSystem starts the detection pipeline.
func (c *Client) StartSystem(ctx context.Context) error {
	return c.command(ctx, "/system/start")
}

// StopSystem stops the detection pipeline.
func (c *Client) StopSystem(ctx context.Context) error {
	return c.command(ctx, "/system/stop")
}

// command issues a start/stop request. The command endpoints guarantee no
// payload; a 2xx with an unparseable or empty body counts as success, but a
// parseable envelope with success=false does not.
func (c *Client) command(ctx context.Context, path string) error {
	body, err := c.do(ctx, http.MethodPost, path, nil, true)
	if err != nil {
		return err
	}

	var envelope commandEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if envelope.Success != nil && !*envelope.Success {
		return &RemoteError{Status: http.StatusOK, Detail: envelope.Detail}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, authenticated bool) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if authenticated {
		if token := c.credential(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, &RemoteError{Status: resp.StatusCode, Detail: errorDetail(data)})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}
	return data, nil
}

// errorDetail extracts the server-supplied detail message from an error
// body, when present.
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

// Detail returns the server-supplied message carried by err, or fallback
// when the failure has none (network errors, empty bodies).
func Detail(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Detail != "" {
		return remote.Detail
	}
	return fallback
}
