package opsconsole

import (
	"errors"

	"github.com/faceattend/opsconsole/internal/api"
)

var (
	// ErrCredentialRejected is returned when the login exchange fails.
	// The session stays empty; the user must resubmit.
	ErrCredentialRejected = errors.New("credential rejected")
	// ErrUnauthorized is returned when a previously valid credential is
	// rejected by the remote API. The session has already been cleared by
	// the time callers see it.
	ErrUnauthorized = api.ErrUnauthorized
	// ErrNotAuthenticated is returned by operations that require a live
	// session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrToggleBusy is returned when a toggle is requested while another
	// toggle is still in flight.
	ErrToggleBusy = errors.New("system toggle already in flight")
	// ErrEngineClosed is returned by operations on a closed engine.
	ErrEngineClosed = errors.New("engine closed")
	// ErrEngineNotReady is returned when the engine was not built through
	// the Builder.
	ErrEngineNotReady = errors.New("engine not initialized")
)
