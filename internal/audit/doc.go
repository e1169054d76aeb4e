// Package audit provides the structured event model and the asynchronous
// dispatcher that forwards console events (session lifecycle, poll and
// toggle outcomes) to a caller-supplied sink without blocking the engine's
// hot paths.
package audit
