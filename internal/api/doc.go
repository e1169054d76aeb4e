// Package api is the HTTP client for the remote face-tracking attendance
// API. It owns wire formats and transport concerns only: bearer credential
// attachment, request correlation IDs, the status response envelope, and
// the global unauthorized hook. It makes no session or synchronization
// decisions.
package api
