package opsconsole

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLogout           = "logout"
	auditEventSessionRestored  = "session_restored"
	auditEventSessionCorrupted = "session_corrupted"
	auditEventSessionExpired   = "session_expired"
	auditEventForcedLogout     = "forced_logout"
	auditEventSyncStarted      = "sync_started"
	auditEventSyncStopped      = "sync_stopped"
	auditEventPollFailure      = "status_poll_failure"
	auditEventToggleIssued     = "system_toggle_issued"
	auditEventToggleFailure    = "system_toggle_failure"
)
