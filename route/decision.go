package route

import "github.com/faceattend/opsconsole/session"

// View is a navigable location in the console.
type View string

const (
	// ViewLogin is the unauthenticated entry point.
	ViewLogin View = "/login"
	// ViewEmployeeHome is the employee dashboard.
	ViewEmployeeHome View = "/employee"
	// ViewAdminHome is the admin dashboard.
	ViewAdminHome View = "/admin"
	// ViewSuperAdminHome is the master control panel.
	ViewSuperAdminHome View = "/super-admin"
)

// Action is the outcome kind of a gate decision.
type Action uint8

const (
	// Allow mounts the requested view.
	Allow Action = iota
	// RedirectLogin sends the caller to the login view.
	RedirectLogin
	// RedirectHome sends the caller to their own home view.
	RedirectHome
)

// Decision is the result of evaluating the gate for one navigation.
// Target is set for both redirect actions and empty for Allow.
type Decision struct {
	Action Action
	Target View
}

// Home maps a role to its default landing view. Unrecognized roles land on
// the employee dashboard. Every redirect in the console flows through this
// one mapping.
func Home(role session.Role) View {
	switch role {
	case session.RoleSuperAdmin:
		return ViewSuperAdminHome
	case session.RoleAdmin:
		return ViewAdminHome
	default:
		return ViewEmployeeHome
	}
}

// Decide evaluates access to a protected view. required is the minimum role
// the view demands; [session.RoleNone] means authentication alone suffices.
func Decide(snap session.Snapshot, required session.Role) Decision {
	if !snap.Authenticated {
		return Decision{Action: RedirectLogin, Target: ViewLogin}
	}
	if required == session.RoleNone {
		return Decision{Action: Allow}
	}
	if snap.Identity.Role.Rank() >= required.Rank() {
		return Decision{Action: Allow}
	}
	return Decision{Action: RedirectHome, Target: Home(snap.Identity.Role)}
}

// DecideLogin evaluates access to the login view itself: an authenticated
// session is bounced to its home view instead of seeing the form again.
func DecideLogin(snap session.Snapshot) Decision {
	if !snap.Authenticated {
		return Decision{Action: Allow}
	}
	return Decision{Action: RedirectHome, Target: Home(snap.Identity.Role)}
}

// Fallback resolves an unmatched path: home for an authenticated session,
// login otherwise.
func Fallback(snap session.Snapshot) View {
	if !snap.Authenticated {
		return ViewLogin
	}
	return Home(snap.Identity.Role)
}
