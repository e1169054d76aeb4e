// Package route implements the authorization gate: the pure decision that
// determines whether a requested view may be entered given the current
// session and an optional required role.
//
// Decisions never error. An unauthenticated session redirects to the login
// view; an insufficient role redirects to the user's own home view via
// [Home], the single shared role-to-view mapping reused for post-login
// redirects, denied access, and unmatched-route fallback so the three call
// sites cannot diverge. Denied access is a navigation outcome, not a
// failure, and is never logged as one.
package route
