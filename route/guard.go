package route

import (
	"net/http"

	"github.com/faceattend/opsconsole/session"
)

// SessionSource yields the current session snapshot. The engine satisfies
// this; tests supply a literal.
type SessionSource interface {
	Session() session.Snapshot
}

// Guard wraps an http.Handler serving a protected console view. The gate is
// re-evaluated on every request against the live session; redirect
// decisions become 303 redirects to the decision target.
func Guard(source SessionSource, required session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if source == nil {
				http.Redirect(w, r, string(ViewLogin), http.StatusSeeOther)
				return
			}

			decision := Decide(source.Session(), required)
			if decision.Action != Allow {
				http.Redirect(w, r, string(decision.Target), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
