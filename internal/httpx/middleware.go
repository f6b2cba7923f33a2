package httpx

import (
	"context"
	"net/http"

	"github.com/biterush/campusgrub/internal/auth"
)

const sessionCookie = "cg_session"

type ctxKey int

const (
	ctxKeySession ctxKey = iota
	ctxKeyProfile
)

// RequireSession resolves the session cookie to a profile and stashes both in
// the request context.
func RequireSession(sessions *auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(sessionCookie)
			if err != nil || c.Value == "" {
				writeError(w, http.StatusUnauthorized, "please log in")
				return
			}
			p, err := sessions.Get(r.Context(), c.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "please log in")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeySession, c.Value)
			ctx = context.WithValue(ctx, ctxKeyProfile, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a subtree to the given roles. The switch over Role is
// exhaustive on purpose: adding a role forces a decision here.
func RequireRole(allowed ...auth.Role) func(http.Handler) http.Handler {
	set := map[auth.Role]bool{}
	for _, r := range allowed {
		set[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := profileFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "please log in")
				return
			}
			switch p.Role {
			case auth.RoleUser, auth.RoleAdmin, auth.RoleSuperAdmin, auth.RoleVendor:
				if !set[p.Role] {
					writeError(w, http.StatusForbidden, "insufficient role")
					return
				}
			default:
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionFrom(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxKeySession).(string)
	return s, ok
}

func profileFrom(ctx context.Context) (auth.Profile, bool) {
	p, ok := ctx.Value(ctxKeyProfile).(auth.Profile)
	return p, ok
}
