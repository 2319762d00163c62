package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/internal/session"
	"go.uber.org/zap"
)

var publicRoutes = []string{"/", "/login", "/signup", "/forgot-password", "/verify-account"}

func isPublicRoute(path string) bool {
	for _, route := range publicRoutes {
		if path == route {
			return true
		}
	}
	return strings.HasPrefix(path, "/verify-account/")
}

// Landing sends signed-in visitors to the right place before a page renders:
// public entry pages go to their dashboard, staff skip the client dashboard
// and clients cannot open the admin one. Only the session cookies are
// consulted; malformed cookies are cleared and the visit proceeds.
func Landing(sealer *session.Sealer, secure bool, log *zap.Logger) portal.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := session.NewStore(nil, session.NewCookieStorage(w, r, sealer, secure))
			sess, ok, err := store.Load(r.Context())
			if errors.Is(err, session.ErrMalformed) {
				log.Debug("cleared malformed session cookies", zap.String("path", r.URL.Path))
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			st := State{Restored: true, Authenticated: true, Session: sess}
			path := r.URL.Path
			switch {
			case isPublicRoute(path):
				http.Redirect(w, r, st.Landing(), http.StatusSeeOther)
				return
			case path == "/dashboard" && st.IsStaff():
				http.Redirect(w, r, "/admin", http.StatusSeeOther)
				return
			case path == "/admin" && !st.IsStaff():
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
