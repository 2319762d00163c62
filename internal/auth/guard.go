package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/savanna-accountancy/portal/internal/session"
)

// Status is where a guard is in its check.
type Status int

const (
	Checking Status = iota
	Authorized
	Redirecting
)

func (s Status) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authorized:
		return "authorized"
	case Redirecting:
		return "redirecting"
	}
	return "unknown"
}

// Decision is the outcome of a guard check.
type Decision struct {
	Status   Status
	Location string
}

// Guard protects pages that need a signed-in user, optionally staff.
type Guard struct {
	RequireAuth  bool
	RequireAdmin bool
}

// Evaluate decides whether state may see the page at path.
func (g Guard) Evaluate(st State, path string) Decision {
	if !g.RequireAuth {
		return Decision{Status: Authorized}
	}
	if !st.Restored {
		return Decision{Status: Checking}
	}
	if !st.Authenticated {
		return Decision{Status: Redirecting, Location: LoginURL(path)}
	}
	if g.RequireAdmin && !st.IsStaff() {
		return Decision{Status: Redirecting, Location: "/dashboard"}
	}
	return Decision{Status: Authorized}
}

// LoginURL is the login page that returns to path after signing in.
func LoginURL(path string) string {
	return "/login?redirect=" + strings.ReplaceAll(url.QueryEscape(path), "+", "%20")
}

// StoreFunc builds the session store of a request.
type StoreFunc func(w http.ResponseWriter, r *http.Request) *session.Store

// Middleware applies the guard before a page renders, answering denied
// visits with a 303.
func (g Guard) Middleware(reg *Registry, stores StoreFunc) portal.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := reg.For(portal.ClientID(r))
			st := m.Restore(r.Context(), stores(w, r))
			if d := g.Evaluate(st, r.URL.Path); d.Status == Redirecting {
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Live wraps a tab's view so it follows auth changes: the view re-renders on
// every change and the tab is redirected as soon as the guard denies it.
func (g Guard) Live(c *portal.Context, m *Manager, view func() h.H) func() h.H {
	path := ""
	if r := c.Request(); r != nil {
		path = r.URL.Path
	}
	Watch(c, m, func(st State) {
		if d := g.Evaluate(st, path); d.Status == Redirecting {
			c.Redirect(d.Location)
		}
	})
	if d := g.Evaluate(m.State(), path); d.Status == Redirecting {
		c.Redirect(d.Location)
	}
	return func() h.H {
		switch g.Evaluate(m.State(), path).Status {
		case Checking:
			return h.Div(h.Class("guard-loading"), h.Text("Loading..."))
		case Redirecting:
			return nil
		}
		return view()
	}
}

// Watch re-renders the tab after every auth change until the tab is
// disposed. onChange, when non-nil, runs first. Both run once the tab is
// idle.
func Watch(c *portal.Context, m *Manager, onChange func(State)) {
	cancel := m.Subscribe(func(st State) {
		c.Go(func() {
			if onChange != nil {
				onChange(st)
			}
			c.Sync()
		})
	})
	c.OnDispose(cancel)
}
