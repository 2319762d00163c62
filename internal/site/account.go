package site

import (
	"context"
	"errors"
	"strings"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/auth"
	"github.com/savanna-accountancy/portal/internal/ui"
	"go.uber.org/zap"
)

// Login and verification notices.
const (
	MissingCredentials = "Please enter your email and password."
	Verified           = "Your account has been successfully verified. You can now log in."
	VerifyFailed       = "An error occurred during verification."
	VerifyUnexpected   = "An unexpected error occurred. Please try again."
)

func requestContext(c *portal.Context) context.Context {
	if r := c.Request(); r != nil {
		return r.Context()
	}
	return context.Background()
}

// AfterLogin picks where a signed-in user goes: the requested local path
// when it is safe for them, else their landing page. Clients are never sent
// to the staff dashboard.
func AfterLogin(st auth.State, redirect string) string {
	switch {
	case !strings.HasPrefix(redirect, "/"),
		strings.HasPrefix(redirect, "//"),
		strings.HasPrefix(redirect, "/\\"),
		redirect == "/login":
		return st.Landing()
	case !st.IsStaff() && (redirect == "/admin" || strings.HasPrefix(redirect, "/admin/")):
		return st.Landing()
	}
	return redirect
}

type loginPage struct {
	c   *portal.Context
	d   Deps
	m   *auth.Manager
	log *zap.Logger

	redirect string
	email    *portal.SignalHandle[string]
	password *portal.SignalHandle[string]
	notice   ui.Notice

	submit, dismiss *portal.ActionHandle
}

func login(c *portal.Context, d Deps) {
	c.Title(ui.Title("Log in"))
	p := &loginPage{
		c:        c,
		d:        d,
		m:        d.Registry.For(c.ClientID()),
		log:      c.Logger().Named("login"),
		redirect: c.Query("redirect"),
	}
	p.email = portal.Signal(c, "")
	p.password = portal.Signal(c, "")
	if c.Query("verified") == "1" {
		p.notice = ui.Success(Verified)
	}
	p.submit = c.Action(p.signIn)
	p.dismiss = c.Action(func() {
		p.notice = ui.Notice{}
		c.SyncElements()
	})
	c.View(p.view)
}

func (p *loginPage) signIn() {
	defer p.c.Sync()
	email := strings.TrimSpace(p.email.Get())
	password := p.password.Get()
	if email == "" || password == "" {
		p.notice = ui.Error(MissingCredentials)
		return
	}
	r := p.c.Request()
	if p.d.Limiter != nil && !p.d.Limiter.Allow(p.d.Limiter.Addr(r)) {
		p.log.Warn("login throttled", zap.String("addr", p.d.Limiter.Addr(r)))
		p.notice = ui.Error(auth.TooManyAttempts)
		return
	}
	err := p.m.Login(requestContext(p.c), p.d.Stores(p.c.Writer(), r), email, password)
	if err != nil {
		var ne *auth.NoticeError
		if errors.As(err, &ne) {
			p.notice = ui.Error(ne.Notice)
		} else {
			p.notice = ui.Error(err.Error())
		}
		return
	}
	p.notice = ui.Notice{}
	p.c.Redirect(AfterLogin(p.m.State(), p.redirect))
}

func (p *loginPage) view() h.H {
	return ui.Page("/login",
		h.Article(h.Class("auth"),
			h.H1(h.Text("Sign in to your account")),
			p.notice.View(p.dismiss),
			h.Form(h.ID("login-form"), p.submit.OnSubmit(),
				ui.Input("Email address", "email", "email", p.email.Bind(), "", h.Required()),
				ui.Input("Password", "password", "password", p.password.Bind(), "", h.Required()),
				h.P(h.A(h.Href("/forgot-password"), h.Text("Forgot your password?"))),
				h.Button(h.Type("submit"), h.Text("Sign in")),
			),
			h.P(h.Text("Don't have an account? "), h.A(h.Href("/signup"), h.Text("Sign Up"))),
		),
	)
}

func verifyAccount(c *portal.Context, d Deps) {
	c.Title(ui.Title("Verify your account"))
	key := c.Param("key")
	log := c.Logger().Named("verify")
	var notice ui.Notice
	verify := c.Action(func() {
		err := d.Verifier.VerifyEmail(requestContext(c), key)
		if err == nil {
			log.Info("account verified")
			c.Redirect("/login?verified=1")
			return
		}
		log.Info("verification failed", zap.Error(err))
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			notice = ui.Error(api.MessageOr(err, VerifyFailed))
		} else {
			notice = ui.Error(VerifyUnexpected)
		}
		c.Sync()
	})
	dismiss := c.Action(func() {
		notice = ui.Notice{}
		c.SyncElements()
	})
	c.View(func() h.H {
		return ui.Page("",
			h.Article(h.Class("auth"),
				h.H1(h.Text("Verify Your Account")),
				notice.View(dismiss),
				h.P(h.Text("Click the button below to verify your email address and activate your account.")),
				h.Button(h.Type("button"), h.ID("verify"), verify.OnClick(), h.Text("Verify Email")),
			),
		)
	})
}
