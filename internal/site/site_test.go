package site

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/auth"
	"github.com/savanna-accountancy/portal/internal/portaltest"
	"github.com/savanna-accountancy/portal/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAuth struct {
	resp   api.LoginResponse
	err    error
	logins int
}

func (f *fakeAuth) Login(context.Context, string, string) (api.LoginResponse, error) {
	f.logins++
	return f.resp, f.err
}

func (f *fakeAuth) UpdateMe(context.Context, string, api.UserUpdate) (api.User, error) {
	return api.User{}, errors.New("not used")
}

type fakeVerifier struct {
	keys []string
	err  error
}

func (f *fakeVerifier) VerifyEmail(_ context.Context, key string) error {
	f.keys = append(f.keys, key)
	return f.err
}

const clientID = "5f1a2b3c-0000-4000-8000-00000000e001"

type fixture struct {
	t        *testing.T
	app      *portal.App
	auth     *fakeAuth
	verifier *fakeVerifier
	reg      *auth.Registry
	logs     *observer.ObservedLogs
	browser  *portaltest.Browser
}

func newFixture(t *testing.T, limiter *auth.LoginLimiter) *fixture {
	t.Helper()
	sealer, err := session.NewSealer(nil)
	require.NoError(t, err)
	mem := session.NewMemory()
	core, logs := observer.New(zap.InfoLevel)
	f := &fixture{
		t:        t,
		app:      portal.New(),
		auth:     &fakeAuth{},
		verifier: &fakeVerifier{},
		logs:     logs,
	}
	f.app.Config(portal.Options{Logger: zap.New(core)})
	f.app.Use(auth.Landing(sealer, false, zap.NewNop()))
	f.reg = auth.NewRegistry(f.auth, nil)
	stores := func(w http.ResponseWriter, r *http.Request) *session.Store {
		return session.NewStore(session.Scope(mem, portal.ClientID(r)), session.NewCookieStorage(w, r, sealer, false))
	}
	Register(f.app, Deps{Verifier: f.verifier, Registry: f.reg, Stores: stores, Limiter: limiter})
	f.browser = portaltest.NewBrowser(t, f.app.Handler())
	f.browser.SetCookie(&http.Cookie{Name: portaltest.ClientCookie, Value: clientID})
	return f
}

func (f *fixture) respondAs(staff bool) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 3}).SignedString([]byte("k"))
	require.NoError(f.t, err)
	f.auth.resp = api.LoginResponse{Access: token, Refresh: "r", User: api.User{
		ID: 3, Email: "grace@example.com", FirstName: "Grace", UserType: session.RoleBusiness, IsStaff: staff,
	}}
}

func (f *fixture) open(path string) *portaltest.Tab {
	return f.browser.Open(path)
}

func TestPublicPages(t *testing.T) {
	f := newFixture(t, nil)
	cases := []struct {
		path string
		want []string
	}{
		{"/", []string{heroTitle, "Our Services", "Frequently Asked Questions", `href="/services/payroll"`}},
		{"/services", []string{"Corporation Tax", `href="/services/business-startup"`}},
		{"/services/vat", []string{"Our Process", "Guidance on VAT schemes"}},
		{"/services/unknown", []string{"Service Not Found", `href="/services"`}},
		{"/blog", []string{"Understanding Self-Assessment Tax Returns", "Scaling Your Business"}},
		{"/blog/tax-updates", []string{"Latest Tax Changes for the 2025/26 Tax Year"}},
		{"/blog/unknown", []string{"Category Not Found"}},
		{"/blog/posts/understanding-self-assessment-tax-returns", []string{"Key Deadlines to Remember", "Geda Gemechu, Director, Savanna Accountancy", "Related Articles"}},
		{"/blog/posts/unknown", []string{"Post Not Found", `href="/blog"`}},
		{"/about", []string{"Our Mission", "Technology-Driven"}},
		{"/signup-success", []string{AccountCreated}},
		{"/signup-success?verification=true", []string{VerificationSent, "Check Later"}},
		{"/forgot-password", []string{"Forgot your password?", `href="/contact"`}},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			body := f.open(tc.path).Body
			for _, want := range tc.want {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestBlogCategoryListsOnlyItsPosts(t *testing.T) {
	f := newFixture(t, nil)

	body := f.open("/blog/accounting-tips").Body

	assert.Contains(t, body, "Essential Bookkeeping Tips for Small Businesses")
	assert.Contains(t, body, "Digital Record Keeping for Small Businesses")
	assert.NotContains(t, body, "VAT Registration")
}

func TestContentIsConsistent(t *testing.T) {
	slugs := map[string]bool{}
	for _, p := range Posts {
		assert.False(t, slugs[p.Slug], "duplicate post %s", p.Slug)
		slugs[p.Slug] = true
		_, ok := CategoryBySlug(p.Category)
		assert.True(t, ok, "post %s has unknown category %s", p.Slug, p.Category)
	}
	for _, p := range Posts {
		for _, r := range p.Related {
			assert.True(t, slugs[r], "post %s links missing post %s", p.Slug, r)
		}
	}
	for _, s := range Services {
		assert.Len(t, s.Benefits, 5, s.Slug)
		assert.Len(t, s.Process, 5, s.Slug)
	}
}

func TestAfterLogin(t *testing.T) {
	client := auth.State{Restored: true, Authenticated: true}
	staff := auth.State{Restored: true, Authenticated: true}
	staff.Session.User.IsStaff = true

	cases := []struct {
		name     string
		st       auth.State
		redirect string
		want     string
	}{
		{"no redirect", client, "", "/dashboard"},
		{"staff default", staff, "", "/admin"},
		{"local path", client, "/dashboard/requests", "/dashboard/requests"},
		{"external", client, "https://evil.example", "/dashboard"},
		{"protocol relative", client, "//evil.example", "/dashboard"},
		{"backslash", client, `/\evil.example`, "/dashboard"},
		{"client to admin", client, "/admin/customers", "/dashboard"},
		{"staff to admin", staff, "/admin/customers", "/admin/customers"},
		{"back to login", staff, "/login", "/admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AfterLogin(tc.st, tc.redirect))
		})
	}
}

func TestLogin_RedirectsToRequestedPage(t *testing.T) {
	f := newFixture(t, nil)
	f.respondAs(false)
	tb := f.open("/login?redirect=%2Fdashboard%2Fdocuments")

	tb.Call(tb.Submit("login-form"), map[string]any{tb.Signal("email"): "grace@example.com", tb.Signal("password"): "Secret#1"})

	assert.True(t, f.reg.For(clientID).IsAuthenticated())
	assert.Contains(t, tb.Stream(), "/dashboard/documents")
}

func TestLogin_SignedInSkipsPublicPages(t *testing.T) {
	f := newFixture(t, nil)
	f.respondAs(false)
	tb := f.open("/login")

	tb.Call(tb.Submit("login-form"), map[string]any{tb.Signal("email"): "grace@example.com", tb.Signal("password"): "Secret#1"})

	w := f.browser.Get("/login")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, f.browser.Get("/about").Code)
}

func TestLogin_StaffLandOnAdmin(t *testing.T) {
	f := newFixture(t, nil)
	f.respondAs(true)
	tb := f.open("/login")

	tb.Call(tb.Submit("login-form"), map[string]any{tb.Signal("email"): "grace@example.com", tb.Signal("password"): "Secret#1"})

	assert.Contains(t, tb.Stream(), "/admin")
}

func TestLogin_ShowsServerMessage(t *testing.T) {
	f := newFixture(t, nil)
	f.auth.err = &api.Error{Status: http.StatusUnauthorized, Detail: "No active account found with the given credentials"}
	tb := f.open("/login")

	tb.Call(tb.Submit("login-form"), map[string]any{tb.Signal("email"): "grace@example.com", tb.Signal("password"): "wrong"})

	assert.False(t, f.reg.For(clientID).IsAuthenticated())
	assert.Contains(t, tb.Stream(), "No active account found with the given credentials")
}

func TestLogin_NeedsCredentials(t *testing.T) {
	f := newFixture(t, nil)
	tb := f.open("/login")

	tb.Call(tb.Submit("login-form"), map[string]any{tb.Signal("email"): "  "})

	assert.Contains(t, tb.Stream(), MissingCredentials)
	assert.Zero(t, f.auth.logins)
}

func TestLogin_Throttled(t *testing.T) {
	f := newFixture(t, auth.NewLoginLimiter(1, 1))
	f.auth.err = &api.Error{Status: http.StatusUnauthorized}
	tb := f.open("/login")
	submit := tb.Submit("login-form")
	creds := map[string]any{tb.Signal("email"): "grace@example.com", tb.Signal("password"): "wrong"}

	tb.Call(submit, creds)
	tb.Call(submit, creds)

	assert.Equal(t, 1, f.auth.logins)
	assert.Contains(t, tb.Stream(), "Too many login attempts")
}

func TestLogin_VerifiedNotice(t *testing.T) {
	f := newFixture(t, nil)

	body := f.open("/login?verified=1").Body

	assert.Contains(t, body, "Your account has been successfully verified.")
}

func TestVerifyAccount(t *testing.T) {
	f := newFixture(t, nil)
	tb := f.open("/verify-account/MQ%3Aabc")
	verify := portaltest.Find(t, tb.Body, `id="verify" data-on:click="@get\(&#39;/_action/([0-9a-f]+)&#39;\)"`)

	tb.Call(verify, nil)

	assert.Equal(t, []string{"MQ:abc"}, f.verifier.keys)
	assert.Contains(t, tb.Stream(), "/login?verified=1")
}

func TestVerifyAccount_Failures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"server detail", &api.Error{Status: http.StatusNotFound, Detail: "Invalid key"}, "Invalid key"},
		{"no detail", &api.Error{Status: http.StatusBadRequest}, VerifyFailed},
		{"network", errors.New("dial tcp: connection refused"), VerifyUnexpected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.verifier.err = tc.err
			tb := f.open("/verify-account/key")
			verify := portaltest.Find(t, tb.Body, `id="verify" data-on:click="@get\(&#39;/_action/([0-9a-f]+)&#39;\)"`)

			tb.Call(verify, nil)

			out := tb.Stream()
			assert.Contains(t, out, tc.want)
			assert.NotContains(t, out, "/login?verified=1")
		})
	}
}

func TestContact_RequiresFields(t *testing.T) {
	f := newFixture(t, nil)
	tb := f.open("/contact")

	tb.Call(tb.Submit("contact-form"), map[string]any{tb.Signal("contact-email"): "not-an-email"})

	out := tb.Stream()
	assert.Contains(t, out, "Name is required.")
	assert.Contains(t, out, "Subject is required.")
	assert.Contains(t, out, InvalidEmail)
	assert.Zero(t, f.logs.FilterMessage("enquiry received").Len())
}

func TestContact_SendsMessage(t *testing.T) {
	f := newFixture(t, nil)
	tb := f.open("/contact")

	tb.Call(tb.Submit("contact-form"), map[string]any{
		tb.Signal("contact-name"):    "Grace Hopper",
		tb.Signal("contact-email"):   "grace@example.com",
		tb.Signal("contact-subject"): "VAT registration",
		tb.Signal("contact-message"): "Do I need to register?",
	})

	assert.Contains(t, tb.Stream(), "received your message and will get back to you soon.")
	entries := f.logs.FilterMessage("enquiry received").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "contact", fields["form"])
	assert.Equal(t, "grace@example.com", fields["email"])
	assert.NotContains(t, fields, "message")
}

func TestBookConsultation(t *testing.T) {
	f := newFixture(t, nil)
	tb := f.open("/book-consultation")
	submit := tb.Submit("consultation-form")
	in := map[string]any{
		tb.Signal("consultation-name"):    "Grace Hopper",
		tb.Signal("consultation-email"):   "grace@example.com",
		tb.Signal("consultation-phone"):   "07123 456789",
		tb.Signal("consultation-date"):    "2001-01-01",
		tb.Signal("consultation-time"):    "10:30",
		tb.Signal("consultation-service"): "Bookkeeping",
	}

	tb.Call(submit, in)
	assert.Contains(t, tb.Stream(), InvalidDate)

	in[tb.Signal("consultation-date")] = time.Now().AddDate(0, 0, 7).Format(time.DateOnly)
	tb.Call(submit, in)

	assert.Contains(t, tb.Stream(), "will contact you soon to confirm.")
	entries := f.logs.FilterMessage("enquiry received").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Bookkeeping", entries[0].ContextMap()["service"])
}
