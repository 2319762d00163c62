// Package dashboard serves the client dashboard on /dashboard and the staff
// dashboard on /admin. Both are tab shells whose panels fetch their own data
// from the API when they are opened.
package dashboard

import (
	"context"
	"errors"
	"strconv"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/auth"
	"github.com/savanna-accountancy/portal/internal/ui"
	"go.uber.org/zap"
)

// API is the part of the backend the dashboards call.
type API interface {
	ListServiceRequests(ctx context.Context, token string) ([]api.ServiceRequest, error)
	CreateServiceRequest(ctx context.Context, token string, in api.NewServiceRequest) (api.ServiceRequest, error)
	SetRequestPrice(ctx context.Context, token string, id int, price float64) error
	SetRequestStatus(ctx context.Context, token string, id int, status string) error
	DeleteServiceRequest(ctx context.Context, token string, id int) error
	UploadDocument(ctx context.Context, token string, requestID int, up api.Upload) (api.Document, error)
	ListDocuments(ctx context.Context, token string) ([]api.Document, error)
	ListAppointments(ctx context.Context, token string) ([]api.Appointment, error)
	SetAppointmentStatus(ctx context.Context, token string, id int, status string) error
	ListPayments(ctx context.Context, token string) ([]api.Payment, error)
	ListCustomers(ctx context.Context, token string) ([]api.Customer, error)
	DeleteCustomer(ctx context.Context, token string, id int) error
}

// Deps are the collaborators the dashboards share with the rest of the
// portal.
type Deps struct {
	API      API
	Registry *auth.Registry
	Stores   auth.StoreFunc
}

var (
	userGuard  = auth.Guard{RequireAuth: true}
	adminGuard = auth.Guard{RequireAuth: true, RequireAdmin: true}
)

// Register mounts both dashboards. A panel can be opened directly with
// /dashboard/{panel} or /admin/{panel}.
func Register(app *portal.App, d Deps) {
	app.Group("/dashboard", func(g *portal.Group) {
		g.Use(userGuard.Middleware(d.Registry, d.Stores))
		g.Page("", func(c *portal.Context) { openUser(c, d) })
		g.Page("/{panel}", func(c *portal.Context) { openUser(c, d) })
	})
	app.Group("/admin", func(g *portal.Group) {
		g.Use(adminGuard.Middleware(d.Registry, d.Stores))
		g.Page("", func(c *portal.Context) { openAdmin(c, d) })
		g.Page("/{panel}", func(c *portal.Context) { openAdmin(c, d) })
	})
}

// panel is one tab of a shell. load fetches its data with the signed-in
// user's token and must leave the previous data in place on failure.
type panel struct {
	name   string
	label  string
	failed string
	load   func(ctx context.Context, token string) error
	view   func() h.H
}

// shell is the frame shared by both dashboards: heading, panel tabs, notice
// and the active panel.
type shell struct {
	c       *portal.Context
	m       *auth.Manager
	d       Deps
	log     *zap.Logger
	heading string
	home    string

	panels []panel
	active string
	notice ui.Notice

	// target carries the argument of the action a button triggers.
	target *portal.SignalHandle[string]

	open, dismiss, logout *portal.ActionHandle
}

func newShell(c *portal.Context, d Deps, heading, home string) *shell {
	s := &shell{
		c:       c,
		m:       d.Registry.For(c.ClientID()),
		d:       d,
		log:     c.Logger().Named("dashboard"),
		heading: heading,
		home:    home,
	}
	s.target = portal.Signal(c, "")
	s.open = c.Action(func() {
		s.activate(s.target.Get())
		s.finish()
	})
	s.dismiss = c.Action(func() {
		s.notice = ui.Notice{}
		c.SyncElements()
	})
	s.logout = c.Action(func() {
		s.m.Logout(s.ctx(), s.d.Stores(c.Writer(), c.Request()))
		c.Redirect("/login")
	})
	return s
}

// start shows the panel named by the page path, or the first one.
func (s *shell) start(guard auth.Guard) {
	s.c.View(guard.Live(s.c, s.m, s.view))
	if guard.Evaluate(s.m.State(), s.c.Request().URL.Path).Status != auth.Authorized {
		return
	}
	name := s.c.Param("panel")
	if s.find(name) == nil {
		name = s.panels[0].name
	}
	s.activate(name)
}

func (s *shell) ctx() context.Context {
	if r := s.c.Request(); r != nil {
		return r.Context()
	}
	return context.Background()
}

func (s *shell) find(name string) *panel {
	for i := range s.panels {
		if s.panels[i].name == name {
			return &s.panels[i]
		}
	}
	return nil
}

// activate switches to the named panel and fetches its data.
func (s *shell) activate(name string) {
	p := s.find(name)
	if p == nil {
		return
	}
	s.active = name
	s.notice = ui.Notice{}
	s.reload(p)
}

func (s *shell) reload(p *panel) {
	if p.load == nil {
		return
	}
	token, err := s.m.Token()
	if err != nil {
		return
	}
	if err := p.load(s.ctx(), token); err != nil {
		s.log.Warn("panel load failed", zap.String("panel", p.name), zap.Error(err))
		s.notice = ui.Error(p.failed)
	}
}

// call runs an API mutation with the user's token, then refreshes the
// active panel. ok and failed are the notices for each outcome.
func (s *shell) call(ok, failed string, fn func(ctx context.Context, token string) error) {
	s.notice = ui.Notice{}
	token, err := s.m.Token()
	if err != nil {
		return
	}
	if err := fn(s.ctx(), token); err != nil {
		s.log.Info("dashboard update failed", zap.String("panel", s.active), zap.Error(err))
		s.notice = ui.Error(noticeFor(err, failed))
		return
	}
	if p := s.find(s.active); p != nil {
		s.reload(p)
	}
	if s.notice.Empty() {
		s.notice = ui.Success(ok)
	}
}

// noticeFor picks the message to show for a failed update: a notice the
// caller attached, else the server's message, else fallback.
func noticeFor(err error, fallback string) string {
	var ne *auth.NoticeError
	if errors.As(err, &ne) {
		return ne.Notice
	}
	return api.MessageOr(err, fallback)
}

// finish clears the target and redraws the tab.
func (s *shell) finish() {
	s.target.Set("")
	s.c.Sync()
}

// act returns an action that runs fn and redraws the tab.
func (s *shell) act(fn func()) *portal.ActionHandle {
	return s.c.Action(func() {
		fn()
		s.finish()
	})
}

// targetID reads the target as a record id.
func (s *shell) targetID() (int, bool) {
	id, err := strconv.Atoi(s.target.Get())
	return id, err == nil
}

// with sets the target and then runs a when the element is clicked.
func (s *shell) with(a *portal.ActionHandle, target string) h.H {
	return s.on("click", a, target)
}

func (s *shell) on(event string, a *portal.ActionHandle, target string) h.H {
	return h.DataOn(event, s.target.Ref()+" = "+strconv.Quote(target)+"; "+a.Expr())
}

func (s *shell) withID(a *portal.ActionHandle, id int) h.H {
	return s.with(a, strconv.Itoa(id))
}

func (s *shell) view() h.H {
	st := s.m.State()
	tabs := make([]h.H, 0, len(s.panels))
	for _, p := range s.panels {
		tabs = append(tabs, h.Li(h.A(h.Href(s.home+"/"+p.name),
			h.If(p.name == s.active, h.AriaCurrent("page")),
			s.on("click__prevent", s.open, p.name),
			h.Text(p.label),
		)))
	}
	var body h.H
	if p := s.find(s.active); p != nil {
		body = p.view()
	}
	return h.Group(
		h.Header(h.Class("container"),
			h.Nav(
				h.Ul(h.Li(h.A(h.Href("/"), h.Strong(h.Text(ui.Firm))))),
				h.Ul(
					h.Li(h.Text(st.Session.User.FullName())),
					h.Li(h.Button(h.Type("button"), h.Class("outline secondary"), s.logout.OnClick(), h.Text("Log out"))),
				),
			),
		),
		h.Main(h.Class("container dashboard"),
			h.H1(h.Text(s.heading)),
			h.Nav(h.Class("tabs"), h.Ul(tabs...)),
			s.notice.View(s.dismiss),
			h.Section(h.ID("panel-"+s.active), body),
		),
		ui.Footer(),
	)
}

// statusBadge renders a status with a class per status value.
func statusBadge(status string) h.H {
	return h.Span(h.Class("badge status-"+status), h.Text(StatusLabel(status)))
}

func emptyRow(cols int, msg string) h.H {
	return h.Tr(h.Td(h.ColSpan(strconv.Itoa(cols)), h.Text(msg)))
}
