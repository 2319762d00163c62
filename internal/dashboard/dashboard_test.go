package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/auth"
	"github.com/savanna-accountancy/portal/internal/portaltest"
	"github.com/savanna-accountancy/portal/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	resp       api.LoginResponse
	updateResp api.User
	updateErr  error
	lastUpdate api.UserUpdate
}

func (f *fakeAuth) Login(context.Context, string, string) (api.LoginResponse, error) {
	return f.resp, nil
}

func (f *fakeAuth) UpdateMe(_ context.Context, _ string, update api.UserUpdate) (api.User, error) {
	f.lastUpdate = update
	return f.updateResp, f.updateErr
}

type fakeAPI struct {
	mu sync.Mutex

	requests     []api.ServiceRequest
	appointments []api.Appointment
	payments     []api.Payment
	documents    []api.Document
	customers    []api.Customer
	listErr      error
	mutateErr    error
	uploadErr    error

	tokens           []string
	created          []api.NewServiceRequest
	uploaded         []string
	priced           map[int]float64
	statuses         map[int]string
	appointmentSet   map[int]string
	deletedCustomers []int
	deletedRequests  []int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{priced: map[int]float64{}, statuses: map[int]string{}, appointmentSet: map[int]string{}}
}

func (f *fakeAPI) seen(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeAPI) ListServiceRequests(_ context.Context, token string) ([]api.ServiceRequest, error) {
	f.seen(token)
	return f.requests, f.listErr
}

func (f *fakeAPI) CreateServiceRequest(_ context.Context, _ string, in api.NewServiceRequest) (api.ServiceRequest, error) {
	if f.mutateErr != nil {
		return api.ServiceRequest{}, f.mutateErr
	}
	f.created = append(f.created, in)
	return api.ServiceRequest{ID: 42, ServiceType: in.ServiceType, Status: in.Status}, nil
}

func (f *fakeAPI) SetRequestPrice(_ context.Context, _ string, id int, price float64) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.priced[id] = price
	return nil
}

func (f *fakeAPI) SetRequestStatus(_ context.Context, _ string, id int, status string) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeAPI) DeleteServiceRequest(_ context.Context, _ string, id int) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.deletedRequests = append(f.deletedRequests, id)
	return nil
}

func (f *fakeAPI) UploadDocument(_ context.Context, _ string, requestID int, up api.Upload) (api.Document, error) {
	if f.uploadErr != nil {
		return api.Document{}, f.uploadErr
	}
	f.uploaded = append(f.uploaded, up.Filename)
	return api.Document{ID: 1, Service: requestID, Description: up.Description}, nil
}

func (f *fakeAPI) ListDocuments(_ context.Context, token string) ([]api.Document, error) {
	f.seen(token)
	return f.documents, f.listErr
}

func (f *fakeAPI) ListAppointments(_ context.Context, token string) ([]api.Appointment, error) {
	f.seen(token)
	return f.appointments, f.listErr
}

func (f *fakeAPI) SetAppointmentStatus(_ context.Context, _ string, id int, status string) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.appointmentSet[id] = status
	return nil
}

func (f *fakeAPI) ListPayments(_ context.Context, token string) ([]api.Payment, error) {
	f.seen(token)
	return f.payments, f.listErr
}

func (f *fakeAPI) ListCustomers(_ context.Context, token string) ([]api.Customer, error) {
	f.seen(token)
	return f.customers, f.listErr
}

func (f *fakeAPI) DeleteCustomer(_ context.Context, _ string, id int) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.deletedCustomers = append(f.deletedCustomers, id)
	return nil
}

const clientID = "5f1a2b3c-0000-4000-8000-00000000d001"

type fixture struct {
	t       *testing.T
	app     *portal.App
	browser *portaltest.Browser
	api     *fakeAPI
	auth    *fakeAuth
	reg     *auth.Registry
	mem     *session.Memory
	sealer  *session.Sealer
	token   string
}

func newFixture(t *testing.T, staff bool) *fixture {
	t.Helper()
	sealer, err := session.NewSealer(nil)
	require.NoError(t, err)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1}).SignedString([]byte("k"))
	require.NoError(t, err)
	user := api.User{ID: 1, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", UserType: session.RoleIndividual, IsStaff: staff}
	f := &fixture{
		t:      t,
		app:    portal.New(),
		api:    newFakeAPI(),
		auth:   &fakeAuth{resp: api.LoginResponse{Access: token, Refresh: "r", User: user}},
		mem:    session.NewMemory(),
		sealer: sealer,
		token:  token,
	}
	f.reg = auth.NewRegistry(f.auth, nil)
	Register(f.app, Deps{API: f.api, Registry: f.reg, Stores: f.stores})
	f.browser = portaltest.NewBrowser(t, f.app.Handler())
	f.browser.SetCookie(&http.Cookie{Name: portaltest.ClientCookie, Value: clientID})
	return f
}

func (f *fixture) stores(w http.ResponseWriter, r *http.Request) *session.Store {
	return session.NewStore(session.Scope(f.mem, portal.ClientID(r)), session.NewCookieStorage(w, r, f.sealer, false))
}

func (f *fixture) signIn() {
	f.t.Helper()
	r := portal.WithClientID(httptest.NewRequest(http.MethodGet, "/", nil), clientID)
	require.NoError(f.t, f.reg.For(clientID).Login(context.Background(), f.stores(nil, r), "ada@example.com", "pw"))
}

func (f *fixture) visit(path string) *httptest.ResponseRecorder {
	return f.browser.Get(path)
}

func (f *fixture) open(path string) *portaltest.Tab {
	f.t.Helper()
	return f.browser.Open(path)
}

func price(v float64) *float64 {
	return &v
}

func owner(first string) *api.RequestOwner {
	return &api.RequestOwner{ID: 9, FirstName: first, LastName: "Client", Email: first + "@example.com"}
}

func TestDashboard_RedirectsSignedOut(t *testing.T) {
	f := newFixture(t, false)

	w := f.visit("/dashboard/requests")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?redirect=%2Fdashboard%2Frequests", w.Header().Get("Location"))
	assert.Empty(t, f.api.tokens)
}

func TestAdmin_RedirectsClients(t *testing.T) {
	f := newFixture(t, false)
	f.signIn()

	w := f.visit("/admin")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestDashboard_Overview(t *testing.T) {
	f := newFixture(t, false)
	f.api.requests = []api.ServiceRequest{
		{ID: 1, ServiceType: "Self-Assessment", Status: api.StatusDraft, ReferenceNumber: "SA-001", CreatedAt: "2024-03-05T10:00:00Z"},
		{ID: 2, ServiceType: "Bookkeeping", Status: api.StatusPendingPayment, Price: price(120), CreatedAt: "2024-03-06"},
		{ID: 3, ServiceType: "Payroll", Status: api.StatusCompleted, CreatedAt: "2024-01-01"},
	}
	f.api.appointments = []api.Appointment{{ID: 1, Status: api.AppointmentPending}, {ID: 2, Status: api.AppointmentCancelled}}
	f.signIn()

	body := f.open("/dashboard").Body

	assert.Contains(t, body, "My Dashboard")
	assert.Contains(t, body, "Welcome back, Ada.")
	assert.Contains(t, body, "<header>Active Requests</header><h2>2</h2>")
	assert.Contains(t, body, "<header>Upcoming Appointments</header><h2>1</h2>")
	assert.Contains(t, body, "<header>Pending Payments</header><h2>1</h2>")
	assert.Contains(t, body, "SA-001")
	assert.Contains(t, body, "5 Mar 2024")
	assert.Contains(t, body, Money(120))
	assert.Equal(t, []string{f.token, f.token}, f.api.tokens)
}

func TestDashboard_OpensPanelFromPath(t *testing.T) {
	f := newFixture(t, false)
	f.api.payments = []api.Payment{{ID: 1, Date: "2024-04-01", Amount: 250.5, Status: "paid", Description: "Tax return"}}
	f.signIn()

	body := f.open("/dashboard/payments").Body

	assert.Contains(t, body, `id="panel-payments"`)
	assert.Contains(t, body, "Tax return")
	assert.Contains(t, body, Money(250.5))
	assert.Contains(t, body, "1 Apr 2024")
}

func TestDashboard_LoadFailureKeepsData(t *testing.T) {
	f := newFixture(t, false)
	f.api.requests = []api.ServiceRequest{{ID: 1, Status: api.StatusDraft, ReferenceNumber: "SA-001"}}
	f.signIn()
	tb := f.open("/dashboard/requests")
	action, target := portaltest.Clicked(t, tb.Body, "requests", "Service Requests")

	f.api.listErr = errors.New("connection refused")
	tb.Call(action, map[string]any{target: "requests"})

	out := tb.Stream()
	assert.Contains(t, out, FailedRequests)
	assert.Contains(t, out, "SA-001")
}

func TestDashboard_SwitchesPanel(t *testing.T) {
	f := newFixture(t, false)
	f.api.documents = []api.Document{{ID: 1, File: "https://files.example.com/p60.pdf", Description: "P60 2023", UploadedAt: "2024-02-01"}}
	f.signIn()
	tb := f.open("/dashboard")
	action, target := portaltest.Clicked(t, tb.Body, "documents", "Documents")

	tb.Call(action, map[string]any{target: "documents"})

	out := tb.Stream()
	assert.Contains(t, out, `id="panel-documents"`)
	assert.Contains(t, out, "P60 2023")
}

func TestDashboard_CreateRequestNeedsService(t *testing.T) {
	f := newFixture(t, false)
	f.signIn()
	tb := f.open("/dashboard/requests")
	create := tb.Button("Create request")

	tb.Call(create, nil)

	assert.Contains(t, tb.Stream(), MissingService)
	assert.Empty(t, f.api.created)
}

func TestDashboard_CreateRequestUploadsDocuments(t *testing.T) {
	f := newFixture(t, false)
	f.signIn()
	tb := f.open("/dashboard/requests")
	create := tb.Button("Create request")
	service := tb.Signal("service_type")
	nino := tb.Signal("national_insurance_number")

	tb.Attach("p60.pdf", []byte("%PDF-1.4"))
	tb.Call(create, map[string]any{service: "Bookkeeping", nino: "QQ123456C"})

	require.Len(t, f.api.created, 1)
	assert.Equal(t, "Bookkeeping", f.api.created[0].ServiceType)
	assert.Equal(t, "QQ123456C", f.api.created[0].NationalInsuranceNumber)
	assert.Equal(t, api.StatusDraft, f.api.created[0].Status)
	assert.Equal(t, []string{"p60.pdf"}, f.api.uploaded)
	assert.Contains(t, tb.Stream(), RequestCreated)
}

func TestDashboard_CreateRequestFailure(t *testing.T) {
	f := newFixture(t, false)
	f.signIn()
	tb := f.open("/dashboard/requests")
	create := tb.Button("Create request")
	service := tb.Signal("service_type")

	f.api.mutateErr = &api.Error{Status: http.StatusBadRequest, Detail: "Service type is not offered"}
	tb.Call(create, map[string]any{service: "Payroll"})

	assert.Contains(t, tb.Stream(), "Service type is not offered")
	assert.Empty(t, f.api.created)
}

func TestDashboard_UploadFailureNamesFile(t *testing.T) {
	f := newFixture(t, false)
	f.signIn()
	tb := f.open("/dashboard/requests")
	create := tb.Button("Create request")
	service := tb.Signal("service_type")

	tb.Attach("sa302.pdf", []byte("%PDF-1.4"))
	f.api.uploadErr = errors.New("boom")
	tb.Call(create, map[string]any{service: "Payroll"})

	assert.Contains(t, tb.Stream(), "Failed to upload file: sa302.pdf")
}

func TestDashboard_CancelAppointment(t *testing.T) {
	f := newFixture(t, false)
	f.api.appointments = []api.Appointment{{ID: 8, Type: "Consultation", Date: "2024-05-01", Time: "10:00", Status: api.AppointmentPending}}
	f.signIn()
	tb := f.open("/dashboard/appointments")
	action, target := portaltest.Clicked(t, tb.Body, "8", "Cancel")

	tb.Call(action, map[string]any{target: "8"})

	assert.Equal(t, api.AppointmentCancelled, f.api.appointmentSet[8])
	assert.Contains(t, tb.Stream(), Cancelled)
}

func TestDashboard_SaveProfile(t *testing.T) {
	f := newFixture(t, false)
	f.auth.updateResp = api.User{ID: 1, Email: "ada@example.com", FirstName: "Grace", LastName: "Lovelace"}
	f.signIn()
	tb := f.open("/dashboard/settings")
	save := tb.Button("Save changes")
	first := tb.Signal("first_name")

	tb.Call(save, map[string]any{first: "Grace"})

	require.NotNil(t, f.auth.lastUpdate.FirstName)
	assert.Equal(t, "Grace", *f.auth.lastUpdate.FirstName)
	assert.Equal(t, "Grace", f.reg.For(clientID).State().Session.User.FirstName)
	assert.Contains(t, tb.Stream(), ProfileUpdated)
}

func TestDashboard_SaveProfileFailure(t *testing.T) {
	f := newFixture(t, false)
	f.auth.updateErr = &api.Error{Status: http.StatusBadRequest}
	f.signIn()
	tb := f.open("/dashboard/settings")
	save := tb.Button("Save changes")

	tb.Call(save, nil)

	assert.Contains(t, tb.Stream(), ProfileFailed)
	assert.Equal(t, "Ada", f.reg.For(clientID).State().Session.User.FirstName)
}

func TestDashboard_Logout(t *testing.T) {
	f := newFixture(t, false)
	f.signIn()
	tb := f.open("/dashboard")
	logout := tb.Button("Log out")

	tb.Call(logout, nil)

	assert.False(t, f.reg.For(clientID).IsAuthenticated())
	assert.Contains(t, tb.Stream(), "/login")
}

func TestAdmin_Overview(t *testing.T) {
	f := newFixture(t, true)
	f.api.requests = []api.ServiceRequest{
		{ID: 1, Status: api.StatusDraft},
		{ID: 2, Status: api.StatusDraft},
		{ID: 3, Status: api.StatusCompleted},
	}
	f.signIn()

	body := f.open("/admin").Body

	assert.Contains(t, body, "Admin Dashboard")
	assert.Contains(t, body, "<header>Total Requests</header><h2>3</h2>")
	assert.Contains(t, body, "<header>New</header><h2>2</h2>")
	assert.Contains(t, body, "<header>In Progress</header><h2>0</h2>")
}

func TestAdmin_FilterRequests(t *testing.T) {
	f := newFixture(t, true)
	f.api.requests = []api.ServiceRequest{
		{ID: 1, User: owner("Nia"), ServiceType: "Payroll", Status: api.StatusDraft},
		{ID: 2, User: owner("Tariq"), ServiceType: "VAT Returns", Status: api.StatusCompleted},
	}
	f.signIn()
	tb := f.open("/admin/requests")
	require.Contains(t, tb.Body, "Nia Client")
	action, target := portaltest.Clicked(t, tb.Body, api.StatusCompleted, "Completed")

	tb.Call(action, map[string]any{target: api.StatusCompleted})

	out := tb.Stream()
	assert.Contains(t, out, "Tariq Client")
	assert.NotContains(t, out, "Nia Client")
}

func TestAdmin_AddPrice(t *testing.T) {
	f := newFixture(t, true)
	f.api.requests = []api.ServiceRequest{{ID: 7, User: owner("Nia"), ServiceType: "Payroll", Status: api.StatusDraft}}
	f.signIn()
	tb := f.open("/admin/requests")
	view, target := portaltest.Clicked(t, tb.Body, "7", "View Details")

	tb.Call(view, map[string]any{target: "7"})
	details := tb.Stream()
	add := portaltest.ButtonIn(t, details, "Add Price")
	priceSig := portaltest.SignalIn(t, details, "price")

	tb.Call(add, map[string]any{priceSig: "abc"})
	assert.Contains(t, tb.Stream(), InvalidPrice)
	assert.Empty(t, f.api.priced)

	tb.Call(add, map[string]any{priceSig: "150.50"})
	assert.Equal(t, 150.50, f.api.priced[7])
	assert.Contains(t, tb.Stream(), PriceAdded)
}

func TestAdmin_AdvanceStatus(t *testing.T) {
	f := newFixture(t, true)
	f.api.requests = []api.ServiceRequest{{ID: 3, ServiceType: "Payroll", Status: api.StatusPendingPayment, Price: price(90)}}
	f.signIn()
	tb := f.open("/admin/requests")
	view, target := portaltest.Clicked(t, tb.Body, "3", "View Details")

	tb.Call(view, map[string]any{target: "3"})
	paid, _ := portaltest.Clicked(t, tb.Stream(), "3", "Mark as Paid")
	tb.Call(paid, map[string]any{target: "3"})

	assert.Equal(t, api.StatusInProgress, f.api.statuses[3])
	assert.Contains(t, tb.Stream(), StatusUpdated)
}

func TestAdmin_StatusFailureShowsServerMessage(t *testing.T) {
	f := newFixture(t, true)
	f.api.requests = []api.ServiceRequest{{ID: 3, Status: api.StatusInProgress}}
	f.signIn()
	tb := f.open("/admin/requests")
	view, target := portaltest.Clicked(t, tb.Body, "3", "View Details")
	tb.Call(view, map[string]any{target: "3"})
	done, _ := portaltest.Clicked(t, tb.Stream(), "3", "Mark as Completed")

	f.api.mutateErr = errors.New("boom")
	tb.Call(done, map[string]any{target: "3"})

	assert.Contains(t, tb.Stream(), StatusFailed)
	assert.Empty(t, f.api.statuses)
}

func TestAdmin_ConfirmAppointment(t *testing.T) {
	f := newFixture(t, true)
	f.api.appointments = []api.Appointment{{ID: 5, Customer: "Nia Client", Date: "2024-05-01", Time: "09:30", Status: api.AppointmentPending}}
	f.signIn()
	tb := f.open("/admin/appointments")
	confirm, target := portaltest.Clicked(t, tb.Body, "5", "Confirm")

	tb.Call(confirm, map[string]any{target: "5"})

	assert.Equal(t, api.AppointmentConfirmed, f.api.appointmentSet[5])
	assert.Contains(t, tb.Stream(), AppointmentUpdated)
}

func TestAdmin_Customers(t *testing.T) {
	f := newFixture(t, true)
	f.api.customers = []api.Customer{{ID: 4, Name: "Nia Client", Email: "nia@example.com", Phone: "07700 900123", Type: "business"}}
	f.signIn()
	tb := f.open("/admin/customers")
	assert.Contains(t, tb.Body, "07700 900123")
	assert.Contains(t, tb.Body, "Business")
	del, target := portaltest.Clicked(t, tb.Body, "4", "Delete")

	f.api.mutateErr = errors.New("boom")
	tb.Call(del, map[string]any{target: "4"})
	assert.Contains(t, tb.Stream(), CustomerDeleteFails)

	f.api.mutateErr = nil
	tb.Call(del, map[string]any{target: "4"})
	assert.Equal(t, []int{4}, f.api.deletedCustomers)
	assert.Contains(t, tb.Stream(), CustomerDeleted)
}
