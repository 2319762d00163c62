package dashboard

import (
	"context"
	"strconv"
	"strings"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/ui"
	"go.uber.org/zap"
)

// Staff dashboard notices.
const (
	FailedCustomers = "Failed to load customers"

	PriceAdded          = "The price has been added to the request successfully."
	PriceFailed         = "Failed to add price to the request"
	InvalidPrice        = "Please enter a valid price."
	StatusUpdated       = "The request status has been updated successfully."
	StatusFailed        = "Failed to update request status"
	AppointmentUpdated  = "The appointment status has been updated."
	AppointmentFailed   = "Failed to update appointment status"
	CustomerDeleted     = "The customer has been deleted."
	CustomerDeleteFails = "Failed to delete customer"
)

// filter is a status tab of the requests panel. An empty status shows all.
type filter struct {
	status string
	label  string
}

var requestFilters = []filter{
	{"", "All"},
	{api.StatusDraft, "New"},
	{api.StatusPendingPayment, "Pending Payment"},
	{api.StatusInProgress, "In Progress"},
	{api.StatusCompleted, "Completed"},
}

// advance is the next step staff can move a request to from its status.
type advance struct {
	to    string
	label string
}

var advances = map[string]advance{
	api.StatusDraft:          {api.StatusInProgress, "Start Work"},
	api.StatusPendingPayment: {api.StatusInProgress, "Mark as Paid"},
	api.StatusInProgress:     {api.StatusCompleted, "Mark as Completed"},
}

// adminDashboard is the staff view of every request, appointment and
// customer.
type adminDashboard struct {
	*shell

	requests     []api.ServiceRequest
	appointments []api.Appointment
	customers    []api.Customer

	filter   string
	selected int
	price    *portal.SignalHandle[string]

	setFilter, selectRequest, addPrice, advance *portal.ActionHandle
	confirm, cancel, deleteCustomer             *portal.ActionHandle
}

func openAdmin(c *portal.Context, d Deps) {
	c.Title(ui.Title("Admin"))
	a := &adminDashboard{shell: newShell(c, d, "Admin Dashboard", "/admin")}
	a.panels = []panel{
		{name: "overview", label: "Overview", failed: FailedRequests, load: a.loadRequests, view: a.overview},
		{name: "requests", label: "Requests", failed: FailedRequests, load: a.loadRequests, view: a.requestsPanel},
		{name: "appointments", label: "Appointments", failed: FailedAppointments, load: a.loadAppointments, view: a.appointmentsPanel},
		{name: "customers", label: "Customers", failed: FailedCustomers, load: a.loadCustomers, view: a.customersPanel},
	}
	a.price = portal.Signal(c, "")

	a.setFilter = a.act(func() {
		for _, f := range requestFilters {
			if f.status == a.target.Get() {
				a.filter = f.status
			}
		}
	})
	a.selectRequest = a.act(func() {
		if id, ok := a.targetID(); ok && id != a.selected {
			a.selected = id
			a.price.Set("")
			return
		}
		a.selected = 0
	})
	a.addPrice = a.act(a.priceRequest)
	a.advance = a.act(a.advanceRequest)
	a.confirm = a.act(func() { a.setAppointment(api.AppointmentConfirmed) })
	a.cancel = a.act(func() { a.setAppointment(api.AppointmentCancelled) })
	a.deleteCustomer = a.act(func() {
		id, ok := a.targetID()
		if !ok {
			return
		}
		a.call(CustomerDeleted, CustomerDeleteFails, func(ctx context.Context, token string) error {
			return a.d.API.DeleteCustomer(ctx, token, id)
		})
	})

	a.start(adminGuard)
}

func (a *adminDashboard) loadRequests(ctx context.Context, token string) error {
	reqs, err := a.d.API.ListServiceRequests(ctx, token)
	if err != nil {
		return err
	}
	a.requests = reqs
	return nil
}

func (a *adminDashboard) loadAppointments(ctx context.Context, token string) error {
	appts, err := a.d.API.ListAppointments(ctx, token)
	if err != nil {
		return err
	}
	a.appointments = appts
	return nil
}

func (a *adminDashboard) loadCustomers(ctx context.Context, token string) error {
	cs, err := a.d.API.ListCustomers(ctx, token)
	if err != nil {
		return err
	}
	a.customers = cs
	return nil
}

func (a *adminDashboard) request(id int) (api.ServiceRequest, bool) {
	for _, r := range a.requests {
		if r.ID == id {
			return r, true
		}
	}
	return api.ServiceRequest{}, false
}

// priceRequest prices the selected request, which the API moves to pending
// payment.
func (a *adminDashboard) priceRequest() {
	price, err := strconv.ParseFloat(strings.TrimSpace(a.price.Get()), 64)
	if err != nil || price <= 0 {
		a.notice = ui.Error(InvalidPrice)
		return
	}
	id := a.selected
	if _, ok := a.request(id); !ok {
		return
	}
	a.call(PriceAdded, PriceFailed, func(ctx context.Context, token string) error {
		if err := a.d.API.SetRequestPrice(ctx, token, id, price); err != nil {
			return err
		}
		a.log.Info("request priced", zap.Int("request", id), zap.Float64("price", price))
		a.price.Set("")
		return nil
	})
}

func (a *adminDashboard) advanceRequest() {
	id, ok := a.targetID()
	if !ok {
		return
	}
	r, ok := a.request(id)
	if !ok {
		return
	}
	next, ok := advances[r.Status]
	if !ok {
		return
	}
	a.call(StatusUpdated, StatusFailed, func(ctx context.Context, token string) error {
		return a.d.API.SetRequestStatus(ctx, token, id, next.to)
	})
}

func (a *adminDashboard) setAppointment(status string) {
	id, ok := a.targetID()
	if !ok {
		return
	}
	a.call(AppointmentUpdated, AppointmentFailed, func(ctx context.Context, token string) error {
		return a.d.API.SetAppointmentStatus(ctx, token, id, status)
	})
}

// countByStatus counts requests per status.
func countByStatus(reqs []api.ServiceRequest) map[string]int {
	counts := make(map[string]int, len(api.RequestStatuses))
	for _, r := range reqs {
		counts[r.Status]++
	}
	return counts
}

func (a *adminDashboard) overview() h.H {
	counts := countByStatus(a.requests)
	cards := make([]h.H, 0, len(requestFilters))
	for _, f := range requestFilters {
		n := len(a.requests)
		if f.status != "" {
			n = counts[f.status]
		}
		label := f.label
		if f.status == "" {
			label = "Total Requests"
		}
		cards = append(cards, h.Article(h.Class("stat"),
			h.Header(h.Text(label)),
			h.H2(h.Text(strconv.Itoa(n))),
		))
	}
	return h.Div(h.Class("grid"), h.Group(cards...))
}

func (a *adminDashboard) visible() []api.ServiceRequest {
	if a.filter == "" {
		return a.requests
	}
	out := make([]api.ServiceRequest, 0, len(a.requests))
	for _, r := range a.requests {
		if r.Status == a.filter {
			out = append(out, r)
		}
	}
	return out
}

func customerName(r api.ServiceRequest) string {
	if r.User == nil {
		return "-"
	}
	name := strings.TrimSpace(r.User.FirstName + " " + r.User.LastName)
	if name == "" {
		return r.User.Email
	}
	return name
}

func (a *adminDashboard) requestsPanel() h.H {
	tabs := make([]h.H, 0, len(requestFilters))
	for _, f := range requestFilters {
		class := "outline"
		if f.status == a.filter {
			class = ""
		}
		tabs = append(tabs, h.Button(h.Type("button"), h.Class(class), a.with(a.setFilter, f.status), h.Text(f.label)))
	}
	reqs := a.visible()
	rows := make([]h.H, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, h.Tr(
			h.Td(h.Textf("#%d", r.ID)),
			h.Td(h.Text(customerName(r))),
			h.Td(h.Text(r.ServiceType)),
			h.Td(statusBadge(r.Status)),
			h.Td(h.Text(FormatDate(r.CreatedAt))),
			h.Td(h.Button(h.Type("button"), h.Class("outline"), a.withID(a.selectRequest, r.ID), h.Text("View Details"))),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, emptyRow(6, "No requests found."))
	}
	return h.Group(
		h.Div(h.Role("group"), h.Class("filters"), h.Group(tabs...)),
		h.Table(
			h.THead(h.Tr(
				h.Th(h.Text("ID")), h.Th(h.Text("Customer")), h.Th(h.Text("Type")),
				h.Th(h.Text("Status")), h.Th(h.Text("Date")), h.Th(h.Text("Action")),
			)),
			h.TBody(rows...),
		),
		a.details(),
	)
}

func (a *adminDashboard) details() h.H {
	r, ok := a.request(a.selected)
	if !ok {
		return nil
	}
	price := "Not set"
	if r.Price != nil {
		price = Money(*r.Price)
	}
	email := "-"
	if r.User != nil {
		email = r.User.Email
	}
	next, canAdvance := advances[r.Status]
	return h.Article(h.Class("request-details"),
		h.Header(h.H3(h.Textf("Request #%d", r.ID))),
		h.Dl(
			h.Dt(h.Text("Customer")), h.Dd(h.Text(customerName(r))),
			h.Dt(h.Text("Email")), h.Dd(h.Text(email)),
			h.Dt(h.Text("Service")), h.Dd(h.Text(r.ServiceType)),
			h.Dt(h.Text("Reference")), h.Dd(h.Text(r.ReferenceNumber)),
			h.Dt(h.Text("Status")), h.Dd(statusBadge(r.Status)),
			h.Dt(h.Text("Created")), h.Dd(h.Text(FormatDate(r.CreatedAt))),
			h.Dt(h.Text("Price")), h.Dd(h.Text(price)),
		),
		h.H4(h.Text("Documents")),
		documentTable(r.Documents, "No documents uploaded."),
		h.Iff(r.Status == api.StatusDraft, func() h.H {
			return h.FieldSet(h.Role("group"),
				h.Input(h.ID("price"), h.Type("number"), h.Min("0"), h.Step("0.01"), h.Placeholder("Price (£)"), a.price.Bind()),
				h.Button(h.Type("button"), a.addPrice.OnClick(), h.Text("Add Price")),
			)
		}),
		h.Iff(canAdvance, func() h.H {
			return h.Footer(h.Button(h.Type("button"), a.withID(a.advance, r.ID), h.Text(next.label)))
		}),
	)
}

func (a *adminDashboard) appointmentsPanel() h.H {
	rows := make([]h.H, 0, len(a.appointments))
	for _, ap := range a.appointments {
		rows = append(rows, h.Tr(
			h.Td(h.Text(ap.Customer)),
			h.Td(h.Text(ap.Type)),
			h.Td(h.Text(FormatDate(ap.Date))),
			h.Td(h.Text(ap.Time)),
			h.Td(statusBadge(ap.Status)),
			h.Td(h.Iff(ap.Status == api.AppointmentPending, func() h.H {
				return h.Group(
					h.Button(h.Type("button"), h.Class("outline"), a.withID(a.confirm, ap.ID), h.Text("Confirm")),
					h.Button(h.Type("button"), h.Class("outline secondary"), a.withID(a.cancel, ap.ID), h.Text("Cancel")),
				)
			})),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, emptyRow(6, "No appointments."))
	}
	return h.Table(
		h.THead(h.Tr(
			h.Th(h.Text("Customer")), h.Th(h.Text("Type")), h.Th(h.Text("Date")),
			h.Th(h.Text("Time")), h.Th(h.Text("Status")), h.Th(h.Text("Actions")),
		)),
		h.TBody(rows...),
	)
}

func (a *adminDashboard) customersPanel() h.H {
	rows := make([]h.H, 0, len(a.customers))
	for _, cu := range a.customers {
		rows = append(rows, h.Tr(
			h.Td(h.Text(cu.Name)),
			h.Td(h.Text(cu.Email)),
			h.Td(h.Text(cu.Phone)),
			h.Td(h.Text(StatusLabel(cu.Type))),
			h.Td(h.Button(h.Type("button"), h.Class("outline secondary"), a.withID(a.deleteCustomer, cu.ID), h.Text("Delete"))),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, emptyRow(5, "No customers."))
	}
	return h.Table(
		h.THead(h.Tr(
			h.Th(h.Text("Name")), h.Th(h.Text("Email")), h.Th(h.Text("Phone")),
			h.Th(h.Text("Type")), h.Th(h.Text("Actions")),
		)),
		h.TBody(rows...),
	)
}
