package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/auth"
	"github.com/savanna-accountancy/portal/internal/signup"
	"github.com/savanna-accountancy/portal/internal/ui"
	"go.uber.org/zap"
)

// Client dashboard notices.
const (
	FailedRequests     = "Failed to load service requests"
	FailedAppointments = "Failed to load appointments"
	FailedPayments     = "Failed to load payment history"
	FailedDocuments    = "Failed to load documents"

	MissingService  = "Please select a service type."
	RequestCreated  = "Your service request has been created successfully."
	CreateFailed    = "Failed to create request"
	RequestDeleted  = "The request has been deleted."
	DeleteFailed    = "Failed to delete request"
	Cancelled       = "The appointment has been cancelled."
	CancelFailed    = "Failed to cancel appointment"
	ProfileUpdated  = "Your profile has been successfully updated."
	ProfileFailed   = "Failed to update your profile. Please try again."
	uploadFailedFmt = "Failed to upload file: %s"
)

// userDashboard is the client's view of their requests, appointments,
// payments, documents and profile.
type userDashboard struct {
	*shell

	requests     []api.ServiceRequest
	appointments []api.Appointment
	payments     []api.Payment
	documents    []api.Document

	// new request form
	service, nino, utr, reference *portal.SignalHandle[string]
	attached                      []signup.Document
	upload                        *portal.UploadHandle

	// profile form
	firstName, lastName, phone, business, address *portal.SignalHandle[string]

	create, deleteRequest, detach, cancelAppointment, saveProfile *portal.ActionHandle
}

func openUser(c *portal.Context, d Deps) {
	c.Title(ui.Title("Dashboard"))
	u := &userDashboard{shell: newShell(c, d, "My Dashboard", "/dashboard")}
	u.panels = []panel{
		{name: "overview", label: "Overview", failed: FailedRequests, load: u.loadOverview, view: u.overview},
		{name: "requests", label: "Service Requests", failed: FailedRequests, load: u.loadRequests, view: u.requestsPanel},
		{name: "appointments", label: "Appointments", failed: FailedAppointments, load: u.loadAppointments, view: u.appointmentsPanel},
		{name: "payments", label: "Payment History", failed: FailedPayments, load: u.loadPayments, view: u.paymentsPanel},
		{name: "documents", label: "Documents", failed: FailedDocuments, load: u.loadDocuments, view: u.documentsPanel},
		{name: "settings", label: "Settings", load: u.loadProfile, view: u.settingsPanel},
	}

	u.service = portal.Signal(c, "")
	u.nino = portal.Signal(c, "")
	u.utr = portal.Signal(c, "")
	u.reference = portal.Signal(c, "")
	u.upload = c.Upload(u.attach)

	user := u.m.State().Session.User
	u.firstName = portal.Signal(c, user.FirstName)
	u.lastName = portal.Signal(c, user.LastName)
	u.phone = portal.Signal(c, user.PhoneNumber)
	u.business = portal.Signal(c, user.BusinessName)
	u.address = portal.Signal(c, user.Address)

	u.create = u.act(u.createRequest)
	u.deleteRequest = u.act(func() {
		id, ok := u.targetID()
		if !ok {
			return
		}
		u.call(RequestDeleted, DeleteFailed, func(ctx context.Context, token string) error {
			return u.d.API.DeleteServiceRequest(ctx, token, id)
		})
	})
	u.detach = u.act(func() {
		if i, err := strconv.Atoi(u.target.Get()); err == nil && i >= 0 && i < len(u.attached) {
			u.attached = append(u.attached[:i], u.attached[i+1:]...)
		}
	})
	u.cancelAppointment = u.act(func() {
		id, ok := u.targetID()
		if !ok {
			return
		}
		u.call(Cancelled, CancelFailed, func(ctx context.Context, token string) error {
			return u.d.API.SetAppointmentStatus(ctx, token, id, api.AppointmentCancelled)
		})
	})
	u.saveProfile = u.act(u.updateProfile)

	u.start(userGuard)
}

func (u *userDashboard) loadRequests(ctx context.Context, token string) error {
	reqs, err := u.d.API.ListServiceRequests(ctx, token)
	if err != nil {
		return err
	}
	u.requests = reqs
	return nil
}

func (u *userDashboard) loadAppointments(ctx context.Context, token string) error {
	appts, err := u.d.API.ListAppointments(ctx, token)
	if err != nil {
		return err
	}
	u.appointments = appts
	return nil
}

func (u *userDashboard) loadPayments(ctx context.Context, token string) error {
	pays, err := u.d.API.ListPayments(ctx, token)
	if err != nil {
		return err
	}
	u.payments = pays
	return nil
}

func (u *userDashboard) loadDocuments(ctx context.Context, token string) error {
	docs, err := u.d.API.ListDocuments(ctx, token)
	if err != nil {
		return err
	}
	u.documents = docs
	return nil
}

// loadOverview needs requests and appointments; either may fail on its own.
func (u *userDashboard) loadOverview(ctx context.Context, token string) error {
	return errors.Join(u.loadRequests(ctx, token), u.loadAppointments(ctx, token))
}

// loadProfile resets the profile form to the stored user.
func (u *userDashboard) loadProfile(context.Context, string) error {
	user := u.m.State().Session.User
	u.firstName.Set(user.FirstName)
	u.lastName.Set(user.LastName)
	u.phone.Set(user.PhoneNumber)
	u.business.Set(user.BusinessName)
	u.address.Set(user.Address)
	return nil
}

func (u *userDashboard) attach(files []*multipart.FileHeader) {
	u.notice = ui.Notice{}
	for _, fh := range files {
		doc, err := signup.ReadDocument(fh)
		if err != nil {
			u.log.Info("attachment rejected", zap.String("file", fh.Filename), zap.Error(err))
			u.notice = ui.Error(signup.Notice(err))
			continue
		}
		u.attached = append(u.attached, doc)
	}
	u.c.SyncElements()
}

// createRequest opens a draft request and then uploads each attached file
// against it.
func (u *userDashboard) createRequest() {
	if u.service.Get() == "" {
		u.notice = ui.Error(MissingService)
		return
	}
	u.call(RequestCreated, CreateFailed, func(ctx context.Context, token string) error {
		req, err := u.d.API.CreateServiceRequest(ctx, token, api.NewServiceRequest{
			ServiceType:             u.service.Get(),
			NationalInsuranceNumber: u.nino.Get(),
			UTRNumber:               u.utr.Get(),
			ReferenceNumber:         u.reference.Get(),
			Status:                  api.StatusDraft,
		})
		if err != nil {
			return err
		}
		for _, doc := range u.attached {
			up := api.Upload{Filename: doc.Name, Description: doc.Name, Content: bytes.NewReader(doc.Data)}
			if _, err := u.d.API.UploadDocument(ctx, token, req.ID, up); err != nil {
				return &auth.NoticeError{Notice: fmt.Sprintf(uploadFailedFmt, doc.Name), Err: err}
			}
		}
		u.log.Info("service request created", zap.Int("request", req.ID), zap.Int("documents", len(u.attached)))
		u.service.Set("")
		u.nino.Set("")
		u.utr.Set("")
		u.reference.Set("")
		u.attached = nil
		return nil
	})
}

func (u *userDashboard) updateProfile() {
	update := api.UserUpdate{
		FirstName:    ptr(u.firstName.Get()),
		LastName:     ptr(u.lastName.Get()),
		PhoneNumber:  ptr(u.phone.Get()),
		BusinessName: ptr(u.business.Get()),
		Address:      ptr(u.address.Get()),
	}
	if _, err := u.m.UpdateUser(u.ctx(), u.d.Stores(u.c.Writer(), u.c.Request()), update); err != nil {
		u.log.Info("profile update failed", zap.Error(err))
		u.notice = ui.Error(ProfileFailed)
		return
	}
	u.notice = ui.Success(ProfileUpdated)
}

func ptr(s string) *string {
	return &s
}

func (u *userDashboard) overview() h.H {
	active, awaiting := 0, 0
	for _, r := range u.requests {
		if r.Status != api.StatusCompleted {
			active++
		}
		if r.Status == api.StatusPendingPayment {
			awaiting++
		}
	}
	upcoming := 0
	for _, a := range u.appointments {
		if a.Status == api.AppointmentPending || a.Status == api.AppointmentConfirmed {
			upcoming++
		}
	}
	card := func(title string, n int, note string) h.H {
		return h.Article(h.Class("stat"),
			h.Header(h.Text(title)),
			h.H2(h.Text(strconv.Itoa(n))),
			h.Small(h.Text(note)),
		)
	}
	recent := u.requests
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return h.Group(
		h.P(h.Textf("Welcome back, %s.", u.m.State().Session.User.FirstName)),
		h.Div(h.Class("grid"),
			card("Active Requests", active, "Requests not yet completed"),
			card("Upcoming Appointments", upcoming, "Pending or confirmed"),
			card("Pending Payments", awaiting, "Requests awaiting payment"),
		),
		h.H3(h.Text("Recent requests")),
		u.requestTable(recent, false),
	)
}

func (u *userDashboard) requestTable(reqs []api.ServiceRequest, actions bool) h.H {
	rows := make([]h.H, 0, len(reqs))
	for _, r := range reqs {
		price := "-"
		if r.Price != nil {
			price = Money(*r.Price)
		}
		rows = append(rows, h.Tr(
			h.Td(h.Text(r.ReferenceNumber)),
			h.Td(h.Text(r.ServiceType)),
			h.Td(statusBadge(r.Status)),
			h.Td(h.Text(FormatDate(r.CreatedAt))),
			h.Td(h.Text(price)),
			h.If(actions, h.Td(
				h.Iff(r.Status == api.StatusPendingPayment && r.Price != nil, func() h.H {
					return h.Small(h.Text("Awaiting payment"))
				}),
				h.Iff(r.Status == api.StatusDraft, func() h.H {
					return h.Button(h.Type("button"), h.Class("outline secondary"), u.withID(u.deleteRequest, r.ID), h.Text("Delete"))
				}),
			)),
		))
	}
	cols := 5
	if actions {
		cols++
	}
	if len(rows) == 0 {
		rows = append(rows, emptyRow(cols, "You have no service requests yet."))
	}
	return h.Table(
		h.THead(h.Tr(
			h.Th(h.Text("Reference")), h.Th(h.Text("Type")), h.Th(h.Text("Status")),
			h.Th(h.Text("Date")), h.Th(h.Text("Price")), h.If(actions, h.Th(h.Text("Actions"))),
		)),
		h.TBody(rows...),
	)
}

func (u *userDashboard) requestsPanel() h.H {
	files := make([]h.H, 0, len(u.attached))
	for i, d := range u.attached {
		files = append(files, h.Li(
			h.Text(fmt.Sprintf("%s (%.1f KB) ", d.Name, float64(d.Size())/1024)),
			h.A(h.Href("#"), u.on("click__prevent", u.detach, strconv.Itoa(i)), h.Text("Remove")),
		))
	}
	return h.Group(
		u.requestTable(u.requests, true),
		h.Article(h.Class("new-request"),
			h.Header(h.H3(h.Text("New service request"))),
			ui.Select("Service Type", "service_type", append([]string{""}, signup.Services...), u.service.Bind(), ""),
			h.Div(h.Class("grid"),
				ui.Input("National Insurance Number", "national_insurance_number", "text", u.nino.Bind(), ""),
				ui.Input("UTR Number", "utr_number", "text", u.utr.Bind(), ""),
			),
			ui.Input("Reference Number (Optional)", "reference_number", "text", u.reference.Bind(), ""),
			h.H4(h.Text("Upload Documents")),
			u.upload.Form(".pdf,.doc,.docx,.xls,.xlsx,.csv,.jpg,.jpeg,.png",
				h.Button(h.Type("submit"), h.Class("outline"), h.Text("Attach")),
			),
			h.If(len(files) > 0, h.Group(h.H4(h.Text("Selected Files")), h.Ul(files...))),
			h.Footer(h.Button(h.Type("button"), u.create.OnClick(), h.Text("Create request"))),
		),
	)
}

func (u *userDashboard) appointmentsPanel() h.H {
	rows := make([]h.H, 0, len(u.appointments))
	for _, a := range u.appointments {
		rows = append(rows, h.Tr(
			h.Td(h.Text(a.Type)),
			h.Td(h.Text(FormatDate(a.Date))),
			h.Td(h.Text(a.Time)),
			h.Td(statusBadge(a.Status)),
			h.Td(h.Iff(a.Status == api.AppointmentPending, func() h.H {
				return h.Button(h.Type("button"), h.Class("outline secondary"), u.withID(u.cancelAppointment, a.ID), h.Text("Cancel"))
			})),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, emptyRow(5, "You have no appointments."))
	}
	return h.Group(
		h.P(h.A(h.Href("/book-consultation"), h.Role("button"), h.Text("Book a consultation"))),
		h.Table(
			h.THead(h.Tr(h.Th(h.Text("Type")), h.Th(h.Text("Date")), h.Th(h.Text("Time")), h.Th(h.Text("Status")), h.Th())),
			h.TBody(rows...),
		),
	)
}

func (u *userDashboard) paymentsPanel() h.H {
	rows := make([]h.H, 0, len(u.payments))
	for _, p := range u.payments {
		rows = append(rows, h.Tr(
			h.Td(h.Text(FormatDate(p.Date))),
			h.Td(h.Text(p.Description)),
			h.Td(h.Text(Money(p.Amount))),
			h.Td(statusBadge(p.Status)),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, emptyRow(4, "No payments yet."))
	}
	return h.Table(
		h.THead(h.Tr(h.Th(h.Text("Date")), h.Th(h.Text("Description")), h.Th(h.Text("Amount")), h.Th(h.Text("Status")))),
		h.TBody(rows...),
	)
}

func (u *userDashboard) documentsPanel() h.H {
	return documentTable(u.documents, "You have not uploaded any documents.")
}

func documentTable(docs []api.Document, empty string) h.H {
	rows := make([]h.H, 0, len(docs))
	for _, d := range docs {
		name := d.Description
		if name == "" {
			name = d.File
		}
		rows = append(rows, h.Tr(
			h.Td(h.Text(name)),
			h.Td(h.Text(FormatDate(d.UploadedAt))),
			h.Td(h.A(h.Href(d.File), h.Rel("noopener"), h.Text("Download"))),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, emptyRow(3, empty))
	}
	return h.Table(
		h.THead(h.Tr(h.Th(h.Text("Document")), h.Th(h.Text("Uploaded")), h.Th())),
		h.TBody(rows...),
	)
}

func (u *userDashboard) settingsPanel() h.H {
	user := u.m.State().Session.User
	return h.Article(
		h.Header(h.H3(h.Text("Profile"))),
		h.Div(h.Class("grid"),
			ui.Input("First Name", "first_name", "text", u.firstName.Bind(), ""),
			ui.Input("Last Name", "last_name", "text", u.lastName.Bind(), ""),
		),
		h.Label(h.Text("Email Address"), h.Input(h.Type("email"), h.Value(user.Email), h.Disabled())),
		ui.Input("Phone Number", "phone_number", "tel", u.phone.Bind(), ""),
		ui.Input("Address", "address", "text", u.address.Bind(), ""),
		ui.Input("Business Name", "business_name", "text", u.business.Bind(), ""),
		h.Footer(h.Button(h.Type("button"), u.saveProfile.OnClick(), h.Text("Save changes"))),
	)
}
