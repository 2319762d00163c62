package site

import (
	"strings"
	"time"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/savanna-accountancy/portal/internal/signup"
	"github.com/savanna-accountancy/portal/internal/ui"
	"go.uber.org/zap"
)

// Enquiry acknowledgements.
const (
	MessageSent       = "We've received your message and will get back to you soon."
	CallbackRequested = "We've received your callback request and will contact you at the scheduled time."
	ConsultationSent  = "We've received your request and will contact you soon to confirm."
)

// Validation messages.
const (
	InvalidEmail = "Please enter a valid email address."
	InvalidDate  = "Please choose today or a later date."
)

type formField struct {
	name     string
	label    string
	typ      string // input type, "textarea" or "select"
	required bool
	options  []string
}

// ConsultationServices are the topics a consultation can be booked for.
var ConsultationServices = []string{"Tax Return", "Financial Planning", "Bookkeeping", "Business Advisory"}

var (
	contactFields = []formField{
		{name: "name", label: "Name", typ: "text", required: true},
		{name: "email", label: "Email", typ: "email", required: true},
		{name: "phone", label: "Phone", typ: "tel"},
		{name: "subject", label: "Subject", typ: "text", required: true},
		{name: "message", label: "Message", typ: "textarea", required: true},
	}
	callbackFields = []formField{
		{name: "name", label: "Name", typ: "text", required: true},
		{name: "phone", label: "Phone", typ: "tel", required: true},
		{name: "email", label: "Email", typ: "email"},
		{name: "date", label: "Preferred Date", typ: "date", required: true},
		{name: "time", label: "Preferred Time", typ: "time", required: true},
		{name: "reason", label: "Reason for Call", typ: "textarea"},
	}
	consultationFields = []formField{
		{name: "name", label: "Name", typ: "text", required: true},
		{name: "email", label: "Email", typ: "email", required: true},
		{name: "phone", label: "Phone", typ: "tel", required: true},
		{name: "date", label: "Date", typ: "date", required: true},
		{name: "time", label: "Time", typ: "time", required: true},
		{name: "service", label: "Service", typ: "select", required: true, options: ConsultationServices},
		{name: "message", label: "Additional Information", typ: "textarea"},
	}
)

// enquiry is a public form whose submissions are acknowledged and logged for
// the team to follow up.
type enquiry struct {
	c      *portal.Context
	kind   string
	fields []formField
	button string
	sent   string
	now    func() time.Time

	values map[string]*portal.SignalHandle[string]
	errs   map[string]string
	notice ui.Notice

	submit, dismiss *portal.ActionHandle
}

func newEnquiry(c *portal.Context, kind, button, sent string, fields []formField) *enquiry {
	e := &enquiry{
		c:      c,
		kind:   kind,
		fields: fields,
		button: button,
		sent:   sent,
		now:    time.Now,
		values: make(map[string]*portal.SignalHandle[string], len(fields)),
		errs:   map[string]string{},
	}
	for _, f := range fields {
		e.values[f.name] = portal.Signal(c, "")
	}
	e.submit = c.Action(e.send)
	e.dismiss = c.Action(func() {
		e.notice = ui.Notice{}
		c.SyncElements()
	})
	return e
}

func (e *enquiry) validate() map[string]string {
	errs := map[string]string{}
	today := e.now().Format(time.DateOnly)
	for _, f := range e.fields {
		v := strings.TrimSpace(e.values[f.name].Get())
		switch {
		case v == "":
			if f.required {
				errs[f.name] = f.label + " is required."
			}
		case f.typ == "email" && !signup.ValidEmail(v):
			errs[f.name] = InvalidEmail
		case f.typ == "date":
			d, err := time.Parse(time.DateOnly, v)
			if err != nil || d.Format(time.DateOnly) < today {
				errs[f.name] = InvalidDate
			}
		}
	}
	return errs
}

func (e *enquiry) send() {
	e.errs = e.validate()
	if len(e.errs) > 0 {
		e.notice = ui.Notice{}
		e.c.SyncElements()
		return
	}
	fields := []zap.Field{zap.String("form", e.kind)}
	for _, f := range e.fields {
		if f.typ != "textarea" {
			fields = append(fields, zap.String(f.name, strings.TrimSpace(e.values[f.name].Get())))
		}
	}
	e.c.Logger().Named("site").Info("enquiry received", fields...)
	for _, v := range e.values {
		v.Set("")
	}
	e.notice = ui.Success(e.sent)
	e.c.Sync()
}

func (e *enquiry) view() h.H {
	items := []h.H{h.ID(e.kind + "-form"), e.submit.OnSubmit()}
	for _, f := range e.fields {
		items = append(items, e.input(f))
	}
	items = append(items, h.Button(h.Type("submit"), h.Text(e.button)))
	return h.Group(e.notice.View(e.dismiss), h.Form(items...))
}

func (e *enquiry) input(f formField) h.H {
	id := e.kind + "-" + f.name
	bind := e.values[f.name].Bind()
	label := f.label
	if f.required {
		label += " *"
	}
	var attrs []h.H
	if f.required {
		attrs = append(attrs, h.Required())
	}
	switch f.typ {
	case "textarea":
		return h.Label(h.For(id),
			h.Text(label),
			h.Textarea(append([]h.H{h.ID(id), h.Name(f.name), bind, h.If(e.errs[f.name] != "", h.AriaInvalid())}, attrs...)...),
			ui.FieldError(e.errs[f.name]),
		)
	case "select":
		return ui.Select(label, id, append([]string{""}, f.options...), bind, e.errs[f.name], attrs...)
	}
	return ui.Input(label, id, f.typ, bind, e.errs[f.name], attrs...)
}

func contact(c *portal.Context) {
	c.Title(ui.Title("Contact"))
	message := newEnquiry(c, "contact", "Send Message", MessageSent, contactFields)
	callback := newEnquiry(c, "callback", "Request Callback", CallbackRequested, callbackFields)
	c.View(func() h.H {
		return ui.Page("/contact",
			h.H1(h.Text("Contact Us")),
			h.P(h.Text("Have questions about our services? Need expert financial advice? We're here to help.")),
			h.Div(h.Class("grid"),
				h.Section(h.H2(h.Text("Send Us a Message")), message.view()),
				h.Section(h.H2(h.Text("Request a Callback")), callback.view()),
			),
			contactDetails(),
		)
	})
}

func bookConsultation(c *portal.Context) {
	c.Title(ui.Title("Book a consultation"))
	form := newEnquiry(c, "consultation", "Book Consultation", ConsultationSent, consultationFields)
	c.View(func() h.H {
		return ui.Page("/book-consultation",
			h.H1(h.Text("Book a Consultation")),
			h.P(h.Text("Choose a date and time that suits you and tell us what you would like to discuss.")),
			form.view(),
		)
	})
}
