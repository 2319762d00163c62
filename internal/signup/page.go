package signup

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/savanna-accountancy/portal/internal/ui"
	"go.uber.org/zap"
)

// SuccessPath is where a completed registration lands.
const SuccessPath = "/signup-success"

const documentTypes = ".pdf,.doc,.docx,.xls,.xlsx,.csv,.jpg,.jpeg,.png"

// Register mounts the wizard on /signup and /portal.
func Register(app *portal.App, reg Registrar) {
	open := func(c *portal.Context) {
		c.Title(ui.Title("Sign up"))
		p := newPage(c, NewWizard(), reg)
		c.View(p.view)
	}
	app.Page("/signup", open)
	app.Page("/portal", open)
}

type incomeSignals struct {
	company, job, kind, start, end *portal.SignalHandle[string]
}

// page binds one tab to a wizard. Inputs write signals; every action first
// copies changed signals into the wizard and afterwards copies the wizard
// back, so mirrored fields reach the browser.
type page struct {
	c   *portal.Context
	wiz *Wizard
	reg Registrar
	log *zap.Logger

	text          map[string]*portal.SignalHandle[string]
	sameAsCurrent *portal.SignalHandle[bool]
	sameAsPhone   *portal.SignalHandle[bool]
	income        map[string]*incomeSignals
	target        *portal.SignalHandle[string]

	notice ui.Notice

	edit, next, prev, goTo, submit, dismiss  *portal.ActionHandle
	addIncome, removeIncome, removeDocument *portal.ActionHandle
	upload                                  *portal.UploadHandle
}

func newPage(c *portal.Context, wiz *Wizard, reg Registrar) *page {
	p := &page{
		c:      c,
		wiz:    wiz,
		reg:    reg,
		log:    c.Logger().Named("signup"),
		text:   make(map[string]*portal.SignalHandle[string]),
		income: make(map[string]*incomeSignals),
	}
	f := wiz.Form()
	for _, tf := range textFields {
		p.text[tf.name] = portal.Signal(c, displayValue(f, tf.name))
	}
	p.sameAsCurrent = portal.Signal(c, f.SameAsCurrent)
	p.sameAsPhone = portal.Signal(c, f.SameAsPhone)
	p.target = portal.Signal(c, "")

	p.edit = c.Action(p.do(nil))
	p.next = c.Action(p.do(func() error { return p.wiz.Next() }))
	p.prev = c.Action(p.do(func() error { p.wiz.Previous(); return nil }))
	p.goTo = c.Action(p.do(func() error {
		k, err := strconv.Atoi(p.target.Get())
		if err != nil {
			return nil
		}
		return p.wiz.GoToStep(k)
	}))
	p.submit = c.Action(p.do(p.submitForm))
	p.dismiss = c.Action(func() {
		p.notice = ui.Notice{}
		c.SyncElements()
	})
	p.addIncome = c.Action(p.do(func() error { p.wiz.AddIncomeSource(); return nil }))
	p.removeIncome = c.Action(p.do(func() error { p.wiz.RemoveIncomeSource(p.target.Get()); return nil }))
	p.removeDocument = c.Action(p.do(func() error {
		if i, err := strconv.Atoi(p.target.Get()); err == nil {
			p.wiz.RemoveDocument(i)
		}
		return nil
	}))
	p.upload = c.Upload(p.attach)
	return p
}

func displayValue(f Form, field string) string {
	if field == FieldDOB {
		return f.DOBInput
	}
	return f.Value(field)
}

// do wraps a wizard operation into an action: pull the browser's input, run
// op, show its outcome and push the result back.
func (p *page) do(op func() error) func() {
	return func() {
		p.pull()
		if op != nil {
			if err := op(); err != nil {
				p.notice = ui.Error(Notice(err))
			} else {
				p.notice = ui.Notice{}
			}
		}
		p.push()
		p.c.Sync()
	}
}

func (p *page) submitForm() error {
	ctx := p.c.Request().Context()
	err := p.wiz.Submit(ctx, p.reg)
	if err != nil {
		p.log.Info("registration failed", zap.Error(err))
		return err
	}
	p.log.Info("registration submitted", zap.String("service", p.wiz.Form().ServiceType))
	p.c.Redirect(SuccessPath)
	return nil
}

// pull applies every input the user changed since the last push. Changes
// are found against a snapshot so that mirrored copies are not overwritten
// by their stale browser values.
func (p *page) pull() {
	snap := p.wiz.Form()
	for _, tf := range textFields {
		if v := p.text[tf.name].Get(); v != displayValue(snap, tf.name) {
			if err := p.wiz.Set(tf.name, v); err != nil {
				p.log.Debug("input ignored", zap.String("field", tf.name), zap.Error(err))
			}
		}
	}
	if v := p.sameAsCurrent.Get(); v != snap.SameAsCurrent {
		p.wiz.SetSameAsCurrent(v)
	}
	if v := p.sameAsPhone.Get(); v != snap.SameAsPhone {
		p.wiz.SetSameAsPhone(v)
	}
	for _, src := range snap.IncomeSources {
		sigs, ok := p.income[src.ID]
		if !ok {
			continue
		}
		for _, u := range []struct {
			field, old string
			sig        *portal.SignalHandle[string]
		}{
			{IncomeCompanyName, src.CompanyName, sigs.company},
			{IncomeJobTitle, src.JobTitle, sigs.job},
			{IncomeType, src.IncomeType, sigs.kind},
			{IncomeStartDate, src.StartDateInput, sigs.start},
			{IncomeEndDate, src.EndDateInput, sigs.end},
		} {
			if v := u.sig.Get(); v != u.old {
				_ = p.wiz.UpdateIncomeSource(src.ID, u.field, v)
			}
		}
	}
}

// push copies the wizard into the signals that differ.
func (p *page) push() {
	f := p.wiz.Form()
	for _, tf := range textFields {
		setIfChanged(p.text[tf.name], displayValue(f, tf.name))
	}
	setIfChanged(p.sameAsCurrent, f.SameAsCurrent)
	setIfChanged(p.sameAsPhone, f.SameAsPhone)
	for _, src := range f.IncomeSources {
		sigs, ok := p.income[src.ID]
		if !ok {
			p.income[src.ID] = &incomeSignals{
				company: portal.Signal(p.c, src.CompanyName),
				job:     portal.Signal(p.c, src.JobTitle),
				kind:    portal.Signal(p.c, src.IncomeType),
				start:   portal.Signal(p.c, src.StartDateInput),
				end:     portal.Signal(p.c, src.EndDateInput),
			}
			continue
		}
		setIfChanged(sigs.company, src.CompanyName)
		setIfChanged(sigs.job, src.JobTitle)
		setIfChanged(sigs.kind, src.IncomeType)
		setIfChanged(sigs.start, src.StartDateInput)
		setIfChanged(sigs.end, src.EndDateInput)
	}
	setIfChanged(p.target, "")
}

func setIfChanged[T portal.SignalType](s *portal.SignalHandle[T], v T) {
	if s.Get() != v {
		s.Set(v)
	}
}

// attach reads uploaded files into the wizard.
func (p *page) attach(files []*multipart.FileHeader) {
	p.notice = ui.Notice{}
	for _, fh := range files {
		doc, err := ReadDocument(fh)
		if err == nil {
			err = p.wiz.AddDocument(doc)
		}
		if err != nil {
			p.log.Info("attachment rejected", zap.String("file", fh.Filename), zap.Error(err))
			p.notice = ui.Error(Notice(err))
		}
	}
	p.c.SyncElements()
}

// ReadDocument loads an uploaded file, refusing files over MaxDocumentSize.
func ReadDocument(fh *multipart.FileHeader) (Document, error) {
	if fh.Size > MaxDocumentSize {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentTooLarge, fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return Document{Name: fh.Filename, Data: data}, nil
}

// with sets the target signal and then runs a.
func (p *page) with(a *portal.ActionHandle, target string) h.H {
	return h.DataOn("click", fmt.Sprintf("%s = %q; %s", p.target.Ref(), target, a.Expr()))
}

func (p *page) view() h.H {
	step := p.wiz.Step()
	return ui.Page("/signup",
		h.Article(h.Class("signup"),
			h.Header(
				h.H1(h.Text("Create your client account")),
				p.stepper(step),
			),
			p.notice.View(p.dismiss),
			p.stepView(step),
			p.buttons(step),
		),
	)
}

func (p *page) stepper(current int) h.H {
	items := make([]h.H, 0, Steps)
	for s := StepPersonal; s <= Steps; s++ {
		class := "step"
		switch {
		case s == current:
			class += " current"
		case s < current || p.wiz.Completed(s):
			class += " done"
		}
		items = append(items, h.Li(
			h.Button(h.Type("button"), h.Class(class), h.If(s == current, h.AriaCurrent("step")), p.with(p.goTo, strconv.Itoa(s)),
				h.Strong(h.Text(strconv.Itoa(s))), h.Text(" "+StepTitles[s]),
			),
		))
	}
	progress := (current - 1) * 100 / (Steps - 1)
	return h.Nav(h.Class("stepper"),
		h.Ol(items...),
		h.Progress(h.Value(strconv.Itoa(progress)), h.Max("100")),
	)
}

func (p *page) stepView(step int) h.H {
	switch step {
	case StepServices:
		return p.servicesStep()
	case StepCredentials:
		return p.credentialsStep()
	case StepReview:
		return p.reviewStep()
	}
	return p.personalStep()
}

func (p *page) input(label, field, typ string, errs Errors, attrs ...h.H) h.H {
	attrs = append(attrs, p.edit.OnInput())
	return ui.Input(label, field, typ, p.text[field].Bind(), errs[field], attrs...)
}

func (p *page) choice(label, field string, options []string, errs Errors) h.H {
	return ui.Select(label, field, options, p.text[field].Bind(), errs[field], p.edit.OnChange())
}

func (p *page) personalStep() h.H {
	errs := p.wiz.Errors()
	f := p.wiz.Form()
	return h.Section(
		h.H2(h.Text("Personal Information")),
		h.Div(h.Class("grid"),
			p.input("First name*", FieldFirstName, "text", errs),
			p.input("Last name*", FieldLastName, "text", errs),
		),
		h.Div(h.Class("grid"),
			p.choice("Sex*", FieldSex, Sexes, errs),
			p.input("Date of birth*", FieldDOB, "text", errs, h.Placeholder("dd/mm/yyyy")),
		),
		h.FieldSet(
			h.Legend(h.Text("Current address")),
			p.input("Address line 1*", FieldCurrentAddressLine1, "text", errs),
			p.input("Address line 2", FieldCurrentAddressLine2, "text", errs),
			h.Div(h.Class("grid"),
				p.input("City*", FieldCurrentCity, "text", errs),
				p.input("Postcode*", FieldCurrentZip, "text", errs),
				p.choice("Country", FieldCurrentCountry, Countries, errs),
			),
		),
		ui.Checkbox("My previous address is the same as my current address", FieldSameAsCurrent, p.sameAsCurrent.Bind(), p.edit.OnChange()),
		h.FieldSet(
			h.Legend(h.Text("Previous address")),
			p.input("Address line 1*", FieldPrevAddressLine1, "text", errs, h.If(f.SameAsCurrent, h.Disabled())),
			p.input("Address line 2", FieldPrevAddressLine2, "text", errs, h.If(f.SameAsCurrent, h.Disabled())),
			h.Div(h.Class("grid"),
				p.input("City*", FieldPrevCity, "text", errs, h.If(f.SameAsCurrent, h.Disabled())),
				p.input("Postcode*", FieldPrevZip, "text", errs, h.If(f.SameAsCurrent, h.Disabled())),
				p.choice("Country", FieldPrevCountry, Countries, errs),
			),
		),
		h.Div(h.Class("grid"),
			p.input("NINO (National Insurance Number)*", FieldNINO, "text", errs, h.Placeholder("QQ123456C")),
			p.input("UTR (Unique Taxpayer Reference)*", FieldUTR, "text", errs, h.Placeholder("1234567890")),
		),
		h.Div(h.Class("grid"),
			p.input("Phone number*", FieldPhoneNumber, "tel", errs),
			p.input("Email*", FieldEmail, "email", errs),
		),
		ui.Checkbox("My WhatsApp number is the same as my phone number", FieldSameAsPhone, p.sameAsPhone.Bind(), p.edit.OnChange()),
		p.input("WhatsApp number*", FieldWhatsAppNumber, "tel", errs, h.If(f.SameAsPhone, h.Disabled())),
	)
}

func (p *page) servicesStep() h.H {
	errs := p.wiz.Errors()
	f := p.wiz.Form()
	sig := p.text[FieldServiceType]
	return h.Section(
		h.H2(h.Text("Services")),
		ui.Radios("Select service*", FieldServiceType, Services, sig.Bind, errs[FieldServiceType], p.edit.OnChange()),
		h.Iff(f.ServiceType == ServiceSelfAssessment, func() h.H {
			year := p.text[FieldSelectedTaxYear]
			return h.Group(
				ui.Radios("Select your tax year*", FieldSelectedTaxYear, TaxYears, year.Bind, errs[FieldSelectedTaxYear], p.edit.OnChange()),
				h.If(f.SelectedTaxYear != "", p.incomeSources(f)),
			)
		}),
		h.Iff(f.ServiceType == ServiceOther, func() h.H {
			return h.Label(h.For(FieldOtherServiceDetails),
				h.Text("Please provide details about the service you need*"),
				h.Textarea(h.ID(FieldOtherServiceDetails), h.Name(FieldOtherServiceDetails),
					p.text[FieldOtherServiceDetails].Bind(), p.edit.OnInput(),
					h.If(errs[FieldOtherServiceDetails] != "", h.AriaInvalid()),
				),
				ui.FieldError(errs[FieldOtherServiceDetails]),
			)
		}),
		p.documents(f),
	)
}

func (p *page) incomeSources(f Form) h.H {
	rows := make([]h.H, 0, len(f.IncomeSources))
	for _, src := range f.IncomeSources {
		sigs, ok := p.income[src.ID]
		if !ok {
			continue
		}
		id := src.ID[:8]
		rows = append(rows, h.Tr(
			h.Td(h.Input(h.Type("text"), h.Aria("label", "Company name"), h.Placeholder("ABC Ltd"), sigs.company.Bind(), p.edit.OnInput())),
			h.Td(h.Input(h.Type("text"), h.Aria("label", "Job title"), h.Placeholder("Developer"), sigs.job.Bind(), p.edit.OnInput())),
			h.Td(ui.Select("", "income-type-"+id, append([]string{""}, IncomeTypes...), sigs.kind.Bind(), "", p.edit.OnChange())),
			h.Td(h.Input(h.Type("text"), h.Aria("label", "Start date"), h.Placeholder("dd/mm/yyyy"), sigs.start.Bind(), p.edit.OnInput())),
			h.Td(h.Input(h.Type("text"), h.Aria("label", "End date"), h.Placeholder("dd/mm/yyyy"), sigs.end.Bind(), p.edit.OnInput())),
			h.Td(h.Button(h.Type("button"), h.Class("secondary outline"), p.with(p.removeIncome, src.ID), h.Text("Remove"))),
		))
	}
	return h.Section(h.Class("income-sources"),
		h.H3(h.Textf("Your sources of income for %s", f.SelectedTaxYear)),
		h.If(len(rows) == 0, h.P(h.Text(`No income sources added yet. Click "Add item" to add your first income source.`))),
		h.If(len(rows) > 0, h.Table(
			h.THead(h.Tr(h.Th(h.Text("Company")), h.Th(h.Text("Job title")), h.Th(h.Text("Income type")), h.Th(h.Text("Start date")), h.Th(h.Text("End date")), h.Th())),
			h.TBody(rows...),
		)),
		h.Button(h.Type("button"), h.Class("outline"), p.addIncome.OnClick(), h.Text("Add item")),
	)
}

func (p *page) documents(f Form) h.H {
	label := "Please attach any relevant documents"
	if f.ServiceType == ServiceSelfAssessment {
		label = "Please select a tax year first"
		if f.SelectedTaxYear != "" {
			label = "Upload documents for " + f.SelectedTaxYear
		}
	}
	items := make([]h.H, 0, len(f.Documents))
	for i, d := range f.Documents {
		items = append(items, h.Li(
			h.Text(fmt.Sprintf("%s (%.1f KB) ", d.Name, float64(d.Size())/1024)),
			h.A(h.Href("#"), p.with(p.removeDocument, strconv.Itoa(i)), h.Text("Remove")),
		))
	}
	return h.Section(h.Class("documents"),
		h.H3(h.Text(label)),
		p.upload.Form(documentTypes, h.Button(h.Type("submit"), h.Class("outline"), h.Text("Attach"))),
		h.If(len(items) > 0, h.Ul(items...)),
	)
}

func (p *page) credentialsStep() h.H {
	errs := p.wiz.Errors()
	f := p.wiz.Form()
	rules := make([]h.H, 0, len(PasswordRules))
	for _, r := range PasswordRules {
		mark := "✗ "
		if r.Met(f.Password) {
			mark = "✓ "
		}
		rules = append(rules, h.Li(h.Text(mark+r.Label)))
	}
	return h.Section(
		h.H2(h.Text("Authentication credentials to access your client portal")),
		h.P(h.Text("Create credentials for later access of your portal")),
		h.Label(h.Text("Email"),
			h.Input(h.Type("email"), h.Value(f.Email), h.Disabled()),
			h.Small(h.Text("This email will be used as your username to access your portal")),
		),
		p.input("Password*", FieldPassword, "password", errs),
		h.Article(h.Class("password-rules"),
			h.H4(h.Text("Password requirements")),
			h.Ul(rules...),
		),
		p.input("Confirm password*", FieldConfirmPassword, "password", errs),
		h.If(f.ConfirmPassword != "" && f.Password != f.ConfirmPassword && errs[FieldConfirmPassword] == "",
			ui.FieldError("Passwords do not match")),
	)
}

func (p *page) reviewStep() h.H {
	f := p.wiz.Form()
	row := func(label, value string) h.H {
		if value == "" {
			value = "-"
		}
		return h.Group(h.Dt(h.Text(label)), h.Dd(h.Text(value)))
	}
	prev := "Same as current address"
	if !f.SameAsCurrent {
		prev = joinNonEmpty(f.PrevAddressLine1, f.PrevAddressLine2, f.PrevCity, f.PrevZip, f.PrevCountry)
	}
	whatsapp := f.WhatsAppNumber
	if f.SameAsPhone {
		whatsapp = "Same as phone number"
	}
	incomes := make([]h.H, 0, len(f.IncomeSources))
	for _, src := range f.IncomeSources {
		incomes = append(incomes, h.Li(h.Textf("%s, %s (%s) %s to %s",
			src.CompanyName, src.JobTitle, src.IncomeType, DisplayDate(src.StartDate), DisplayDate(src.EndDate))))
	}
	docs := make([]h.H, 0, len(f.Documents))
	for _, d := range f.Documents {
		docs = append(docs, h.Li(h.Text(d.Name)))
	}
	return h.Section(
		h.H2(h.Text("Review your information")),
		h.P(h.Text("Please check everything below before submitting. Use Previous to make changes.")),
		h.H3(h.Text("Personal information")),
		h.Dl(
			row("Name", f.FirstName+" "+f.LastName),
			row("Sex", f.Sex),
			row("Date of birth", DisplayDate(f.DOB)),
			row("Current address", joinNonEmpty(f.CurrentAddressLine1, f.CurrentAddressLine2, f.CurrentCity, f.CurrentZip, f.CurrentCountry)),
			row("Previous address", prev),
			row("NINO", f.NINO),
			row("UTR", f.UTR),
			row("Phone", f.PhoneNumber),
			row("WhatsApp", whatsapp),
			row("Email", f.Email),
		),
		h.H3(h.Text("Services")),
		h.Dl(
			row("Service", f.ServiceType),
			h.If(f.ServiceType == ServiceSelfAssessment, row("Tax year", f.SelectedTaxYear)),
			h.If(f.ServiceType == ServiceOther, row("Details", f.OtherServiceDetails)),
		),
		h.If(len(incomes) > 0, h.Group(h.H4(h.Text("Income sources")), h.Ul(incomes...))),
		h.If(len(docs) > 0, h.Group(h.H4(h.Text("Documents")), h.Ul(docs...))),
	)
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, s := range parts {
		if s == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += s
	}
	return out
}

func (p *page) buttons(step int) h.H {
	submitting := p.wiz.Submitting()
	return h.Footer(h.Class("grid"),
		h.Iff(step > StepPersonal, func() h.H {
			return h.Button(h.Type("button"), h.Class("secondary outline"), p.prev.OnClick(), h.Text("Previous"))
		}),
		h.Iff(step < Steps, func() h.H {
			return h.Button(h.Type("button"), p.next.OnClick(), h.Text("Next"))
		}),
		h.Iff(step == Steps, func() h.H {
			return h.Button(h.Type("button"), p.submit.OnClick(), h.If(submitting, h.Aria("busy", "true")), h.If(submitting, h.Disabled()), h.Text("Submit"))
		}),
	)
}
