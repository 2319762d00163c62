package signup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/savanna-accountancy/portal/internal/api"
)

// Wizard steps.
const (
	StepPersonal = iota + 1
	StepServices
	StepCredentials
	StepReview
)

// Steps is the number of steps; the last one submits.
const Steps = StepReview

// StepTitles labels the stepper.
var StepTitles = map[int]string{
	StepPersonal:    "Personal Info",
	StepServices:    "Services",
	StepCredentials: "Credentials",
	StepReview:      "Review",
}

// MaxDocumentSize bounds a single attachment.
const MaxDocumentSize = 10 << 20

var (
	// ErrInvalid means the current step has invalid fields; see Errors.
	ErrInvalid = errors.New("signup: step has invalid fields")
	// ErrStepsIncomplete rejects a jump past a step that has not passed
	// validation.
	ErrStepsIncomplete = errors.New("signup: previous steps incomplete")
	// ErrSubmitting rejects a submission while another is in flight.
	ErrSubmitting = errors.New("signup: submission in progress")
	// ErrNotFinalStep rejects a submission before the review step.
	ErrNotFinalStep = errors.New("signup: not on the final step")
	// ErrUnknownField is returned when setting a field the form does not have.
	ErrUnknownField = errors.New("signup: unknown field")
	// ErrDocumentTooLarge rejects attachments above MaxDocumentSize.
	ErrDocumentTooLarge = errors.New("signup: document too large")
)

// Notices shown for wizard failures.
const (
	NoticeInvalid       = "Please correct the errors before proceeding."
	NoticeIncomplete    = "Please complete the previous steps first."
	NoticeSubmitFailed  = "An error occurred during signup."
	NoticeUnexpected    = "An unexpected error occurred. Please try again."
	NoticeSubmitting    = "Your registration is already being submitted."
	NoticeDocumentLarge = "That file is larger than 10 MB."
)

// Notice returns the message to show the user for err.
func Notice(err error) string {
	var apiErr *api.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalid):
		return NoticeInvalid
	case errors.Is(err, ErrStepsIncomplete):
		return NoticeIncomplete
	case errors.Is(err, ErrSubmitting):
		return NoticeSubmitting
	case errors.Is(err, ErrDocumentTooLarge):
		return NoticeDocumentLarge
	case errors.As(err, &apiErr):
		return api.MessageOr(err, NoticeSubmitFailed)
	}
	return NoticeUnexpected
}

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, fields []api.FormField, documents []api.Upload) error
}

// Wizard is the signup state machine. It is safe for concurrent use.
type Wizard struct {
	mu         sync.Mutex
	form       Form
	step       int
	completed  map[int]bool
	errs       Errors
	submitting bool
}

// NewWizard returns a wizard on the first step with the default form.
func NewWizard() *Wizard {
	return &Wizard{
		form:      NewForm(),
		step:      StepPersonal,
		completed: make(map[int]bool),
		errs:      Errors{},
	}
}

// Step returns the current step.
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Form returns a copy of the collected data.
func (w *Wizard) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.clone()
}

// Errors returns a copy of the current field errors.
func (w *Wizard) Errors() Errors {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(Errors, len(w.errs))
	for k, v := range w.errs {
		out[k] = v
	}
	return out
}

// Completed reports whether step has passed validation.
func (w *Wizard) Completed(step int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed[step]
}

// Submitting reports whether a submission is in flight.
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Set stores a text field. A non-empty value clears the field's error, and
// with "same as current" on, current address edits are copied to the
// previous address. The date of birth accepts the formats of ParseDate.
func (w *Wizard) Set(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if field == FieldDOB {
		w.setDOB(value)
		return nil
	}
	p, ok := w.form.text(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	*p = value
	w.clearIfFilled(field, value)

	if prev, ok := mirrorOf(field); ok && w.form.SameAsCurrent {
		pp, _ := w.form.text(prev)
		*pp = value
		w.clearIfFilled(prev, value)
	}
	if field == FieldPhoneNumber && w.form.SameAsPhone {
		w.form.WhatsAppNumber = value
		w.clearIfFilled(FieldWhatsAppNumber, value)
	}
	return nil
}

func (w *Wizard) setDOB(input string) {
	w.form.DOBInput = input
	if iso, ok := ParseDate(input); ok {
		w.form.DOB = iso
	} else if input == "" {
		w.form.DOB = ""
	}
	w.clearIfFilled(FieldDOB, w.form.DOB)
}

func (w *Wizard) clearIfFilled(field, value string) {
	if value != "" {
		delete(w.errs, field)
	}
}

// SetSameAsCurrent toggles "previous address same as current". Turning it on
// copies the current address; turning it off keeps the copies.
func (w *Wizard) SetSameAsCurrent(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.SameAsCurrent = on
	if !on {
		return
	}
	for _, m := range mirrors {
		cur, _ := w.form.text(m[0])
		prev, _ := w.form.text(m[1])
		*prev = *cur
		w.clearIfFilled(m[1], *cur)
	}
}

// SetSameAsPhone toggles "WhatsApp same as phone". Turning it on copies the
// phone number; turning it off keeps the copy.
func (w *Wizard) SetSameAsPhone(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.SameAsPhone = on
	if on {
		w.form.WhatsAppNumber = w.form.PhoneNumber
		w.clearIfFilled(FieldWhatsAppNumber, w.form.PhoneNumber)
	}
}

// AddIncomeSource appends an empty income source and returns its id.
func (w *Wizard) AddIncomeSource() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := uuid.NewString()
	w.form.IncomeSources = append(w.form.IncomeSources, IncomeSource{ID: id})
	return id
}

// UpdateIncomeSource sets one field of an income source. Dates keep what
// was typed and store the parsed date when the input is readable.
func (w *Wizard) UpdateIncomeSource(id, field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.incomeIndex(id)
	if i < 0 {
		return fmt.Errorf("signup: income source %q not found", id)
	}
	src := &w.form.IncomeSources[i]
	switch field {
	case IncomeCompanyName:
		src.CompanyName = value
	case IncomeJobTitle:
		src.JobTitle = value
	case IncomeType:
		src.IncomeType = value
	case IncomeStartDate:
		src.StartDateInput = value
		if iso, ok := ParseDate(value); ok {
			src.StartDate = iso
		}
	case IncomeEndDate:
		src.EndDateInput = value
		if iso, ok := ParseDate(value); ok {
			src.EndDate = iso
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// RemoveIncomeSource deletes an income source. Unknown ids are ignored.
func (w *Wizard) RemoveIncomeSource(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.incomeIndex(id); i >= 0 {
		w.form.IncomeSources = append(w.form.IncomeSources[:i], w.form.IncomeSources[i+1:]...)
	}
}

func (w *Wizard) incomeIndex(id string) int {
	for i, src := range w.form.IncomeSources {
		if src.ID == id {
			return i
		}
	}
	return -1
}

// AddDocument attaches a file.
func (w *Wizard) AddDocument(doc Document) error {
	if doc.Size() > MaxDocumentSize {
		return fmt.Errorf("%w: %s", ErrDocumentTooLarge, doc.Name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form.Documents = append(w.form.Documents, doc)
	return nil
}

// RemoveDocument detaches the i-th file. Out of range indexes are ignored.
func (w *Wizard) RemoveDocument(i int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.form.Documents) {
		return
	}
	w.form.Documents = append(w.form.Documents[:i], w.form.Documents[i+1:]...)
}

// validate checks step, replacing the recorded errors, and marks it
// complete when it passes.
func (w *Wizard) validate(step int) bool {
	w.errs = ValidateStep(step, w.form)
	if len(w.errs) > 0 {
		return false
	}
	w.completed[step] = true
	return true
}

func (w *Wizard) completedThrough(step int) bool {
	for s := 1; s <= step; s++ {
		if !w.completed[s] {
			return false
		}
	}
	return true
}

// Next validates the current step and advances. On failure the step is
// unchanged and ErrInvalid is returned. Next on the last step only
// validates.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.validate(w.step) {
		return ErrInvalid
	}
	if w.step < Steps {
		w.step++
	}
	return nil
}

// Previous goes back one step without validating.
func (w *Wizard) Previous() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepPersonal {
		w.step--
	}
}

// GoToStep jumps to step k. The first step is always reachable; a later one
// only once every step before it is complete. If they are not, the current
// step is validated first and the jump happens only if that completes them.
func (w *Wizard) GoToStep(k int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if k < StepPersonal || k > Steps {
		return fmt.Errorf("signup: step %d out of range", k)
	}
	if k == StepPersonal || w.completedThrough(k-1) {
		w.step = k
		return nil
	}
	if !w.validate(w.step) {
		return ErrInvalid
	}
	if w.completedThrough(k - 1) {
		w.step = k
		return nil
	}
	return ErrStepsIncomplete
}

// Submit registers the account from the final step. The password policy is
// checked again first; if it fails the wizard returns to the credentials
// step with the field errors recorded. On any failure the form is left as
// it was so the user can retry.
func (w *Wizard) Submit(ctx context.Context, reg Registrar) error {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitting
	}
	if w.step != Steps {
		w.mu.Unlock()
		return ErrNotFinalStep
	}
	if errs := ValidateCredentials(w.form); len(errs) > 0 {
		w.errs = errs
		w.completed[StepCredentials] = false
		w.step = StepCredentials
		w.mu.Unlock()
		return ErrInvalid
	}
	fields, err := Payload(w.form)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	docs := uploads(w.form.Documents)
	w.submitting = true
	w.mu.Unlock()

	err = reg.Register(ctx, fields, docs)

	w.mu.Lock()
	w.submitting = false
	w.mu.Unlock()
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Payload builds the registration fields: every form field except the
// password confirmation, with the income sources as JSON. Documents are
// sent separately as files.
func Payload(f Form) ([]api.FormField, error) {
	sources := f.IncomeSources
	if sources == nil {
		sources = []IncomeSource{}
	}
	incomeJSON, err := json.Marshal(sources)
	if err != nil {
		return nil, fmt.Errorf("encode income sources: %w", err)
	}
	var out []api.FormField
	for _, tf := range textFields {
		switch tf.name {
		case FieldConfirmPassword:
			continue
		case FieldServiceType:
			out = append(out,
				api.FormField{Name: FieldSameAsPhone, Value: strconv.FormatBool(f.SameAsPhone)},
				api.FormField{Name: FieldServiceType, Value: f.ServiceType},
				api.FormField{Name: FieldIncomeSources, Value: string(incomeJSON)},
			)
			continue
		case FieldPrevAddressLine1:
			out = append(out, api.FormField{Name: FieldSameAsCurrent, Value: strconv.FormatBool(f.SameAsCurrent)})
		}
		out = append(out, api.FormField{Name: tf.name, Value: *tf.ptr(&f)})
	}
	return out, nil
}

func uploads(docs []Document) []api.Upload {
	out := make([]api.Upload, 0, len(docs))
	for _, d := range docs {
		out = append(out, api.Upload{Filename: d.Name, Content: bytes.NewReader(d.Data)})
	}
	return out
}
