// Package signup implements the client onboarding wizard: the form state,
// step validation and navigation rules, the registration payload and the
// pages that drive it.
package signup

import (
	"strings"
	"time"
)

// Form field names. They double as the keys of the registration payload and
// of the validation error map.
const (
	FieldFirstName           = "first_name"
	FieldLastName            = "last_name"
	FieldSex                 = "sex"
	FieldDOB                 = "dob"
	FieldCurrentAddressLine1 = "current_address_line1"
	FieldCurrentAddressLine2 = "current_address_line2"
	FieldCurrentCity         = "current_city"
	FieldCurrentZip          = "current_zip"
	FieldCurrentCountry      = "current_country"
	FieldSameAsCurrent       = "same_as_current"
	FieldPrevAddressLine1    = "previous_address_line1"
	FieldPrevAddressLine2    = "previous_address_line2"
	FieldPrevCity            = "previous_city"
	FieldPrevZip             = "previous_zip"
	FieldPrevCountry         = "previous_country"
	FieldNINO                = "nino"
	FieldUTR                 = "utr"
	FieldPhoneNumber         = "phone_number"
	FieldEmail               = "email"
	FieldWhatsAppNumber      = "whatsapp_number"
	FieldSameAsPhone         = "same_as_phone"
	FieldServiceType         = "service_type"
	FieldSelectedTaxYear     = "selected_tax_year"
	FieldIncomeSources       = "incomeSources"
	FieldDocuments           = "documents"
	FieldOtherServiceDetails = "other_service_details"
	FieldPassword            = "password"
	FieldConfirmPassword     = "confirm_password"
)

// Service types offered at signup.
const (
	ServiceSelfAssessment = "Self-Assessment Tax Returns"
	ServiceCorporationTax = "Corporation Tax & Limited Company Services"
	ServiceVAT            = "VAT Returns & Compliance"
	ServicePayroll        = "Payroll Services"
	ServiceBookkeeping    = "Bookkeeping & Financial Reporting"
	ServiceStartUp        = "Business Start-Up & Advisory Services"
	ServiceOther          = "Other"
)

// Services lists the service types in display order.
var Services = []string{
	ServiceSelfAssessment,
	ServiceCorporationTax,
	ServiceVAT,
	ServicePayroll,
	ServiceBookkeeping,
	ServiceStartUp,
	ServiceOther,
}

// TaxYears are the self-assessment years a client can pick.
var TaxYears = []string{"2019/2020", "2020/2021", "2021/2022", "2022/2023", "2023/2024"}

// IncomeTypes classify an income source.
var IncomeTypes = []string{"Self-employed", "PAYE/Employed", "Dividends", "Property Income", "Not sure", "Other"}

// Sexes offered on the personal info step.
var Sexes = []string{"Male", "Female"}

// Countries offered for addresses, most common first.
var Countries = []string{
	"United Kingdom", "United States", "Canada", "Australia", "Germany", "France", "Spain",
	"Italy", "Japan", "China", "India", "Brazil", "South Africa", "Nigeria", "Kenya",
	"Ireland", "Netherlands", "Poland", "Portugal", "Romania", "Pakistan", "Bangladesh",
	"Ghana", "Uganda", "Tanzania", "Zimbabwe", "New Zealand", "United Arab Emirates", "Other",
}

const (
	defaultSex     = "Male"
	defaultCountry = "United Kingdom"
)

// IncomeSource is one employment or income stream declared for a tax year.
// The id only identifies the row inside the wizard.
type IncomeSource struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
	JobTitle    string `json:"jobTitle"`
	IncomeType  string `json:"incomeType"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`

	// What the user typed; StartDate and EndDate hold the parsed yyyy-MM-dd.
	StartDateInput string `json:"-"`
	EndDateInput   string `json:"-"`
}

// Income source fields accepted by UpdateIncomeSource.
const (
	IncomeCompanyName = "companyName"
	IncomeJobTitle    = "jobTitle"
	IncomeType        = "incomeType"
	IncomeStartDate   = "startDate"
	IncomeEndDate     = "endDate"
)

// Document is a file attached to the registration.
type Document struct {
	Name string
	Data []byte
}

// Size returns the file size in bytes.
func (d Document) Size() int {
	return len(d.Data)
}

// Form is everything the wizard collects.
type Form struct {
	FirstName           string
	LastName            string
	Sex                 string
	DOB                 string
	DOBInput            string
	CurrentAddressLine1 string
	CurrentAddressLine2 string
	CurrentCity         string
	CurrentZip          string
	CurrentCountry      string
	SameAsCurrent       bool
	PrevAddressLine1    string
	PrevAddressLine2    string
	PrevCity            string
	PrevZip             string
	PrevCountry         string
	NINO                string
	UTR                 string
	PhoneNumber         string
	Email               string
	WhatsAppNumber      string
	SameAsPhone         bool

	ServiceType         string
	SelectedTaxYear     string
	IncomeSources       []IncomeSource
	Documents           []Document
	OtherServiceDetails string

	Password        string
	ConfirmPassword string
}

// NewForm returns a form with the defaults preselected.
func NewForm() Form {
	return Form{
		Sex:            defaultSex,
		CurrentCountry: defaultCountry,
		PrevCountry:    defaultCountry,
		ServiceType:    ServiceSelfAssessment,
	}
}

func (f Form) clone() Form {
	out := f
	out.IncomeSources = append([]IncomeSource(nil), f.IncomeSources...)
	out.Documents = append([]Document(nil), f.Documents...)
	return out
}

// textFields maps the free text fields to their storage. Order is the
// registration payload order.
var textFields = []struct {
	name string
	ptr  func(*Form) *string
}{
	{FieldFirstName, func(f *Form) *string { return &f.FirstName }},
	{FieldLastName, func(f *Form) *string { return &f.LastName }},
	{FieldSex, func(f *Form) *string { return &f.Sex }},
	{FieldDOB, func(f *Form) *string { return &f.DOB }},
	{FieldCurrentAddressLine1, func(f *Form) *string { return &f.CurrentAddressLine1 }},
	{FieldCurrentAddressLine2, func(f *Form) *string { return &f.CurrentAddressLine2 }},
	{FieldCurrentCity, func(f *Form) *string { return &f.CurrentCity }},
	{FieldCurrentZip, func(f *Form) *string { return &f.CurrentZip }},
	{FieldCurrentCountry, func(f *Form) *string { return &f.CurrentCountry }},
	{FieldPrevAddressLine1, func(f *Form) *string { return &f.PrevAddressLine1 }},
	{FieldPrevAddressLine2, func(f *Form) *string { return &f.PrevAddressLine2 }},
	{FieldPrevCity, func(f *Form) *string { return &f.PrevCity }},
	{FieldPrevZip, func(f *Form) *string { return &f.PrevZip }},
	{FieldPrevCountry, func(f *Form) *string { return &f.PrevCountry }},
	{FieldNINO, func(f *Form) *string { return &f.NINO }},
	{FieldUTR, func(f *Form) *string { return &f.UTR }},
	{FieldPhoneNumber, func(f *Form) *string { return &f.PhoneNumber }},
	{FieldEmail, func(f *Form) *string { return &f.Email }},
	{FieldWhatsAppNumber, func(f *Form) *string { return &f.WhatsAppNumber }},
	{FieldServiceType, func(f *Form) *string { return &f.ServiceType }},
	{FieldSelectedTaxYear, func(f *Form) *string { return &f.SelectedTaxYear }},
	{FieldOtherServiceDetails, func(f *Form) *string { return &f.OtherServiceDetails }},
	{FieldPassword, func(f *Form) *string { return &f.Password }},
	{FieldConfirmPassword, func(f *Form) *string { return &f.ConfirmPassword }},
}

func (f *Form) text(name string) (*string, bool) {
	for _, tf := range textFields {
		if tf.name == name {
			return tf.ptr(f), true
		}
	}
	return nil, false
}

// Value returns the text value of the named field.
func (f Form) Value(name string) string {
	if p, ok := f.text(name); ok {
		return *p
	}
	return ""
}

// mirrors pairs each current address field with its previous address copy.
var mirrors = [][2]string{
	{FieldCurrentAddressLine1, FieldPrevAddressLine1},
	{FieldCurrentAddressLine2, FieldPrevAddressLine2},
	{FieldCurrentCity, FieldPrevCity},
	{FieldCurrentZip, FieldPrevZip},
	{FieldCurrentCountry, FieldPrevCountry},
}

func mirrorOf(current string) (string, bool) {
	for _, m := range mirrors {
		if m[0] == current {
			return m[1], true
		}
	}
	return "", false
}

// dateLayouts are tried in order when reading a typed date.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02",
	"01/02/2006",
}

// ParseDate reads a day-first, ISO or US style date and returns it as
// yyyy-MM-dd.
func ParseDate(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}

// DisplayDate formats a yyyy-MM-dd date as dd/MM/yyyy. Other input is
// returned unchanged.
func DisplayDate(iso string) string {
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
