package signup

import (
	"maps"
	"regexp"
	"slices"
	"unicode/utf8"
)

// Errors maps field names to the message shown next to the field.
type Errors map[string]string

// Fields returns the names of the invalid fields, sorted.
func (e Errors) Fields() []string {
	return slices.Sorted(maps.Keys(e))
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

type required struct {
	field   string
	message string
}

var personalRequired = []required{
	{FieldFirstName, "First name is required"},
	{FieldLastName, "Last name is required"},
	{FieldDOB, "Date of birth is required"},
	{FieldCurrentAddressLine1, "Address line 1 is required"},
	{FieldCurrentCity, "City is required"},
	{FieldCurrentZip, "Postcode is required"},
	{FieldNINO, "NINO is required"},
	{FieldUTR, "UTR is required"},
	{FieldPhoneNumber, "Phone number is required"},
}

var previousRequired = []required{
	{FieldPrevAddressLine1, "Previous address line 1 is required"},
	{FieldPrevCity, "Previous city is required"},
	{FieldPrevZip, "Previous postcode is required"},
}

func checkRequired(f Form, rules []required, errs Errors) {
	for _, r := range rules {
		if f.Value(r.field) == "" {
			errs[r.field] = r.message
		}
	}
}

// ValidatePersonal checks the personal info step.
func ValidatePersonal(f Form) Errors {
	errs := Errors{}
	checkRequired(f, personalRequired, errs)
	switch {
	case f.Email == "":
		errs[FieldEmail] = "Email is required"
	case !ValidEmail(f.Email):
		errs[FieldEmail] = "Invalid email format"
	}
	if !f.SameAsPhone && f.WhatsAppNumber == "" {
		errs[FieldWhatsAppNumber] = "WhatsApp number is required"
	}
	if !f.SameAsCurrent {
		checkRequired(f, previousRequired, errs)
	}
	return errs
}

// serviceRules holds the extra requirements of each service type. Service
// types without an entry have none.
var serviceRules = map[string][]required{
	ServiceSelfAssessment: {{FieldSelectedTaxYear, "Please select a tax year"}},
	ServiceOther:          {{FieldOtherServiceDetails, "Please provide details about the service you need"}},
}

// ValidateServices checks the services step.
func ValidateServices(f Form) Errors {
	errs := Errors{}
	if f.ServiceType == "" {
		errs[FieldServiceType] = "Please select a service"
		return errs
	}
	checkRequired(f, serviceRules[f.ServiceType], errs)
	return errs
}

// PasswordRule is one composition requirement of a password.
type PasswordRule struct {
	Label string
	Met   func(string) bool
}

var (
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// PasswordRules are the composition rules every password must meet.
var PasswordRules = []PasswordRule{
	{"At least 8 characters long", func(pw string) bool { return utf8.RuneCountInString(pw) >= 8 }},
	{"Contains at least one uppercase letter", upperPattern.MatchString},
	{"Contains at least one number", digitPattern.MatchString},
	{"Contains at least one special character", specialPattern.MatchString},
}

// PasswordProblems returns the label of every rule pw breaks.
func PasswordProblems(pw string) []string {
	var out []string
	for _, r := range PasswordRules {
		if !r.Met(pw) {
			out = append(out, r.Label)
		}
	}
	return out
}

// ValidateCredentials checks the credentials step.
func ValidateCredentials(f Form) Errors {
	errs := Errors{}
	if len(PasswordProblems(f.Password)) > 0 {
		errs[FieldPassword] = "Password does not meet all requirements"
	}
	if f.Password != f.ConfirmPassword {
		errs[FieldConfirmPassword] = "Passwords do not match"
	}
	return errs
}

// validators holds the check of each step; the review step has none.
var validators = map[int]func(Form) Errors{
	StepPersonal:    ValidatePersonal,
	StepServices:    ValidateServices,
	StepCredentials: ValidateCredentials,
}

// ValidateStep checks one step of f.
func ValidateStep(step int, f Form) Errors {
	if v, ok := validators[step]; ok {
		return v(f)
	}
	return Errors{}
}
