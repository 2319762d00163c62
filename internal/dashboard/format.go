package dashboard

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.BritishEnglish)
	titler  = cases.Title(language.BritishEnglish)
)

// Money formats an amount in pounds sterling.
func Money(amount float64) string {
	s := printer.Sprint(currency.Symbol(currency.GBP.Amount(amount)))
	return strings.Replace(s, "£ ", "£", 1)
}

// StatusLabel turns an API status such as "pending_payment" into
// "Pending Payment".
func StatusLabel(status string) string {
	if status == "" {
		return "-"
	}
	return titler.String(strings.ReplaceAll(status, "_", " "))
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// FormatDate renders an API timestamp as "2 Jan 2006". Values that do not
// parse are returned unchanged.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2 Jan 2006")
		}
	}
	return s
}
