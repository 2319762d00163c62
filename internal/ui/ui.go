// Package ui holds the page chrome and form pieces shared by the portal's
// pages.
package ui

import (
	"strconv"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
)

// Firm is the name shown in titles and the header.
const Firm = "Savanna Accountancy"

// Title builds a document title for a page.
func Title(page string) string {
	if page == "" {
		return Firm
	}
	return page + " | " + Firm
}

type navLink struct {
	label string
	href  string
}

var publicNav = []navLink{
	{"Services", "/services"},
	{"Blog", "/blog"},
	{"About", "/about"},
	{"Contact", "/contact"},
	{"Book a consultation", "/book-consultation"},
}

// Header renders the public site navigation. current is the path of the
// page being shown.
func Header(current string) h.H {
	links := make([]h.H, 0, len(publicNav)+2)
	for _, l := range publicNav {
		links = append(links, h.Li(h.A(h.Href(l.href), h.If(l.href == current, h.AriaCurrent("page")), h.Text(l.label))))
	}
	links = append(links,
		h.Li(h.A(h.Href("/login"), h.Text("Login"))),
		h.Li(h.A(h.Href("/signup"), h.Role("button"), h.Text("Get started"))),
	)
	return h.Header(h.Class("container"),
		h.Nav(
			h.Ul(h.Li(h.A(h.Href("/"), h.Strong(h.Text(Firm))))),
			h.Ul(links...),
		),
	)
}

// Footer renders the site footer.
func Footer() h.H {
	return h.Footer(h.Class("container"),
		h.Hr(),
		h.Small(
			h.Text(Firm+" · Chartered accountants for individuals and small businesses · "),
			h.A(h.Href("/contact"), h.Text("Contact us")),
		),
	)
}

// Page wraps public page content with the header and footer.
func Page(current string, content ...h.H) h.H {
	return h.Group(
		Header(current),
		h.Main(append([]h.H{h.Class("container")}, content...)...),
		Footer(),
	)
}

// Notice kinds.
const (
	KindError   = "error"
	KindSuccess = "success"
	KindInfo    = "info"
)

// Notice is a dismissible message shown at the top of a form or panel.
type Notice struct {
	Kind    string
	Message string
}

// Error returns an error notice.
func Error(msg string) Notice {
	return Notice{Kind: KindError, Message: msg}
}

// Success returns a success notice.
func Success(msg string) Notice {
	return Notice{Kind: KindSuccess, Message: msg}
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool {
	return n.Message == ""
}

// View renders the notice. dismiss, when non-nil, adds a close button.
func (n Notice) View(dismiss *portal.ActionHandle) h.H {
	if n.Empty() {
		return nil
	}
	role := "status"
	if n.Kind == KindError {
		role = "alert"
	}
	return h.Article(h.Class("notice notice-"+n.Kind), h.Role(role),
		h.Text(n.Message),
		h.Iff(dismiss != nil, func() h.H {
			return h.Button(h.Type("button"), h.Class("outline secondary"), h.Aria("label", "Dismiss"), dismiss.OnClick(), h.Text("×"))
		}),
	)
}

// FieldError renders the message under an invalid field.
func FieldError(msg string) h.H {
	if msg == "" {
		return nil
	}
	return h.Small(h.Class("field-error"), h.Text(msg))
}

// Input renders a labelled input. bind ties it to a signal; errMsg marks it
// invalid. Extra attributes are added to the input element.
func Input(label, id, typ string, bind h.H, errMsg string, attrs ...h.H) h.H {
	input := []h.H{h.ID(id), h.Name(id), h.Type(typ), bind, h.If(errMsg != "", h.AriaInvalid())}
	return h.Label(h.For(id),
		h.Text(label),
		h.Input(append(input, attrs...)...),
		FieldError(errMsg),
	)
}

// Select renders a labelled select with the given options.
func Select(label, id string, options []string, bind h.H, errMsg string, attrs ...h.H) h.H {
	opts := make([]h.H, 0, len(options))
	for _, o := range options {
		opts = append(opts, h.Option(h.Value(o), h.Text(o)))
	}
	sel := []h.H{h.ID(id), h.Name(id), bind, h.If(errMsg != "", h.AriaInvalid())}
	sel = append(sel, attrs...)
	return h.Label(h.For(id),
		h.Text(label),
		h.Select(append(sel, opts...)...),
		FieldError(errMsg),
	)
}

// Checkbox renders a labelled checkbox.
func Checkbox(label, id string, bind h.H, attrs ...h.H) h.H {
	input := append([]h.H{h.ID(id), h.Name(id), h.Type("checkbox"), bind}, attrs...)
	return h.Label(h.For(id), h.Input(input...), h.Text(label))
}

// Radios renders a fieldset of radio buttons sharing one signal.
func Radios(legend, name string, options []string, bind func() h.H, errMsg string, attrs ...h.H) h.H {
	items := []h.H{h.Legend(h.Text(legend))}
	for i, o := range options {
		id := name + "-" + strconv.Itoa(i)
		input := append([]h.H{h.ID(id), h.Name(name), h.Type("radio"), h.Value(o), bind()}, attrs...)
		items = append(items, h.Label(h.For(id), h.Input(input...), h.Text(o)))
	}
	items = append(items, FieldError(errMsg))
	return h.FieldSet(items...)
}
