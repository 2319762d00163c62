package portal

import (
	"fmt"

	"github.com/savanna-accountancy/portal/h"
)

// ActionHandle triggers a registered action from the browser.
type ActionHandle struct {
	id string
}

// ID returns the action id.
func (a *ActionHandle) ID() string {
	return a.id
}

// Expr returns the Datastar expression that calls the action.
func (a *ActionHandle) Expr() string {
	return fmt.Sprintf("@get('/_action/%s')", a.id)
}

// OnClick returns an attribute that triggers the action on click.
func (a *ActionHandle) OnClick() h.H {
	return h.DataOn("click", a.Expr())
}

// OnChange returns an attribute that triggers the action on input change.
func (a *ActionHandle) OnChange() h.H {
	return h.DataOn("change__debounce.200ms", a.Expr())
}

// OnInput returns an attribute that triggers the action while the user types.
func (a *ActionHandle) OnInput() h.H {
	return h.DataOn("input__debounce.300ms", a.Expr())
}

// OnSubmit returns an attribute that triggers the action when the enclosing
// form is submitted, without a page load.
func (a *ActionHandle) OnSubmit() h.H {
	return h.DataOn("submit__prevent", a.Expr())
}

// OnEnterKey returns an attribute that triggers the action when Enter is pressed.
func (a *ActionHandle) OnEnterKey() h.H {
	return h.DataOn("keydown", fmt.Sprintf("(evt.code==='Enter') && %s", a.Expr()))
}

// UploadHandle receives files posted from a form.
type UploadHandle struct {
	id    string
	tabID string
}

// ID returns the upload id.
func (u *UploadHandle) ID() string {
	return u.id
}

// Form renders a multipart form that posts the chosen files to the upload
// handler. accept filters the file picker, e.g. ".pdf,.jpg".
func (u *UploadHandle) Form(accept string, children ...h.H) h.H {
	nodes := []h.H{
		h.EncType("multipart/form-data"),
		h.DataOn("submit__prevent", fmt.Sprintf("@post('/_upload/%s', {contentType: 'form'})", u.id)),
		h.Input(h.Type("hidden"), h.Name(tabSignal), h.Value(u.tabID)),
		h.Input(h.Type("file"), h.Name(uploadField), h.Multiple(), h.If(accept != "", h.Accept(accept))),
	}
	return h.Form(append(nodes, children...)...)
}
