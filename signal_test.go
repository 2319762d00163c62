package portal_test

import (
	"strings"
	"testing"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/stretchr/testify/assert"
)

func TestSignal_BindAttributes(t *testing.T) {
	app := portal.New()
	var sig *portal.SignalHandle[string]
	app.Page("/", func(c *portal.Context) {
		sig = portal.Signal(c, "hi")
		c.View(func() h.H { return h.Div(h.Input(sig.Bind()), h.Span(sig.Text())) })
	})

	body := get(app, "/").Body.String()

	assert.True(t, strings.HasPrefix(sig.ID(), "s"))
	assert.Contains(t, body, `data-bind="`+sig.ID()+`"`)
	assert.Contains(t, body, `data-text="$`+sig.ID()+`"`)
	assert.Contains(t, body, sig.ID()+"&#34;:&#34;hi")
}

func TestSignal_InjectConversions(t *testing.T) {
	app := portal.New()
	var (
		run    *portal.ActionHandle
		count  *portal.SignalHandle[int]
		amount *portal.SignalHandle[float64]
		agreed *portal.SignalHandle[bool]
		label  *portal.SignalHandle[string]
	)
	app.Page("/", func(c *portal.Context) {
		count = portal.Signal(c, 0)
		amount = portal.Signal(c, 0.0)
		agreed = portal.Signal(c, false)
		label = portal.Signal(c, "")
		run = c.Action(func() {})
		c.View(func() h.H { return h.Div() })
	})
	get(app, "/")
	tab := app.TestOnlyTab()

	callAction(app, run, map[string]any{
		"tabid":     tab.ID(),
		count.ID():  "12",
		amount.ID(): 99.5,
		agreed.ID(): true,
		label.ID():  42,
	})

	assert.Equal(t, 12, count.Get())
	assert.Equal(t, 99.5, amount.Get())
	assert.True(t, agreed.Get())
	assert.Equal(t, "42", label.Get())
}

func TestSignal_BadValueKeepsPrevious(t *testing.T) {
	app := portal.New()
	var run *portal.ActionHandle
	var count *portal.SignalHandle[int]
	app.Page("/", func(c *portal.Context) {
		count = portal.Signal(c, 5)
		run = c.Action(func() {})
		c.View(func() h.H { return h.Div() })
	})
	get(app, "/")

	callAction(app, run, map[string]any{"tabid": app.TestOnlyTab().ID(), count.ID(): "abc"})

	assert.Equal(t, 5, count.Get())
}
