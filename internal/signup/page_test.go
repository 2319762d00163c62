package signup

import (
	"testing"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/internal/portaltest"
	"github.com/stretchr/testify/assert"
)

func openSignup(t *testing.T) *portaltest.Tab {
	t.Helper()
	app := portal.New()
	Register(app, &fakeRegistrar{})
	return portaltest.NewBrowser(t, app.Handler()).Open("/signup")
}

func TestPage_Renders(t *testing.T) {
	for _, path := range []string{"/signup", "/portal"} {
		app := portal.New()
		Register(app, &fakeRegistrar{})

		body := portaltest.NewBrowser(t, app.Handler()).Open(path).Body
		assert.Contains(t, body, "Personal Information")
		assert.Contains(t, body, "Personal Info")
		assert.Contains(t, body, "Review")
		assert.Contains(t, body, "<title>Sign up | Savanna Accountancy</title>")
	}
}

func TestPage_NextShowsErrors(t *testing.T) {
	tb := openSignup(t)
	next := tb.Button("Next")

	tb.Call(next, nil)

	out := tb.Stream()
	assert.Contains(t, out, "First name is required")
	assert.Contains(t, out, NoticeInvalid)
}

func TestPage_MirrorsCurrentAddress(t *testing.T) {
	tb := openSignup(t)
	edit := portaltest.Find(t, tb.Body, `data-on:input__debounce\.300ms="@get\(&#39;/_action/([0-9a-f]+)&#39;\)"`)
	current := tb.Signal(FieldCurrentCity)
	previous := tb.Signal(FieldPrevCity)
	toggle := tb.Signal(FieldSameAsCurrent)

	tb.Call(edit, map[string]any{current: "Leeds", toggle: true})

	assert.Contains(t, tb.Stream(), `"`+previous+`":"Leeds"`)
}

func TestPage_StepperRejectsSkipping(t *testing.T) {
	tb := openSignup(t)
	goTo := portaltest.Find(t, tb.Body, `= &#34;4&#34;; @get\(&#39;/_action/([0-9a-f]+)&#39;\)`)
	target := portaltest.Find(t, tb.Body, `data-on:click="\$(s[0-9a-f]+) = &#34;1&#34;`)

	tb.Call(goTo, map[string]any{target: "4"})

	assert.Contains(t, tb.Stream(), NoticeInvalid)
}
