// Package portaltest drives portal pages from tests the way a browser does.
// A Browser keeps cookies across requests; a Tab fires actions with signal
// values and reads back the patches the page streams.
package portaltest

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ClientCookie is the default name of the cookie identifying a browser.
const ClientCookie = "portal_client"

// StreamWindow is how long Stream listens for patches.
var StreamWindow = 200 * time.Millisecond

// Browser sends requests to a handler, keeping the cookies it is given.
type Browser struct {
	t       testing.TB
	handler http.Handler

	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

// NewBrowser returns a browser with no cookies.
func NewBrowser(t testing.TB, handler http.Handler) *Browser {
	return &Browser{t: t, handler: handler, cookies: make(map[string]*http.Cookie)}
}

// SetCookie stores a cookie as if a response had set it.
func (b *Browser) SetCookie(c *http.Cookie) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store(c)
}

func (b *Browser) store(c *http.Cookie) {
	if c.MaxAge < 0 {
		delete(b.cookies, c.Name)
		return
	}
	b.cookies[c.Name] = c
}

// Cookie returns the value of a stored cookie.
func (b *Browser) Cookie(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cookies[name]
	if !ok {
		return "", false
	}
	return c.Value, true
}

// Do serves req with the stored cookies and keeps the cookies the response
// sets.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	b.mu.Lock()
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	b.mu.Unlock()

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	b.mu.Lock()
	for _, c := range w.Result().Cookies() {
		b.store(c)
	}
	b.mu.Unlock()
	return w
}

// Get requests path.
func (b *Browser) Get(path string) *httptest.ResponseRecorder {
	return b.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

var tabPattern = regexp.MustCompile(`id="tab-([0-9a-f]+)"`)

// Open visits a page, which must answer 200, and returns its tab.
func (b *Browser) Open(path string) *Tab {
	b.t.Helper()
	w := b.Get(path)
	require.Equal(b.t, http.StatusOK, w.Code, "GET %s", path)
	body := w.Body.String()
	m := tabPattern.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "no tab in %s", path)
	return &Tab{b: b, ID: m[1], Body: body}
}

// Tab is an open page.
type Tab struct {
	b *Browser
	// ID is the tab id the page rendered.
	ID string
	// Body is the HTML of the first render.
	Body string
}

// Call runs an action with the given signal values. It must answer 204.
func (tb *Tab) Call(action string, signals map[string]any) {
	tb.b.t.Helper()
	all := map[string]any{"tabid": tb.ID}
	for k, v := range signals {
		all[k] = v
	}
	raw, err := json.Marshal(all)
	require.NoError(tb.b.t, err)
	w := tb.b.Get("/_action/" + action + "?datastar=" + url.QueryEscape(string(raw)))
	require.Equal(tb.b.t, http.StatusNoContent, w.Code)
}

// Stream returns the patches the tab sends within StreamWindow.
func (tb *Tab) Stream() string {
	ctx, cancel := context.WithTimeout(context.Background(), StreamWindow)
	defer cancel()
	target := "/_sse?datastar=" + url.QueryEscape(`{"tabid":"`+tb.ID+`"}`)
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	req.Header.Set("Accept", "text/event-stream")
	return tb.b.Do(req).Body.String()
}

// Attach posts a file through the tab's upload form.
func (tb *Tab) Attach(name string, content []byte) {
	tb.b.t.Helper()
	upload := Find(tb.b.t, tb.Body, `@post\(&#39;/_upload/([0-9a-f]+)&#39;`)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(tb.b.t, mw.WriteField("tabid", tb.ID))
	fw, err := mw.CreateFormFile("files", name)
	require.NoError(tb.b.t, err)
	_, _ = fw.Write(content)
	require.NoError(tb.b.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/_upload/"+upload, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := tb.b.Do(req)
	require.Equal(tb.b.t, http.StatusNoContent, w.Code)
}

// Signal returns the signal bound to the input with the given id.
func (tb *Tab) Signal(inputID string) string {
	return SignalIn(tb.b.t, tb.Body, inputID)
}

// Submit returns the action run by the form with the given id.
func (tb *Tab) Submit(formID string) string {
	return Find(tb.b.t, tb.Body, `id="`+regexp.QuoteMeta(formID)+`" data-on:submit__prevent="@get\(&#39;/_action/([0-9a-f]+)&#39;\)"`)
}

// Button returns the action of the button labelled label.
func (tb *Tab) Button(label string) string {
	return ButtonIn(tb.b.t, tb.Body, label)
}

// Find returns the first submatch of pattern in text.
func Find(t testing.TB, text, pattern string) string {
	t.Helper()
	m := regexp.MustCompile(pattern).FindStringSubmatch(text)
	require.Len(t, m, 2, pattern)
	return m[1]
}

// SignalIn returns the signal bound to the input with the given id in html.
func SignalIn(t testing.TB, html, inputID string) string {
	t.Helper()
	return Find(t, html, `id="`+regexp.QuoteMeta(inputID)+`"[^>]*?data-bind="(s[0-9a-f]+)"`)
}

// ButtonIn returns the action of the element labelled label whose click
// runs it directly.
func ButtonIn(t testing.TB, html, label string) string {
	t.Helper()
	return Find(t, html, `/_action/([0-9a-f]+)&#39;\)"[^>]*>`+regexp.QuoteMeta(label)+`<`)
}

// Clicked returns the action and target signal of the element labelled
// label whose click sets the target to value first.
func Clicked(t testing.TB, html, value, label string) (action, target string) {
	t.Helper()
	pattern := `data-on:click(?:__prevent)?="\$(s[0-9a-f]+) = &#34;` + regexp.QuoteMeta(value) +
		`&#34;; @get\(&#39;/_action/([0-9a-f]+)&#39;\)"[^>]*>` + regexp.QuoteMeta(label) + `<`
	m := regexp.MustCompile(pattern).FindStringSubmatch(html)
	require.Len(t, m, 3, pattern)
	return m[2], m[1]
}
