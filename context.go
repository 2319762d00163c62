package portal

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/savanna-accountancy/portal/h"
	"go.uber.org/zap"
)

const (
	maxUploadMemory = 32 << 20
	uploadField     = "files"
	patchBuffer     = 100
)

// Context is the live state of one browser tab. It holds the tab's view,
// actions and signals and queues the patches that keep the browser in sync.
//
// Actions of a Context run one at a time.
type Context struct {
	id       string
	route    string
	clientID string
	app      *App
	title    string
	view     func() h.H

	actionsMu sync.RWMutex
	actions   map[string]func()
	uploads   map[string]func([]*multipart.FileHeader)

	signalsMu sync.Mutex
	signals   map[string]signalBinding
	rendered  bool

	mu        sync.Mutex
	patches   chan patch
	connected atomic.Bool
	lastSeen  atomic.Int64
	disposed  atomic.Bool

	w            http.ResponseWriter
	r            *http.Request
	initializing bool
	redirect     string
	onDispose    []func()
}

func newContext(id, route, clientID string, a *App) *Context {
	c := &Context{
		id:       id,
		route:    route,
		clientID: clientID,
		app:      a,
		actions:  make(map[string]func()),
		uploads:  make(map[string]func([]*multipart.FileHeader)),
		signals:  make(map[string]signalBinding),
		patches:  make(chan patch, patchBuffer),
	}
	c.touch()
	return c
}

// ID returns the tab id.
func (c *Context) ID() string {
	return c.id
}

// Route returns the route pattern the tab was opened on.
func (c *Context) Route() string {
	return c.route
}

// ClientID returns the id of the browser that owns the tab. Tabs of the same
// browser share it.
func (c *Context) ClientID() string {
	return c.clientID
}

// Logger returns the app logger annotated with the tab id.
func (c *Context) Logger() *zap.Logger {
	return c.app.log.With(tabField(c))
}

// Request returns the request currently being served for the tab: the page
// request during init, the action request while an action runs. It is nil
// otherwise.
func (c *Context) Request() *http.Request {
	return c.r
}

// Writer returns the response writer paired with Request.
func (c *Context) Writer() http.ResponseWriter {
	return c.w
}

// Param returns the value of a path wildcard of the page request.
func (c *Context) Param(name string) string {
	if c.r == nil {
		return ""
	}
	return c.r.PathValue(name)
}

// Query returns a query parameter of the page request.
func (c *Context) Query(name string) string {
	if c.r == nil {
		return ""
	}
	return c.r.URL.Query().Get(name)
}

// Title sets the document title of the page.
func (c *Context) Title(title string) {
	c.title = title
}

// View defines the UI rendered for the tab.
func (c *Context) View(f func() h.H) {
	if f == nil {
		panic("nil view func")
	}
	c.view = f
}

// Action registers an event handler and returns a handle used to trigger it
// from the view.
//
// Example:
//
//	save := c.Action(func() {
//		c.Sync()
//	})
//	h.Button(h.Text("Save"), save.OnClick())
func (c *Context) Action(f func()) *ActionHandle {
	id := genRandID()
	c.actionsMu.Lock()
	c.actions[id] = f
	c.actionsMu.Unlock()
	return &ActionHandle{id: id}
}

// Upload registers a handler for files posted from a form rendered with the
// returned handle.
func (c *Context) Upload(f func(files []*multipart.FileHeader)) *UploadHandle {
	id := genRandID()
	c.actionsMu.Lock()
	c.uploads[id] = f
	c.actionsMu.Unlock()
	return &UploadHandle{id: id, tabID: c.id}
}

func (c *Context) getActionFn(id string) (func(), error) {
	c.actionsMu.RLock()
	defer c.actionsMu.RUnlock()
	if f, ok := c.actions[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("action '%s' not found", id)
}

func (c *Context) getUploadFn(id string) (func([]*multipart.FileHeader), error) {
	c.actionsMu.RLock()
	defer c.actionsMu.RUnlock()
	if f, ok := c.uploads[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("upload '%s' not found", id)
}

// Go runs fn on its own goroutine once the tab is idle, holding the tab's
// action lock. Use it to update a tab from outside its own actions.
func (c *Context) Go(fn func()) {
	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed.Load() {
			return
		}
		fn()
	}()
}

// OnDispose registers a func to run when the tab is discarded.
func (c *Context) OnDispose(f func()) {
	c.onDispose = append(c.onDispose, f)
}

func (c *Context) dispose() {
	if !c.disposed.CompareAndSwap(false, true) {
		return
	}
	for _, f := range c.onDispose {
		f()
	}
}

func (c *Context) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Context) bind(w http.ResponseWriter, r *http.Request) {
	c.w, c.r = w, r
	c.initializing = !c.rendered
}

func (c *Context) unbind() {
	c.w, c.r = nil, nil
	c.initializing = false
}

func (c *Context) render() h.H {
	c.signalsMu.Lock()
	c.rendered = true
	c.signalsMu.Unlock()
	return h.Div(h.ID("tab-"+c.id), c.view())
}

// Sync pushes the current view and every changed signal to the browser.
func (c *Context) Sync() {
	c.SyncElements()
	c.SyncSignals()
}

// SyncElements re-renders the view and pushes it to the browser.
func (c *Context) SyncElements() {
	if c.view == nil {
		return
	}
	var b strings.Builder
	if err := c.render().Render(&b); err != nil {
		c.app.logErr(c, "render view failed", zap.Error(err))
		return
	}
	c.queue(patch{typ: patchTypeElements, content: b.String()})
}

// SyncSignals pushes every signal changed on the server since the last sync.
func (c *Context) SyncSignals() {
	c.signalsMu.Lock()
	changed := make(map[string]any)
	for id, sig := range c.signals {
		if sig.changed() {
			changed[id] = sig.value()
			sig.markSynced()
		}
	}
	c.signalsMu.Unlock()
	if len(changed) == 0 {
		return
	}
	b, err := json.Marshal(changed)
	if err != nil {
		c.app.logErr(c, "encode signals failed", zap.Error(err))
		return
	}
	c.queue(patch{typ: patchTypeSignals, content: string(b)})
}

// ExecScript runs the given javascript in the browser tab.
func (c *Context) ExecScript(script string) {
	if script == "" {
		return
	}
	c.queue(patch{typ: patchTypeScript, content: script})
}

// Redirect sends the browser to url. Called while the page initialises, the
// visit is answered with a 303 instead of the page.
func (c *Context) Redirect(url string) {
	if c.initializing {
		c.redirect = url
		return
	}
	c.queue(patch{typ: patchTypeRedirect, content: url})
}

func (c *Context) queue(p patch) {
	if c.disposed.Load() {
		return
	}
	select {
	case c.patches <- p:
	default:
		// drop the oldest pending patch to keep the newest state
		select {
		case <-c.patches:
		default:
		}
		select {
		case c.patches <- p:
		default:
			c.app.logWarn(c, "patch dropped", zap.String("type", p.typ.String()))
		}
	}
}

func (c *Context) addSignal(s signalBinding) {
	c.signalsMu.Lock()
	defer c.signalsMu.Unlock()
	if c.rendered {
		s.markChanged()
	}
	c.signals[s.signalID()] = s
}

func (c *Context) injectSignals(sigs map[string]any) {
	c.signalsMu.Lock()
	defer c.signalsMu.Unlock()
	for id, raw := range sigs {
		if sig, ok := c.signals[id]; ok {
			if err := sig.inject(raw); err != nil {
				c.app.logDebug(c, "signal ignored", zap.String("signal", id), zap.Error(err))
			}
		}
	}
}

func (c *Context) initialSignals() string {
	c.signalsMu.Lock()
	all := map[string]any{tabSignal: c.id}
	for id, sig := range c.signals {
		all[id] = sig.value()
		sig.markSynced()
	}
	c.signalsMu.Unlock()
	b, err := json.Marshal(all)
	if err != nil {
		c.app.logErr(c, "encode signals failed", zap.Error(err))
		return fmt.Sprintf(`{%q:%q}`, tabSignal, c.id)
	}
	return string(b)
}
