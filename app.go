// Package portal is the live web runtime behind the Savanna Accountancy
// client portal.
//
// Every page visit creates a tab Context on the server. The tab's view is
// rendered as plain HTML on the first request and then kept in sync with the
// browser over a Server-Sent Events stream driven by Datastar: inputs are
// bound to typed signals, buttons trigger actions, and actions push fresh
// HTML back to the tab.
package portal

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/savanna-accountancy/portal/h"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
)

// tabSignal carries the tab id with every Datastar request.
const tabSignal = "tabid"

// Middleware wraps a page handler.
type Middleware func(http.Handler) http.Handler

// App is the root application.
// It manages page routing, tabs and the SSE connections that keep them live.
type App struct {
	cfg          Options
	log          *zap.Logger
	mux          *http.ServeMux
	middlewares  []Middleware
	tabs         map[string]*Context
	tabsMu       sync.RWMutex
	headIncludes []h.H
	footIncludes []h.H
}

type clientIDKey struct{}

func tabField(c *Context) zap.Field {
	if c == nil || c.id == "" {
		return zap.Skip()
	}
	return zap.String("tab", c.id)
}

func (a *App) logErr(c *Context, msg string, fields ...zap.Field) {
	a.log.Error(msg, append(fields, tabField(c))...)
}

func (a *App) logWarn(c *Context, msg string, fields ...zap.Field) {
	a.log.Warn(msg, append(fields, tabField(c))...)
}

func (a *App) logInfo(c *Context, msg string, fields ...zap.Field) {
	a.log.Info(msg, append(fields, tabField(c))...)
}

func (a *App) logDebug(c *Context, msg string, fields ...zap.Field) {
	a.log.Debug(msg, append(fields, tabField(c))...)
}

// Config overrides the default configuration with the given options.
func (a *App) Config(cfg Options) {
	if cfg.Logger != nil {
		a.log = cfg.Logger
	}
	if cfg.DocumentTitle != "" {
		a.cfg.DocumentTitle = cfg.DocumentTitle
	}
	if cfg.ServerAddress != "" {
		a.cfg.ServerAddress = cfg.ServerAddress
	}
	if cfg.DatastarURL != "" {
		a.cfg.DatastarURL = cfg.DatastarURL
	}
	if cfg.ClientCookieName != "" {
		a.cfg.ClientCookieName = cfg.ClientCookieName
	}
	if cfg.ClientCookieMaxAge > 0 {
		a.cfg.ClientCookieMaxAge = cfg.ClientCookieMaxAge
	}
	if cfg.TabTTL > 0 {
		a.cfg.TabTTL = cfg.TabTTL
	}
	a.cfg.SecureCookies = cfg.SecureCookies
	for _, plugin := range cfg.Plugins {
		if plugin != nil {
			plugin.Register(a)
		}
	}
}

// Logger returns the runtime logger.
func (a *App) Logger() *zap.Logger {
	return a.log
}

// AppendToHead appends the given nodes to the head of the base HTML document.
// Useful for including css stylesheets and JS scripts.
func (a *App) AppendToHead(elements ...h.H) {
	for _, el := range elements {
		if el != nil {
			a.headIncludes = append(a.headIncludes, el)
		}
	}
}

// AppendToFoot appends the given nodes to the end of the base HTML document body.
func (a *App) AppendToFoot(elements ...h.H) {
	for _, el := range elements {
		if el != nil {
			a.footIncludes = append(a.footIncludes, el)
		}
	}
}

// Use adds middleware that wraps every page registered afterwards.
func (a *App) Use(mw ...Middleware) {
	a.middlewares = append(a.middlewares, mw...)
}

// Page registers a route and its associated page handler.
// The handler runs once per visit and receives the new tab's *Context to
// define UI, signals and actions.
//
// Example:
//
//	app.Page("/", func(c *portal.Context) {
//		c.View(func() h.H {
//			return h.H1(h.Text("Welcome"))
//		})
//	})
func (a *App) Page(route string, initFn func(c *Context)) {
	a.handlePage(route, initFn, nil)
}

func (a *App) handlePage(route string, initFn func(c *Context), groupMiddlewares []Middleware) {
	var handler http.Handler = a.newPageHandler(route, initFn)
	for i := len(groupMiddlewares) - 1; i >= 0; i-- {
		handler = groupMiddlewares[i](handler)
	}
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		handler = a.middlewares[i](handler)
	}
	a.mux.Handle("GET "+route, handler)
}

func (a *App) newPageHandler(route string, initFn func(c *Context)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := newContext(genRandID(), route, ClientID(r), a)
		a.logDebug(c, "page visit", zap.String("route", route))

		c.mu.Lock()
		defer c.mu.Unlock()
		c.bind(w, r)
		initFn(c)
		c.unbind()

		if c.redirect != "" {
			c.dispose()
			http.Redirect(w, r, c.redirect, http.StatusSeeOther)
			return
		}
		if c.view == nil {
			c.dispose()
			a.logErr(c, "page has no view", zap.String("route", route))
			http.Error(w, "page has no view", http.StatusInternalServerError)
			return
		}
		a.registerTab(c)

		title := c.title
		if title == "" {
			title = a.cfg.DocumentTitle
		}
		body := []h.H{c.render()}
		body = append(body, a.footIncludes...)
		head := slices.Clone(a.headIncludes)
		head = append(head,
			h.Script(h.Type("module"), h.Src(a.cfg.DatastarURL)),
			h.Meta(h.Data("signals", c.initialSignals())),
			h.Meta(h.Data("init", "@get('/_sse')")),
		)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.HTML5(h.HTML5Props{Title: title, Language: "en", Head: head, Body: body}).Render(w); err != nil {
			a.logErr(c, "render page failed", zap.Error(err))
		}
	})
}

// ClientID returns the browser id attached to the request by the app's
// client cookie middleware.
func ClientID(r *http.Request) string {
	if r == nil {
		return ""
	}
	id, _ := r.Context().Value(clientIDKey{}).(string)
	return id
}

// WithClientID attaches a browser id to the request context.
func WithClientID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), clientIDKey{}, id))
}

// identify makes sure every request carries a browser id, issuing the client
// cookie on first contact.
func (a *App) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(a.cfg.ClientCookieName); err == nil {
			if _, perr := uuid.Parse(cookie.Value); perr == nil {
				id = cookie.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     a.cfg.ClientCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(a.cfg.ClientCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   a.cfg.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, WithClientID(r, id))
	})
}

func (a *App) registerTab(c *Context) {
	a.tabsMu.Lock()
	defer a.tabsMu.Unlock()
	a.tabs[c.id] = c
	a.logDebug(c, "tab registered")
}

func (a *App) getTab(id string) (*Context, error) {
	a.tabsMu.RLock()
	defer a.tabsMu.RUnlock()
	if c, ok := a.tabs[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("tab '%s' not found", id)
}

// TabCount reports how many tabs are currently registered.
func (a *App) TabCount() int {
	a.tabsMu.RLock()
	defer a.tabsMu.RUnlock()
	return len(a.tabs)
}

// sweepTabs disposes of tabs that have no live stream and have not been seen
// within the tab TTL.
func (a *App) sweepTabs() {
	cutoff := time.Now().Add(-a.cfg.TabTTL).UnixNano()
	var stale []*Context

	a.tabsMu.Lock()
	for id, c := range a.tabs {
		if !c.connected.Load() && c.lastSeen.Load() < cutoff {
			delete(a.tabs, id)
			stale = append(stale, c)
		}
	}
	a.tabsMu.Unlock()

	for _, c := range stale {
		c.dispose()
		a.logDebug(c, "tab disposed")
	}
}

// HandleFunc registers the HTTP handler function for a given pattern. The
// handler function panics if in conflict with another registered handler.
func (a *App) HandleFunc(pattern string, f http.HandlerFunc) {
	a.mux.HandleFunc(pattern, f)
}

// HTTPServeMux returns the app's request multiplexer.
func (a *App) HTTPServeMux() *http.ServeMux {
	return a.mux
}

// Handler returns the app wrapped with the client cookie middleware. This is
// the handler to serve.
func (a *App) Handler() http.Handler {
	return a.identify(a.mux)
}

// Start serves the app on the configured address until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ServerAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweeper := NewRoutine(time.Minute, a.sweepTabs)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	errc := make(chan error, 1)
	go func() {
		a.logInfo(nil, "portal started", zap.String("addr", a.cfg.ServerAddress))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logInfo(nil, "portal shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// New creates a new portal application with default configuration.
func New() *App {
	a := &App{
		mux:  http.NewServeMux(),
		log:  zap.NewNop(),
		tabs: make(map[string]*Context),
		cfg: Options{
			ServerAddress:      ":3000",
			DocumentTitle:      "Savanna Accountancy",
			DatastarURL:        defaultDatastarURL,
			ClientCookieName:   defaultClientCookie,
			ClientCookieMaxAge: defaultClientMaxAge,
			TabTTL:             defaultTabTTL,
		},
	}

	a.mux.HandleFunc("GET /_sse", a.serveSSE)
	a.mux.HandleFunc("GET /_action/{id}", a.serveAction)
	a.mux.HandleFunc("POST /_upload/{id}", a.serveUpload)
	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return a
}

func (a *App) serveSSE(w http.ResponseWriter, r *http.Request) {
	var sigs map[string]any
	_ = datastar.ReadSignals(r, &sigs)
	tabID, _ := sigs[tabSignal].(string)
	c, err := a.getTab(tabID)
	if err != nil {
		a.logWarn(nil, "sse connect failed", zap.Error(err))
		http.Error(w, "unknown tab", http.StatusNotFound)
		return
	}

	sse := datastar.NewSSE(w, r)
	c.connected.Store(true)
	c.touch()
	a.logDebug(c, "SSE connection established")
	defer func() {
		c.connected.Store(false)
		c.touch()
		a.logDebug(c, "SSE connection closed")
	}()

	for {
		select {
		case <-sse.Context().Done():
			return
		case p := <-c.patches:
			var err error
			switch p.typ {
			case patchTypeElements:
				err = sse.PatchElements(p.content)
			case patchTypeSignals:
				err = sse.PatchSignals([]byte(p.content))
			case patchTypeScript:
				err = sse.ExecuteScript(p.content)
			case patchTypeRedirect:
				err = sse.Redirect(p.content)
			}
			if err != nil {
				a.logWarn(c, "sse patch failed", zap.Error(err))
				return
			}
		}
	}
}

func (a *App) serveAction(w http.ResponseWriter, r *http.Request) {
	actionID := r.PathValue("id")
	var sigs map[string]any
	if err := datastar.ReadSignals(r, &sigs); err != nil {
		a.logWarn(nil, "action signals unreadable", zap.String("action", actionID), zap.Error(err))
		http.Error(w, "bad signals", http.StatusBadRequest)
		return
	}
	tabID, _ := sigs[tabSignal].(string)
	c, err := a.getTab(tabID)
	if err != nil {
		a.logWarn(nil, "action failed", zap.String("action", actionID), zap.Error(err))
		http.Error(w, "unknown tab", http.StatusNotFound)
		return
	}
	actionFn, err := c.getActionFn(actionID)
	if err != nil {
		a.logDebug(c, "action failed", zap.String("action", actionID), zap.Error(err))
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.injectSignals(sigs)
	c.bind(w, r)
	defer c.unbind()
	if !a.run(c, "action "+actionID, actionFn) {
		http.Error(w, "action failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) serveUpload(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("id")
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		a.logWarn(nil, "upload unreadable", zap.String("upload", uploadID), zap.Error(err))
		http.Error(w, "bad upload", http.StatusBadRequest)
		return
	}
	c, err := a.getTab(r.FormValue(tabSignal))
	if err != nil {
		a.logWarn(nil, "upload failed", zap.String("upload", uploadID), zap.Error(err))
		http.Error(w, "unknown tab", http.StatusNotFound)
		return
	}
	uploadFn, err := c.getUploadFn(uploadID)
	if err != nil {
		a.logDebug(c, "upload failed", zap.String("upload", uploadID), zap.Error(err))
		http.Error(w, "unknown upload", http.StatusNotFound)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.bind(w, r)
	defer c.unbind()
	files := r.MultipartForm.File[uploadField]
	if !a.run(c, "upload "+uploadID, func() { uploadFn(files) }) {
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// run executes fn, logging instead of crashing the server if it panics.
func (a *App) run(c *Context, what string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logErr(c, what+" panicked", zap.Any("panic", r))
			ok = false
		}
	}()
	fn()
	return true
}

// BroadcastSync re-renders every tab that currently has a live stream.
func (a *App) BroadcastSync() {
	a.tabsMu.RLock()
	defer a.tabsMu.RUnlock()

	for _, c := range a.tabs {
		if c.connected.Load() {
			a.logDebug(c, "broadcasting sync to tab")
			c.Sync()
		}
	}
}

func genRandID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
