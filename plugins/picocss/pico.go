// Package picocss styles the portal with a Pico CSS theme plus the portal's
// own rules for badges, notices and cards.
//
//	app.Config(portal.Options{Plugins: []portal.Plugin{
//	    picocss.New(picocss.WithTheme("jade")),
//	}})
//
// The theme is fetched from the CDN on the first request for it and served
// from memory afterwards, with an ETag and gzip when the browser accepts it.
package picocss

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"go.uber.org/zap"
)

const (
	cdnVersion = "2.1.1"
	// DefaultCDN hosts the Pico CSS builds.
	DefaultCDN = "https://cdn.jsdelivr.net/npm/@picocss/pico@" + cdnVersion + "/css/"

	// StylesheetPath is where the combined stylesheet is served.
	StylesheetPath = "/_plugins/picocss/portal.css"

	// maxCSSBodySize caps CDN response bodies.
	maxCSSBodySize = 512 * 1024
)

// Themes lists the Pico colour themes.
var Themes = []string{
	"amber", "blue", "cyan", "fuchsia", "green", "grey", "indigo", "jade", "lime",
	"orange", "pink", "pumpkin", "purple", "red", "sand", "slate", "violet", "yellow", "zinc",
}

// DefaultTheme is used when no valid theme is configured.
const DefaultTheme = "jade"

// Rules added after the theme.
const portalCSS = `
.grid.cards { grid-template-columns: repeat(auto-fit, minmax(16rem, 1fr)); }
.hero { padding: 3rem 0; text-align: center; }
.notice { display: flex; justify-content: space-between; align-items: center; }
.notice-error { border-left: .3rem solid var(--pico-del-color); }
.notice-success { border-left: .3rem solid var(--pico-ins-color); }
.notice-info { border-left: .3rem solid var(--pico-primary); }
.field-error { color: var(--pico-del-color); }
.badge { padding: .1rem .5rem; border-radius: 1rem; font-size: .8rem; background: var(--pico-muted-border-color); }
.status-completed, .status-confirmed, .status-paid { background: var(--pico-ins-color); color: #fff; }
.status-cancelled, .status-failed { background: var(--pico-del-color); color: #fff; }
.stat h2 { margin: 0; }
.tabs ul { flex-wrap: wrap; }
.tabs a[aria-current="page"] { font-weight: bold; text-decoration: underline; }
.stepper ol { display: flex; gap: 1rem; list-style: none; padding: 0; }
.stepper .done { color: var(--pico-ins-color); }
.guard-loading { padding: 4rem 0; text-align: center; }
.outcome, .auth { max-width: 32rem; margin: 2rem auto; }
`

// Option configures the plugin.
type Option func(*Plugin)

// WithTheme picks the colour theme. Unknown names fall back to DefaultTheme.
func WithTheme(name string) Option {
	return func(p *Plugin) { p.theme = strings.ToLower(strings.TrimSpace(name)) }
}

// WithCDN changes where the theme is fetched from.
func WithCDN(base string) Option {
	return func(p *Plugin) { p.cdn = strings.TrimRight(base, "/") + "/" }
}

// WithHTTPClient sets the client used to fetch the theme.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Plugin) { p.hc = hc }
}

// Plugin serves the stylesheet and links it from every page.
type Plugin struct {
	theme string
	cdn   string
	hc    *http.Client
	log   *zap.Logger

	mu   sync.Mutex
	css  []byte
	gz   []byte
	etag string
}

// New returns the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{theme: DefaultTheme, cdn: DefaultCDN, hc: http.DefaultClient, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if !slices.Contains(Themes, p.theme) {
		p.theme = DefaultTheme
	}
	return p
}

// Theme returns the theme in use.
func (p *Plugin) Theme() string {
	return p.theme
}

// Register links the stylesheet from the document head and serves it.
func (p *Plugin) Register(app *portal.App) {
	p.log = app.Logger().Named("picocss")
	app.AppendToHead(
		h.Meta(h.Name("color-scheme"), h.Content("light dark")),
		h.Link(h.Rel("stylesheet"), h.Href(StylesheetPath)),
	)
	app.HTTPServeMux().Handle("GET "+StylesheetPath, http.HandlerFunc(p.serve))
}

func (p *Plugin) themeURL() string {
	return fmt.Sprintf("%spico.%s.min.css", p.cdn, p.theme)
}

// load fetches the theme once. A failed fetch is retried on the next
// request.
func (p *Plugin) load(r *http.Request) ([]byte, []byte, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.css != nil {
		return p.css, p.gz, p.etag, nil
	}
	theme, err := p.fetch(r)
	if err != nil {
		return nil, nil, "", err
	}
	css := append(theme, portalCSS...)
	p.css = css
	p.gz = gzipBytes(css)
	p.etag = fmt.Sprintf(`"%08x"`, crc32.ChecksumIEEE(css))
	return p.css, p.gz, p.etag, nil
}

func (p *Plugin) fetch(r *http.Request) ([]byte, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, p.themeURL(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pico: fetch %s: %w", p.themeURL(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pico: fetch %s: status %d", p.themeURL(), resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCSSBodySize))
}

func (p *Plugin) serve(w http.ResponseWriter, r *http.Request) {
	css, gz, etag, err := p.load(r)
	if err != nil {
		p.log.Warn("theme unavailable, serving portal rules only", zap.String("theme", p.theme), zap.Error(err))
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = io.WriteString(w, portalCSS)
		return
	}
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept-Encoding")
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(gz)
		return
	}
	_, _ = w.Write(css)
}

func gzipBytes(b []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, _ = w.Write(b)
	_ = w.Close()
	return buf.Bytes()
}
