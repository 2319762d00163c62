package portal

import (
	"time"

	"go.uber.org/zap"
)

// Plugin integrates with the portal runtime. Implement Register to inject
// head elements, HTTP handlers, or other app-level concerns.
type Plugin interface {
	Register(*App)
}

// Options defines configuration options for the portal runtime.
type Options struct {
	// The http server address. e.g. ':3000'
	ServerAddress string

	// The title of the HTML document when a page does not set its own.
	DocumentTitle string

	// DatastarURL is where browsers load the Datastar client bundle from.
	DatastarURL string

	// ClientCookieName names the cookie that identifies a browser across tabs.
	// Default is "portal_client".
	ClientCookieName string

	// ClientCookieMaxAge is the max age of the client cookie.
	// Default is 30 days.
	ClientCookieMaxAge time.Duration

	// SecureCookies marks runtime cookies as Secure.
	SecureCookies bool

	// TabTTL is how long a tab without a live event stream is kept before it
	// is disposed. Zero keeps the default of 30 minutes.
	TabTTL time.Duration

	// Logger receives runtime logs. Nil keeps the current logger.
	Logger *zap.Logger

	// Plugins to extend the capabilities of the application.
	Plugins []Plugin
}

const (
	defaultDatastarURL  = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
	defaultClientCookie = "portal_client"
	defaultClientMaxAge = 30 * 24 * time.Hour
	defaultTabTTL       = 30 * time.Minute
)
