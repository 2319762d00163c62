// Package site serves the public pages: marketing content, enquiry forms,
// login and account verification.
package site

import (
	"context"

	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/internal/auth"
)

// Verifier confirms a new account's email address.
type Verifier interface {
	VerifyEmail(ctx context.Context, key string) error
}

// Deps are the collaborators of the public pages.
type Deps struct {
	Verifier Verifier
	Registry *auth.Registry
	Stores   auth.StoreFunc
	// Limiter throttles login attempts. Nil disables throttling.
	Limiter *auth.LoginLimiter
}

// Register mounts the public pages.
func Register(app *portal.App, d Deps) {
	app.Page("/{$}", home)
	app.Page("/services", services)
	app.Page("/services/{slug}", serviceDetail)
	app.Page("/blog", blog)
	app.Page("/blog/{category}", blogCategory)
	app.Page("/blog/posts/{post}", blogPost)
	app.Page("/about", about)
	app.Page("/contact", contact)
	app.Page("/book-consultation", bookConsultation)
	app.Page("/signup-success", signupSuccess)
	app.Page("/forgot-password", forgotPassword)
	app.Page("/verify-account/{key}", func(c *portal.Context) { verifyAccount(c, d) })
	app.Page("/login", func(c *portal.Context) { login(c, d) })
}
