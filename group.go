package portal

// Group is a set of pages sharing a route prefix and middleware.
type Group struct {
	app         *App
	prefix      string
	middlewares []Middleware
}

// Group creates a route group with the given prefix.
// The callback receives the Group for registering pages.
func (a *App) Group(prefix string, fn func(*Group)) {
	fn(&Group{app: a, prefix: prefix})
}

// Use adds middleware to this group only.
func (g *Group) Use(middleware ...Middleware) {
	g.middlewares = append(g.middlewares, middleware...)
}

// Group creates a nested group that inherits the parent's middleware.
func (g *Group) Group(prefix string, fn func(*Group)) {
	fn(&Group{
		app:         g.app,
		prefix:      g.prefix + prefix,
		middlewares: append([]Middleware{}, g.middlewares...),
	})
}

// Page registers a page within the group. Global middleware runs first,
// then group middleware in registration order.
func (g *Group) Page(route string, initFn func(c *Context)) {
	g.app.handlePage(g.prefix+route, initFn, g.middlewares)
}
