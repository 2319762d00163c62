package portal

import (
	"time"
)

// TestGetTab returns a registered tab.
func (a *App) TestGetTab(id string) (*Context, error) {
	return a.getTab(id)
}

// TestOnlyTab returns the single registered tab, or nil.
func (a *App) TestOnlyTab() *Context {
	a.tabsMu.RLock()
	defer a.tabsMu.RUnlock()
	for _, c := range a.tabs {
		return c
	}
	return nil
}

// TestSweepTabs runs the stale tab sweep.
func (a *App) TestSweepTabs() {
	a.sweepTabs()
}

// TestAge moves the tab's last activity back by d.
func (c *Context) TestAge(d time.Duration) {
	c.lastSeen.Store(time.Now().Add(-d).UnixNano())
}

// TestNextPatch waits briefly for the next queued patch and returns its type
// and content.
func (c *Context) TestNextPatch() (string, string, bool) {
	select {
	case p := <-c.patches:
		return p.typ.String(), p.content, true
	case <-time.After(100 * time.Millisecond):
		return "", "", false
	}
}
