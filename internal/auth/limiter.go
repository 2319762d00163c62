package auth

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TooManyAttempts is shown when login attempts are throttled.
const TooManyAttempts = "Too many login attempts. Please wait a moment and try again."

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles login attempts per client address.
type LoginLimiter struct {
	perMinute  float64
	burst      int
	trustProxy bool

	mu       sync.Mutex
	visitors map[string]*visitor
}

// LimiterOption configures a LoginLimiter.
type LimiterOption func(*LoginLimiter)

// WithTrustedProxy keys attempts on the X-Forwarded-For client when the
// portal runs behind a proxy that sets it.
func WithTrustedProxy(trust bool) LimiterOption {
	return func(l *LoginLimiter) { l.trustProxy = trust }
}

// NewLoginLimiter allows perMinute attempts per address with the given burst.
func NewLoginLimiter(perMinute float64, burst int, opts ...LimiterOption) *LoginLimiter {
	l := &LoginLimiter{perMinute: perMinute, burst: burst, visitors: make(map[string]*visitor)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Addr returns the address attempts from r are counted against.
func (l *LoginLimiter) Addr(r *http.Request) string {
	return ClientAddr(r, l.trustProxy)
}

// Allow reports whether addr may attempt a login now.
func (l *LoginLimiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.perMinute/60), l.burst)}
		l.visitors[addr] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Cleanup forgets addresses not seen within idle.
func (l *LoginLimiter) Cleanup(idle time.Duration) {
	cutoff := time.Now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for addr, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, addr)
		}
	}
}

// ClientAddr returns the address a request came from. The first
// X-Forwarded-For hop is used only when trustProxy is set, since clients can
// send the header themselves.
func ClientAddr(r *http.Request, trustProxy bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
