package auth

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter(t *testing.T) {
	l := NewLoginLimiter(1, 2)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	l.Cleanup(0)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestClientAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", ClientAddr(r, false))
	assert.Equal(t, "192.0.2.1", ClientAddr(r, true))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", ClientAddr(r, false))
	assert.Equal(t, "203.0.113.9", ClientAddr(r, true))
}

func TestLoginLimiter_IgnoresForwardedForByDefault(t *testing.T) {
	l := NewLoginLimiter(10, 5)
	allowed := 0
	for i := range 100 {
		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		if l.Allow(l.Addr(r)) {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)
}

func TestLoginLimiter_TrustedProxy(t *testing.T) {
	l := NewLoginLimiter(1, 1, WithTrustedProxy(true))
	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "10.0.0.1:80"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")

	assert.Equal(t, "203.0.113.9", l.Addr(r))
	assert.True(t, l.Allow(l.Addr(r)))
	assert.False(t, l.Allow(l.Addr(r)))
	r.Header.Set("X-Forwarded-For", "203.0.113.10")
	assert.True(t, l.Allow(l.Addr(r)))
}
