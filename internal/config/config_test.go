package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"PORTAL_API_URL": "https://api.example.com"})
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, BackendSQLite, cfg.SessionBackend)
	assert.Equal(t, 30*time.Minute, cfg.TabTTL)
	assert.Equal(t, "jade", cfg.PicoTheme)
	assert.False(t, cfg.TrustedProxy)
	assert.True(t, cfg.IsDevelopment())

	key, err := cfg.CookieKey()
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"missing api url", map[string]string{}},
		{"api url without scheme", map[string]string{"PORTAL_API_URL": "api.example.com"}},
		{"unknown backend", map[string]string{"PORTAL_API_URL": "http://api", "PORTAL_SESSION_BACKEND": "mongo"}},
		{"short secret", map[string]string{"PORTAL_API_URL": "http://api", "PORTAL_COOKIE_SECRET": "abcd"}},
		{"bad timeout", map[string]string{"PORTAL_API_URL": "http://api", "PORTAL_API_TIMEOUT": "soon"}},
		{"zero burst", map[string]string{"PORTAL_API_URL": "http://api", "PORTAL_LOGIN_BURST": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_TrustedProxy(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"PORTAL_API_URL": "http://api", "PORTAL_TRUSTED_PROXY": "true"})
	require.NoError(t, err)
	assert.True(t, cfg.TrustedProxy)
}

func TestCookieKey(t *testing.T) {
	secret := strings.Repeat("ab", 32)
	cfg, err := LoadFrom(map[string]string{"PORTAL_API_URL": "http://api", "PORTAL_COOKIE_SECRET": secret})
	require.NoError(t, err)

	key, err := cfg.CookieKey()
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, byte(0xab), key[0])
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.env")
	require.NoError(t, os.WriteFile(path, []byte("PORTAL_API_URL=https://api.savanna.test\nPORTAL_SESSION_BACKEND=redis\n"), 0o600))
	for _, key := range []string{"PORTAL_API_URL", "PORTAL_SESSION_BACKEND"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.savanna.test", cfg.APIURL)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("PORTAL_API_URL", "http://api")
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
