package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
)

// CookieMaxAge is how long session cookies live.
const CookieMaxAge = 7 * 24 * time.Hour

const nonceSize = 24

// Sealer encrypts and authenticates cookie values with a secret key.
type Sealer struct {
	key [32]byte
}

// NewSealer returns a Sealer for key. A nil key draws a random one, which
// invalidates cookies on restart.
func NewSealer(key *[32]byte) (*Sealer, error) {
	s := &Sealer{}
	if key != nil {
		s.key = *key
		return s, nil
	}
	if _, err := rand.Read(s.key[:]); err != nil {
		return nil, err
	}
	return s, nil
}

// Seal encrypts plain into a cookie-safe string.
func (s *Sealer) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal. It fails for values that were tampered with or sealed
// under another key.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed value too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("sealed value rejected")
	}
	return string(plain), nil
}

// CookieStorage keeps values in sealed cookies. Reads come from the request;
// writes go to the response and are visible to later reads through the same
// CookieStorage.
type CookieStorage struct {
	w       http.ResponseWriter
	r       *http.Request
	sealer  *Sealer
	secure  bool
	written map[string]*string
}

// NewCookieStorage binds cookie storage to one request/response pair. w may
// be nil for read-only use.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, sealer *Sealer, secure bool) *CookieStorage {
	return &CookieStorage{w: w, r: r, sealer: sealer, secure: secure, written: make(map[string]*string)}
}

// Get returns the unsealed value of the named cookie. A cookie that does not
// unseal is reported as present with an empty value so that it is treated
// as malformed.
func (c *CookieStorage) Get(_ context.Context, key string) (string, bool, error) {
	if v, ok := c.written[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	if c.r == nil {
		return "", false, nil
	}
	cookie, err := c.r.Cookie(key)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", false, nil
	}
	plain, err := c.sealer.Open(cookie.Value)
	if err != nil {
		return "", true, nil
	}
	return plain, true, nil
}

func (c *CookieStorage) Set(_ context.Context, key, value string) error {
	sealed, err := c.sealer.Seal(value)
	if err != nil {
		return err
	}
	c.written[key] = &value
	if c.w != nil {
		http.SetCookie(c.w, c.cookie(key, sealed, int(CookieMaxAge.Seconds())))
	}
	return nil
}

func (c *CookieStorage) Remove(_ context.Context, key string) error {
	c.written[key] = nil
	if c.w != nil {
		http.SetCookie(c.w, c.cookie(key, "", -1))
	}
	return nil
}

func (c *CookieStorage) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
