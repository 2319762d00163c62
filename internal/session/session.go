// Package session persists the signed-in user of a browser in two redundant
// places: a durable server-side backend keyed by client id, and sealed
// cookies. Either copy is enough to restore the session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/savanna-accountancy/portal/internal/api"
)

// Persisted keys.
const (
	KeyTokens = "auth_tokens"
	KeyUser   = "auth_user"
)

// Roles.
const (
	RoleIndividual = "individual"
	RoleBusiness   = "business"
	RoleStaff      = "staff"
)

// ErrMalformed is returned when persisted data cannot be decoded. The data is
// discarded when it is found.
var ErrMalformed = errors.New("session: malformed persisted data")

// Session is the signed-in user and their tokens.
type Session struct {
	Tokens api.Tokens
	User   api.User
}

// UserID returns the id of the signed-in user.
func (s Session) UserID() int {
	return s.User.ID
}

// Email returns the user's email.
func (s Session) Email() string {
	return s.User.Email
}

// IsStaff reports whether the user is a member of staff.
func (s Session) IsStaff() bool {
	return s.User.IsStaff
}

// Role is "staff" for staff users, otherwise the user's account type.
func (s Session) Role() string {
	if s.User.IsStaff {
		return RoleStaff
	}
	return s.User.UserType
}

// Storage is a string key/value store for one browser.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Store writes sessions to a durable storage and to cookies, and restores
// them from whichever has a copy.
type Store struct {
	durable Storage
	cookies Storage
}

// NewStore returns a Store. Either storage may be nil.
func NewStore(durable, cookies Storage) *Store {
	return &Store{durable: durable, cookies: cookies}
}

func (s *Store) storages() []Storage {
	var out []Storage
	for _, st := range []Storage{s.durable, s.cookies} {
		if st != nil {
			out = append(out, st)
		}
	}
	return out
}

// Save writes tokens and user to both storages.
func (s *Store) Save(ctx context.Context, sess Session) error {
	tokens, err := json.Marshal(sess.Tokens)
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	var errs []error
	for _, st := range s.storages() {
		errs = append(errs, st.Set(ctx, KeyTokens, string(tokens)), st.Set(ctx, KeyUser, string(user)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SaveUser rewrites the cached user record in both storages.
func (s *Store) SaveUser(ctx context.Context, user api.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	var errs []error
	for _, st := range s.storages() {
		errs = append(errs, st.Set(ctx, KeyUser, string(raw)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Clear removes the session from both storages. Clearing an empty store is
// not an error.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, st := range s.storages() {
		errs = append(errs, st.Remove(ctx, KeyTokens), st.Remove(ctx, KeyUser))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Load restores the session: durable storage first, cookies otherwise.
// ok is false when neither holds a session. A storage that fails to read is
// skipped; its error is returned only when no other storage has a session.
// Malformed data is cleared from both storages and reported as ErrMalformed.
func (s *Store) Load(ctx context.Context) (Session, bool, error) {
	var errs []error
	for _, st := range s.storages() {
		tokens, hasTokens, err := st.Get(ctx, KeyTokens)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		user, hasUser, err := st.Get(ctx, KeyUser)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !hasTokens || !hasUser {
			continue
		}
		sess, err := decode(tokens, user)
		if err != nil {
			if cerr := s.Clear(ctx); cerr != nil {
				return Session{}, false, errors.Join(err, cerr)
			}
			return Session{}, false, err
		}
		return sess, true, nil
	}
	if err := errors.Join(errs...); err != nil {
		return Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return Session{}, false, nil
}

func decode(tokens, user string) (Session, error) {
	var sess Session
	if err := json.Unmarshal([]byte(tokens), &sess.Tokens); err != nil {
		return Session{}, fmt.Errorf("%w: tokens: %v", ErrMalformed, err)
	}
	if err := json.Unmarshal([]byte(user), &sess.User); err != nil {
		return Session{}, fmt.Errorf("%w: user: %v", ErrMalformed, err)
	}
	if err := CheckToken(sess.Tokens.Access); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// CheckToken reports ErrMalformed when access is not a well formed JWT. The
// signature is not verified; the API does that on every call.
func CheckToken(access string) error {
	if access == "" {
		return fmt.Errorf("%w: empty access token", ErrMalformed)
	}
	if _, _, err := jwt.NewParser().ParseUnverified(access, jwt.MapClaims{}); err != nil {
		return fmt.Errorf("%w: access token: %v", ErrMalformed, err)
	}
	return nil
}
