// Package auth holds the signed-in state of each browser and decides which
// pages it may see.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/session"
	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("auth: not authenticated")

// Notice messages.
const (
	loginFailed  = "Login failed"
	updateFailed = "Failed to update user"
)

// NoticeError is a failure with a message fit to show the user.
type NoticeError struct {
	Notice string
	Err    error
}

func (e *NoticeError) Error() string {
	return e.Notice
}

func (e *NoticeError) Unwrap() error {
	return e.Err
}

// API is the part of the backend the manager calls.
type API interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
	UpdateMe(ctx context.Context, token string, update api.UserUpdate) (api.User, error)
}

// State is a snapshot of a browser's auth state.
type State struct {
	// Restored is false until persisted state has been read once.
	Restored      bool
	Authenticated bool
	Session       session.Session
}

// IsStaff reports whether the signed-in user is staff.
func (s State) IsStaff() bool {
	return s.Authenticated && s.Session.IsStaff()
}

// Role returns the signed-in user's role, or "" when signed out.
func (s State) Role() string {
	if !s.Authenticated {
		return ""
	}
	return s.Session.Role()
}

// Landing is the page a signed-in user starts on.
func (s State) Landing() string {
	if s.IsStaff() {
		return "/admin"
	}
	return "/dashboard"
}

// Manager owns the auth state of one browser. It is the only writer of that
// state; observers get copies.
type Manager struct {
	api API
	log *zap.Logger

	mu       sync.RWMutex
	sess     *session.Session
	restored bool

	subsMu sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// NewManager returns a signed-out manager.
func NewManager(client API, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{api: client, log: log, subs: make(map[int]func(State))}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := State{Restored: m.restored}
	if m.sess != nil {
		st.Authenticated = true
		st.Session = *m.sess
	}
	return st
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.State().Authenticated
}

// IsStaff reports whether the signed-in user is staff.
func (m *Manager) IsStaff() bool {
	return m.State().IsStaff()
}

// Role returns the signed-in user's role.
func (m *Manager) Role() string {
	return m.State().Role()
}

// Token returns the access token, or ErrNotAuthenticated.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return "", ErrNotAuthenticated
	}
	return m.sess.Tokens.Access, nil
}

// Subscribe registers fn to receive the new state after every change. The
// returned func cancels the subscription.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.subsMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
		})
	}
}

// Subscribers returns how many observers are registered.
func (m *Manager) Subscribers() int {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	return len(m.subs)
}

func (m *Manager) notify() {
	st := m.State()
	m.subsMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

func (m *Manager) set(sess *session.Session) {
	m.mu.Lock()
	m.sess = sess
	m.restored = true
	m.mu.Unlock()
	m.notify()
}

// Restore reads the persisted session, durable copy first. Missing or
// malformed data leaves the browser signed out; malformed data is also
// discarded from both stores. Restore never fails.
func (m *Manager) Restore(ctx context.Context, store *session.Store) State {
	sess, ok, err := store.Load(ctx)
	if err != nil {
		m.log.Warn("discarding persisted session", zap.Error(err))
	}
	changed := false
	m.mu.Lock()
	switch {
	case ok:
		changed = m.sess == nil || *m.sess != sess
		m.sess = &sess
	default:
		changed = m.sess != nil
		m.sess = nil
	}
	changed = changed || !m.restored
	m.restored = true
	m.mu.Unlock()
	if changed {
		m.notify()
	}
	return m.State()
}

// Login signs in with the API and persists the session. On failure the
// returned *NoticeError carries the server's message, or "Login failed".
func (m *Manager) Login(ctx context.Context, store *session.Store, email, password string) error {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.log.Info("login rejected", zap.Error(err))
		return &NoticeError{Notice: api.MessageOr(err, loginFailed), Err: err}
	}
	sess := session.Session{
		Tokens: api.Tokens{Access: resp.Access, Refresh: resp.Refresh},
		User:   resp.User,
	}
	if err := store.Save(ctx, sess); err != nil {
		m.log.Error("persist session failed", zap.Error(err))
	}
	m.set(&sess)
	m.log.Info("signed in", zap.Int("user", sess.UserID()), zap.String("role", sess.Role()))
	return nil
}

// Logout forgets the session in memory and in both stores. Logging out
// while signed out is harmless.
func (m *Manager) Logout(ctx context.Context, store *session.Store) {
	if err := store.Clear(ctx); err != nil {
		m.log.Error("clear session failed", zap.Error(err))
	}
	m.set(nil)
}

// UpdateUser patches the signed-in user's record and replaces the cached
// copy everywhere.
func (m *Manager) UpdateUser(ctx context.Context, store *session.Store, update api.UserUpdate) (api.User, error) {
	token, err := m.Token()
	if err != nil {
		return api.User{}, err
	}
	user, err := m.api.UpdateMe(ctx, token, update)
	if err != nil {
		return api.User{}, &NoticeError{Notice: api.MessageOr(err, updateFailed), Err: err}
	}

	m.mu.Lock()
	if m.sess == nil {
		m.mu.Unlock()
		return api.User{}, ErrNotAuthenticated
	}
	sess := *m.sess
	sess.User = user
	m.sess = &sess
	m.mu.Unlock()

	if err := store.SaveUser(ctx, user); err != nil {
		m.log.Error("persist user failed", zap.Error(err))
	}
	m.notify()
	return user, nil
}
