package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/savanna-accountancy/portal/internal/api"
	"github.com/savanna-accountancy/portal/internal/session"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	loginResp  api.LoginResponse
	loginErr   error
	updateResp api.User
	updateErr  error

	loginCalls  int
	updateToken string
	lastUpdate  api.UserUpdate
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (api.LoginResponse, error) {
	f.loginCalls++
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) UpdateMe(_ context.Context, token string, update api.UserUpdate) (api.User, error) {
	f.updateToken = token
	f.lastUpdate = update
	return f.updateResp, f.updateErr
}

func signedToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func loginResponse(t *testing.T, staff bool) api.LoginResponse {
	return api.LoginResponse{
		Access:  signedToken(t),
		Refresh: "refresh",
		User:    api.User{ID: 1, Email: "ada@example.com", UserType: session.RoleIndividual, IsStaff: staff},
	}
}

type testStores struct {
	mem    *session.Memory
	sealer *session.Sealer
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()
	sealer, err := session.NewSealer(nil)
	require.NoError(t, err)
	return &testStores{mem: session.NewMemory(), sealer: sealer}
}

// store returns a store for one request of the browser clientID.
func (s *testStores) store(clientID string, w http.ResponseWriter, r *http.Request) *session.Store {
	if r == nil {
		r = httptest.NewRequest(http.MethodGet, "/", nil)
	}
	return session.NewStore(session.Scope(s.mem, clientID), session.NewCookieStorage(w, r, s.sealer, false))
}
