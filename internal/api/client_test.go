package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second)
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login/", r.URL.Path)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ada@example.com", in["email"])
		_, _ = io.WriteString(w, `{"access":"a1","refresh":"r1","user":{"id":7,"email":"ada@example.com","user_type":"individual","is_staff":false}}`)
	})

	resp, err := c.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a1", resp.Access)
	assert.Equal(t, "r1", resp.Refresh)
	assert.Equal(t, 7, resp.User.ID)
	assert.Equal(t, "individual", resp.User.UserType)
}

func TestLogin_ErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"No active account found with the given credentials"}`)
	})

	_, err := c.Login(context.Background(), "x@y.z", "bad")
	require.Error(t, err)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "No active account found with the given credentials", apiErr.Message())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail wins", `{"detail":"Nope","email":["taken"]}`, "Nope"},
		{"first field in name order", `{"password":["too short"],"email":["taken"]}`, "taken"},
		{"string field", `{"nino":"invalid"}`, "invalid"},
		{"not json", `<html>oops</html>`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusBadRequest, Body: io.NopCloser(strings.NewReader(tt.body))}
			err := parseError(resp)
			assert.Equal(t, tt.want, err.(*Error).Message())
		})
	}
}

func TestMessageOr(t *testing.T) {
	assert.Equal(t, "fallback", MessageOr(errors.New("network down"), "fallback"))
	assert.Equal(t, "fallback", MessageOr(&Error{Status: 500}, "fallback"))
	assert.Equal(t, "Bad key", MessageOr(&Error{Status: 400, Detail: "Bad key"}, "fallback"))
}

func TestRegister_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/registration/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Ada", r.FormValue("first_name"))
		assert.Equal(t, `[]`, r.FormValue("incomeSources"))
		files := r.MultipartForm.File["documents"]
		require.Len(t, files, 2)
		assert.Equal(t, "p60.pdf", files[0].Filename)
		w.WriteHeader(http.StatusCreated)
	})

	err := c.Register(context.Background(),
		[]FormField{{Name: "first_name", Value: "Ada"}, {Name: "incomeSources", Value: "[]"}},
		[]Upload{
			{Filename: "p60.pdf", Content: strings.NewReader("pdf")},
			{Filename: "id.jpg", Content: strings.NewReader("jpg")},
		})
	assert.NoError(t, err)
}

func TestSetRequestPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/services/requests/12/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, 150.5, in["price"])
		assert.Equal(t, "pending_payment", in["status"])
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{}`)
	})

	assert.NoError(t, c.SetRequestPrice(context.Background(), "tok", 12, 150.5))
}

func TestCreateRequestAndUploadDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/services/requests/":
			var in NewServiceRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, StatusDraft, in.Status)
			_, _ = io.WriteString(w, `{"id":31,"service_type":"vat_returns","status":"draft","created_at":"2024-04-01T10:00:00Z"}`)
		case "/api/services/documents/":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "31", r.FormValue("service"))
			assert.Equal(t, "Bank statement", r.FormValue("description"))
			_, _ = io.WriteString(w, `{"id":4,"file":"/media/statement.pdf","description":"Bank statement","uploaded_at":"2024-04-01T10:01:00Z"}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	req, err := c.CreateServiceRequest(context.Background(), "tok", NewServiceRequest{ServiceType: "vat_returns", Status: StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, 31, req.ID)

	doc, err := c.UploadDocument(context.Background(), "tok", req.ID, Upload{
		Filename: "statement.pdf", Description: "Bank statement", Content: strings.NewReader("pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, doc.ID)
}

func TestListCustomers_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.ListCustomers(context.Background(), "tok")
	assert.True(t, IsStatus(err, http.StatusForbidden))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	c := New(srv.URL, 20*time.Millisecond)

	_, err := c.ListPayments(context.Background(), "tok")
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", User{FirstName: "Ada"}.FullName())
	assert.Equal(t, "Lovelace", User{LastName: "Lovelace"}.FullName())
}
