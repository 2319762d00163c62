package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Login exchanges credentials for tokens and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	in := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login/", "", in, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

// UpdateMe patches the signed-in user's record and returns the new record.
func (c *Client) UpdateMe(ctx context.Context, token string, update UserUpdate) (User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPatch, "/api/users/me/", token, update, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// VerifyEmail confirms an account with the key from the verification email.
func (c *Client) VerifyEmail(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/registration/verify-email/", "", map[string]string{"key": key}, nil)
}

// FormField is one scalar field of a multipart body.
type FormField struct {
	Name  string
	Value string
}

// Register creates an account from the signup form. Fields are sent in
// order; every document is attached under "documents".
func (c *Client) Register(ctx context.Context, fields []FormField, documents []Upload) error {
	body, contentType, err := multipartBody(fields, "documents", documents)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/registration/"), body)
	if err != nil {
		return fmt.Errorf("build registration: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, "", nil)
}

func multipartBody(fields []FormField, fileField string, files []Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(fileField, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if f.Content != nil {
			if _, err := io.Copy(part, f.Content); err != nil {
				return nil, "", err
			}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
