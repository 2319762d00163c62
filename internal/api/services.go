package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// ListServiceRequests returns the requests visible to the token's user: their
// own, or every request for staff.
func (c *Client) ListServiceRequests(ctx context.Context, token string) ([]ServiceRequest, error) {
	var out []ServiceRequest
	if err := c.doJSON(ctx, http.MethodGet, "/api/services/requests/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateServiceRequest opens a request.
func (c *Client) CreateServiceRequest(ctx context.Context, token string, in NewServiceRequest) (ServiceRequest, error) {
	var out ServiceRequest
	if err := c.doJSON(ctx, http.MethodPost, "/api/services/requests/", token, in, &out); err != nil {
		return ServiceRequest{}, err
	}
	return out, nil
}

// SetRequestPrice prices a request, which moves it to pending payment.
func (c *Client) SetRequestPrice(ctx context.Context, token string, id int, price float64) error {
	in := map[string]any{"price": price, "status": StatusPendingPayment}
	return c.doJSON(ctx, http.MethodPatch, requestPath(id), token, in, nil)
}

// SetRequestStatus moves a request to status.
func (c *Client) SetRequestStatus(ctx context.Context, token string, id int, status string) error {
	return c.doJSON(ctx, http.MethodPatch, requestPath(id), token, map[string]string{"status": status}, nil)
}

// DeleteServiceRequest removes a request.
func (c *Client) DeleteServiceRequest(ctx context.Context, token string, id int) error {
	return c.doJSON(ctx, http.MethodDelete, requestPath(id), token, nil, nil)
}

func requestPath(id int) string {
	return fmt.Sprintf("/api/services/requests/%d/", id)
}

// UploadDocument stores a file against the request with the given id.
func (c *Client) UploadDocument(ctx context.Context, token string, requestID int, up Upload) (Document, error) {
	fields := []FormField{
		{Name: "description", Value: up.Description},
		{Name: "service", Value: strconv.Itoa(requestID)},
	}
	body, contentType, err := multipartBody(fields, "file", []Upload{up})
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/services/documents/"), body)
	if err != nil {
		return Document{}, fmt.Errorf("build document upload: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	var out Document
	if err := c.do(req, token, &out); err != nil {
		return Document{}, err
	}
	return out, nil
}

// ListDocuments returns the documents the token's user can see.
func (c *Client) ListDocuments(ctx context.Context, token string) ([]Document, error) {
	var out []Document
	if err := c.doJSON(ctx, http.MethodGet, "/api/services/documents/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAppointments returns the appointments visible to the token's user.
func (c *Client) ListAppointments(ctx context.Context, token string) ([]Appointment, error) {
	var out []Appointment
	if err := c.doJSON(ctx, http.MethodGet, "/api/services/appointments/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAppointmentStatus confirms or cancels an appointment.
func (c *Client) SetAppointmentStatus(ctx context.Context, token string, id int, status string) error {
	path := fmt.Sprintf("/api/services/appointments/%d/", id)
	return c.doJSON(ctx, http.MethodPatch, path, token, map[string]string{"status": status}, nil)
}

// ListPayments returns the token's user's payments.
func (c *Client) ListPayments(ctx context.Context, token string) ([]Payment, error) {
	var out []Payment
	if err := c.doJSON(ctx, http.MethodGet, "/api/services/payments/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
