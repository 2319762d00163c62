package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListCustomers returns every client account. Staff only.
func (c *Client) ListCustomers(ctx context.Context, token string) ([]Customer, error) {
	var out []Customer
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCustomer removes a client account. Staff only.
func (c *Client) DeleteCustomer(ctx context.Context, token string, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/", id), token, nil, nil)
}
