package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status int
	// Detail is the server's "detail" message, when present.
	Detail string
	// Fields holds per-field validation messages keyed by field name.
	Fields map[string][]string
}

func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Message returns the message to show users: the detail, else the first
// field message in field name order, else "".
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if msgs := e.Fields[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// MessageOr returns the user facing message carried by err when it is an
// *Error with one, else fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func parseError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	for key, val := range body {
		if key == "detail" {
			_ = json.Unmarshal(val, &apiErr.Detail)
			continue
		}
		if msgs := fieldMessages(val); len(msgs) > 0 {
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[key] = msgs
		}
	}
	return apiErr
}

// fieldMessages accepts both ["msg", ...] and "msg".
func fieldMessages(val json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(val, &list); err == nil {
		return list
	}
	var one string
	if err := json.Unmarshal(val, &one); err == nil && strings.TrimSpace(one) != "" {
		return []string{one}
	}
	return nil
}
