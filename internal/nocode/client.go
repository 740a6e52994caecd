// Package nocode is the client for the hosted no-code data service that
// owns all authoritative state. Every call carries the instance identifier
// and the bearer credential; every response is classified into the shared
// error taxonomy (429 to rate limit, 401/403 to auth, any other non-2xx to
// api, transport/parse failures to network). Nothing here retries.
package nocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/recorre/indie-comments-cloud/internal/types"
)

// Client talks to one instance of the upstream data service.
type Client struct {
	baseURL  string
	instance string
	apiKey   string
	hc       *http.Client
}

// New constructs a Client. The timeout applies to every outbound call;
// there is no per-call cancellation beyond the caller's context.
func New(baseURL, instance, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		instance: instance,
		apiKey:   apiKey,
		hc:       &http.Client{Timeout: timeout},
	}
}

// envelope is the upstream response shape shared by every verb.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	ID     types.FlexUint64 `json:"id"`
	Total  int              `json:"total"`
}

// Read fetches records from a resource into out (a pointer to a slice),
// returning the total match count when includeTotal was requested.
func (c *Client) Read(ctx context.Context, resource string, q *Query, out any) (int, error) {
	env, err := c.do(ctx, http.MethodGet, "/read/"+resource, q.Values(), nil)
	if err != nil {
		return 0, err
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return 0, types.NetworkError(fmt.Errorf("decoding %s data: %w", resource, err))
		}
	}
	return env.Total, nil
}

// Create inserts a record and returns its new id.
func (c *Client) Create(ctx context.Context, resource string, payload any) (uint64, error) {
	env, err := c.do(ctx, http.MethodPost, "/create/"+resource, nil, payload)
	if err != nil {
		return 0, err
	}
	return env.ID.Uint64(), nil
}

// Update applies a partial update to one record.
func (c *Client) Update(ctx context.Context, resource string, id uint64, payload any) error {
	path := "/update/" + resource + "/" + strconv.FormatUint(id, 10)
	_, err := c.do(ctx, http.MethodPut, path, nil, payload)
	return err
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, resource string, id uint64) error {
	path := "/delete/" + resource + "/" + strconv.FormatUint(id, 10)
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (*envelope, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, types.NetworkError(fmt.Errorf("encoding payload: %w", err))
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, types.NetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Instance", c.instance)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, types.NetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NetworkError(err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, types.RateLimitError()
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, types.AuthError("Invalid upstream credentials.")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, types.APIError(resp.StatusCode, string(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, types.NetworkError(fmt.Errorf("decoding response: %w", err))
	}
	return &env, nil
}
