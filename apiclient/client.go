// Package apiclient calls the enrichment endpoint over HTTP.
//
// Requests are JSON, accept a context for cancellation, and never retry.
// Non-2xx statuses come back as *StatusError carrying the status and the
// error text from the response body.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"seo_enricher/dataset"
)

// GeneratePath is the endpoint route.
const GeneratePath = "/api/generate-seo"

type Client struct {
	Base string
	HTTP *http.Client
}

// New returns a client for base. No timeout is set; a request is bounded
// only by its context.
func New(base string) *Client {
	return &Client{
		Base: strings.TrimSuffix(base, "/"),
		HTTP: &http.Client{},
	}
}

// StatusError is a non-2xx reply.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s", GeneratePath, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s", GeneratePath, e.Status)
}

type generateReq struct {
	Rows []dataset.Row `json:"rows"`
}

type errorResp struct {
	Error string `json:"error"`
}

// Enrich posts rows and returns the domain → description mapping.
func (c *Client) Enrich(ctx context.Context, rows []dataset.Row) (map[string]string, error) {
	if rows == nil {
		rows = []dataset.Row{}
	}
	body, err := json.Marshal(generateReq{Rows: rows})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+GeneratePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResp
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Message: e.Error}
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", GeneratePath, err)
	}
	if out == nil {
		return nil, errors.New("endpoint returned null mapping")
	}
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}
