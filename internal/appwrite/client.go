// Package appwrite is a thin REST client for the Appwrite backend-as-a-service:
// account/session management, bucket storage and database documents.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to one Appwrite project. Requests made with a session secret
// act as that user; requests without one use the API key.
type Client struct {
	endpoint   string
	projectID  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint (e.g. https://cloud.appwrite.io/v1).
func NewClient(endpoint, projectID, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:  endpoint,
		projectID: projectID,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the configured API endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ProjectID returns the configured project id.
func (c *Client) ProjectID() string {
	return c.projectID
}

// Error is the error body Appwrite returns on non-2xx responses.
type Error struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("appwrite: %s (%d %s)", e.Message, e.Code, e.Type)
	}
	return fmt.Sprintf("appwrite: %s (%d)", e.Message, e.Code)
}

// IsUnauthorized reports whether the error means the session is missing or invalid.
func (e *Error) IsUnauthorized() bool {
	return e.Code == http.StatusUnauthorized
}

// request describes a single API call.
type request struct {
	method      string
	path        string
	query       url.Values
	session     string
	body        io.Reader
	contentType string
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	u := c.endpoint + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req, r.session)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	return req, nil
}

func (c *Client) authorize(req *http.Request, session string) {
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Response-Format", "1.5.0")
	if session != "" {
		req.Header.Set("X-Appwrite-Session", session)
	} else if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}
}

// do executes the call and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling appwrite %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding appwrite response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path, session string, payload, out interface{}) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, request{
		method:      method,
		path:        path,
		session:     session,
		body:        body,
		contentType: contentType,
	}, out)
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &Error{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	if apiErr.Code == 0 {
		apiErr.Code = resp.StatusCode
	}
	return apiErr
}
