// Package cloudflare provides a minimal client for the Cloudflare REST v4 API
// used by the Workers AI and Vectorize backends.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Teeticode/LLM-EMB/pkg/utils"
)

const (
	// DefaultBaseURL is the public Cloudflare API endpoint.
	DefaultBaseURL = "https://api.cloudflare.com/client/v4"

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 120 * time.Second

	// maxErrorBody caps how much of a non-JSON error body ends up in an error.
	maxErrorBody = 512
)

// ErrMissingCredentials is returned when the account ID or API token is empty.
var ErrMissingCredentials = errors.New("cloudflare account ID and API token are required")

// Config holds configuration for the Cloudflare client.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// AccountID is the account all requests are scoped to.
	AccountID string

	// APIToken is sent as a bearer token.
	APIToken string

	// HTTPClient overrides the default client. Tests use this to talk to
	// an httptest server.
	HTTPClient *http.Client
}

// Client issues authenticated requests against account-scoped endpoints.
type Client struct {
	baseURL    string
	accountID  string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new Cloudflare API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccountID == "" || cfg.APIToken == "" {
		return nil, ErrMissingCredentials
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		accountID:  cfg.AccountID,
		apiToken:   cfg.APIToken,
		httpClient: httpClient,
	}, nil
}

// AccountPath joins parts onto /accounts/{account_id}. Parts are used as is
// so model names such as "@cf/baai/bge-small-en-v1.5" keep their slashes.
func (c *Client) AccountPath(parts ...string) string {
	return "/accounts/" + c.accountID + "/" + strings.Join(parts, "/")
}

// PostJSON marshals payload, POSTs it to path and decodes the result field
// of the response envelope into result. result may be nil.
func (c *Client) PostJSON(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	return c.Do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body), result)
}

// Do sends a request and unwraps the v4 response envelope. Any non-2xx
// status or an envelope with success=false yields an *APIError.
func (c *Client) Do(ctx context.Context, method, path, contentType string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &APIError{
				StatusCode: resp.StatusCode,
				Errors:     []ResponseInfo{{Message: utils.Truncate(string(raw), maxErrorBody)}},
			}
		}
		return fmt.Errorf("decoding response envelope: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Errors: env.Errors}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
