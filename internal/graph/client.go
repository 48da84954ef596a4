package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// HTTPClient interface for testability
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds Graph client configuration.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Scope        string // defaults to https://graph.microsoft.com/.default
	BaseURL      string // defaults to DefaultBaseURL
	Timeout      time.Duration
}

// Client wraps HTTP access to Microsoft Graph. App-only calls draw tokens
// from a client-credentials token source; delegated calls attach the
// caller's own bearer token instead.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	tokens     oauth2.TokenSource
	logger     *zap.Logger
}

// APIError is a non-2xx reply from Graph, carrying the decoded error
// envelope when one was present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" || e.Message != "" {
		return fmt.Sprintf("graph API error: status=%d, code=%s, msg=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("graph API error: status=%d", e.StatusCode)
}

// NewClient creates a new Graph client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	scope := cfg.Scope
	if scope == "" {
		scope = "https://graph.microsoft.com/.default"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{scope},
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     creds.TokenSource(context.Background()),
		logger:     logger,
	}
}

// WithHTTPClient swaps the underlying HTTP client. Used in tests.
func (c *Client) WithHTTPClient(hc HTTPClient) *Client {
	c.httpClient = hc
	return c
}

// WithTokenSource swaps the app token source. Used in tests.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	c.tokens = ts
	return c
}

// appToken returns a bearer token from the client-credentials flow.
func (c *Client) appToken() (string, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("failed to acquire app token: %w", err)
	}
	return tok.AccessToken, nil
}

// doJSON performs a Graph request with an app token, encoding body as JSON
// when non-nil and decoding the reply into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.appToken()
	if err != nil {
		return err
	}
	return c.doJSONWithToken(ctx, method, path, token, body, out)
}

// doJSONWithToken is doJSON with an explicit bearer token, used for
// delegated drive calls made with the caller's own token.
func (c *Client) doJSONWithToken(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

// doRaw sends a request with a raw body and explicit content type, used for
// file uploads.
func (c *Client) doRaw(ctx context.Context, method, path, token, contentType string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if jsonErr := json.Unmarshal(data, &envelope); jsonErr == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		c.logger.Error("Graph API returned failure",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("msg", apiErr.Message))
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
