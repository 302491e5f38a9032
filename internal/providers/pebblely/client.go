package pebblely

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

	"pebblely/internal/domain"
	"pebblely/internal/infra"
)

// DefaultBaseURL is the public Pebblely API endpoint.
const DefaultBaseURL = "https://api.pebblely.com"

// AccessTokenHeader carries the API key on every request.
const AccessTokenHeader = "X-Pebblely-Access-Token"

const (
	creditsEndpoint          = "/credits/v1"
	upscaleEndpoint          = "/upscale/v1"
	removeBackgroundEndpoint = "/remove-background/v1"
	createBackgroundEndpoint = "/create-background/v2"
	inpaintEndpoint          = "/inpaint/v1"
	outpaintEndpoint         = "/outpaint/v1"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("pebblely: api key is required")

// Error reports a failed vendor call. It matches domain.ErrVendor.
type Error struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("Pebblely API error - ")
	b.WriteString(e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrVendor}
	}
	return []error{domain.ErrVendor, e.Err}
}

// Options configures the Pebblely client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Pebblely image API. Each method issues a
// single request; nothing is retried.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a client with defaults for anything left unset.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Credits returns the remaining credit balance of the configured account.
func (c *Client) Credits(ctx context.Context) (int, error) {
	resp, err := c.do(ctx, "Credits", http.MethodGet, creditsEndpoint, nil)
	if err != nil {
		return 0, err
	}
	return resp.Credits, nil
}

func (c *Client) Upscale(ctx context.Context, req UpscaleRequest) (*Response, error) {
	return c.process(ctx, "Upscale", upscaleEndpoint, req)
}

func (c *Client) RemoveBackground(ctx context.Context, req ImageRequest) (*Response, error) {
	return c.process(ctx, "Remove Background", removeBackgroundEndpoint, req)
}

func (c *Client) CreateBackground(ctx context.Context, req CreateBackgroundRequest) (*Response, error) {
	return c.process(ctx, "Create Background", createBackgroundEndpoint, req)
}

func (c *Client) Inpaint(ctx context.Context, req InpaintRequest) (*Response, error) {
	return c.process(ctx, "Inpaint", inpaintEndpoint, req)
}

func (c *Client) Outpaint(ctx context.Context, req OutpaintRequest) (*Response, error) {
	return c.process(ctx, "Outpaint", outpaintEndpoint, req)
}

// process posts payload and requires an image in the reply.
func (c *Client) process(ctx context.Context, op, endpoint string, payload any) (*Response, error) {
	resp, err := c.do(ctx, op, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Data) == "" {
		return nil, c.fail(&Error{Operation: op, Message: "response carried no image data"})
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload any) (*Response, error) {
	if !c.HasCredentials() {
		return nil, c.fail(&Error{Operation: op, Err: ErrMissingAPIKey})
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, c.fail(&Error{Operation: op, Message: "encode request", Err: err})
		}
		body = bytes.NewReader(raw)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, c.fail(&Error{Operation: op, Message: "build request", Err: err})
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(AccessTokenHeader, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.fail(&Error{Operation: op, Message: "http request", Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&Error{Operation: op, StatusCode: resp.StatusCode, Message: "read response", Err: err})
	}

	if resp.StatusCode >= 300 {
		var detail errorResponse
		msg := strings.TrimSpace(string(raw))
		if err := json.Unmarshal(raw, &detail); err == nil && detail.text() != "" {
			msg = detail.text()
		}
		return nil, c.fail(&Error{Operation: op, StatusCode: resp.StatusCode, Message: msg})
	}

	var decoded Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, c.fail(&Error{Operation: op, StatusCode: resp.StatusCode, Message: "decode response", Err: err})
	}
	c.logger.Debug().
		Str("operation", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("pebblely: call completed")
	return &decoded, nil
}

func (c *Client) fail(e *Error) error {
	c.logger.Error().
		Str("operation", e.Operation).
		Int("status", e.StatusCode).
		Err(e).
		Msg("pebblely: call failed")
	return e
}
