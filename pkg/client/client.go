package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"shareit/pkg/models"
)

const (
	// DefaultServerURL is used when neither --server nor ServerEnv is set.
	DefaultServerURL = "http://localhost:5000"
	// ServerEnv names the environment variable holding the server base URL.
	ServerEnv = "SHAREIT_SERVER"

	uploadPath   = "/api/files/upload"
	staticPrefix = "/uploads/"
	statusPath   = "/api/status"
	fileInfoPath = "/api/files/"

	defaultRetryMax     = 3
	defaultRetryWaitMin = 100 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second

	// Error bodies larger than this are not worth showing to a user.
	maxErrorBody = 4096
)

// Client talks to a ShareIt server. Uploads go through a plain http.Client and
// are never retried; idempotent GETs go through a retrying client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryClient *retryablehttp.Client
}

type Option func(*Client)

// WithHTTPClient replaces the transport used for every request.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
		c.retryClient.HTTPClient = httpClient
	}
}

// WithRetry tunes retries of GET requests on connection errors.
func WithRetry(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		httpClient := c.retryClient.HTTPClient
		c.retryClient = CreateRetryableClient(retryMax, retryWaitMin, retryWaitMax)
		c.retryClient.HTTPClient = httpClient
	}
}

func New(baseURL string, opts ...Option) *Client {
	httpClient := &http.Client{}
	retryClient := CreateRetryableClient(defaultRetryMax, defaultRetryWaitMin, defaultRetryWaitMax)
	retryClient.HTTPClient = httpClient

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		retryClient: retryClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateRetryableClient creates a retryable HTTP client for read-only requests.
func CreateRetryableClient(retryMax int, retryWaitMin, retryWaitMax time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	client.CheckRetry = retryOnConnectionError
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// retryOnConnectionError retries only when no response arrived, so server
// replies such as 404 reach the caller unchanged.
func retryOnConnectionError(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil {
		return false, nil
	}
	return err != nil, nil
}

// get performs a retried GET and returns the response when it is 2xx.
// The caller owns the body.
func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.retryClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		return nil, readServerError(resp)
	}
	return resp, nil
}

// getJSON performs a retried GET and unmarshals the JSON response into result.
func (c *Client) getJSON(ctx context.Context, target string, result interface{}) error {
	resp, err := c.get(ctx, target)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// readServerError turns a non-2xx reply into a *ServerError, preferring the
// JSON error message and falling back to the raw body.
func readServerError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil && !errors.Is(err, io.EOF) {
		return &ServerError{Status: resp.StatusCode}
	}

	var reply models.ErrorResponse
	if json.Unmarshal(body, &reply) == nil && reply.Error != "" {
		return &ServerError{Status: resp.StatusCode, Message: reply.Error}
	}
	return &ServerError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
