// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bureau-foundation/bureau-release/lib/clock"
	"github.com/bureau-foundation/bureau-release/lib/netutil"
)

// githubAPIVersion pins the REST API version header.
const githubAPIVersion = "2022-11-28"

const (
	// DefaultBaseURL is the public GitHub API root.
	DefaultBaseURL = "https://api.github.com"

	// DefaultUploadURL is the public GitHub release asset upload root.
	DefaultUploadURL = "https://uploads.github.com"
)

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to
	// DefaultBaseURL. Must use HTTPS.
	BaseURL string

	// UploadURL is the root URL for release asset uploads. Defaults to
	// DefaultUploadURL. Must use HTTPS.
	UploadURL string

	// Token is sent as a bearer token on every request. Required.
	Token string

	// UserAgent overrides the User-Agent header. Defaults to
	// "bureau-release".
	UserAgent string

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time operations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a typed GitHub REST API client for release operations.
type Client struct {
	baseURL       string
	uploadURL     string
	authorization string
	userAgent     string
	httpClient    *http.Client
	rateLimit     *rateLimitTracker
	etagCache     *etagCache
	clock         clock.Clock
	logger        *slog.Logger
}

// NewClient creates a GitHub API client from the given configuration.
func NewClient(config Config) (*Client, error) {
	baseURL, err := requireHTTPS("API", config.BaseURL, DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	uploadURL, err := requireHTTPS("upload", config.UploadURL, DefaultUploadURL)
	if err != nil {
		return nil, err
	}

	token := strings.TrimSpace(config.Token)
	if token == "" {
		return nil, fmt.Errorf("github: no token configured (set GITHUB_TOKEN or the token input)")
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "bureau-release"
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:       baseURL,
		uploadURL:     uploadURL,
		authorization: "Bearer " + token,
		userAgent:     userAgent,
		httpClient:    httpClient,
		rateLimit:     newRateLimitTracker(clk),
		etagCache:     newETagCache(),
		clock:         clk,
		logger:        logger,
	}, nil
}

// UploadURLForAPI derives the upload root from an API root. The
// public API maps to DefaultUploadURL; a GitHub Enterprise Server root
// (https://host/api/v3) maps to https://host/api/uploads. Unrecognized
// roots are returned unchanged.
func UploadURLForAPI(apiURL string) string {
	apiURL = strings.TrimRight(apiURL, "/")
	switch {
	case apiURL == "" || apiURL == DefaultBaseURL:
		return DefaultUploadURL
	case strings.HasSuffix(apiURL, "/api/v3"):
		return strings.TrimSuffix(apiURL, "/v3") + "/uploads"
	default:
		return apiURL
	}
}

func requireHTTPS(kind, raw, fallback string) (string, error) {
	if raw == "" {
		raw = fallback
	}
	raw = strings.TrimRight(raw, "/")
	if !strings.HasPrefix(raw, "https://") {
		return "", fmt.Errorf("github: %s client requires HTTPS (got %q)", kind, raw)
	}
	return raw, nil
}

// apiRequest describes one HTTP exchange. url is absolute.
type apiRequest struct {
	method      string
	url         string
	body        io.Reader
	contentType string
}

// send executes an authenticated request after honoring a known
// rate-limit exhaustion. The caller closes the response body.
func (client *Client) send(ctx context.Context, request apiRequest) (*http.Response, error) {
	if delay := client.rateLimit.delay(); delay > 0 {
		client.logger.Info("github rate limit exhausted, waiting for reset",
			"delay", delay,
			"method", request.method,
			"url", request.url,
		)
		select {
		case <-client.clock.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.method, request.url, request.body)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}
	httpRequest.Header.Set("Authorization", client.authorization)
	httpRequest.Header.Set("Accept", "application/vnd.github+json")
	httpRequest.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	httpRequest.Header.Set("User-Agent", client.userAgent)
	if request.contentType != "" {
		httpRequest.Header.Set("Content-Type", request.contentType)
	}
	if request.method == http.MethodGet {
		if etag := client.etagCache.get(request.url); etag != "" {
			httpRequest.Header.Set("If-None-Match", etag)
		}
	}

	response, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("github: %s %s: %w", request.method, request.url, err)
	}
	client.rateLimit.update(response.Header)

	client.logger.Debug("github request",
		"method", request.method,
		"url", request.url,
		"status", response.StatusCode,
	)
	return response, nil
}

// do executes request and returns the response body. Non-2xx
// responses become *APIError. A 304 on a GET is answered from the
// ETag cache.
func (client *Client) do(ctx context.Context, request apiRequest) ([]byte, http.Header, error) {
	response, err := client.send(ctx, request)
	if err != nil {
		return nil, nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotModified {
		if cached := client.etagCache.body(request.url); cached != nil {
			return cached, response.Header, nil
		}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, nil, parseAPIError(response.StatusCode, netutil.ErrorBody(response.Body))
	}

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("github: reading response body: %w", err)
	}

	if request.method == http.MethodGet {
		client.etagCache.put(request.url, response.Header.Get("ETag"), body)
	}
	return body, response.Header, nil
}

// get fetches an API path relative to the base URL and decodes the
// JSON response into result.
func (client *Client) get(ctx context.Context, path string, result any) error {
	body, _, err := client.do(ctx, apiRequest{method: http.MethodGet, url: client.baseURL + path})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("github: decoding %s: %w", path, err)
	}
	return nil
}

// parseAPIError builds an *APIError from a status code and the
// (possibly truncated) response body.
func parseAPIError(statusCode int, body string) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wireError struct {
		Message          string            `json:"message"`
		DocumentationURL string            `json:"documentation_url"`
		Errors           []ValidationError `json:"errors"`
	}
	if json.Unmarshal([]byte(body), &wireError) == nil && wireError.Message != "" {
		apiError.Message = wireError.Message
		apiError.DocumentationURL = wireError.DocumentationURL
		apiError.Errors = wireError.Errors
	} else {
		apiError.Message = body
	}
	if apiError.Message == "" {
		apiError.Message = http.StatusText(statusCode)
	}
	return apiError
}
