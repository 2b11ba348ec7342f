// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/bureau-release/lib/clock"
)

// newTestClient creates a Client whose API and upload roots both point
// at server. Uploads are routed under an "/uploads" prefix so tests
// can tell the two hosts apart.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		UploadURL:  server.URL + "/uploads/",
		Token:      "test-token",
		HTTPClient: server.Client(),
		Clock:      clock.Real(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "http api url",
			config:  Config{BaseURL: "http://api.github.com", Token: "t"},
			wantErr: `github: API client requires HTTPS (got "http://api.github.com")`,
		},
		{
			name:    "http upload url",
			config:  Config{UploadURL: "http://uploads.example.com", Token: "t"},
			wantErr: `github: upload client requires HTTPS (got "http://uploads.example.com")`,
		},
		{
			name:    "no token",
			config:  Config{Token: "  "},
			wantErr: "github: no token configured (set GITHUB_TOKEN or the token input)",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewClient(test.config)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != test.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), test.wantErr)
			}
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{Token: "t"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}
	if client.uploadURL != DefaultUploadURL {
		t.Errorf("uploadURL = %q, want %q", client.uploadURL, DefaultUploadURL)
	}
	if client.userAgent != "bureau-release" {
		t.Errorf("userAgent = %q", client.userAgent)
	}
}

func TestClient_Headers(t *testing.T) {
	var auth, accept, version, userAgent string
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		auth = request.Header.Get("Authorization")
		accept = request.Header.Get("Accept")
		version = request.Header.Get("X-GitHub-Api-Version")
		userAgent = request.Header.Get("User-Agent")
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"id":1,"tag_name":"v1.0.0"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.GetRelease(context.Background(), "owner", "repo", 1); err != nil {
		t.Fatalf("GetRelease: %v", err)
	}

	if auth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer test-token")
	}
	if accept != "application/vnd.github+json" {
		t.Errorf("Accept = %q", accept)
	}
	if version != "2022-11-28" {
		t.Errorf("X-GitHub-Api-Version = %q", version)
	}
	if userAgent != "bureau-release" {
		t.Errorf("User-Agent = %q", userAgent)
	}
}

func TestClient_WaitsForRateLimitReset(t *testing.T) {
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	resetTime := fakeClock.Now().Add(30 * time.Second)
	var requestCount atomic.Int32

	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		count := requestCount.Add(1)
		remaining := "0"
		if count > 1 {
			remaining = "4999"
		}
		writer.Header().Set("X-RateLimit-Remaining", remaining)
		writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"id":7,"tag_name":"v1.0.0"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:    server.URL,
		Token:      "test-token",
		HTTPClient: server.Client(),
		Clock:      fakeClock,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	// The first response exhausts the quota.
	if _, err := client.GetRelease(context.Background(), "owner", "repo", 7); err != nil {
		t.Fatalf("first GetRelease: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := client.GetRelease(context.Background(), "owner", "repo", 8)
		done <- err
	}()

	fakeClock.WaitForTimers(1)
	if got := requestCount.Load(); got != 1 {
		t.Fatalf("second request sent before reset (count %d)", got)
	}
	fakeClock.Advance(30 * time.Second)

	if err := <-done; err != nil {
		t.Fatalf("second GetRelease: %v", err)
	}
	if got := requestCount.Load(); got != 2 {
		t.Errorf("request count = %d, want 2", got)
	}
}

func TestClient_RateLimitWaitHonorsContext(t *testing.T) {
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("X-RateLimit-Remaining", "0")
		writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(fakeClock.Now().Add(time.Hour).Unix(), 10))
		writer.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Token: "t", HTTPClient: server.Client(), Clock: fakeClock})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.GetRelease(context.Background(), "owner", "repo", 1); err != nil {
		t.Fatalf("GetRelease: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.GetRelease(ctx, "owner", "repo", 1)
		done <- err
	}()
	fakeClock.WaitForTimers(1)
	cancel()

	if err := <-done; err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClient_RateLimitedResponseIsNotRetried(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestCount.Add(1)
		writer.Header().Set("Retry-After", "30")
		writer.WriteHeader(http.StatusForbidden)
		json.NewEncoder(writer).Encode(map[string]string{"message": "API rate limit exceeded"})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.GetRelease(context.Background(), "owner", "repo", 1)
	if !IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if got := requestCount.Load(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
}

func TestClient_ETagCaching(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestCount.Add(1)
		if request.Header.Get("If-None-Match") == `"etag-123"` {
			writer.WriteHeader(http.StatusNotModified)
			return
		}
		writer.Header().Set("ETag", `"etag-123"`)
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"id":1,"tag_name":"v2.0.0","name":"Cached"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	ctx := context.Background()

	first, err := client.GetRelease(ctx, "owner", "repo", 1)
	if err != nil {
		t.Fatalf("first GetRelease: %v", err)
	}
	second, err := client.GetRelease(ctx, "owner", "repo", 1)
	if err != nil {
		t.Fatalf("second GetRelease: %v", err)
	}
	if first.Name != "Cached" || second.Name != "Cached" {
		t.Errorf("names = %q, %q, want Cached", first.Name, second.Name)
	}
	if got := requestCount.Load(); got != 2 {
		t.Errorf("request count = %d, want 2", got)
	}
}

func TestClient_ErrorParsing(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		json.NewEncoder(writer).Encode(map[string]any{
			"message":           "Not Found",
			"documentation_url": "https://docs.github.com/rest",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.GetRelease(context.Background(), "owner", "repo", 999)
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound, got: %v", err)
	}
	apiError := err.(*APIError)
	if apiError.DocumentationURL != "https://docs.github.com/rest" {
		t.Errorf("DocumentationURL = %q", apiError.DocumentationURL)
	}
}

func TestUploadURLForAPI(t *testing.T) {
	tests := []struct {
		apiURL string
		want   string
	}{
		{"", DefaultUploadURL},
		{"https://api.github.com", DefaultUploadURL},
		{"https://api.github.com/", DefaultUploadURL},
		{"https://ghe.example.com/api/v3", "https://ghe.example.com/api/uploads"},
		{"https://proxy.example.com", "https://proxy.example.com"},
	}
	for _, test := range tests {
		if got := UploadURLForAPI(test.apiURL); got != test.want {
			t.Errorf("UploadURLForAPI(%q) = %q, want %q", test.apiURL, got, test.want)
		}
	}
}
