// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response helpers for the
// GitHub REST client.
//
// Response bodies from api.github.com and uploads.github.com are small
// JSON documents. Every read is capped so a misbehaving proxy or
// server cannot exhaust memory; error bodies are additionally
// truncated so they stay readable in a log line.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds JSON API response body reads: 32 MB.
const MaxResponseSize int64 = 32 << 20

// MaxErrorBodySize bounds the portion of an error response body kept
// for diagnostics.
const MaxErrorBodySize = 4 << 10

// ReadResponse reads an API response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON response body (up to MaxResponseSize
// bytes) and decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody reads an HTTP error response body for use in an error
// message. Read errors are ignored since a partial body is still
// useful. Bodies longer than MaxErrorBodySize are cut with a trailing
// marker.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBodySize+1))
	text := strings.TrimSpace(string(data))
	if len(text) > MaxErrorBodySize {
		text = text[:MaxErrorBodySize] + "...(truncated)"
	}
	return text
}
