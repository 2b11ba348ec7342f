// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetReleaseByTag_EscapesTag(t *testing.T) {
	var gotPath string
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotPath = request.URL.EscapedPath()
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"id":42,"tag_name":"tools/v1.2.0","name":"Tools 1.2.0"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	release, err := client.GetReleaseByTag(context.Background(), "owner", "repo", "tools/v1.2.0")
	if err != nil {
		t.Fatalf("GetReleaseByTag: %v", err)
	}
	if want := "/repos/owner/repo/releases/tags/tools%2Fv1.2.0"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if release.ID != 42 || release.Name != "Tools 1.2.0" {
		t.Errorf("release = %+v", release)
	}
}

func TestGetReleaseByTag_EmptyTag(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.GetReleaseByTag(context.Background(), "owner", "repo", ""); err == nil {
		t.Fatal("expected error for empty tag")
	}
}

func TestListReleaseAssets_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/repos/owner/repo/releases/5/assets" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		switch request.URL.Query().Get("page") {
		case "":
			if request.URL.Query().Get("per_page") != "100" {
				t.Errorf("per_page = %q, want 100", request.URL.Query().Get("per_page"))
			}
			next := fmt.Sprintf("%s/repos/owner/repo/releases/5/assets?per_page=100&page=2", server.URL)
			writer.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next", <%s>; rel="last"`, next, next))
			writer.Write([]byte(`[{"id":1,"name":"tool.zip"},{"id":2,"name":"tool.zip.sha256"}]`))
		case "2":
			writer.Write([]byte(`[{"id":3,"name":"tool.tar.gz"}]`))
		default:
			t.Errorf("unexpected page %q", request.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	assets, err := client.ListReleaseAssets(context.Background(), "owner", "repo", 5)
	if err != nil {
		t.Fatalf("ListReleaseAssets: %v", err)
	}
	var names []string
	for _, asset := range assets {
		names = append(names, asset.Name)
	}
	want := []string{"tool.zip", "tool.zip.sha256", "tool.tar.gz"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestUploadReleaseAsset(t *testing.T) {
	var gotPath, gotName, gotContentType, gotBody string
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", request.Method)
		}
		gotPath = request.URL.Path
		gotName = request.URL.Query().Get("name")
		gotContentType = request.Header.Get("Content-Type")
		body, _ := io.ReadAll(request.Body)
		gotBody = string(body)

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusCreated)
		json.NewEncoder(writer).Encode(map[string]any{
			"id":                   99,
			"name":                 gotName,
			"size":                 len(body),
			"state":                "uploaded",
			"browser_download_url": "https://github.com/owner/repo/releases/download/v1/" + gotName,
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	asset, err := client.UploadReleaseAsset(context.Background(), "owner", "repo", 7, "tool v1+x86_64.tar.gz", "application/octet-stream", []byte("archive bytes"))
	if err != nil {
		t.Fatalf("UploadReleaseAsset: %v", err)
	}

	if gotPath != "/uploads/repos/owner/repo/releases/7/assets" {
		t.Errorf("path = %q, want the upload host path", gotPath)
	}
	if gotName != "tool v1+x86_64.tar.gz" {
		t.Errorf("name query = %q", gotName)
	}
	if gotContentType != "application/octet-stream" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody != "archive bytes" {
		t.Errorf("body = %q", gotBody)
	}
	if asset.ID != 99 || asset.Size != int64(len("archive bytes")) || asset.State != "uploaded" {
		t.Errorf("asset = %+v", asset)
	}
}

func TestUploadReleaseAsset_DefaultContentType(t *testing.T) {
	var gotContentType string
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotContentType = request.Header.Get("Content-Type")
		writer.WriteHeader(http.StatusCreated)
		writer.Write([]byte(`{"id":1,"name":"tool"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.UploadReleaseAsset(context.Background(), "owner", "repo", 1, "tool", "", nil); err != nil {
		t.Fatalf("UploadReleaseAsset: %v", err)
	}
	if gotContentType != "application/octet-stream" {
		t.Errorf("Content-Type = %q, want application/octet-stream", gotContentType)
	}
}

func TestUploadReleaseAsset_AlreadyExists(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(writer).Encode(map[string]any{
			"message": "Validation Failed",
			"errors": []map[string]string{
				{"resource": "ReleaseAsset", "code": "already_exists", "field": "name"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.UploadReleaseAsset(context.Background(), "owner", "repo", 1, "tool.zip", "application/octet-stream", []byte("x"))
	if !IsAlreadyExists(err) {
		t.Fatalf("expected IsAlreadyExists, got %v", err)
	}
}

func TestUploadReleaseAsset_EmptyName(t *testing.T) {
	client, err := NewClient(Config{Token: "t"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.UploadReleaseAsset(context.Background(), "owner", "repo", 1, "", "", []byte("x")); err == nil {
		t.Fatal("expected error for empty asset name")
	}
}

func TestParseLinkNext(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"empty header", "", ""},
		{
			"next and last",
			`<https://api.github.com/repositories/1/releases/5/assets?page=2>; rel="next", <https://api.github.com/repositories/1/releases/5/assets?page=4>; rel="last"`,
			"https://api.github.com/repositories/1/releases/5/assets?page=2",
		},
		{
			"prev and first only",
			`<https://api.github.com/repositories/1/releases/5/assets?page=1>; rel="prev", <https://api.github.com/repositories/1/releases/5/assets?page=1>; rel="first"`,
			"",
		},
		{"malformed part", `https://example.com; rel="next"`, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := parseLinkNext(test.header); got != test.expected {
				t.Errorf("got %q, want %q", got, test.expected)
			}
		})
	}
}
