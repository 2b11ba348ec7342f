// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GetRelease fetches a release by numeric ID.
func (client *Client) GetRelease(ctx context.Context, owner, repo string, releaseID int64) (*Release, error) {
	var release Release
	path := fmt.Sprintf("/repos/%s/releases/%d", repoPath(owner, repo), releaseID)
	if err := client.get(ctx, path, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// GetReleaseByTag fetches the published release for a tag. Draft
// releases are not visible to this endpoint.
func (client *Client) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	if tag == "" {
		return nil, fmt.Errorf("github: release tag is required")
	}
	var release Release
	path := fmt.Sprintf("/repos/%s/releases/tags/%s", repoPath(owner, repo), url.PathEscape(tag))
	if err := client.get(ctx, path, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// ListReleaseAssets returns every asset attached to a release,
// following Link rel="next" pagination.
func (client *Client) ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]ReleaseAsset, error) {
	next := fmt.Sprintf("%s/repos/%s/releases/%d/assets?per_page=100", client.baseURL, repoPath(owner, repo), releaseID)

	var assets []ReleaseAsset
	for next != "" {
		body, header, err := client.do(ctx, apiRequest{method: http.MethodGet, url: next})
		if err != nil {
			return assets, err
		}
		var page []ReleaseAsset
		if err := json.Unmarshal(body, &page); err != nil {
			return assets, fmt.Errorf("github: decoding release assets: %w", err)
		}
		assets = append(assets, page...)
		next = parseLinkNext(header.Get("Link"))
	}
	return assets, nil
}

// UploadReleaseAsset attaches data to a release under name. The body
// is sent as-is to the upload host with the given content type. A
// name collision with an existing asset is returned as an *APIError
// for which IsAlreadyExists reports true.
func (client *Client) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, name, contentType string, data []byte) (*ReleaseAsset, error) {
	if name == "" {
		return nil, fmt.Errorf("github: asset name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	query := url.Values{"name": {name}}
	target := fmt.Sprintf("%s/repos/%s/releases/%d/assets?%s", client.uploadURL, repoPath(owner, repo), releaseID, query.Encode())

	body, _, err := client.do(ctx, apiRequest{
		method:      http.MethodPost,
		url:         target,
		body:        bytes.NewReader(data),
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	var asset ReleaseAsset
	if err := json.Unmarshal(body, &asset); err != nil {
		return nil, fmt.Errorf("github: decoding uploaded asset %q: %w", name, err)
	}
	client.logger.Info("uploaded release asset",
		"name", asset.Name,
		"size", asset.Size,
		"url", asset.BrowserDownloadURL,
	)
	return &asset, nil
}

func repoPath(owner, repo string) string {
	return url.PathEscape(owner) + "/" + url.PathEscape(repo)
}

// parseLinkNext extracts the rel="next" URL from an RFC 8288 Link
// header, or returns "" when there is none.
func parseLinkNext(header string) string {
	for _, part := range strings.Split(header, ",") {
		target, params, found := strings.Cut(strings.TrimSpace(part), ";")
		if !found || !strings.Contains(params, `rel="next"`) {
			continue
		}
		target = strings.TrimSpace(target)
		if strings.HasPrefix(target, "<") && strings.HasSuffix(target, ">") {
			return target[1 : len(target)-1]
		}
	}
	return ""
}
