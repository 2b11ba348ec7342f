// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package actions

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bureau-foundation/bureau-release/lib/github"
)

// Trigger describes the event that started the workflow run.
type Trigger struct {
	// EventName is GITHUB_EVENT_NAME ("release", "push", ...).
	EventName string

	// Action is the event payload's "action" field ("created",
	// "published", ...). Empty for events without one.
	Action string

	// Owner and Repo identify the repository the workflow runs in.
	Owner string
	Repo  string

	// Release is the payload's release record, nil when absent.
	Release *github.Release

	// APIURL is GITHUB_API_URL, the REST root for this GitHub
	// instance.
	APIURL string
}

// Trigger loads the event context from GITHUB_EVENT_NAME,
// GITHUB_EVENT_PATH, and GITHUB_REPOSITORY.
func (runtime *Runtime) Trigger() (Trigger, error) {
	context, err := runtime.action.Context()
	if err != nil {
		return Trigger{}, fmt.Errorf("loading GitHub Actions event context: %w", err)
	}

	trigger := Trigger{
		EventName: context.EventName,
		APIURL:    context.APIURL,
	}
	trigger.Owner, trigger.Repo = context.Repo()

	if action, ok := context.Event["action"].(string); ok {
		trigger.Action = action
	}

	if raw, ok := context.Event["release"]; ok && raw != nil {
		release, err := decodeRelease(raw)
		if err != nil {
			return Trigger{}, err
		}
		trigger.Release = release
	}

	if trigger.Owner == "" || trigger.Repo == "" {
		trigger.Owner, trigger.Repo = repositoryFromEvent(context.Event)
	}
	return trigger, nil
}

// decodeRelease converts the generically decoded payload back into a
// typed release.
func decodeRelease(raw any) (*github.Release, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding release payload: %w", err)
	}
	var release github.Release
	if err := json.Unmarshal(data, &release); err != nil {
		return nil, fmt.Errorf("decoding release payload: %w", err)
	}
	return &release, nil
}

func repositoryFromEvent(event map[string]any) (string, string) {
	repository, ok := event["repository"].(map[string]any)
	if !ok {
		return "", ""
	}
	fullName, _ := repository["full_name"].(string)
	owner, repo, found := strings.Cut(fullName, "/")
	if !found {
		return "", ""
	}
	return owner, repo
}

// ShouldRun reports whether the trigger is a newly created release.
// GitHub sends "created" when a draft is saved and when a release is
// published without a prior draft. The reason explains a false
// result.
func (trigger Trigger) ShouldRun() (bool, string) {
	switch {
	case trigger.EventName != "release":
		return false, fmt.Sprintf("event %q is not a release event", trigger.EventName)
	case trigger.Action != "created":
		return false, fmt.Sprintf("release action %q is not \"created\"", trigger.Action)
	case trigger.Release == nil:
		return false, "event payload has no release record"
	default:
		return true, ""
	}
}
