// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"errors"
	"slices"
	"testing"
)

func testNameContext() NameContext {
	return NameContext{
		Repository: Repository{Owner: "acme", Name: "widgets"},
		Release:    Release{ID: 4242, TagName: "v1.2.3", Name: "Widgets {beta}"},
		Target:     BinaryTarget{Name: "widget", Package: "widget-cli"},
		Triple:     "x86_64-unknown-linux-gnu",
		Profile:    "release",
	}
}

func TestName_Precedence(t *testing.T) {
	t.Parallel()

	archive := Asset{Path: "/t/widget.tar.gz", Extension: ".tar.gz"}
	tests := []struct {
		name    string
		asset   Asset
		options NamingOptions
		want    string
	}{
		{
			name:    "explicit wins over template",
			asset:   archive,
			options: NamingOptions{Explicit: "widget-linux", Template: "{binary.name}-{target}{extension}"},
			want:    "widget-linux.tar.gz",
		},
		{
			name:    "template",
			asset:   archive,
			options: NamingOptions{Template: "{binary.name}-{release.tag_name}-{target}{extension}"},
			want:    "widget-v1.2.3-x86_64-unknown-linux-gnu.tar.gz",
		},
		{
			name:  "fallback to binary name",
			asset: archive,
			want:  "widget.tar.gz",
		},
		{
			name:    "explicit keeps raw windows extension",
			asset:   Asset{Path: "/t/widget.exe", Extension: ".exe"},
			options: NamingOptions{Explicit: "widget-win64"},
			want:    "widget-win64.exe",
		},
		{
			name:  "raw unix binary has no extension",
			asset: Asset{Path: "/t/widget"},
			want:  "widget",
		},
		{
			name:    "every field",
			asset:   archive,
			options: NamingOptions{Template: "{repo.owner}/{repo.repo}/{binary.package}/{profile}/{release.id}/{release.name}{extension}"},
			want:    "acme/widgets/widget-cli/release/4242/Widgets {beta}.tar.gz",
		},
		{
			name:    "text without placeholders",
			asset:   archive,
			options: NamingOptions{Template: "static-name"},
			want:    "static-name",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, err := Name(test.asset, test.options, testNameContext())
			if err != nil {
				t.Fatalf("Name: %v", err)
			}
			if got != test.want {
				t.Errorf("Name = %q, want %q", got, test.want)
			}
		})
	}
}

func TestName_SubstitutedValuesAreNotRescanned(t *testing.T) {
	t.Parallel()

	nameContext := testNameContext()
	nameContext.Release.Name = "{repo.owner}"
	got, err := Name(Asset{Extension: ".zip"}, NamingOptions{Template: "{release.name}{extension}"}, nameContext)
	if err != nil {
		t.Fatalf("Name: %v", err)
	}
	if got != "{repo.owner}.zip" {
		t.Errorf("Name = %q, want the release name inserted literally", got)
	}
}

func TestName_UnresolvedPlaceholders(t *testing.T) {
	t.Parallel()

	_, err := Name(Asset{Extension: ".zip"}, NamingOptions{Template: "{binary.name}-{os}-{arch}-{os}{extension}"}, testNameContext())
	var configurationError *ConfigurationError
	if !errors.As(err, &configurationError) {
		t.Fatalf("err = %v, want *ConfigurationError", err)
	}
	if !slices.Equal(configurationError.Unresolved, []string{"arch", "os"}) {
		t.Errorf("Unresolved = %v, want [arch os]", configurationError.Unresolved)
	}
}

func TestName_EmptyResult(t *testing.T) {
	t.Parallel()

	nameContext := testNameContext()
	nameContext.Release.Name = ""
	_, err := Name(Asset{}, NamingOptions{Template: "{release.name}"}, nameContext)
	var configurationError *ConfigurationError
	if !errors.As(err, &configurationError) {
		t.Fatalf("err = %v, want *ConfigurationError for an empty name", err)
	}
}

func TestValidateTemplate(t *testing.T) {
	t.Parallel()

	valid := []string{
		"",
		"plain",
		"{binary.name}-{target}{extension}",
		"{repo.owner}-{repo.repo}-{release.id}-{release.tag_name}-{release.name}-{binary.package}-{profile}",
		"{ not a placeholder }",
	}
	for _, template := range valid {
		if err := ValidateTemplate(template); err != nil {
			t.Errorf("ValidateTemplate(%q): %v", template, err)
		}
	}

	invalid := []string{"{version}", "{binary.name}-{release.body}", "{repo}"}
	for _, template := range invalid {
		var configurationError *ConfigurationError
		if err := ValidateTemplate(template); !errors.As(err, &configurationError) {
			t.Errorf("ValidateTemplate(%q) = %v, want *ConfigurationError", template, err)
		}
	}
}
