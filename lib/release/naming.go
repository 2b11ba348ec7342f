// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"regexp"
	"sort"
	"strconv"
)

// NamingOptions selects how published asset names are computed.
type NamingOptions struct {
	// Explicit is a fixed base name. The asset extension is appended.
	Explicit string

	// Template is a name pattern with {field} placeholders. Used when
	// Explicit is empty.
	Template string
}

// Repository identifies the GitHub repository that owns the release.
type Repository struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (repository Repository) String() string {
	return repository.Owner + "/" + repository.Name
}

// Release identifies the GitHub release being published to.
type Release struct {
	ID      int64
	TagName string
	Name    string
}

// NameContext carries the values available to name templates.
type NameContext struct {
	Repository Repository
	Release    Release
	Target     BinaryTarget
	Triple     string
	Profile    string
}

// placeholderPattern matches {field} references. Field names are
// dotted identifiers such as {repo.owner} or {release.tag_name}.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_.]*)\}`)

// TemplateFields lists every placeholder a name template may use.
var TemplateFields = []string{
	"repo.owner",
	"repo.repo",
	"binary.name",
	"binary.package",
	"target",
	"profile",
	"release.id",
	"release.tag_name",
	"release.name",
	"extension",
}

func (nameContext NameContext) fields(asset Asset) map[string]string {
	return map[string]string{
		"repo.owner":       nameContext.Repository.Owner,
		"repo.repo":        nameContext.Repository.Name,
		"binary.name":      nameContext.Target.Name,
		"binary.package":   nameContext.Target.Package,
		"target":           nameContext.Triple,
		"profile":          nameContext.Profile,
		"release.id":       strconv.FormatInt(nameContext.Release.ID, 10),
		"release.tag_name": nameContext.Release.TagName,
		"release.name":     nameContext.Release.Name,
		"extension":        asset.Extension,
	}
}

// ValidateTemplate reports a *ConfigurationError listing every
// placeholder in template that is not a known field. An empty template
// is valid.
func ValidateTemplate(template string) error {
	known := make(map[string]string, len(TemplateFields))
	for _, field := range TemplateFields {
		known[field] = ""
	}
	_, err := expandTemplate(template, known)
	return err
}

// Name computes the published name for asset. An explicit name wins
// and gets the asset extension appended; otherwise the template is
// expanded; otherwise the binary name plus extension is used.
func Name(asset Asset, options NamingOptions, nameContext NameContext) (string, error) {
	var name string
	switch {
	case options.Explicit != "":
		name = options.Explicit + asset.Extension
	case options.Template != "":
		expanded, err := expandTemplate(options.Template, nameContext.fields(asset))
		if err != nil {
			return "", err
		}
		name = expanded
	default:
		name = nameContext.Target.Name + asset.Extension
	}

	if name == "" {
		return "", &ConfigurationError{
			Field:  "asset name",
			Value:  name,
			Reason: "resolved to an empty name",
		}
	}
	return name, nil
}

// expandTemplate substitutes {field} placeholders in one pass.
// Substituted values are not rescanned, so a release name containing
// braces is inserted literally.
func expandTemplate(template string, fields map[string]string) (string, error) {
	var unresolved []string
	seen := make(map[string]bool)
	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		field := match[1 : len(match)-1]
		if value, ok := fields[field]; ok {
			return value
		}
		if !seen[field] {
			seen[field] = true
			unresolved = append(unresolved, field)
		}
		return match
	})
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return "", &ConfigurationError{
			Field:      "asset name template",
			Value:      template,
			Reason:     "unknown placeholder",
			Unresolved: unresolved,
			Supported:  TemplateFields,
		}
	}
	return result, nil
}
