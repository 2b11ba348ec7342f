// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommaList is a string list that config files may write either as a
// sequence or as one comma-separated string.
type CommaList []string

// LineList is a string list that config files may write either as a
// sequence or as one newline-separated string (a YAML block scalar).
type LineList []string

func (list *CommaList) UnmarshalYAML(node *yaml.Node) error {
	values, err := decodeYAMLList(node, ",")
	if err != nil {
		return err
	}
	*list = values
	return nil
}

func (list *CommaList) UnmarshalJSON(data []byte) error {
	values, err := decodeJSONList(data, ",")
	if err != nil {
		return err
	}
	*list = values
	return nil
}

func (list *LineList) UnmarshalYAML(node *yaml.Node) error {
	values, err := decodeYAMLList(node, "\n")
	if err != nil {
		return err
	}
	*list = values
	return nil
}

func (list *LineList) UnmarshalJSON(data []byte) error {
	values, err := decodeJSONList(data, "\n")
	if err != nil {
		return err
	}
	*list = values
	return nil
}

func decodeYAMLList(node *yaml.Node, separator string) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var value string
		if err := node.Decode(&value); err != nil {
			return nil, err
		}
		return splitList(value, separator), nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return nil, err
		}
		return trimList(values), nil
	default:
		return nil, fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

func decodeJSONList(data []byte, separator string) ([]string, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, err
		}
		return trimList(values), nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	return splitList(value, separator), nil
}

// splitList splits value on separator, trimming entries and dropping
// empty ones.
func splitList(value, separator string) []string {
	return trimList(strings.Split(value, separator))
}

func trimList(values []string) []string {
	var result []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			result = append(result, value)
		}
	}
	return result
}
