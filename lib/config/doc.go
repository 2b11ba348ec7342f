// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config assembles the configuration of a release run.
//
// Values are layered, lowest precedence first:
//
//  1. built-in defaults ([Default])
//  2. a config file ([LoadFile]; [Load] takes the path from
//     BUREAU_RELEASE_CONFIG)
//  3. GitHub Actions inputs ([Config.ApplyInputs])
//  4. command-line flags, applied by the CLI through [Config.Set]
//
// Config files are YAML (.yaml, .yml) or JSON with comments (.json,
// .jsonc). Both formats use the same snake_case keys as the action
// inputs, and list-valued keys accept either a list or the delimited
// string form an action input would carry.
//
// [Config.Validate] checks everything that can be checked up front and
// reports every problem at once. [Config.Request] converts a validated
// configuration into a [release.Request].
package config
