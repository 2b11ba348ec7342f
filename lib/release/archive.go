// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// ArchiveType is a supported archive format. Its string form is also
// the file suffix appended to the artifact path.
type ArchiveType string

const (
	ArchiveZip   ArchiveType = "zip"
	ArchiveTarGz ArchiveType = "tar.gz"
)

// SupportedArchiveTypes lists the accepted archive types.
var SupportedArchiveTypes = []ArchiveType{ArchiveZip, ArchiveTarGz}

// Extension returns the archive suffix including the leading dot.
func (archiveType ArchiveType) Extension() string {
	return "." + string(archiveType)
}

// Asset is one file to publish: an archive or the raw binary.
type Asset struct {
	// Path is the local file.
	Path string

	// Extension is appended to explicit and fallback names: ".zip",
	// ".tar.gz", ".exe", or "".
	Extension string

	// Name is the published file name, set by the naming stage.
	Name string
}

// RawAsset wraps an unarchived build artifact.
func RawAsset(artifact BuildArtifact) Asset {
	return Asset{Path: artifact.Path, Extension: artifact.Extension}
}

// ValidateArchiveTypes parses requested archive types. Surrounding
// whitespace is ignored, empty entries are skipped, and repeated
// types collapse to their first occurrence. Any unsupported type
// fails the whole request.
func ValidateArchiveTypes(types []string) ([]ArchiveType, error) {
	var result []ArchiveType
	seen := make(map[ArchiveType]bool)
	for _, raw := range types {
		archiveType := ArchiveType(strings.TrimSpace(raw))
		if archiveType == "" {
			continue
		}
		if !isSupportedArchiveType(archiveType) {
			return nil, &ConfigurationError{
				Field:     "archive type",
				Value:     raw,
				Reason:    "unsupported archive type",
				Supported: supportedArchiveTypeNames(),
			}
		}
		if seen[archiveType] {
			continue
		}
		seen[archiveType] = true
		result = append(result, archiveType)
	}
	return result, nil
}

func isSupportedArchiveType(archiveType ArchiveType) bool {
	for _, supported := range SupportedArchiveTypes {
		if archiveType == supported {
			return true
		}
	}
	return false
}

func supportedArchiveTypeNames() []string {
	names := make([]string, len(SupportedArchiveTypes))
	for i, archiveType := range SupportedArchiveTypes {
		names[i] = string(archiveType)
	}
	return names
}

// DefaultArchiveTypes returns the archive types used when archiving is
// enabled without an explicit list: zip for Windows targets, tar.gz
// for everything else.
func DefaultArchiveTypes(windows bool) []ArchiveType {
	if windows {
		return []ArchiveType{ArchiveZip}
	}
	return []ArchiveType{ArchiveTarGz}
}

// ArchiveAll creates one archive per type concurrently and waits for
// all of them. The returned assets are in the order of types. If any
// archive fails, the error for the earliest failing type is returned.
func ArchiveAll(types []ArchiveType, artifactPath string, includes []string, dir string) ([]Asset, error) {
	assets := make([]Asset, len(types))
	errs := make([]error, len(types))

	var waitGroup sync.WaitGroup
	for i, archiveType := range types {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			assets[i], errs[i] = Archive(archiveType, artifactPath, includes, dir)
		}()
	}
	waitGroup.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return assets, nil
}

// Archive writes <artifactPath>.<type> containing the artifact under
// its base name followed by every file matched by includes. Include
// patterns are doublestar globs relative to dir; a matched directory
// contributes all files beneath it. Entry names are slash-separated
// paths relative to dir.
func Archive(archiveType ArchiveType, artifactPath string, includes []string, dir string) (Asset, error) {
	outputPath := artifactPath + archiveType.Extension()
	fail := func(err error) (Asset, error) {
		return Asset{}, &ArchiveError{Type: archiveType, Path: outputPath, Err: err}
	}

	if !isSupportedArchiveType(archiveType) {
		return fail(fmt.Errorf("unsupported archive type %q", archiveType))
	}

	binaryEntry := archiveEntry{name: filepath.Base(artifactPath), source: artifactPath}
	extra, err := collectIncludes(dir, includes, binaryEntry.name, excludedSources(artifactPath))
	if err != nil {
		return fail(err)
	}
	entries := append([]archiveEntry{binaryEntry}, extra...)

	output, err := os.Create(outputPath)
	if err != nil {
		return fail(err)
	}
	switch archiveType {
	case ArchiveZip:
		err = writeZip(output, entries)
	case ArchiveTarGz:
		err = writeTarGz(output, entries)
	}
	if closeErr := output.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fail(err)
	}

	return Asset{Path: outputPath, Extension: archiveType.Extension()}, nil
}

// archiveEntry maps an archive member name to the file on disk.
type archiveEntry struct {
	name   string
	source string
}

// excludedSources lists the files that must never be archived as
// includes: the artifact itself and every archive produced from it,
// which may be mid-write in a sibling goroutine.
func excludedSources(artifactPath string) map[string]bool {
	excluded := map[string]bool{absolutePath(artifactPath): true}
	for _, archiveType := range SupportedArchiveTypes {
		excluded[absolutePath(artifactPath+archiveType.Extension())] = true
	}
	return excluded
}

func absolutePath(name string) string {
	if absolute, err := filepath.Abs(name); err == nil {
		return absolute
	}
	return filepath.Clean(name)
}

// collectIncludes expands include patterns against dir. The result is
// sorted by entry name and free of duplicates. A pattern without glob
// metacharacters must name an existing path; a glob that matches
// nothing contributes nothing.
func collectIncludes(dir string, patterns []string, reservedName string, excluded map[string]bool) ([]archiveEntry, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	if dir == "" {
		dir = "."
	}
	fsys := os.DirFS(dir)

	names := make(map[string]bool)
	for _, raw := range patterns {
		pattern, err := normalizePattern(raw)
		if err != nil {
			return nil, err
		}
		if pattern == "" {
			continue
		}

		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", raw, err)
		}
		if len(matches) == 0 && !hasGlobMeta(pattern) {
			return nil, fmt.Errorf("include %q: %w", raw, fs.ErrNotExist)
		}

		for _, match := range matches {
			if err := addMatch(fsys, match, names); err != nil {
				return nil, fmt.Errorf("include %q: %w", raw, err)
			}
		}
	}

	entries := make([]archiveEntry, 0, len(names))
	for name := range names {
		source := filepath.Join(dir, filepath.FromSlash(name))
		if name == reservedName || excluded[absolutePath(source)] {
			continue
		}
		entries = append(entries, archiveEntry{name: name, source: source})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

// addMatch records a matched regular file, or every regular file
// beneath a matched directory.
func addMatch(fsys fs.FS, match string, names map[string]bool) error {
	info, err := fs.Stat(fsys, match)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			names[match] = true
		}
		return nil
	}
	return fs.WalkDir(fsys, match, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := fs.Stat(fsys, name)
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			names[name] = true
		}
		return nil
	})
}

// normalizePattern converts an include pattern to the slash-separated,
// relative form fs.FS globbing requires. Patterns that would leave the
// working directory are rejected.
func normalizePattern(raw string) (string, error) {
	pattern := strings.TrimSpace(raw)
	if pattern == "" {
		return "", nil
	}
	pattern = filepath.ToSlash(pattern)
	if path.IsAbs(pattern) || filepath.IsAbs(raw) {
		return "", fmt.Errorf("include pattern %q must be relative to the working directory", raw)
	}
	pattern = path.Clean(pattern)
	if pattern == ".." || strings.HasPrefix(pattern, "../") {
		return "", fmt.Errorf("include pattern %q escapes the working directory", raw)
	}
	return pattern, nil
}

func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{\`)
}

func writeZip(output io.Writer, entries []archiveEntry) error {
	writer := zip.NewWriter(output)
	for _, entry := range entries {
		if err := addZipEntry(writer, entry); err != nil {
			return err
		}
	}
	return writer.Close()
}

func addZipEntry(writer *zip.Writer, entry archiveEntry) error {
	file, err := os.Open(entry.source)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = entry.name
	header.Method = zip.Deflate

	member, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(member, file); err != nil {
		return fmt.Errorf("writing %s: %w", entry.name, err)
	}
	return nil
}

func writeTarGz(output io.Writer, entries []archiveEntry) error {
	compressor := gzip.NewWriter(output)
	writer := tar.NewWriter(compressor)
	for _, entry := range entries {
		if err := addTarEntry(writer, entry); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return compressor.Close()
}

func addTarEntry(writer *tar.Writer, entry archiveEntry) error {
	file, err := os.Open(entry.source)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = entry.name
	header.Uid, header.Gid = 0, 0
	header.Uname, header.Gname = "", ""

	if err := writer.WriteHeader(header); err != nil {
		return err
	}
	if _, err := io.Copy(writer, file); err != nil {
		return fmt.Errorf("writing %s: %w", entry.name, err)
	}
	return nil
}
