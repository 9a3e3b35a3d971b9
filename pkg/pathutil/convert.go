// Package pathutil converts between absolute and relative path forms.
//
// The pipeline works with absolute paths internally so file identity stays
// unambiguous, but user-facing output reads better with paths relative to
// the project root. This package is the conversion layer at that boundary.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/include/foo.hpp", "/home/user/project") → "include/foo.hpp"
//   - ToRelative("/other/location/foo.hpp", "/home/user/project") → "/other/location/foo.hpp" (outside root)
//   - ToRelative("include/foo.hpp", "/home/user/project") → "include/foo.hpp" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	// A path outside the root would start with "..". The absolute form is
	// clearer in that case.
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

// ToAbsolute converts a relative path to absolute based on a root directory.
// Absolute paths pass through unchanged.
func ToAbsolute(relPath, rootDir string) string {
	if relPath == "" || filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Clean(filepath.Join(rootDir, relPath))
}
