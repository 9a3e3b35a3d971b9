// Package scan discovers the source files a documentation build reads and
// tracks their content fingerprints, so watch mode can tell real edits apart
// from spurious file system events.
package scan

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/projectd/projectd/internal/debug"
)

// Scanner walks configured source directories and matches files against
// include and exclude glob patterns. Patterns use doublestar syntax and match
// against paths relative to the scanned root.
type Scanner struct {
	Include []string
	Exclude []string

	mu     sync.Mutex
	hashes map[string]uint64
}

// NewScanner creates a scanner. With no include patterns, common C++ header
// extensions are scanned.
func NewScanner(include, exclude []string) *Scanner {
	if len(include) == 0 {
		include = []string{"**/*.h", "**/*.hpp", "**/*.hh", "**/*.hxx"}
	}
	return &Scanner{
		Include: include,
		Exclude: exclude,
		hashes:  make(map[string]uint64),
	}
}

// Scan lists the matching files under root, sorted for deterministic build
// order. Unreadable subtrees are skipped, not fatal.
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			debug.LogScan("skipping %s: %v\n", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.Matches(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	debug.LogScan("found %d files under %s\n", len(files), root)
	return files, nil
}

// Matches reports whether a slash-separated relative path is included and not
// excluded.
func (s *Scanner) Matches(rel string) bool {
	for _, pattern := range s.Exclude {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return false
		}
	}
	for _, pattern := range s.Include {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// Changed reports whether the content differs from the last call for the same
// path, and records the new fingerprint. The first call for a path always
// reports true.
func (s *Scanner) Changed(path string, content []byte) bool {
	hash := xxhash.Sum64(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.hashes[path]; ok && prev == hash {
		return false
	}
	s.hashes[path] = hash
	return true
}

// Forget drops the fingerprint of a removed file so a later re-creation
// reports as changed.
func (s *Scanner) Forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, path)
}
