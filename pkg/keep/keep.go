// Package keep provides gitignore-style protection patterns for the
// destructive cleanup pass. Files matching a keep pattern are never deleted
// as unused, even when no processed document references them.
package keep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// KeepFileName is the per-project keep pattern file, read from the content
// root. Gitignore syntax; matching files survive cleanup.
const KeepFileName = ".bumpathkeep"

// Matcher decides which files the unused-file cleanup must preserve.
type Matcher struct {
	matcher gitignore.Matcher
}

// NewMatcher builds a matcher from the built-in defaults plus the optional
// .bumpathkeep file at the content root.
func NewMatcher(contentRoot string) (*Matcher, error) {
	var patterns []gitignore.Pattern

	// Package metadata and the keep file itself are always preserved.
	defaults := []string{"META/**", "*.fantome", KeepFileName}
	for _, p := range defaults {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	userPatterns, err := readKeepFile(filepath.Join(contentRoot, KeepFileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read keep file: %w", err)
	}
	for _, p := range userPatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	return &Matcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// Match reports whether relPath (forward-slashed, relative to the content
// root) is protected from cleanup.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	parts := splitPath(relPath)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// readKeepFile reads patterns from a keep file, skipping blanks and comments.
func readKeepFile(path string) ([]string, error) {
	cleaned := filepath.Clean(path)
	if !strings.HasSuffix(cleaned, string(os.PathSeparator)+KeepFileName) {
		return nil, fmt.Errorf("disallowed keep file path: %s", cleaned)
	}
	content, err := os.ReadFile(cleaned) // #nosec G304 -- path cleaned and name-checked above
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

func splitPath(p string) []string {
	p = strings.Trim(filepath.ToSlash(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
