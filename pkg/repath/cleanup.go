package repath

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flintmod/bumpath/pkg/keep"
	"github.com/flintmod/bumpath/pkg/logger"
)

// cleanupUnusedFiles removes every non-document file whose normalized
// relative path is absent from the expected post-rewrite set. Files matched
// by the keep patterns survive. Destructive: intended to drop stray files
// left behind by extraction that no processed document references.
func cleanupUnusedFiles(contentRoot string, referenced map[string]bool, prefix string, keeper *keep.Matcher) int {
	removed := 0

	expected := make(map[string]bool, len(referenced))
	for p := range referenced {
		expected[NormalizePath(applyPrefix(p, prefix))] = true
	}

	_ = filepath.WalkDir(contentRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if isDocumentPath(p) {
			return nil
		}
		rel, relErr := filepath.Rel(contentRoot, p)
		if relErr != nil {
			return nil
		}
		relSlash := filepath.ToSlash(rel)
		if keeper != nil && keeper.Match(relSlash, false) {
			return nil
		}
		if !expected[NormalizePath(relSlash)] {
			if rmErr := os.Remove(p); rmErr != nil {
				logger.Warn("Failed to remove unused file", logger.String("path", relSlash), logger.Err(rmErr))
			} else {
				removed++
			}
		}
		return nil
	})
	return removed
}

// cleanupIrrelevantDocs removes documents that have no business in the
// packaged result: root definitions (the canonical original is referenced
// externally), variant animations for other variants, auxiliaries that
// collide with the root definition's filename, and everything classified
// ignore. Consolidation outputs are skipped by marker.
func cleanupIrrelevantDocs(contentRoot, entity string, variantID uint32) int {
	removed := 0
	entityLower := strings.ToLower(entity)
	rootDocName := entityLower + DocExtension

	targetAnimName := fmt.Sprintf("skin%d%s", variantID, DocExtension)
	targetAnimNamePadded := fmt.Sprintf("skin%02d%s", variantID, DocExtension)

	_ = filepath.WalkDir(contentRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isDocumentPath(p) {
			return nil
		}
		rel, relErr := filepath.Rel(contentRoot, p)
		if relErr != nil {
			return nil
		}
		relNorm := NormalizePath(filepath.ToSlash(rel))
		filename := strings.ToLower(filepath.Base(p))

		// Consolidation outputs must survive this pass.
		if strings.Contains(filename, concatMarker) {
			return nil
		}

		shouldRemove := false
		switch Classify(relNorm) {
		case CategoryRootDefinition:
			shouldRemove = true
		case CategoryVariantAnimation:
			if filename != targetAnimName && filename != targetAnimNamePadded {
				shouldRemove = true
			}
		case CategoryLinkedAuxiliary:
			// Misplacement guard: a root definition hiding in an
			// auxiliary location.
			if filename == rootDocName {
				shouldRemove = true
			}
		case CategoryIgnore:
			shouldRemove = true
		}

		if shouldRemove {
			if rmErr := os.Remove(p); rmErr != nil {
				logger.Warn("Failed to remove irrelevant document", logger.String("path", relNorm), logger.Err(rmErr))
			} else {
				logger.Debug("Removed irrelevant document", logger.String("path", relNorm))
				removed++
			}
		}
		return nil
	})

	if removed > 0 {
		logger.Info("Cleaned up irrelevant documents", logger.Int("count", removed))
	}
	return removed
}

// cleanupEmptyDirs prunes directories that hold zero entries. Children are
// visited before parents, so emptying a child can empty its parent within
// the same pass.
func cleanupEmptyDirs(contentRoot string) {
	var dirs []string
	_ = filepath.WalkDir(contentRoot, func(p string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})

	// Reverse lexicographic order puts every child before its parent.
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		_ = os.Remove(dir)
	}
}
