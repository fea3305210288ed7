package repath

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/flintmod/bumpath/pkg/logger"
	"github.com/flintmod/bumpath/pkg/safeio"
)

// mainDocumentCandidates returns the two canonical relative paths for an
// entity's variant document. Real packages are inconsistent about
// zero-padding the variant id, so both forms are candidates.
func mainDocumentCandidates(entity string, variantID uint32) []string {
	entityLower := strings.ToLower(entity)
	return []string{
		fmt.Sprintf("data/characters/%s/skins/skin%d%s", entityLower, variantID, DocExtension),
		fmt.Sprintf("data/characters/%s/skins/skin%02d%s", entityLower, variantID, DocExtension),
	}
}

// findMainDocument locates the single main document for the configured
// entity and variant. Direct existence checks cover the common layout; a
// full-tree scan catches packages whose layout deviates. Returns "" when no
// candidate matches.
func findMainDocument(contentRoot, entity string, variantID uint32) string {
	candidates := mainDocumentCandidates(entity, variantID)

	for _, candidate := range candidates {
		direct := filepath.Join(contentRoot, filepath.FromSlash(candidate))
		if _, err := os.Stat(direct); err == nil {
			return direct
		}
	}

	var found string
	_ = filepath.WalkDir(contentRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != "" {
			return nil
		}
		if !isDocumentPath(p) {
			return nil
		}
		rel, relErr := filepath.Rel(contentRoot, p)
		if relErr != nil {
			return nil
		}
		relNorm := NormalizePath(filepath.ToSlash(rel))
		for _, candidate := range candidates {
			if relNorm == candidate {
				found = p
				return filepath.SkipAll
			}
		}
		return nil
	})
	return found
}

// resolveWorkingSet builds the list of document paths the run will process.
//
// With a main document, its declared dependencies are resolved through the
// path mapping; ignore-classified links are deleted on sight so they cannot
// crash downstream consumers, and missing links are skipped. Without a main
// document the whole tree is scanned, deleting ignore-classified documents
// as a side effect of the scan.
func resolveWorkingSet(contentRoot, mainPath string, mappings PathMapping) []string {
	if mainPath == "" {
		logger.Warn("No main document found, falling back to scanning all documents")
		return scanAllDocuments(contentRoot)
	}

	logger.Info("Found main document", logger.String("path", mainPath))
	workingSet := []string{mainPath}

	data, err := os.ReadFile(mainPath)
	if err != nil {
		logger.Warn("Failed to read main document", logger.Err(err))
		return workingSet
	}
	doc, err := parseDocument(data)
	if err != nil {
		logger.Warn("Failed to parse main document", logger.Err(err))
		return workingSet
	}
	logger.Info("Main document dependencies", logger.Int("count", len(doc.Dependencies)))

	for _, dep := range doc.Dependencies {
		normalized := NormalizePath(dep)

		if Classify(normalized) == CategoryIgnore {
			logger.Warn("Ignoring suspicious linked document", logger.String("path", normalized))
			deleteResolved(contentRoot, normalized, mappings)
			continue
		}

		actual := mappings.Resolve(normalized)
		full, err := safeio.ContainedPath(contentRoot, actual)
		if err != nil {
			logger.Warn("Rejecting linked document outside content root", logger.String("path", actual))
			continue
		}
		if _, err := os.Stat(full); err == nil {
			workingSet = append(workingSet, full)
		} else {
			logger.Warn("Linked document not found", logger.String("path", normalized))
		}
	}
	return workingSet
}

// deleteResolved removes the on-disk file behind a normalized logical path,
// if present. Used for ignore-classified links, which must not be left in
// place even though they never join the working set.
func deleteResolved(contentRoot, normalized string, mappings PathMapping) {
	actual := mappings.Resolve(normalized)
	full, err := safeio.ContainedPath(contentRoot, actual)
	if err != nil {
		return
	}
	if _, err := os.Stat(full); err != nil {
		return
	}
	if err := os.Remove(full); err != nil {
		logger.Warn("Failed to delete ignored document", logger.String("path", actual), logger.Err(err))
	} else {
		logger.Info("Deleted ignored document", logger.String("path", actual))
	}
}

// scanAllDocuments walks the content tree for document files, eagerly
// deleting any that classify as ignore.
func scanAllDocuments(contentRoot string) []string {
	var docs []string
	_ = filepath.WalkDir(contentRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isDocumentPath(p) {
			return nil
		}
		rel, relErr := filepath.Rel(contentRoot, p)
		if relErr == nil {
			relNorm := NormalizePath(filepath.ToSlash(rel))
			if Classify(relNorm) == CategoryIgnore {
				logger.Warn("Ignoring suspicious document", logger.String("path", relNorm))
				if rmErr := os.Remove(p); rmErr != nil {
					logger.Warn("Failed to delete ignored document", logger.String("path", relNorm), logger.Err(rmErr))
				} else {
					logger.Info("Deleted ignored document", logger.String("path", relNorm))
				}
				return nil
			}
		}
		docs = append(docs, p)
		return nil
	})
	return docs
}
