package repath

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/flintmod/bumpath/pkg/keep"
	"github.com/flintmod/bumpath/pkg/logger"
)

// Engine runs the repathing pipeline. The zero value uses the default
// consolidator; tests and embedders may supply their own.
type Engine struct {
	Consolidator Consolidator
}

// Repath runs one repathing pass over contentRoot with the default engine.
func Repath(contentRoot string, cfg Config, mappings PathMapping) (*Result, error) {
	return (&Engine{}).Run(contentRoot, cfg, mappings)
}

// Run executes the pipeline: discovery, optional consolidation, harvest,
// reconciliation, rewrite, relocation, and the cleanup passes. Each phase
// feeds the next; the run is strictly sequential and assumes exclusive
// ownership of the content root for its duration.
//
// Only a missing content root is fatal. Per-document and per-asset failures
// are logged and skipped; the affected items are simply absent from the
// returned counts.
func (e *Engine) Run(contentRoot string, cfg Config, mappings PathMapping) (*Result, error) {
	logger.Info("Starting repathing", logger.String("prefix", namespaceRoot+cfg.Prefix()))

	// Working-set membership is compared by path string, so the root must
	// resolve to one canonical form before any paths are built from it.
	absRoot, err := filepath.Abs(contentRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	contentRoot = absRoot

	if _, err := os.Stat(contentRoot); err != nil {
		return nil, fmt.Errorf("content root not found: %s", contentRoot)
	}

	result := &Result{}

	// Phase 0: locate the main document for the target entity and variant.
	mainPath := ""
	if cfg.Entity != "" {
		mainPath = findMainDocument(contentRoot, cfg.Entity, cfg.TargetVariantID)
	}

	workingSet := resolveWorkingSet(contentRoot, mainPath, mappings)
	logger.Info("Processing documents", logger.Int("count", len(workingSet)))

	// Phase 1: consolidation. Failure is never fatal to repathing.
	if cfg.CombineLinked && mainPath != "" {
		consolidator := e.Consolidator
		if consolidator == nil {
			consolidator = concatConsolidator{}
		}
		merged, err := consolidator.Merge(mainPath, contentRoot, cfg, mappings)
		if err != nil {
			logger.Warn("Failed to combine linked documents", logger.Err(err))
		} else {
			result.DocsCombined = merged.SourceCount
			logger.Info("Combined linked documents", logger.Int("count", merged.SourceCount))

			combinedFull := filepath.Join(contentRoot, filepath.FromSlash(merged.CombinedPath))
			if _, err := os.Stat(combinedFull); err == nil {
				workingSet = append(workingSet, combinedFull)
			}
			for _, src := range merged.SourcePaths {
				full := filepath.Join(contentRoot, filepath.FromSlash(src))
				workingSet = removePath(workingSet, full)
			}
		}
	}

	// Phase 2: harvest candidate asset references from every document.
	allPaths := make(map[string]bool)
	for _, docPath := range workingSet {
		paths, err := collectPaths(docPath)
		if err != nil {
			logger.Warn("Failed to harvest document", logger.Err(err))
			continue
		}
		for _, p := range paths {
			allPaths[p] = true
		}
	}
	logger.Info("Found unique asset paths", logger.Int("count", len(allPaths)))

	// Phase 3: reconcile against the filesystem. Missing references are
	// reported, never rewritten.
	existing := make(map[string]bool, len(allPaths))
	for p := range allPaths {
		if _, err := os.Stat(filepath.Join(contentRoot, filepath.FromSlash(p))); err == nil {
			existing[p] = true
		} else {
			result.MissingPaths = append(result.MissingPaths, p)
		}
	}
	sort.Strings(result.MissingPaths)

	// Phase 4: rewrite the documents.
	prefix := cfg.Prefix()
	for _, docPath := range workingSet {
		modified, err := repathDocument(docPath, existing, prefix)
		if err != nil {
			logger.Warn("Failed to repath document", logger.Err(err))
			continue
		}
		result.DocsProcessed++
		result.PathsModified += modified
	}

	// Phase 5: relocate the referenced assets.
	result.FilesRelocated = relocateAssets(contentRoot, existing, prefix)

	// Phase 6: optional destructive cleanup of unreferenced files.
	if cfg.CleanupUnused {
		keeper, err := keep.NewMatcher(contentRoot)
		if err != nil {
			logger.Warn("Failed to load keep patterns", logger.Err(err))
		}
		result.FilesRemoved = cleanupUnusedFiles(contentRoot, existing, prefix, keeper)
	}

	// Phase 7: documents irrelevant to the target variant always go.
	cleanupIrrelevantDocs(contentRoot, cfg.Entity, cfg.TargetVariantID)

	// Phase 8: prune directories emptied by the passes above.
	cleanupEmptyDirs(contentRoot)

	logger.Info("Repathing complete",
		logger.Int("docs", result.DocsProcessed),
		logger.Int("paths_modified", result.PathsModified),
		logger.Int("files_relocated", result.FilesRelocated))

	return result, nil
}

func removePath(set []string, target string) []string {
	out := set[:0]
	for _, p := range set {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}
