package repath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flintmod/bumpath/pkg/logger"
	"github.com/flintmod/bumpath/pkg/meta"
	"github.com/flintmod/bumpath/pkg/safeio"
)

// Consolidator merges a main document and its linked documents into one
// combined document. Implementations delete the consumed source files from
// disk on success.
type Consolidator interface {
	Merge(mainPath, contentRoot string, cfg Config, mappings PathMapping) (*ConsolidationResult, error)
}

// ConsolidationResult describes a successful merge. All paths are relative
// to the content root, forward-slashed.
type ConsolidationResult struct {
	CombinedPath string
	SourcePaths  []string
	SourceCount  int
}

// ErrNothingToCombine is returned when the main document has no resolvable
// linked documents to merge.
var ErrNothingToCombine = errors.New("repath: no linked documents to combine")

// concatConsolidator is the default Consolidator. It folds the objects of
// the main document and every resolvable linked document into a single
// combined document whose filename carries the consolidation marker, then
// deletes the sources.
type concatConsolidator struct{}

func (concatConsolidator) Merge(mainPath, contentRoot string, cfg Config, mappings PathMapping) (*ConsolidationResult, error) {
	data, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, fmt.Errorf("read main document: %w", err)
	}
	mainDoc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse main document: %w", err)
	}

	mainRel, err := filepath.Rel(contentRoot, mainPath)
	if err != nil {
		return nil, fmt.Errorf("relativize main document: %w", err)
	}
	mainRel = filepath.ToSlash(mainRel)

	combined := &meta.Document{}
	seen := make(map[string]bool)
	appendObjects(combined, mainDoc, seen)
	sources := []string{mainRel}

	for _, dep := range mainDoc.Dependencies {
		normalized := NormalizePath(dep)
		if Classify(normalized) == CategoryIgnore {
			continue
		}
		actual := mappings.Resolve(normalized)
		full, err := safeio.ContainedPath(contentRoot, actual)
		if err != nil {
			logger.Warn("Rejecting linked document outside content root", logger.String("path", actual))
			continue
		}
		depData, err := os.ReadFile(full) // #nosec G304 -- containment checked above
		if err != nil {
			logger.Warn("Skipping unreadable linked document", logger.String("path", actual), logger.Err(err))
			continue
		}
		depDoc, err := parseDocument(depData)
		if err != nil {
			logger.Warn("Skipping unparseable linked document", logger.String("path", actual), logger.Err(err))
			continue
		}
		appendObjects(combined, depDoc, seen)
		sources = append(sources, actual)
	}

	if len(sources) == 1 {
		return nil, ErrNothingToCombine
	}

	combinedRel := combinedDocumentPath(cfg)
	combinedFull := filepath.Join(contentRoot, filepath.FromSlash(combinedRel))
	out, err := serializeDocument(combined)
	if err != nil {
		return nil, fmt.Errorf("serialize combined document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(combinedFull), 0o750); err != nil {
		return nil, fmt.Errorf("create combined document directory: %w", err)
	}
	if err := os.WriteFile(combinedFull, out, 0o644); err != nil { // #nosec G306 -- document files are world-readable package data
		return nil, fmt.Errorf("write combined document: %w", err)
	}

	for _, src := range sources {
		full := filepath.Join(contentRoot, filepath.FromSlash(src))
		if err := os.Remove(full); err != nil {
			logger.Warn("Failed to remove consolidated source", logger.String("path", src), logger.Err(err))
		}
	}

	return &ConsolidationResult{
		CombinedPath: combinedRel,
		SourcePaths:  sources,
		SourceCount:  len(sources),
	}, nil
}

// appendObjects merges src's objects into dst, keeping the first object for
// any duplicated name.
func appendObjects(dst, src *meta.Document, seen map[string]bool) {
	for i := range src.Objects {
		name := src.Objects[i].Name
		if seen[name] {
			logger.Warn("Dropping duplicate object during consolidation", logger.String("object", name))
			continue
		}
		seen[name] = true
		dst.Objects = append(dst.Objects, src.Objects[i])
	}
}

// combinedDocumentPath names the merge output. The filename carries the
// consolidation marker so the irrelevant-document cleanup leaves it alone.
func combinedDocumentPath(cfg Config) string {
	entity := strings.ToLower(strings.ReplaceAll(cfg.Entity, " ", "-"))
	if entity == "" {
		entity = "project"
	}
	return fmt.Sprintf("data/%s_skin%d%s%s", entity, cfg.TargetVariantID, concatMarker, DocExtension)
}
