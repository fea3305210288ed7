// Package repath implements the repathing engine: it rewrites asset
// references inside property-tree documents under a creator/project namespace
// and relocates the referenced files on disk to match, so independently
// authored packages can be loaded together without colliding.
package repath

import "strings"

// Config holds the parameters of one repathing run.
type Config struct {
	CreatorName     string
	ProjectName     string
	Entity          string
	TargetVariantID uint32
	CombineLinked   bool
	CleanupUnused   bool
}

// Prefix returns the namespace prefix derived from creator and project names,
// with spaces replaced by hyphens.
func (c Config) Prefix() string {
	creator := strings.ReplaceAll(c.CreatorName, " ", "-")
	project := strings.ReplaceAll(c.ProjectName, " ", "-")
	return creator + "/" + project
}

// PathMapping maps a normalized logical path to its actual on-disk relative
// path. Entries absent from the table fall back to the identity mapping.
type PathMapping map[string]string

// Resolve returns the on-disk relative path for a normalized logical path.
func (m PathMapping) Resolve(normalized string) string {
	if m != nil {
		if actual, ok := m[normalized]; ok {
			return actual
		}
	}
	return normalized
}

// Result is the aggregate outcome of one repathing run.
type Result struct {
	DocsProcessed  int      `json:"docs_processed"`
	PathsModified  int      `json:"paths_modified"`
	FilesRelocated int      `json:"files_relocated"`
	DocsCombined   int      `json:"docs_combined"`
	FilesRemoved   int      `json:"files_removed"`
	MissingPaths   []string `json:"missing_paths,omitempty"`
}
