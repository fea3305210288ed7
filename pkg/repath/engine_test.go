package repath

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/flintmod/bumpath/pkg/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, root, rel string, doc *meta.Document) string {
	t.Helper()
	data, err := meta.Serialize(doc)
	require.NoError(t, err)
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o644))
	return full
}

func writeAsset(t *testing.T, root, rel string, content []byte) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, content, 0o644))
	return full
}

func readDoc(t *testing.T, path string) *meta.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := meta.Parse(data)
	require.NoError(t, err)
	return doc
}

// docSeq gives every fixture document a distinct object name. Consolidation
// dedupes merged objects by name, so fixtures that share one would exercise
// the duplicate handling instead of the merge itself.
var docSeq int

func docWithStrings(values ...string) *meta.Document {
	docSeq++
	props := make([]meta.Property, 0, len(values))
	for i, v := range values {
		props = append(props, meta.Property{
			Name:  "prop" + string(rune('a'+i)),
			Value: &meta.String{Value: v},
		})
	}
	return &meta.Document{Objects: []meta.Object{{
		Name:       fmt.Sprintf("Obj%d", docSeq),
		Properties: props,
	}}}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Scenario: a skin document references a texture with in-document casing that
// differs from the on-disk layout. The reference is namespaced with its
// casing preserved while the file moves along the normalized path.
func TestRepathRewritesAndRelocates(t *testing.T) {
	root := t.TempDir()

	mainPath := writeDoc(t, root, "data/characters/ahri/skins/skin0.bin",
		docWithStrings("ASSETS/Characters/Ahri/Skin0/skin0.dds"))
	texture := []byte("dds-bytes")
	writeAsset(t, root, "assets/characters/ahri/skin0/skin0.dds", texture)

	cfg := Config{
		CreatorName:     "SirDexal",
		ProjectName:     "MyMod",
		Entity:          "Ahri",
		TargetVariantID: 0,
	}
	result, err := Repath(root, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.DocsProcessed)
	assert.Equal(t, 1, result.PathsModified)
	assert.Equal(t, 1, result.FilesRelocated)
	assert.Empty(t, result.MissingPaths)

	doc := readDoc(t, mainPath)
	var got []string
	meta.WalkDocumentStrings(doc, func(s string) { got = append(got, s) })
	assert.Equal(t, []string{"ASSETS/SirDexal/MyMod/Characters/Ahri/Skin0/skin0.dds"}, got)

	dest := filepath.Join(root, filepath.FromSlash("ASSETS/SirDexal/MyMod/characters/ahri/skin0/skin0.dds"))
	moved, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, texture, moved, "relocation must preserve byte content")
	assert.False(t, fileExists(filepath.Join(root, filepath.FromSlash("assets/characters/ahri/skin0/skin0.dds"))))
}

// Scenario: a dependency with an attack-shaped name is deleted on sight and
// never counted as processed.
func TestRepathDeletesIgnoredLinkedDocument(t *testing.T) {
	root := t.TempDir()

	main := docWithStrings("assets/ok.dds")
	main.Dependencies = []string{"data/../evil.bin"}
	writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", main)
	writeAsset(t, root, "assets/ok.dds", []byte("x"))

	// The traversal segment collapses to the root on resolution.
	evil := writeDoc(t, root, "evil.bin", docWithStrings())
	require.True(t, fileExists(evil))

	cfg := Config{CreatorName: "A", ProjectName: "B", Entity: "Ahri"}
	result, err := Repath(root, cfg, nil)
	require.NoError(t, err)

	assert.False(t, fileExists(evil), "ignored linked document must be deleted")
	assert.Equal(t, 1, result.DocsProcessed)
}

// Scenario: only the targeted variant's animation document survives cleanup.
func TestRepathCleansOtherVariantDocuments(t *testing.T) {
	root := t.TempDir()

	writeDoc(t, root, "data/characters/ahri/skins/skin1.bin", docWithStrings())
	skin0 := writeDoc(t, root, "data/characters/ahri/animations/skin0.bin", docWithStrings())
	skin1 := writeDoc(t, root, "data/characters/ahri/animations/skin1.bin", docWithStrings())

	cfg := Config{CreatorName: "A", ProjectName: "B", Entity: "Ahri", TargetVariantID: 1}
	_, err := Repath(root, cfg, nil)
	require.NoError(t, err)

	assert.False(t, fileExists(skin0), "other variant must be deleted")
	assert.True(t, fileExists(skin1), "target variant must survive")
}

func TestRepathRemovesRootDefinition(t *testing.T) {
	root := t.TempDir()

	writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", docWithStrings())
	rootDef := writeDoc(t, root, "data/characters/ahri/ahri.bin", docWithStrings())
	// Misplaced root definition in an auxiliary location.
	misplaced := writeDoc(t, root, "data/particles/ahri.bin", docWithStrings())
	aux := writeDoc(t, root, "data/particles/shared.bin", docWithStrings())

	main := readDoc(t, filepath.Join(root, "data/characters/ahri/skins/skin0.bin"))
	main.Dependencies = []string{"data/particles/shared.bin"}
	writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", main)

	cfg := Config{CreatorName: "A", ProjectName: "B", Entity: "Ahri", TargetVariantID: 0}
	_, err := Repath(root, cfg, nil)
	require.NoError(t, err)

	assert.False(t, fileExists(rootDef), "root definition is always removed")
	assert.False(t, fileExists(misplaced), "misplaced root definition is removed")
	assert.True(t, fileExists(aux), "auxiliary document survives")
}

// Missing references are reported, never rewritten.
func TestRepathReportsMissingPaths(t *testing.T) {
	root := t.TempDir()

	mainPath := writeDoc(t, root, "data/characters/ahri/skins/skin0.bin",
		docWithStrings("assets/present.dds", "assets/missing.dds"))
	writeAsset(t, root, "assets/present.dds", []byte("x"))

	cfg := Config{CreatorName: "A", ProjectName: "B", Entity: "Ahri"}
	result, err := Repath(root, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"assets/missing.dds"}, result.MissingPaths)
	assert.Equal(t, 1, result.PathsModified)

	doc := readDoc(t, mainPath)
	var got []string
	meta.WalkDocumentStrings(doc, func(s string) { got = append(got, s) })
	assert.Contains(t, got, "assets/missing.dds", "missing reference must stay untouched")
	assert.Contains(t, got, "ASSETS/A/B/present.dds")
}

func TestRepathMissingContentRootIsFatal(t *testing.T) {
	_, err := Repath(filepath.Join(t.TempDir(), "nope"), Config{}, nil)
	assert.Error(t, err)
}

// Without a main document the engine falls back to scanning every document.
func TestRepathFallbackScan(t *testing.T) {
	root := t.TempDir()

	writeDoc(t, root, "data/particles/shared.bin", docWithStrings("assets/a.dds"))
	writeAsset(t, root, "assets/a.dds", []byte("x"))

	cfg := Config{CreatorName: "A", ProjectName: "B"}
	result, err := Repath(root, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.DocsProcessed)
	assert.Equal(t, 1, result.PathsModified)
	assert.Equal(t, 1, result.FilesRelocated)
}

func TestRepathPathMappingResolvesDependencies(t *testing.T) {
	root := t.TempDir()

	main := docWithStrings("assets/a.dds")
	main.Dependencies = []string{"data/particles/linked.bin"}
	writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", main)
	writeAsset(t, root, "assets/a.dds", []byte("x"))

	// The linked document actually lives somewhere else.
	writeDoc(t, root, "data/relocated/linked.bin", docWithStrings("assets/b.dds"))
	writeAsset(t, root, "assets/b.dds", []byte("y"))

	mappings := PathMapping{"data/particles/linked.bin": "data/relocated/linked.bin"}

	cfg := Config{CreatorName: "A", ProjectName: "B", Entity: "Ahri"}
	result, err := Repath(root, cfg, mappings)
	require.NoError(t, err)

	assert.Equal(t, 2, result.DocsProcessed)
	assert.Equal(t, 2, result.PathsModified)
	assert.Equal(t, 2, result.FilesRelocated)
}

func TestRepathCleanupUnusedRespectsKeepPatterns(t *testing.T) {
	root := t.TempDir()

	writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", docWithStrings("assets/used.dds"))
	writeAsset(t, root, "assets/used.dds", []byte("x"))
	stray := writeAsset(t, root, "assets/stray.dds", []byte("y"))
	kept := writeAsset(t, root, "notes/readme.txt", []byte("keep me"))
	metaFile := writeAsset(t, root, "META/info.json", []byte("{}"))
	writeAsset(t, root, ".bumpathkeep", []byte("notes/**\n"))

	cfg := Config{CreatorName: "A", ProjectName: "B", Entity: "Ahri", CleanupUnused: true}
	result, err := Repath(root, cfg, nil)
	require.NoError(t, err)

	assert.False(t, fileExists(stray), "unreferenced file must be removed")
	assert.True(t, fileExists(kept), "keep-pattern file must survive")
	assert.True(t, fileExists(metaFile), "default keep patterns must survive")
	assert.True(t, fileExists(filepath.Join(root, ".bumpathkeep")))
	assert.Equal(t, 1, result.FilesRemoved)

	relocated := filepath.Join(root, filepath.FromSlash("ASSETS/A/B/used.dds"))
	assert.True(t, fileExists(relocated), "relocated asset must not be cleaned up")
}

func TestRepathCombinesLinkedDocuments(t *testing.T) {
	root := t.TempDir()

	main := docWithStrings("assets/a.dds")
	main.Dependencies = []string{"data/particles/linked.bin"}
	mainPath := writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", main)

	linked := writeDoc(t, root, "data/particles/linked.bin", docWithStrings("assets/b.dds"))
	writeAsset(t, root, "assets/a.dds", []byte("x"))
	writeAsset(t, root, "assets/b.dds", []byte("y"))

	cfg := Config{
		CreatorName:     "A",
		ProjectName:     "B",
		Entity:          "Ahri",
		TargetVariantID: 0,
		CombineLinked:   true,
	}
	result, err := Repath(root, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.DocsCombined)
	assert.Equal(t, 1, result.DocsProcessed, "only the combined document is processed")
	assert.Equal(t, 2, result.PathsModified)

	assert.False(t, fileExists(mainPath), "consolidated source must be deleted")
	assert.False(t, fileExists(linked), "consolidated source must be deleted")

	combined := filepath.Join(root, filepath.FromSlash("data/ahri_skin0__concat.bin"))
	require.True(t, fileExists(combined), "combined document must survive cleanup")

	doc := readDoc(t, combined)
	var got []string
	meta.WalkDocumentStrings(doc, func(s string) { got = append(got, s) })
	assert.ElementsMatch(t, []string{"ASSETS/A/B/a.dds", "ASSETS/A/B/b.dds"}, got)
}

// Consolidation failure is logged and the run continues unconsolidated.
type failingConsolidator struct{}

func (failingConsolidator) Merge(string, string, Config, PathMapping) (*ConsolidationResult, error) {
	return nil, ErrNothingToCombine
}

func TestRepathConsolidationFailureIsNonFatal(t *testing.T) {
	root := t.TempDir()

	writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", docWithStrings("assets/a.dds"))
	writeAsset(t, root, "assets/a.dds", []byte("x"))

	engine := &Engine{Consolidator: failingConsolidator{}}
	cfg := Config{CreatorName: "A", ProjectName: "B", Entity: "Ahri", CombineLinked: true}
	result, err := engine.Run(root, cfg, nil)
	require.NoError(t, err)

	assert.Zero(t, result.DocsCombined)
	assert.Equal(t, 1, result.DocsProcessed)
	assert.Equal(t, 1, result.PathsModified)
}

// stubConsolidator writes a combined document and reports its sources
// relative to the content root, the way the Consolidator contract states,
// but leaves the source files on disk so a removal miss would put them
// back through the pipeline.
type stubConsolidator struct{}

func (stubConsolidator) Merge(mainPath, contentRoot string, cfg Config, _ PathMapping) (*ConsolidationResult, error) {
	combinedRel := combinedDocumentPath(cfg)
	data, err := meta.Serialize(docWithStrings("assets/c.dds"))
	if err != nil {
		return nil, err
	}
	full := filepath.Join(contentRoot, filepath.FromSlash(combinedRel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, err
	}
	mainRel, err := filepath.Rel(contentRoot, mainPath)
	if err != nil {
		return nil, err
	}
	return &ConsolidationResult{
		CombinedPath: combinedRel,
		SourcePaths:  []string{filepath.ToSlash(mainRel), "data/particles/linked.bin"},
		SourceCount:  2,
	}, nil
}

// A relative content root must not split working-set entries into mixed
// path forms: consumed sources have to leave the set even though dependency
// resolution stores resolved paths.
func TestRepathRelativeContentRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "content")

	main := docWithStrings("assets/a.dds")
	main.Dependencies = []string{"data/particles/linked.bin"}
	writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", main)
	writeDoc(t, root, "data/particles/linked.bin", docWithStrings("assets/b.dds"))
	writeAsset(t, root, "assets/a.dds", []byte("x"))
	writeAsset(t, root, "assets/c.dds", []byte("z"))

	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(parent))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	engine := &Engine{Consolidator: stubConsolidator{}}
	cfg := Config{CreatorName: "A", ProjectName: "B", Entity: "Ahri", CombineLinked: true}
	result, err := engine.Run("content", cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.DocsProcessed, "consumed sources must leave the working set")
	assert.Equal(t, 1, result.PathsModified)
	assert.Empty(t, result.MissingPaths, "a lingering source would report its references as missing")
}

func TestRepathEmptyNamesProduceDegenerateNamespace(t *testing.T) {
	root := t.TempDir()

	writeDoc(t, root, "data/characters/ahri/skins/skin0.bin", docWithStrings("assets/a.dds"))
	writeAsset(t, root, "assets/a.dds", []byte("x"))

	cfg := Config{Entity: "Ahri"}
	result, err := Repath(root, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PathsModified)
}
