package repath

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/flintmod/bumpath/pkg/logger"
)

// relocateAssets copies every existing non-document asset to its namespaced
// destination and removes the original. Documents stay where they are; only
// their contents are rewritten. Returns the number of files moved.
func relocateAssets(contentRoot string, existing map[string]bool, prefix string) int {
	relocated := 0

	for _, p := range sortedKeys(existing) {
		if isDocumentPath(p) {
			continue
		}

		source := filepath.Join(contentRoot, filepath.FromSlash(p))
		dest := filepath.Join(contentRoot, filepath.FromSlash(applyPrefix(p, prefix)))

		if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
			logger.Warn("Failed to create destination directory", logger.String("path", dest), logger.Err(err))
			continue
		}

		if _, err := os.Stat(source); err != nil {
			continue
		}
		if err := copyFile(source, dest); err != nil {
			logger.Warn("Failed to relocate asset", logger.String("path", p), logger.Err(err))
			continue
		}
		if err := os.Remove(source); err != nil {
			logger.Warn("Failed to remove relocated source", logger.String("path", p), logger.Err(err))
			continue
		}
		relocated++
	}
	return relocated
}

func copyFile(source, dest string) error {
	in, err := os.Open(source) // #nosec G304 -- both endpoints derive from the reconciled path set under contentRoot
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
