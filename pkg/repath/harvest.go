package repath

import (
	"fmt"
	"os"

	"github.com/flintmod/bumpath/pkg/logger"
	"github.com/flintmod/bumpath/pkg/meta"
	"github.com/flintmod/bumpath/pkg/safeio"
)

// Codec indirection; tests swap these to exercise parse/serialize failures.
var (
	parseDocument     = meta.Parse
	serializeDocument = meta.Serialize
)

// collectPaths harvests every string leaf in the document that qualifies as
// an asset reference, normalized. The whole tree is visited; harvesting is
// never short-circuited by a match.
func collectPaths(docPath string) ([]string, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", docPath, err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", docPath, err)
	}

	var paths []string
	meta.WalkDocumentStrings(doc, func(s string) {
		if IsAssetReference(s) {
			paths = append(paths, NormalizePath(s))
		}
	})
	return paths, nil
}

// repathDocument rewrites every qualifying, reconciled string leaf in the
// document under the namespace prefix, then persists the document only when
// something actually changed. Returns the replacement count.
func repathDocument(docPath string, existing map[string]bool, prefix string) (int, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", docPath, err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", docPath, err)
	}

	modified := meta.RewriteDocumentStrings(doc, func(s string) (string, bool) {
		if !IsAssetReference(s) {
			return "", false
		}
		if !existing[NormalizePath(s)] {
			return "", false
		}
		return applyPrefix(s, prefix), true
	})

	if modified > 0 {
		out, err := serializeDocument(doc)
		if err != nil {
			return 0, fmt.Errorf("serialize %s: %w", docPath, err)
		}
		if err := safeio.WriteFilePreservePerms(docPath, out); err != nil {
			return 0, fmt.Errorf("write %s: %w", docPath, err)
		}
		logger.Debug("Repathed document", logger.String("path", docPath), logger.Int("modified", modified))
	}
	return modified, nil
}
