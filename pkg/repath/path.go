package repath

import "strings"

// DocExtension is the file extension of property-tree documents.
const DocExtension = ".bin"

const (
	assetsToken   = "assets/"
	dataToken     = "data/"
	namespaceRoot = "ASSETS/"
	concatMarker  = "__concat"
)

// IsAssetReference reports whether a string value looks like an asset
// reference: its lowercase form starts with the assets or data root token.
func IsAssetReference(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, assetsToken) || strings.HasPrefix(lower, dataToken)
}

// NormalizePath lowercases a path and converts backslashes to forward
// slashes. All set membership in the engine is keyed on this form.
func NormalizePath(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "\\", "/")
}

// applyPrefix rewrites an asset path under the namespace root. The
// recognized root token is stripped and replaced with "ASSETS/<prefix>";
// casing of the remainder is preserved. Strings without a recognized token
// get the whole original appended after the prefix.
func applyPrefix(p, prefix string) string {
	lower := strings.ToLower(p)
	switch {
	case strings.HasPrefix(lower, assetsToken):
		return namespaceRoot + prefix + p[len(assetsToken)-1:]
	case strings.HasPrefix(lower, dataToken):
		return namespaceRoot + prefix + p[len(dataToken)-1:]
	default:
		return namespaceRoot + prefix + "/" + p
	}
}

// isDocumentPath reports whether a normalized path names a document rather
// than a raw asset.
func isDocumentPath(p string) bool {
	return strings.HasSuffix(strings.ToLower(p), DocExtension)
}
