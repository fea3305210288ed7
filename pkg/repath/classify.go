package repath

import (
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Category is the role a document plays in a package.
type Category int

const (
	// CategoryRootDefinition is the entity's root document
	// (data/characters/<entity>/<entity>.bin). The canonical original is
	// referenced externally, so bundled copies are removed during cleanup.
	CategoryRootDefinition Category = iota
	// CategoryVariantAnimation is a numbered variant document
	// (skin<N>.bin). Only the targeted variant survives cleanup.
	CategoryVariantAnimation
	// CategoryLinkedAuxiliary is any other document reached through a
	// dependency list.
	CategoryLinkedAuxiliary
	// CategoryIgnore marks malformed or attack-shaped names. Ignored
	// documents are never processed and are deleted wherever found.
	CategoryIgnore
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRootDefinition:
		return "root-definition"
	case CategoryVariantAnimation:
		return "variant-animation"
	case CategoryLinkedAuxiliary:
		return "linked-auxiliary"
	case CategoryIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

var variantAnimationName = regexp.MustCompile(`^skin\d+\.bin$`)

const rootDefinitionGlob = "data/characters/*/*.bin"

// Classify maps a normalized relative path (lowercase, forward slashes) to
// its document category. Pure string heuristics, no I/O.
func Classify(normalized string) Category {
	if normalized == "" {
		return CategoryIgnore
	}
	// Traversal segments, doubled separators, and control bytes are
	// attack-shaped names seen in hostile packages.
	if strings.Contains(normalized, "..") ||
		strings.Contains(normalized, "//") ||
		strings.ContainsAny(normalized, "\x00\r\n") {
		return CategoryIgnore
	}

	base := path.Base(normalized)
	if !strings.HasSuffix(base, DocExtension) || base == DocExtension {
		return CategoryIgnore
	}
	if strings.HasPrefix(base, ".") {
		return CategoryIgnore
	}

	if variantAnimationName.MatchString(base) {
		return CategoryVariantAnimation
	}

	if ok, _ := doublestar.Match(rootDefinitionGlob, normalized); ok {
		stem := strings.TrimSuffix(base, DocExtension)
		if stem == path.Base(path.Dir(normalized)) {
			return CategoryRootDefinition
		}
	}

	return CategoryLinkedAuxiliary
}
