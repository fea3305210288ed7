// Package project models the mod.config.json project file and validates it
// against the format's schema.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/xeipuuv/gojsonschema"
)

// ConfigFileName is the project configuration file written at the project
// root. The layout is fixed by external mod tooling.
const ConfigFileName = "mod.config.json"

// ModProject describes a mod project configuration file.
type ModProject struct {
	// Name is the slug form of the mod name, no spaces.
	Name string `json:"name"`
	// DisplayName is the human-readable mod name.
	DisplayName string `json:"display_name"`
	// Version is a semver string.
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Authors     []string `json:"authors"`
	// License is an optional SPDX identifier.
	License string `json:"license,omitempty"`
	// Layers are loaded in priority order; higher overrides lower.
	Layers []Layer `json:"layers,omitempty"`
	// Thumbnail is a path relative to the project folder.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Layer is one content layer of a mod project.
type Layer struct {
	Name        string `json:"name"`
	Priority    int    `json:"priority"`
	Description string `json:"description,omitempty"`
}

// New creates a project with default values.
func New(name, displayName string) *ModProject {
	return &ModProject{
		Name:        Slugify(name),
		DisplayName: displayName,
		Version:     "0.1.0",
		Description: "A game mod",
		Authors:     []string{},
		Layers:      []Layer{baseLayer()},
	}
}

// NewForVariant creates a project preconfigured for an entity variant.
func NewForVariant(name, entity string, variantID uint32) *ModProject {
	displayName := fmt.Sprintf("%s Skin %d", entity, variantID)
	if variantID == 0 {
		displayName = fmt.Sprintf("%s Base Skin", entity)
	}
	p := New(name, displayName)
	p.Description = fmt.Sprintf("Mod for %s skin %d", entity, variantID)
	return p
}

func baseLayer() Layer {
	return Layer{Name: "base", Priority: 0, Description: "Base layer of the mod"}
}

// Load reads and validates a project file.
func Load(path string) (*ModProject, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied project path
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var p ModProject
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project file: %w", err)
	}
	return &p, nil
}

// Save writes the project file with stable indentation.
func (p *ModProject) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project file: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644) // #nosec G306 -- project files are shareable metadata
}

// Validate checks raw project-file bytes against the embedded schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate project file: %w", err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("invalid project file: %s", strings.Join(issues, "; "))
	}
	return nil
}

// Slugify lowercases a name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune('-')
		}
	}
	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}
