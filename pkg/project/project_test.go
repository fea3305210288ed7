package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"My Mod", "my-mod"},
		{"Test_Project", "test-project"},
		{"Cool Mod 123", "cool-mod-123"},
		{"--weird--name--", "weird-name"},
		{"UPPER", "upper"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	p := New("My Mod", "My Mod")
	assert.Equal(t, "my-mod", p.Name)
	assert.Equal(t, "0.1.0", p.Version)
	require.Len(t, p.Layers, 1)
	assert.Equal(t, "base", p.Layers[0].Name)
	assert.Equal(t, 0, p.Layers[0].Priority)
}

func TestNewForVariant(t *testing.T) {
	base := NewForVariant("ahri-base", "Ahri", 0)
	assert.Equal(t, "Ahri Base Skin", base.DisplayName)

	skin := NewForVariant("ahri-seven", "Ahri", 7)
	assert.Equal(t, "Ahri Skin 7", skin.DisplayName)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	p := NewForVariant("my-mod", "Ahri", 0)
	p.Authors = []string{"SirDexal"}
	p.License = "MIT"
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing required fields", `{"name": "my-mod"}`},
		{"bad slug", `{"name": "My Mod", "display_name": "My Mod", "version": "1.0.0", "description": ""}`},
		{"bad version", `{"name": "my-mod", "display_name": "My Mod", "version": "one", "description": ""}`},
		{"empty display name", `{"name": "my-mod", "display_name": "", "version": "1.0.0", "description": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate([]byte(tt.data)))
		})
	}
}

func TestValidateAcceptsMinimalDocument(t *testing.T) {
	data := `{"name": "my-mod", "display_name": "My Mod", "version": "1.0.0", "description": "x"}`
	assert.NoError(t, Validate([]byte(data)))
}
