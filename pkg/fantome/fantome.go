// Package fantome builds .fantome mod packages: zip archives laid out as
//
//	my_mod_1.0.0.fantome
//	├── WAD/
//	│   └── <Entity>.wad.client/
//	│       └── <repathed content>
//	└── META/
//	    └── info.json
package fantome

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/flintmod/bumpath/pkg/logger"
)

// Metadata is the mod description embedded as META/info.json. Field names
// follow the established package format.
type Metadata struct {
	Name        string `json:"Name"`
	Author      string `json:"Author"`
	Version     string `json:"Version"`
	Description string `json:"Description"`
}

// DefaultMetadata returns placeholder metadata for packages exported without
// an explicit description.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:        "Untitled Mod",
		Author:      "Unknown",
		Version:     "1.0.0",
		Description: "A game mod",
	}
}

// ExportResult summarizes a completed export.
type ExportResult struct {
	OutputPath string
	FileCount  int
	TotalSize  int64
}

// GenerateFilename derives the package filename from the mod name and
// version, replacing spaces so the result is shell-friendly.
func GenerateFilename(name, version string) string {
	sanitized := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if sanitized == "" {
		sanitized = "mod"
	}
	return fmt.Sprintf("%s_%s.fantome", sanitized, version)
}

// Export packs the repathed content root into a .fantome archive at
// outputPath. entity names the WAD folder the loader mounts the content
// under.
func Export(contentRoot, outputPath, entity string, meta Metadata) (*ExportResult, error) {
	if _, err := os.Stat(contentRoot); err != nil {
		return nil, fmt.Errorf("content root not found: %s", contentRoot)
	}

	logger.Info("Exporting fantome package", logger.String("output", outputPath))

	out, err := os.Create(outputPath) // #nosec G304 -- output path is operator-chosen
	if err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)
	result := &ExportResult{OutputPath: outputPath}

	wadFolder := fmt.Sprintf("%s.wad.client", entity)

	walkErr := filepath.WalkDir(contentRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(contentRoot, p)
		if relErr != nil {
			return relErr
		}
		zipPath := fmt.Sprintf("WAD/%s/%s", wadFolder, filepath.ToSlash(rel))

		w, err := zw.Create(zipPath)
		if err != nil {
			return err
		}
		f, err := os.Open(p) // #nosec G304 -- enumerated from the content root walk
		if err != nil {
			return err
		}
		n, err := io.Copy(w, f)
		_ = f.Close()
		if err != nil {
			return err
		}
		result.FileCount++
		result.TotalSize += n
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("pack content: %w", walkErr)
	}

	infoBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	w, err := zw.Create("META/info.json")
	if err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("write metadata: %w", err)
	}
	if _, err := w.Write(infoBytes); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize package: %w", err)
	}

	logger.Info("Export complete",
		logger.Int("files", result.FileCount),
		logger.String("output", outputPath))
	return result, nil
}
