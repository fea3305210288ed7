package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returns paths with forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	if strings.Contains(c, "..") {
		return "", errors.New("path traversal detected")
	}
	// Normalize to forward slashes for cross-platform consistency
	return filepath.ToSlash(c), nil
}

// ContainedPath joins rel onto baseDir and verifies the result stays inside
// baseDir. Mapping tables and document dependency lists come from untrusted
// package contents, so every resolved relative path goes through here before
// the engine touches it.
func ContainedPath(baseDir, rel string) (string, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", errors.New("failed to resolve base directory")
	}
	joined := filepath.Join(baseAbs, filepath.FromSlash(rel))

	relBack, err := filepath.Rel(baseAbs, joined)
	if err != nil {
		return "", errors.New("failed to compute relative path")
	}
	if strings.HasPrefix(relBack, ".."+string(filepath.Separator)) || relBack == ".." {
		return "", errors.New("path escapes base directory")
	}
	return joined, nil
}

// WriteFilePreservePerms writes data to path preserving existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return os.WriteFile(path, data, mode)
}
