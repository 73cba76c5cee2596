// Package manifest reads and updates the version field of a package.json
// manifest. The version field is the version metadata of a release train:
// each branch's manifest pins the train's current version.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/traincut/traincut/internal/semver"
)

// FileName is the manifest file at the working-tree root.
const FileName = "package.json"

// ParseVersion extracts the version field from raw manifest content.
func ParseVersion(content []byte) (semver.Version, error) {
	var m struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(content, &m); err != nil {
		return semver.Version{}, fmt.Errorf("could not parse manifest: %w", err)
	}
	if m.Version == "" {
		return semver.Version{}, fmt.Errorf("manifest has no version field")
	}
	return semver.Parse(m.Version)
}

// SetVersion rewrites the version field of the manifest at the root of
// workDir, preserving all other fields. Output is re-marshaled with 2-space
// indentation, the conventional npm formatting.
func SetVersion(workDir string, version semver.Version) error {
	path := filepath.Join(workDir, FileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", FileName, err)
	}

	var m map[string]any
	if err := json.Unmarshal(content, &m); err != nil {
		return fmt.Errorf("could not parse %s: %w", FileName, err)
	}
	m["version"] = version.String()

	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", FileName, err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", FileName, err)
	}
	return nil
}
