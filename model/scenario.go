package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSnapshot reads a field snapshot from a YAML file. Used by the dry-run
// mode and by tests that want a realistic field without a host.
func LoadSnapshot(path string) (Snapshot, error) {
	var s Snapshot
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if s.Field.Width <= 0 || s.Field.Height <= 0 {
		return s, fmt.Errorf("snapshot %s: field must have positive size, got %gx%g", path, s.Field.Width, s.Field.Height)
	}
	return s, nil
}
