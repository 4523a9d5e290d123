package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFromDirectory loads every "item<N>.json" template file in dir into r,
// adapted from the teacher's pkg/core/prompt.LoadFromDirectory (prompts/
// + schemas/ subdirectory walk) down to a single flat directory of
// per-item templates, since FDD items don't need the debate/valuation
// category nesting the teacher's prompt library supports.
func LoadFromDirectory(r *Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("prompt: read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("prompt: read %s: %w", path, err)
		}
		var t Template
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("prompt: parse %s: %w", path, err)
		}
		if err := r.Register(&t); err != nil {
			return fmt.Errorf("prompt: register %s: %w", t.ID, err)
		}
	}
	return nil
}
