package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseRoutine decodes a routine document. JSON is detected by extension
// or a leading brace, anything else is read as YAML.
func ParseRoutine(data []byte, name string) (Routine, error) {
	var routine Routine

	ext := strings.ToLower(filepath.Ext(name))
	trimmed := strings.TrimSpace(string(data))
	if ext == ".json" || strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &routine); err != nil {
			return Routine{}, fmt.Errorf("parsing routine %s: %w", name, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &routine); err != nil {
			return Routine{}, fmt.Errorf("parsing routine %s: %w", name, err)
		}
	}

	if routine.ID == "" {
		routine.ID = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return routine, nil
}

// LoadFile reads a routine document from disk without validating it.
// Validation happens once, when the workout is started.
func LoadFile(path string) (Routine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Routine{}, fmt.Errorf("reading routine file: %w", err)
	}
	return ParseRoutine(data, path)
}
