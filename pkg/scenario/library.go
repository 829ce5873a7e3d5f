package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a scenario file. JSON and YAML are both
// accepted, keyed off the file extension.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario file extension: %s", ext)
	}

	s.FileName = filepath.Base(path)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", s.FileName, err)
	}
	return &s, nil
}

// Library serves scenarios from a directory of JSON and YAML files.
type Library struct {
	dir string
}

// NewLibrary creates a library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Get loads the scenario with the given file name from the library.
// The name is sanitized so it cannot escape the library directory.
func (l *Library) Get(fileName string) (*Scenario, error) {
	return Load(filepath.Join(l.dir, filepath.Base(fileName)))
}

// List returns the file names of all scenarios in the library, sorted.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
