package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.yaml.in/yaml/v3"
)

// ErrMissing is returned by Find when a directory holds no manifest file.
var ErrMissing = errors.New("manifest missing")

// fileNames is the fallback order for finding manifest files.
var fileNames = []string{"manifest.json", "manifest.jsonc", "manifest.yaml", "manifest.yml"}

// Find returns the manifest path inside dir using the fallback order
// manifest.json > manifest.jsonc > manifest.yaml > manifest.yml.
func Find(dir string) (string, error) {
	for _, name := range fileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no manifest in %s: %w", dir, ErrMissing)
}

// FormatOf infers the manifest format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*ModuleManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse decodes manifest bytes in the given format. JSON input may carry
// comments and trailing commas.
func Parse(data []byte, format Format) (*ModuleManifest, error) {
	var m ModuleManifest
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
			return nil, err
		}
	}
	m.Format = format
	return &m, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
