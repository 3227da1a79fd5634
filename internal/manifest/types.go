package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"go.yaml.in/yaml/v3"
)

// Section names a group of alias-bearing entries in a manifest.
const (
	SectionAliases    = "aliases"
	SectionComponents = "components"
)

// Sections lists the alias-bearing sections in the order modules index them.
var Sections = []string{SectionAliases, SectionComponents}

// Format identifies the on-disk encoding of a manifest.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// ModuleManifest is the parsed manifest at the root of a module directory.
type ModuleManifest struct {
	Info          Info      `yaml:"info" json:"info"`
	DefaultLocale string    `yaml:"default_locale,omitempty" json:"default_locale,omitempty"`
	Aliases       AliasList `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Components    AliasList `yaml:"components,omitempty" json:"components,omitempty"`

	Path   string `yaml:"-" json:"-"` // absolute path of the manifest file
	Format Format `yaml:"-" json:"-"`
}

// Info carries the module identity block.
type Info struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// AliasEntry is one alias and the file references it points at. Most aliases
// have a single path; a list declares several representations of one entity.
type AliasEntry struct {
	Alias string
	Paths []string
}

// AliasList keeps alias entries in document order.
type AliasList []AliasEntry

// Section returns the entries of the named section, or nil for unknown names.
func (m *ModuleManifest) Section(name string) AliasList {
	switch name {
	case SectionAliases:
		return m.Aliases
	case SectionComponents:
		return m.Components
	default:
		return nil
	}
}

// Append adds an entry to the named section. Unknown sections are ignored.
func (m *ModuleManifest) Append(section string, e AliasEntry) {
	switch section {
	case SectionAliases:
		m.Aliases = append(m.Aliases, e)
	case SectionComponents:
		m.Components = append(m.Components, e)
	}
}

// UnmarshalYAML decodes a mapping node while preserving key order.
func (l *AliasList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: alias section must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		entry := AliasEntry{Alias: key.Value}
		switch val.Kind {
		case yaml.ScalarNode:
			entry.Paths = []string{val.Value}
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: alias %q: list items must be strings", item.Line, key.Value)
				}
				entry.Paths = append(entry.Paths, item.Value)
			}
		default:
			return fmt.Errorf("line %d: alias %q must be a string or a list of strings", val.Line, key.Value)
		}
		*l = append(*l, entry)
	}
	return nil
}

// UnmarshalJSON decodes an object while preserving key order.
func (l *AliasList) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("alias section must be an object")
	}
	var err error
	res.ForEach(func(key, val gjson.Result) bool {
		entry := AliasEntry{Alias: key.String()}
		switch {
		case val.Type == gjson.String:
			entry.Paths = []string{val.String()}
		case val.IsArray():
			for _, item := range val.Array() {
				if item.Type != gjson.String {
					err = fmt.Errorf("alias %q: list items must be strings", entry.Alias)
					return false
				}
				entry.Paths = append(entry.Paths, item.String())
			}
		default:
			err = fmt.Errorf("alias %q must be a string or a list of strings", entry.Alias)
			return false
		}
		*l = append(*l, entry)
		return true
	})
	return err
}

// MarshalJSON encodes the list back into an object in document order.
func (l AliasList) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, e := range l {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(e.Alias)
		if err != nil {
			return nil, err
		}
		var v []byte
		if len(e.Paths) == 1 {
			v, err = json.Marshal(e.Paths[0])
		} else {
			v, err = json.Marshal(e.Paths)
		}
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}
