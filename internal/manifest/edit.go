package manifest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"
	"go.yaml.in/yaml/v3"
)

// AddAlias inserts section.alias into the manifest file at path and rewrites
// the file. A single path is written as a string, several as a list. JSON
// goes through sjson and keeps its layout, but comments and trailing commas
// are blanked out first. YAML goes through a yaml.Node round trip and keeps
// its comments.
func AddAlias(path, section, alias string, paths ...string) error {
	if len(paths) == 0 {
		return fmt.Errorf("adding alias %s.%s: no paths", section, alias)
	}
	data, err := readFile(path)
	if err != nil {
		return err
	}

	var out []byte
	switch FormatOf(path) {
	case FormatYAML:
		out, err = addAliasYAML(data, section, alias, paths)
	default:
		out, err = addAliasJSON(data, section, alias, paths)
	}
	if err != nil {
		return fmt.Errorf("adding alias %s.%s to %s: %w", section, alias, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

func addAliasJSON(data []byte, section, alias string, paths []string) ([]byte, error) {
	data = jsonc.ToJSON(data)
	key := section + "." + escapePathKey(alias)
	if len(paths) == 1 {
		return sjson.SetBytes(data, key, paths[0])
	}
	return sjson.SetBytes(data, key, paths)
}

func addAliasYAML(data []byte, section, alias string, paths []string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("manifest root is not a mapping")
	}

	sec := mappingValue(root, section)
	switch {
	case sec == nil:
		sec = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		root.Content = append(root.Content, scalarNode(section), sec)
	case sec.Kind != yaml.MappingNode:
		// "aliases:" with no value decodes as a null scalar.
		*sec = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	value := scalarNode(paths[0])
	if len(paths) > 1 {
		value = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, p := range paths {
			value.Content = append(value.Content, scalarNode(p))
		}
	}

	for i := 0; i+1 < len(sec.Content); i += 2 {
		if sec.Content[i].Value == alias {
			sec.Content[i+1] = value
			return encodeYAML(&doc)
		}
	}
	sec.Content = append(sec.Content, scalarNode(alias), value)
	return encodeYAML(&doc)
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func encodeYAML(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// escapePathKey escapes characters that carry meaning in sjson paths.
func escapePathKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
