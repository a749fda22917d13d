package resource

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLFormat stores entries as a nested YAML mapping. A comment line above a
// key becomes the entry comment.
type YAMLFormat struct{}

func (YAMLFormat) Name() string         { return "yaml" }
func (YAMLFormat) Extensions() []string { return []string{".yaml", ".yml"} }

func (YAMLFormat) Read(r io.Reader) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return []Entry{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to decode yaml: top-level value must be a mapping")
	}

	entries := []Entry{}
	readYAMLMapping(root, "", &entries)
	return entries, nil
}

func readYAMLMapping(node *yaml.Node, prefix string, entries *[]Entry) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		full := joinKey(prefix, key.Value)
		switch value.Kind {
		case yaml.MappingNode:
			readYAMLMapping(value, full, entries)
		case yaml.SequenceNode:
			var items []string
			for _, item := range value.Content {
				items = append(items, item.Value)
			}
			*entries = append(*entries, Entry{Key: full, Value: strings.Join(items, "\n"), Comment: yamlComment(key, value)})
		default:
			v := value.Value
			if value.Tag == "!!null" {
				v = ""
			}
			*entries = append(*entries, Entry{Key: full, Value: v, Comment: yamlComment(key, value)})
		}
	}
}

func yamlComment(key, value *yaml.Node) string {
	raw := key.HeadComment
	if raw == "" {
		raw = value.LineComment
	}
	if raw == "" {
		return ""
	}
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "#"))
	}
	return strings.Join(lines, "\n")
}

func (YAMLFormat) Write(w io.Writer, entries []Entry) error {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{yamlMapping(buildTree(entries))}}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func yamlMapping(node *keyNode) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, c := range node.children {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.name}
		if !c.leaf {
			m.Content = append(m.Content, key, yamlMapping(c))
			continue
		}
		if c.entry.Comment != "" {
			lines := strings.Split(c.entry.Comment, "\n")
			for i, l := range lines {
				lines[i] = "# " + l
			}
			key.HeadComment = strings.Join(lines, "\n")
		}
		m.Content = append(m.Content, key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.entry.Value})
	}
	return m
}
