package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/haawall/haawall-go/internal/errors"
)

// parseFile reads one knowledge file. The file name (without extension) is
// the category name; the extension selects the parser.
func parseFile(path string) (string, []Fragment, error) {
	category := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, &apperrors.KnowledgeError{Category: category, Path: path, Err: err}
	}

	var fragments []Fragment
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		fragments, err = parseYAML(data)
	case ".txt":
		fragments = parseText(category, data)
	default:
		err = fmt.Errorf("unsupported knowledge file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return "", nil, &apperrors.KnowledgeError{Category: category, Path: path, Err: err}
	}

	return category, fragments, nil
}

// parseYAML accepts either a mapping of key to value or a sequence of
// {key, value} entries. Mapping order is preserved via the node API.
func parseYAML(data []byte) ([]Fragment, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		return parseYAMLMapping(root)
	case yaml.SequenceNode:
		return parseYAMLSequence(root)
	default:
		return nil, fmt.Errorf("yaml root must be a mapping or sequence, got kind %d", root.Kind)
	}
}

func parseYAMLMapping(node *yaml.Node) ([]Fragment, error) {
	fragments := make([]Fragment, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value, err := renderValue(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, Fragment{Key: key, Value: value})
	}
	return fragments, nil
}

func parseYAMLSequence(node *yaml.Node) ([]Fragment, error) {
	fragments := make([]Fragment, 0, len(node.Content))
	for _, item := range node.Content {
		var entry struct {
			Key   string `yaml:"key"`
			Value string `yaml:"value"`
		}
		if err := item.Decode(&entry); err != nil {
			return nil, fmt.Errorf("invalid sequence entry: %w", err)
		}
		if entry.Key == "" {
			return nil, fmt.Errorf("sequence entry missing key")
		}
		fragments = append(fragments, Fragment{Key: entry.Key, Value: entry.Value})
	}
	return fragments, nil
}

// renderValue flattens scalar, sequence, and nested mapping values into the
// single-line text used for prompt fragments.
func renderValue(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			rendered, err := renderValue(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, rendered)
		}
		return strings.Join(parts, "; "), nil
	case yaml.MappingNode:
		parts := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			rendered, err := renderValue(node.Content[i+1])
			if err != nil {
				return "", err
			}
			parts = append(parts, node.Content[i].Value+": "+rendered)
		}
		return strings.Join(parts, "; "), nil
	default:
		return "", fmt.Errorf("unsupported yaml value kind %d", node.Kind)
	}
}

// parseText treats the whole file as one flat fragment keyed by the
// category name.
func parseText(category string, data []byte) []Fragment {
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil
	}
	return []Fragment{{Key: category, Value: content}}
}
