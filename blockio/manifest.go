// Package blockio provides the thin I/O wrappers around the engine: loading
// and saving resource manifests as YAML or JSON, and static pre-checks of
// provider-native HCL documents.
package blockio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cloudshift-ai/cloudshift"
)

// Manifest is a resource manifest file: a provider tag plus the list of
// resource documents.
type Manifest struct {
	Version   int                `yaml:"version" json:"version"`
	Provider  string             `yaml:"provider" json:"provider"`
	Resources []cloudshift.Block `yaml:"resources" json:"resources"`
}

// displayOrder is the conventional key order for rendered documents. Models
// and YAML round trips scramble key order; rendering restores it.
var displayOrder = []string{"id", "service", "resource_type", "region", "quantity", "configuration"}

// ParseYAML decodes a manifest from YAML bytes.
func ParseYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest YAML: %w", err)
	}
	normalizeManifest(&m)
	return &m, nil
}

// LoadYAML reads a manifest from a YAML file.
func LoadYAML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}

// SaveYAML writes a manifest as YAML, creating parent directories and
// restoring the conventional key order on every resource.
func SaveYAML(path string, m *Manifest) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}

	ordered := *m
	ordered.Resources = make([]cloudshift.Block, len(m.Resources))
	copy(ordered.Resources, m.Resources)

	data, err := marshalOrderedYAML(&ordered)
	if err != nil {
		return fmt.Errorf("encoding manifest YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ParseJSON decodes a manifest from JSON bytes.
func ParseJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest JSON: %w", err)
	}
	normalizeManifest(&m)
	return &m, nil
}

// LoadJSON reads a manifest from a JSON file.
func LoadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, err
	}
	return ParseJSON(data)
}

// normalizeManifest converts the nested YAML decoding artifacts so every
// resource is a plain map[string]any tree.
func normalizeManifest(m *Manifest) {
	for i, res := range m.Resources {
		m.Resources[i] = cloudshift.Block(normalizeValue(map[string]any(res)).(map[string]any))
	}
}

// normalizeValue rewrites map[any]any trees (yaml.v2 legacy shape) and
// non-string-keyed maps into map[string]any.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return val
	}
}

// Reorder returns a copy of the block whose top-level keys follow the
// conventional display order, with unknown keys appended in their original
// decode order.
func Reorder(b cloudshift.Block) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	seen := make(map[string]bool)

	appendKey := func(key string) {
		val, ok := b[key]
		if !ok || seen[key] {
			return
		}
		seen[key] = true
		var keyNode, valNode yaml.Node
		keyNode.SetString(key)
		if err := valNode.Encode(val); err != nil {
			return
		}
		node.Content = append(node.Content, &keyNode, &valNode)
	}

	for _, key := range displayOrder {
		appendKey(key)
	}
	for key := range b {
		if !seen[key] {
			appendKey(key)
		}
	}
	return node
}

// marshalOrderedYAML encodes the manifest with each resource reordered.
func marshalOrderedYAML(m *Manifest) ([]byte, error) {
	resources := make([]*yaml.Node, len(m.Resources))
	for i, res := range m.Resources {
		resources[i] = Reorder(res)
	}

	doc := map[string]any{
		"version":   m.Version,
		"provider":  m.Provider,
		"resources": resources,
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range []string{"version", "provider", "resources"} {
		var keyNode, valNode yaml.Node
		keyNode.SetString(key)
		if err := valNode.Encode(doc[key]); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, &keyNode, &valNode)
	}
	return yaml.Marshal(root)
}
