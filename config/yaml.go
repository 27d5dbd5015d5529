package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var errNotMapping = errors.New("config: yaml document is not a mapping")

// ParseYAML reads the YAML form. Keys match the flat form; sequences are
// joined into comma lists so both forms go through Config.Set. A document
// that is not valid YAML is an error, individual bad values are warnings.
//
//	DisableSmoothing: false
//	PresetHeights: [0.35, 0.27]
//	AspectRatioLabels: ["16:9", "21:9"]
func ParseYAML(data []byte) (Config, []error, error) {
	cfg := Default()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, nil, fmt.Errorf("config: unmarshal yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cfg, nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return cfg, nil, errNotMapping
	}

	var warnings []error
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		value, err := nodeValue(v)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("line %d: %s: %w", v.Line, k.Value, err))
			continue
		}
		if err := cfg.Set(k.Value, value); err != nil {
			warnings = append(warnings, fmt.Errorf("line %d: %w", v.Line, err))
		}
	}
	return cfg, warnings, nil
}

func nodeValue(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value, nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("nested values are not supported")
			}
			parts = append(parts, item.Value)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported yaml node kind %d", n.Kind)
	}
}
