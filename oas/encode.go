package oas

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSON renders the document as indented JSON. Map keys are sorted, so the
// output is stable for a given document.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("oas: encode json: %w", err)
	}
	return data, nil
}

// YAML renders the document as block-style YAML with the same key order as
// the JSON rendering.
func (d *Document) YAML() ([]byte, error) {
	data, err := d.JSON()
	if err != nil {
		return nil, err
	}
	return jsonToYAML(data)
}

// ParseJSON decodes a document previously rendered with JSON.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("oas: decode json: %w", err)
	}
	return &doc, nil
}

// jsonToYAML re-encodes JSON as YAML through a yaml.Node tree. JSON is a
// YAML subset, so the parsed node keeps the key order; only the flow and
// quoting styles are reset so the encoder picks block style and quotes
// scalars only where needed.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("oas: convert json to yaml: %w", err)
	}
	resetStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("oas: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("oas: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func resetStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style &^= yaml.FlowStyle
	case yaml.ScalarNode:
		n.Style &^= yaml.DoubleQuotedStyle | yaml.SingleQuotedStyle
	}
	for _, c := range n.Content {
		resetStyle(c)
	}
}
