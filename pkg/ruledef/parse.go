package ruledef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/solatis/strbounds/pkg/rules"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (Definition, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML, "yml":
		return ParseYAML(data)
	case FormatTOML:
		return ParseTOML(data)
	default:
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ParseJSON decodes a JSON definition. Unknown keys and content after the
// first value are rejected.
func ParseJSON(data []byte) (Definition, error) {
	trimmed := bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var d Definition
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var members []Definition
		if err := dec.Decode(&members); err != nil {
			return Definition{}, fmt.Errorf("failed to parse JSON: %w", err)
		}
		d = Definition{All: &members}
	} else if err := dec.Decode(&d); err != nil {
		return Definition{}, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return Definition{}, fmt.Errorf("%w: trailing content after JSON value", ErrInvalidDefinition)
	}
	return d, nil
}

// ParseYAML decodes a YAML definition. Unknown keys and further documents
// are rejected.
func ParseYAML(data []byte) (Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Definition{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Definition{}, fmt.Errorf("%w: empty YAML document", ErrInvalidDefinition)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Definition
	if doc.Content[0].Kind == yaml.SequenceNode {
		var members []Definition
		if err := dec.Decode(&members); err != nil {
			return Definition{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
		d = Definition{All: &members}
	} else if err := dec.Decode(&d); err != nil {
		return Definition{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); err != io.EOF {
		return Definition{}, fmt.Errorf("%w: more than one YAML document", ErrInvalidDefinition)
	}
	return d, nil
}

// ParseTOML decodes a TOML definition. A TOML document is always a table,
// so the top level is a single definition object.
func ParseTOML(data []byte) (Definition, error) {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var d Definition
	if err := dec.Decode(&d); err != nil {
		return Definition{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return d, nil
}

// LoadFile reads and decodes a definition file, choosing the format from
// its extension.
func LoadFile(path string) (Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Definition{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read rule file: %w", err)
	}
	return Parse(data, format)
}

// LoadNode reads a definition file and converts it to a rule tree.
func LoadNode(path string, maxDepth int) (rules.Node, error) {
	d, err := LoadFile(path)
	if err != nil {
		return rules.Node{}, err
	}
	return d.Node(maxDepth)
}
