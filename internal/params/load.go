// Package params loads placeholder bindings from JSON or YAML files and from
// name=value assignments given on the command line.
package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cybertec-postgresql/pgsubst/internal/errors"
	"github.com/cybertec-postgresql/pgsubst/pkg/literal"
	"github.com/cybertec-postgresql/pgsubst/pkg/pgsubst"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a bindings file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported params file extension %q (supported: .json, .yaml, .yml)", filepath.Ext(path))
	}
}

// Load reads bindings from a JSON or YAML file. The document must be a
// mapping from placeholder name to value.
func Load(path string) (pgsubst.Bindings, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, errors.NewParamsError(path, err.Error())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParamsError(path, err.Error())
	}
	defer f.Close()

	b, err := Decode(f, format)
	if err != nil {
		return nil, errors.NewParamsError(path, err.Error())
	}
	return b, nil
}

// Decode reads bindings in the given format from r
func Decode(r io.Reader, format Format) (pgsubst.Bindings, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatYAML:
		return decodeYAML(r)
	default:
		return nil, fmt.Errorf("unsupported params format %q", format)
	}
}

// decodeJSON keeps numbers as their original text so that large integers
// and exact decimals survive unchanged.
func decodeJSON(r io.Reader) (pgsubst.Bindings, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("top-level value must be an object")
	}
	return pgsubst.Bind(doc), nil
}

func decodeYAML(r io.Reader) (pgsubst.Bindings, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return pgsubst.Bindings{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level value must be a mapping")
	}

	b := make(pgsubst.Bindings, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, node := root.Content[i], root.Content[i+1]
		v, err := yamlValue(node)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", node.Line, key.Value, err)
		}
		b[key.Value] = v
	}
	return b, nil
}

// yamlValue converts a node by its resolved tag. Unquoted timestamps become
// Timestamp values; nested mappings become JSON.
func yamlValue(node *yaml.Node) (literal.Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return yamlValue(node.Alias)

	case yaml.SequenceNode:
		arr := make(literal.Array, len(node.Content))
		for i, item := range node.Content {
			v, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil

	case yaml.MappingNode:
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return nil, err
		}
		return literal.JSONOf(m)
	}

	switch node.ShortTag() {
	case "!!null":
		return literal.Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return literal.Bool(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, err
		}
		return literal.Int(n), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return literal.Float(f), nil
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return nil, err
		}
		return literal.Timestamp(t), nil
	case "!!binary":
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		return literal.String(s), nil
	default:
		return literal.String(node.Value), nil
	}
}

// ParseAssignments turns name=value pairs into bindings. A value that is
// valid JSON is decoded as JSON; anything else is taken as a string, so
// id=5 binds a number and name=joe binds the string "joe".
func ParseAssignments(assignments []string) (pgsubst.Bindings, error) {
	b := make(pgsubst.Bindings, len(assignments))
	for _, a := range assignments {
		name, raw, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, errors.NewParamsError("", fmt.Sprintf("expected name=value, got %q", a))
		}
		b[name] = ParseValue(raw)
	}
	return b, nil
}

// ParseValue decodes raw as JSON, falling back to a string literal when it
// is not a single JSON value.
func ParseValue(raw string) literal.Value {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return literal.String(raw)
	}
	// Trailing garbage after a JSON value means it was not JSON after all.
	if _, err := dec.Token(); err != io.EOF {
		return literal.String(raw)
	}
	return literal.ValueOf(v)
}

// Merge returns a new Bindings holding base overlaid with override
func Merge(base, override pgsubst.Bindings) pgsubst.Bindings {
	merged := make(pgsubst.Bindings, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
