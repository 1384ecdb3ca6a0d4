// Package models defines the data contracts exchanged with the route subgraph
// and routing collaborators.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ID is an opaque vertex or edge identifier. Source graphs use both integer
// and string ids, so the JSON kind is kept: the number 12 and the string "12"
// are different ids. Numbers are stored in canonical form, so 12, 12.0 and
// 0xC are the same id.
type ID struct {
	value   string
	numeric bool
}

// StringID returns a string identifier.
func StringID(s string) ID {
	return ID{value: s}
}

// IntID returns a numeric identifier.
func IntID(n int64) ID {
	return ID{value: strconv.FormatInt(n, 10), numeric: true}
}

// String returns the identifier text.
func (id ID) String() string {
	return id.value
}

// IsZero reports whether the identifier was never set.
func (id ID) IsZero() bool {
	return id.value == "" && !id.numeric
}

// Numeric reports whether the identifier was decoded from a number.
func (id ID) Numeric() bool {
	return id.numeric
}

// MarshalJSON encodes numeric ids as JSON numbers and the rest as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("models: decode id: %w", err)
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("models: id must be a string or number, got %s", data)
	}
	v, err := numericID(n.String())
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// numericID parses a decimal number. Integral values, including 1.0 and
// 1e3, become IntID; other values keep their shortest float form.
func numericID(text string) (ID, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return IntID(n), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return ID{}, fmt.Errorf("models: invalid numeric id %q", text)
	}
	return floatID(f), nil
}

func floatID(f float64) ID {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return IntID(int64(f))
	}
	return ID{value: strconv.FormatFloat(f, 'g', -1, 64), numeric: true}
}

// UnmarshalYAML accepts a scalar; int and float tags are kept numeric.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("models: id must be a scalar (line %d)", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*id = ID{}
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("models: decode id (line %d): %w", node.Line, err)
		}
		*id = IntID(n)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("models: invalid numeric id %q (line %d)", node.Value, node.Line)
		}
		*id = floatID(f)
	default:
		*id = StringID(node.Value)
	}
	return nil
}

// MarshalYAML keeps numeric ids unquoted.
func (id ID) MarshalYAML() (any, error) {
	if id.numeric {
		tag := "!!int"
		if _, err := strconv.ParseInt(id.value, 10, 64); err != nil {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: id.value}, nil
	}
	return id.value, nil
}
