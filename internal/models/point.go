package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"gopkg.in/yaml.v3"
)

// Point is a decoded lon/lat pair. It is read either from a [lon, lat] array
// or from a WKT POINT string as stored on graph vertices.
type Point orb.Point

// NewPoint returns a point at lon/lat.
func NewPoint(lon, lat float64) Point {
	return Point{lon, lat}
}

// ParsePoint decodes a WKT POINT string such as "POINT (-0.1276 51.5072)".
func ParsePoint(s string) (Point, error) {
	p, err := wkt.UnmarshalPoint(strings.TrimSpace(s))
	if err != nil {
		return Point{}, fmt.Errorf("models: parse wkt point %q: %w", s, err)
	}
	return Point(p), nil
}

// Lon returns the longitude.
func (p Point) Lon() float64 { return p[0] }

// Lat returns the latitude.
func (p Point) Lat() float64 { return p[1] }

// Orb returns the point as an orb geometry.
func (p Point) Orb() orb.Point { return orb.Point(p) }

// MarshalJSON encodes the point as [lon, lat].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p[0], p[1]})
}

// UnmarshalJSON accepts [lon, lat] or a WKT string.
func (p *Point) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParsePoint(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("models: geometry must be [lon, lat] or WKT: %w", err)
	}
	return p.setCoords(coords)
}

// UnmarshalYAML accepts a [lon, lat] sequence or a WKT scalar.
func (p *Point) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := ParsePoint(node.Value)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	case yaml.SequenceNode:
		var coords []float64
		if err := node.Decode(&coords); err != nil {
			return fmt.Errorf("models: decode geometry (line %d): %w", node.Line, err)
		}
		return p.setCoords(coords)
	default:
		return fmt.Errorf("models: geometry must be [lon, lat] or WKT (line %d)", node.Line)
	}
}

func (p *Point) setCoords(coords []float64) error {
	if len(coords) != 2 {
		return fmt.Errorf("models: geometry needs 2 coordinates, got %d", len(coords))
	}
	*p = Point{coords[0], coords[1]}
	return nil
}
