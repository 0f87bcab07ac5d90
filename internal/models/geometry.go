package models

import (
	"encoding/json"
	"fmt"
)

// Geometry represents a GeoJSON geometry attached to a soil sample or
// zone boundary. Point, Polygon and MultiPolygon are supported; the
// geometry is used only to derive a centroid for the rainfall lookup.
// Coordinates follow GeoJSON order: [lon, lat], SRID 4326 (WGS84).
type Geometry struct {
	Type         string
	Point        [2]float64
	Polygon      [][][2]float64
	MultiPolygon [][][][2]float64
}

// UnmarshalJSON parses a GeoJSON geometry object. Unsupported geometry
// types are rejected so a malformed boundary surfaces at bind time rather
// than as a silent rainfall miss.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var head struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("failed to unmarshal geometry: %w", err)
	}

	switch head.Type {
	case "Point":
		if err := json.Unmarshal(head.Coordinates, &g.Point); err != nil {
			return fmt.Errorf("failed to unmarshal point coordinates: %w", err)
		}
	case "Polygon":
		if err := json.Unmarshal(head.Coordinates, &g.Polygon); err != nil {
			return fmt.Errorf("failed to unmarshal polygon coordinates: %w", err)
		}
	case "MultiPolygon":
		if err := json.Unmarshal(head.Coordinates, &g.MultiPolygon); err != nil {
			return fmt.Errorf("failed to unmarshal multipolygon coordinates: %w", err)
		}
	default:
		return fmt.Errorf("unsupported geometry type %q", head.Type)
	}

	g.Type = head.Type
	return nil
}

// MarshalJSON emits the geometry in GeoJSON-compliant form.
func (g Geometry) MarshalJSON() ([]byte, error) {
	var coords interface{}
	switch g.Type {
	case "Point":
		coords = g.Point
	case "Polygon":
		coords = g.Polygon
	case "MultiPolygon":
		coords = g.MultiPolygon
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}

	return json.Marshal(struct {
		Type        string      `json:"type"`
		Coordinates interface{} `json:"coordinates"`
	}{Type: g.Type, Coordinates: coords})
}

// Centroid returns the (longitude, latitude) centroid of the geometry.
// For polygons this is the unweighted average of the exterior-ring
// vertices, not an area-weighted centroid; rainfall data is coarse enough
// that the simple average is sufficient. MultiPolygon uses the first
// polygon's exterior ring. The third return value is false when no
// centroid can be derived.
func (g Geometry) Centroid() (lon, lat float64, ok bool) {
	switch g.Type {
	case "Point":
		return g.Point[0], g.Point[1], true
	case "Polygon":
		if len(g.Polygon) == 0 {
			return 0, 0, false
		}
		return ringCentroid(g.Polygon[0])
	case "MultiPolygon":
		if len(g.MultiPolygon) == 0 || len(g.MultiPolygon[0]) == 0 {
			return 0, 0, false
		}
		return ringCentroid(g.MultiPolygon[0][0])
	}
	return 0, 0, false
}

// ringCentroid averages the vertices of a ring.
func ringCentroid(ring [][2]float64) (lon, lat float64, ok bool) {
	if len(ring) == 0 {
		return 0, 0, false
	}
	var sumLon, sumLat float64
	for _, pt := range ring {
		sumLon += pt[0]
		sumLat += pt[1]
	}
	n := float64(len(ring))
	return sumLon / n, sumLat / n, true
}
