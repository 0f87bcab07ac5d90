package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry_UnmarshalJSON(t *testing.T) {
	t.Run("point", func(t *testing.T) {
		var g Geometry
		err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[9.12,48.35]}`), &g)
		require.NoError(t, err)
		assert.Equal(t, "Point", g.Type)
		assert.Equal(t, [2]float64{9.12, 48.35}, g.Point)
	})

	t.Run("polygon", func(t *testing.T) {
		var g Geometry
		err := json.Unmarshal([]byte(`{"type":"Polygon","coordinates":[[[9,48],[9.2,48],[9.2,48.2],[9,48.2]]]}`), &g)
		require.NoError(t, err)
		assert.Equal(t, "Polygon", g.Type)
		require.Len(t, g.Polygon, 1)
		assert.Len(t, g.Polygon[0], 4)
	})

	t.Run("multipolygon", func(t *testing.T) {
		var g Geometry
		err := json.Unmarshal([]byte(`{"type":"MultiPolygon","coordinates":[[[[9,48],[9.2,48],[9.1,48.2]]]]}`), &g)
		require.NoError(t, err)
		assert.Equal(t, "MultiPolygon", g.Type)
		require.Len(t, g.MultiPolygon, 1)
	})

	t.Run("unsupported type", func(t *testing.T) {
		var g Geometry
		err := json.Unmarshal([]byte(`{"type":"LineString","coordinates":[[9,48],[9.2,48.2]]}`), &g)
		assert.Error(t, err)
	})
}

func TestGeometry_MarshalRoundTrip(t *testing.T) {
	g := Geometry{Type: "Point", Point: [2]float64{9.12, 48.35}}

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var back Geometry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g, back)
}

func TestGeometry_Centroid(t *testing.T) {
	t.Run("point is its own centroid", func(t *testing.T) {
		g := Geometry{Type: "Point", Point: [2]float64{9.12, 48.35}}
		lon, lat, ok := g.Centroid()
		require.True(t, ok)
		assert.Equal(t, 9.12, lon)
		assert.Equal(t, 48.35, lat)
	})

	t.Run("polygon averages the exterior ring", func(t *testing.T) {
		g := Geometry{Type: "Polygon", Polygon: [][][2]float64{
			{{9.0, 48.0}, {9.2, 48.0}, {9.2, 48.2}, {9.0, 48.2}},
		}}
		lon, lat, ok := g.Centroid()
		require.True(t, ok)
		assert.InDelta(t, 9.1, lon, 1e-9)
		assert.InDelta(t, 48.1, lat, 1e-9)
	})

	t.Run("multipolygon uses the first exterior ring", func(t *testing.T) {
		g := Geometry{Type: "MultiPolygon", MultiPolygon: [][][][2]float64{
			{{{8.0, 47.0}, {8.2, 47.0}, {8.1, 47.3}}},
			{{{10.0, 49.0}, {10.2, 49.0}, {10.1, 49.3}}},
		}}
		lon, lat, ok := g.Centroid()
		require.True(t, ok)
		assert.InDelta(t, 8.1, lon, 1e-9)
		assert.InDelta(t, 47.1, lat, 1e-9)
	})

	t.Run("empty geometries have no centroid", func(t *testing.T) {
		_, _, ok := Geometry{Type: "Polygon"}.Centroid()
		assert.False(t, ok)
		_, _, ok = Geometry{Type: "MultiPolygon"}.Centroid()
		assert.False(t, ok)
		_, _, ok = Geometry{}.Centroid()
		assert.False(t, ok)
	})
}
