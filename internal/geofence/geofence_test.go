package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// unit square around the origin, in (lat,lng)
var square = []Point{
	{Lat: 0, Lng: 0},
	{Lat: 0, Lng: 1},
	{Lat: 1, Lng: 1},
	{Lat: 1, Lng: 0},
}

func TestPolygonContains(t *testing.T) {
	f := Fence{Kind: KindPolygon, Vertices: square}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"strictly inside", Point{Lat: 0.5, Lng: 0.5}, true},
		{"strictly outside", Point{Lat: 1.5, Lng: 0.5}, false},
		{"outside same latitude", Point{Lat: 0.5, Lng: 2}, false},
		{"on edge counts as inside", Point{Lat: 0, Lng: 0.5}, true},
		{"on vertex counts as inside", Point{Lat: 1, Lng: 1}, true},
		{"near edge outside", Point{Lat: -0.001, Lng: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Contains(tt.p))
		})
	}
}

func TestPolygonConcave(t *testing.T) {
	// L-shape: the notch at the top right is outside
	f := Fence{Kind: KindPolygon, Vertices: []Point{
		{0, 0}, {0, 2}, {1, 2}, {1, 1}, {2, 1}, {2, 0},
	}}
	assert.True(t, f.Contains(Point{Lat: 0.5, Lng: 1.5}))
	assert.False(t, f.Contains(Point{Lat: 1.5, Lng: 1.5}))
	assert.True(t, f.Contains(Point{Lat: 1.5, Lng: 0.5}))
}

func TestRadiusContains(t *testing.T) {
	// 3 km fence, the source's hub default
	center := Point{Lat: 55.7558, Lng: 37.6173}
	f := Fence{Kind: KindRadius, Center: center, RadiusKm: 3}

	assert.True(t, f.Contains(center))
	// ~1.1 km north
	assert.True(t, f.Contains(Point{Lat: 55.7658, Lng: 37.6173}))
	// ~5.5 km north
	assert.False(t, f.Contains(Point{Lat: 55.8058, Lng: 37.6173}))
}

func TestRadiusBoundaryInclusive(t *testing.T) {
	center := Point{Lat: 0, Lng: 0}
	p := Point{Lat: 0, Lng: 1}
	d := Haversine(center, p)

	exactly := Fence{Kind: KindRadius, Center: center, RadiusKm: d}
	assert.True(t, exactly.Contains(p), "distance == radius must be serviceable")

	short := Fence{Kind: KindRadius, Center: center, RadiusKm: d * 0.999}
	assert.False(t, short.Contains(p))
}

func TestHaversine(t *testing.T) {
	// one degree of latitude is ~111.19 km
	d := Haversine(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0})
	assert.InDelta(t, 111.19, d, 0.5)

	assert.Zero(t, Haversine(Point{Lat: 42, Lng: 42}, Point{Lat: 42, Lng: 42}))
}

func TestFenceValidate(t *testing.T) {
	assert.NoError(t, Fence{Kind: KindPolygon, Vertices: square}.Validate())
	assert.ErrorIs(t, Fence{Kind: KindPolygon, Vertices: square[:2]}.Validate(), ErrBadPolygon)
	assert.NoError(t, Fence{Kind: KindRadius, RadiusKm: 3}.Validate())
	assert.ErrorIs(t, Fence{Kind: KindRadius}.Validate(), ErrBadRadius)
	assert.Error(t, Fence{Kind: "hexagon"}.Validate())
}
