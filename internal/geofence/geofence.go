// Package geofence decides whether a delivery point falls inside a hub's
// serviceable area. Two fence shapes are supported: a polygon of vertices
// (ray-casting containment, points on an edge count as inside) and a circle
// around the hub (haversine distance, boundary inclusive).
package geofence

import (
	"errors"
	"math"
)

const earthRadiusKm = 6371.0

// epsilon for the on-edge check; about a tenth of a metre in degrees.
const edgeEps = 1e-9

var (
	ErrBadPolygon = errors.New("polygon fence needs at least 3 vertices")
	ErrBadRadius  = errors.New("radius fence needs a positive radius")
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type FenceKind string

const (
	KindPolygon FenceKind = "polygon"
	KindRadius  FenceKind = "radius"
)

type Fence struct {
	Kind     FenceKind `json:"kind"`
	Vertices []Point   `json:"vertices,omitempty"`
	Center   Point     `json:"center,omitempty"`
	RadiusKm float64   `json:"radius_km,omitempty"`
}

func (f Fence) Validate() error {
	switch f.Kind {
	case KindPolygon:
		if len(f.Vertices) < 3 {
			return ErrBadPolygon
		}
	case KindRadius:
		if f.RadiusKm <= 0 {
			return ErrBadRadius
		}
	default:
		return errors.New("unknown fence kind: " + string(f.Kind))
	}
	return nil
}

// Contains reports whether p is inside the fence. An invalid fence contains
// nothing.
func (f Fence) Contains(p Point) bool {
	switch f.Kind {
	case KindPolygon:
		return len(f.Vertices) >= 3 && inPolygon(p, f.Vertices)
	case KindRadius:
		return f.RadiusKm > 0 && Haversine(p, f.Center) <= f.RadiusKm
	}
	return false
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// inPolygon is a standard ray cast over the vertex list. Points lying on an
// edge (or on a vertex) are reported inside.
func inPolygon(p Point, vs []Point) bool {
	inside := false
	n := len(vs)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := vs[j], vs[i]
		if onSegment(p, a, b) {
			return true
		}
		if (b.Lat > p.Lat) != (a.Lat > p.Lat) {
			x := (a.Lng-b.Lng)*(p.Lat-b.Lat)/(a.Lat-b.Lat) + b.Lng
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(p, a, b Point) bool {
	cross := (b.Lat-a.Lat)*(p.Lng-a.Lng) - (b.Lng-a.Lng)*(p.Lat-a.Lat)
	if math.Abs(cross) > edgeEps {
		return false
	}
	if p.Lat < math.Min(a.Lat, b.Lat)-edgeEps || p.Lat > math.Max(a.Lat, b.Lat)+edgeEps {
		return false
	}
	if p.Lng < math.Min(a.Lng, b.Lng)-edgeEps || p.Lng > math.Max(a.Lng, b.Lng)+edgeEps {
		return false
	}
	return true
}
