package model

import "math"

// Location is a point (or direction) in world space. Y is up.
// Value type, passed by value.
type Location struct {
	X float64
	Y float64
	Z float64
}

// NewLocation creates a Location with the given coordinates.
func NewLocation(x, y, z float64) Location {
	return Location{X: x, Y: y, Z: z}
}

// WithCoordinates returns a copy with new coordinates (immutable pattern).
func (l Location) WithCoordinates(x, y, z float64) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}

// Add returns l + o.
func (l Location) Add(o Location) Location {
	return Location{X: l.X + o.X, Y: l.Y + o.Y, Z: l.Z + o.Z}
}

// Sub returns l - o.
func (l Location) Sub(o Location) Location {
	return Location{X: l.X - o.X, Y: l.Y - o.Y, Z: l.Z - o.Z}
}

// Scale returns l * k.
func (l Location) Scale(k float64) Location {
	return Location{X: l.X * k, Y: l.Y * k, Z: l.Z * k}
}

// Lerp moves from l toward o by t, t clamped to [0,1].
func (l Location) Lerp(o Location, t float64) Location {
	t = math.Max(0, math.Min(1, t))
	return l.Add(o.Sub(l).Scale(t))
}

// DistanceSquared returns the squared distance to another point (no sqrt for the hot path).
func (l Location) DistanceSquared(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	dz := l.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Distance returns the euclidean distance to another point.
func (l Location) Distance(other Location) float64 {
	return math.Sqrt(l.DistanceSquared(other))
}
