package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Position is a point in the simulation plane, in meters.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Pos is a shorthand constructor for Position.
func Pos(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Point converts p to an orb point.
func (p Position) Point() orb.Point {
	return orb.Point{p.X, p.Y}
}

// DistanceTo returns the Euclidean distance from p to q.
func (p Position) DistanceTo(q Position) float64 {
	return planar.Distance(p.Point(), q.Point())
}

// Sub returns p - q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dot returns the dot product of p and q treated as vectors.
func (p Position) Dot(q Position) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Unit returns the unit vector pointing from p to q.
// Returns the zero vector when p and q coincide.
func (p Position) Unit(q Position) Position {
	d := q.Sub(p)
	l := math.Hypot(d.X, d.Y)
	if l < 1e-12 {
		return Position{}
	}
	return Position{X: d.X / l, Y: d.Y / l}
}

// Lerp interpolates linearly between a and b. t is clamped to [0,1].
func Lerp(a, b Position, t float64) Position {
	t = Clamp(t, 0, 1)
	return Position{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// LineString converts a sequence of positions to an orb line string.
func LineString(pts []Position) orb.LineString {
	ls := make(orb.LineString, 0, len(pts))
	for _, p := range pts {
		ls = append(ls, p.Point())
	}
	return ls
}

// PathLength returns the planar length of the polyline through pts.
func PathLength(pts []Position) float64 {
	if len(pts) < 2 {
		return 0
	}
	return planar.Length(LineString(pts))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
