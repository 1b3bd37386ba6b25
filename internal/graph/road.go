package graph

import (
	"github.com/ukydev/rider-sim/internal/geo"
)

// Direction is the cardinal heading of a one-way road.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "unknown"
}

// Axis is the signal axis a direction belongs to.
type Axis int

const (
	AxisNorthSouth Axis = iota
	AxisEastWest
)

// Axis returns the signal axis of d.
func (d Direction) Axis() Axis {
	if d == East || d == West {
		return AxisEastWest
	}
	return AxisNorthSouth
}

// DirectionBetween returns the dominant cardinal heading from a to b.
// The plane's y axis grows southward.
func DirectionBetween(a, b geo.Position) Direction {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if abs(dx) >= abs(dy) {
		if dx >= 0 {
			return East
		}
		return West
	}
	if dy > 0 {
		return South
	}
	return North
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Road is a one-way segment between two intersections.
// Roads are immutable once added to a Network and are referenced by ID.
type Road struct {
	ID                string
	StartIntersection string
	EndIntersection   string
	Length            float64 // meters
	Lanes             int
	Direction         Direction
	SpeedLimit        float64 // km/h
	Points            []geo.Position
}

// Start returns the first point of the road.
func (r Road) Start() geo.Position {
	if len(r.Points) == 0 {
		return geo.Position{}
	}
	return r.Points[0]
}

// End returns the last point of the road.
func (r Road) End() geo.Position {
	if len(r.Points) == 0 {
		return geo.Position{}
	}
	return r.Points[len(r.Points)-1]
}

// PositionAt interpolates linearly between the road's start and end.
func (r Road) PositionAt(progress float64) geo.Position {
	return geo.Lerp(r.Start(), r.End(), progress)
}

// Heading returns the unit vector from the road's start to its end.
func (r Road) Heading() geo.Position {
	return r.Start().Unit(r.End())
}
