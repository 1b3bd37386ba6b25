package graph

import (
	"github.com/ukydev/rider-sim/internal/geo"
)

// DefaultSignalCycle is the green time per axis, in seconds.
const DefaultSignalCycle = 30.0

// Intersection is a node of the city graph. Signalized intersections alternate
// green between the north-south and east-west axes.
type Intersection struct {
	ID           string
	Position     geo.Position
	IsSignalized bool

	outgoing     []string
	queues       map[Direction][]string
	greenAxis    Axis
	phaseElapsed float64
	cycle        float64
}

// NewIntersection creates an intersection with an empty queue set.
func NewIntersection(id string, pos geo.Position, signalized bool) *Intersection {
	return &Intersection{
		ID:           id,
		Position:     pos,
		IsSignalized: signalized,
		queues:       make(map[Direction][]string),
		greenAxis:    AxisNorthSouth,
		cycle:        DefaultSignalCycle,
	}
}

// SetCycle overrides the per-axis green time. Non-positive values are ignored.
func (i *Intersection) SetCycle(seconds float64) {
	if seconds > 0 {
		i.cycle = seconds
	}
}

// Connect registers an outgoing road. Duplicate ids are ignored.
func (i *Intersection) Connect(roadID string) {
	for _, id := range i.outgoing {
		if id == roadID {
			return
		}
	}
	i.outgoing = append(i.outgoing, roadID)
}

// Outgoing returns the outgoing road ids in insertion order.
func (i *Intersection) Outgoing() []string {
	out := make([]string, len(i.outgoing))
	copy(out, i.outgoing)
	return out
}

// CanVehiclePass reports whether traffic heading in dir may enter.
func (i *Intersection) CanVehiclePass(dir Direction) bool {
	if !i.IsSignalized {
		return true
	}
	return dir.Axis() == i.greenAxis
}

// AddToQueue registers a waiting agent for an approach direction.
func (i *Intersection) AddToQueue(dir Direction, agentID string) {
	for _, id := range i.queues[dir] {
		if id == agentID {
			return
		}
	}
	i.queues[dir] = append(i.queues[dir], agentID)
}

// Queue returns the agents waiting on dir, in arrival order.
func (i *Intersection) Queue(dir Direction) []string {
	q := i.queues[dir]
	out := make([]string, len(q))
	copy(out, q)
	return out
}

// GreenAxis returns the axis currently allowed through.
func (i *Intersection) GreenAxis() Axis {
	return i.greenAxis
}

// AdvanceSignal moves the signal phase forward by dt seconds. When the phase
// flips, the queues of the newly green axis are released.
func (i *Intersection) AdvanceSignal(dt float64) {
	if !i.IsSignalized || dt <= 0 {
		return
	}
	i.phaseElapsed += dt
	for i.phaseElapsed >= i.cycle {
		i.phaseElapsed -= i.cycle
		if i.greenAxis == AxisNorthSouth {
			i.greenAxis = AxisEastWest
		} else {
			i.greenAxis = AxisNorthSouth
		}
		for dir := range i.queues {
			if dir.Axis() == i.greenAxis {
				delete(i.queues, dir)
			}
		}
	}
}
