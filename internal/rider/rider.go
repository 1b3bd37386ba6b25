package rider

import (
	"fmt"
	"math/rand"

	"github.com/samber/lo"
	"github.com/ukydev/rider-sim/internal/geo"
	"github.com/ukydev/rider-sim/internal/graph"
	"github.com/ukydev/rider-sim/internal/hazard"
	"github.com/ukydev/rider-sim/internal/profile"
)

const (
	accelRate          = 30.0 // km/h per second at zero fatigue
	overtakeAccel      = 40.0
	overtakeSpeedCap   = 1.2
	lightDecel         = 25.0
	emergencyDecel     = 50.0
	hazardSpeedFactor  = 0.6
	hazardCrawlSpeed   = 5.0 // km/h
	overtakePenalty    = 2.0
	shortcutTimeSaved  = 0.5
	fatigueDampLevel   = 0.8
	fatigueDamping     = 0.9
	batteryDrainFactor = 0.001
	batteryReserve     = 20.0
	batteryDamping     = 0.7
	kmhToMs            = 1000.0 / 3600.0
)

// World is the read view of the city a rider needs for one tick. Hazards may
// be nil. Rand drives the cruise jitter; nil disables jitter.
type World struct {
	Roads         map[string]graph.Road
	Intersections map[string]*graph.Intersection
	Hazards       *hazard.Registry
	TimeOfDay     float64
	Rand          *rand.Rand
}

// Snapshot is the state of a rider other agents may observe.
type Snapshot struct {
	ID             string
	CurrentRoad    string
	Position       geo.Position
	Speed          float64
	DistanceOnRoad float64
}

// Rider is a simulated agent. Roads and intersections are referenced by id.
type Rider struct {
	ID      string
	Type    profile.RiderType
	Profile profile.Profile
	State   profile.State

	Position           geo.Position
	Origin             string
	Destination        string
	CurrentRoad        string
	TargetIntersection string
	DistanceOnRoad     float64
	Speed              float64 // km/h

	Route      []string
	RouteIndex int

	IsWaiting             bool
	HasReachedDestination bool
	IsRerouted            bool
	LastDecision          Decision

	TotalDistance float64 // meters
	TotalTime     float64 // seconds
	WaitTime      float64 // seconds
	NearMissCount int
}

// New creates a rider standing at pos on intersection origin.
func New(id string, t profile.RiderType, p profile.Profile, origin string, pos geo.Position, destination string, route []string) *Rider {
	return &Rider{
		ID:           id,
		Type:         t,
		Profile:      p,
		State:        profile.NewState(),
		Position:     pos,
		Origin:       origin,
		Destination:  destination,
		Route:        append([]string(nil), route...),
		LastDecision: Cruise,
	}
}

// SetRoute replaces the remaining plan. The rider finishes its current road
// first; the new route starts at that road's end.
func (r *Rider) SetRoute(route []string) {
	r.IsRerouted = len(r.Route) > 0
	r.Route = append([]string(nil), route...)
	r.RouteIndex = 0
	if r.CurrentRoad != "" {
		r.Route = append([]string{r.CurrentRoad}, r.Route...)
	}
}

// RemainingRoute returns the road ids not yet completed, current road included.
func (r *Rider) RemainingRoute() []string {
	if r.RouteIndex >= len(r.Route) {
		return nil
	}
	return append([]string(nil), r.Route[r.RouteIndex:]...)
}

// Snapshot captures the observable state of r.
func (r *Rider) Snapshot() Snapshot {
	return Snapshot{
		ID:             r.ID,
		CurrentRoad:    r.CurrentRoad,
		Position:       r.Position,
		Speed:          r.Speed,
		DistanceOnRoad: r.DistanceOnRoad,
	}
}

// Update advances the rider by dt seconds. others is the observable state of
// the rest of the population; entries with r's own id are ignored. A current
// road or intersection missing from w is a desync between graph and agents
// and is returned as an error.
func (r *Rider) Update(dt float64, w World, others []Snapshot) error {
	if r.HasReachedDestination {
		return nil
	}

	r.TotalTime += dt
	r.State.AddFatigue(r.Profile.FatigueRate * dt)
	if r.State.CurrentFatigue > fatigueDampLevel {
		r.Speed *= fatigueDamping
	}

	if r.Type.IsElectric() {
		r.State.UseBattery(r.Speed * dt * batteryDrainFactor)
		if r.Profile.BatteryLevel-r.State.BatteryUsed < batteryReserve {
			r.Speed *= batteryDamping
		}
	}

	if r.CurrentRoad == "" && r.RouteIndex < len(r.Route) {
		next := r.Route[r.RouteIndex]
		road, ok := w.Roads[next]
		if !ok {
			return fmt.Errorf("rider %s route step %d %s: %w", r.ID, r.RouteIndex, next, graph.ErrRoadNotFound)
		}
		r.CurrentRoad = road.ID
		r.TargetIntersection = road.EndIntersection
		r.DistanceOnRoad = 0
		r.Position = road.Start()
	}

	if r.CurrentRoad == "" {
		r.updateStress(dt, nil, false, true)
		return nil
	}

	road, ok := w.Roads[r.CurrentRoad]
	if !ok {
		return fmt.Errorf("rider %s on %s: %w", r.ID, r.CurrentRoad, graph.ErrRoadNotFound)
	}
	ix, ok := w.Intersections[road.EndIntersection]
	if !ok {
		return fmt.Errorf("rider %s approaching %s: %w", r.ID, road.EndIntersection, graph.ErrIntersectionNotFound)
	}

	s := Situation{
		Road:      road,
		Hazards:   r.nearbyHazards(w.Hazards, road.ID),
		CanPass:   ix.CanVehiclePass(road.Direction),
		TimeOfDay: w.TimeOfDay,
	}
	s.Ahead, s.Gap = r.riderAhead(road, others)

	r.LastDecision = r.Decide(s)
	r.apply(r.LastDecision, dt, s, ix, w.Rand)
	if r.Speed < 0 {
		r.Speed = 0
	}

	if r.Speed > 0 {
		step := r.Speed * dt * kmhToMs
		r.DistanceOnRoad += step
		r.TotalDistance += step
		r.Position = road.PositionAt(r.DistanceOnRoad / road.Length)
	}

	if r.DistanceOnRoad >= road.Length {
		r.RouteIndex++
		r.CurrentRoad = ""
		r.TargetIntersection = ""
		if r.RouteIndex >= len(r.Route) {
			r.HasReachedDestination = true
		}
	}

	r.updateStress(dt, s.Hazards, s.Ahead != nil, s.CanPass)
	return nil
}

func (r *Rider) apply(d Decision, dt float64, s Situation, ix *graph.Intersection, rng *rand.Rand) {
	switch d {
	case Accelerate:
		target := r.TargetSpeed(s.Road, s.TimeOfDay)
		r.Speed = min(r.Speed+accelRate*(1-r.State.CurrentFatigue)*dt, target)
		r.IsWaiting = false
	case Cruise:
		jitter := 1.0
		if rng != nil {
			jitter = 0.95 + rng.Float64()*0.1
		}
		r.Speed = r.TargetSpeed(s.Road, s.TimeOfDay) * jitter
	case Follow:
		if s.Ahead != nil {
			r.Speed = min(r.Speed, s.Ahead.Speed*0.9)
		}
		r.IsWaiting = true
		r.WaitTime += dt
	case Overtake:
		r.Speed = min(r.Speed+overtakeAccel*dt, r.Profile.PreferredSpeed*overtakeSpeedCap)
		r.State.RecordRiskyManeuver(overtakePenalty)
	case StopAtLight:
		r.Speed = max(0, r.Speed-lightDecel*dt)
		r.IsWaiting = true
		r.WaitTime += dt
		ix.AddToQueue(s.Road.Direction, r.ID)
	case AvoidHazard:
		r.Speed = max(r.Speed*hazardSpeedFactor, hazardCrawlSpeed)
		r.State.AddStress(0.05)
		r.State.HazardsAvoided++
	case EmergencyBrake:
		r.Speed = max(0, r.Speed-emergencyDecel*dt)
		r.State.AddStress(0.1)
		r.NearMissCount++
	case TakeShortcut:
		r.State.TimeSaved += shortcutTimeSaved
	}
}

func (r *Rider) nearbyHazards(reg *hazard.Registry, roadID string) []hazard.Hazard {
	if reg == nil {
		return nil
	}
	hs := append(reg.Near(r.Position, hazardSearchRadius), reg.OnRoad(roadID)...)
	return lo.UniqBy(hs, func(h hazard.Hazard) string { return h.ID })
}

// riderAhead finds the closest rider on the same road whose projection on the
// road heading lies in (0, lookAheadDistance).
func (r *Rider) riderAhead(road graph.Road, others []Snapshot) (*Snapshot, float64) {
	heading := road.Heading()
	var best *Snapshot
	bestGap := lookAheadDistance
	for i := range others {
		o := &others[i]
		if o.ID == r.ID || o.CurrentRoad != road.ID {
			continue
		}
		gap := o.Position.Sub(r.Position).Dot(heading)
		if gap > 0 && gap < bestGap {
			best, bestGap = o, gap
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, bestGap
}

func (r *Rider) updateStress(dt float64, hs []hazard.Hazard, blocked, canPass bool) {
	delta := -0.01 * dt
	if len(hs) > 0 {
		delta += 0.05 * float64(len(hs))
	}
	if blocked && !canPass {
		delta += 0.02
	}
	if r.IsWaiting {
		delta += 0.01
	}
	r.State.AddStress(delta)
}
