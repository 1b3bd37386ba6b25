package rider

import (
	"github.com/ukydev/rider-sim/internal/graph"
	"github.com/ukydev/rider-sim/internal/hazard"
)

// Decision is the single behavior a rider commits to for one tick.
type Decision int

const (
	Accelerate Decision = iota
	Cruise
	Follow
	Overtake
	StopAtLight
	AvoidHazard
	EmergencyBrake
	TakeShortcut
)

// AllDecisions lists every decision in declaration order.
var AllDecisions = []Decision{Accelerate, Cruise, Follow, Overtake, StopAtLight, AvoidHazard, EmergencyBrake, TakeShortcut}

func (d Decision) String() string {
	switch d {
	case Accelerate:
		return "accelerate"
	case Cruise:
		return "cruise"
	case Follow:
		return "follow"
	case Overtake:
		return "overtake"
	case StopAtLight:
		return "stop_at_light"
	case AvoidHazard:
		return "avoid_hazard"
	case EmergencyBrake:
		return "emergency_brake"
	case TakeShortcut:
		return "take_shortcut"
	}
	return "unknown"
}

const (
	lookAheadDistance   = 50.0 // meters
	hazardSearchRadius  = 50.0 // meters
	stopZoneFraction    = 0.8
	baseFollowingGap    = 10.0 // meters at 50 km/h
	nightSpeedFactor    = 0.7
	speedLimitTolerance = 1.1
	overtakeRiskMin     = 0.6
	overtakeFatigueMax  = 0.7
)

// Situation is everything the decision function looks at for one tick.
// Ahead is nil when no rider is within look-ahead range on the same road.
type Situation struct {
	Road      graph.Road
	Hazards   []hazard.Hazard
	Ahead     *Snapshot
	Gap       float64 // meters to Ahead along the road
	CanPass   bool
	TimeOfDay float64 // hours, [0,24)
}

// IsNight reports whether hour falls in the night window.
func IsNight(hour float64) bool {
	return hour < 6 || hour > 20
}

// SafeFollowingDistance is the gap the rider wants to keep, in meters.
func (r *Rider) SafeFollowingDistance() float64 {
	return baseFollowingGap * (r.Speed / 50) *
		(1 - r.Profile.ExperienceLevel*0.3) *
		(1 + r.State.CurrentFatigue)
}

// TargetSpeed is the speed the rider settles at on road, in km/h.
func (r *Rider) TargetSpeed(road graph.Road, timeOfDay float64) float64 {
	factor := 1.0
	if IsNight(timeOfDay) && !r.Profile.NightRiding {
		factor = nightSpeedFactor
	}
	return min(r.Profile.PreferredSpeed*factor, road.SpeedLimit*speedLimitTolerance)
}

// Decide picks the decision for s. It has no side effects; the checks run
// in priority order and the first match wins.
func (r *Rider) Decide(s Situation) Decision {
	for _, h := range s.Hazards {
		if h.Severity == hazard.Critical {
			return AvoidHazard
		}
	}

	if !s.CanPass && r.DistanceOnRoad >= stopZoneFraction*s.Road.Length {
		return StopAtLight
	}

	if s.Ahead != nil && s.Gap < lookAheadDistance {
		safe := r.SafeFollowingDistance()
		if s.Gap < 0.5*safe {
			return EmergencyBrake
		}
		if s.Gap < safe {
			if r.Profile.RiskTolerance > overtakeRiskMin &&
				s.Road.Lanes >= 2 &&
				r.State.CurrentFatigue < overtakeFatigueMax {
				return Overtake
			}
			return Follow
		}
	}

	if r.Speed < r.TargetSpeed(s.Road, s.TimeOfDay) {
		return Accelerate
	}
	return Cruise
}
