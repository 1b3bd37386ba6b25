package hazard

import (
	"github.com/ukydev/rider-sim/internal/geo"
	"github.com/ukydev/rider-sim/internal/profile"
)

// Type classifies a hazard.
type Type int

const (
	Pothole Type = iota
	FloodedArea
	AccidentProneSpot
	SteepIncline
	PoorLighting
	NarrowPassage
	LooseGravel
	ConstructionZone
	HighCrimeArea
)

func (t Type) String() string {
	switch t {
	case Pothole:
		return "pothole"
	case FloodedArea:
		return "flooded_area"
	case AccidentProneSpot:
		return "accident_prone_spot"
	case SteepIncline:
		return "steep_incline"
	case PoorLighting:
		return "poor_lighting"
	case NarrowPassage:
		return "narrow_passage"
	case LooseGravel:
		return "loose_gravel"
	case ConstructionZone:
		return "construction_zone"
	case HighCrimeArea:
		return "high_crime_area"
	}
	return "unknown"
}

// ParseType maps a String() value back to a Type.
func ParseType(s string) (Type, bool) {
	for t := Pothole; t <= HighCrimeArea; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Severity grades how dangerous a hazard is.
type Severity int

const (
	Low Severity = iota
	Moderate
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "low"
	case Moderate:
		return "moderate"
	case High:
		return "high"
	case Critical:
		return "critical"
	}
	return "unknown"
}

// ParseSeverity maps a String() value back to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	for v := Low; v <= Critical; v++ {
		if v.String() == s {
			return v, true
		}
	}
	return 0, false
}

// Label is the warning prefix shown for a severity.
func (s Severity) Label() string {
	switch s {
	case Low:
		return "Caution"
	case Moderate:
		return "Warning"
	case High:
		return "Danger"
	case Critical:
		return "CRITICAL"
	}
	return "Notice"
}

// BaseRisk is the unadjusted risk of a severity.
func (s Severity) BaseRisk() float64 {
	switch s {
	case Low:
		return 0.2
	case Moderate:
		return 0.5
	case High:
		return 0.8
	case Critical:
		return 1.0
	}
	return 0
}

// SpeedFactor is the fraction of current speed kept when passing a hazard.
func (s Severity) SpeedFactor() float64 {
	switch s {
	case Low:
		return 0.9
	case Moderate:
		return 0.7
	case High:
		return 0.5
	case Critical:
		return 0.2
	}
	return 1
}

// Hazard is a localized risk factor. AffectedRoad is empty when the hazard
// is not tied to a road.
type Hazard struct {
	ID              string
	Type            Type
	Severity        Severity
	Position        geo.Position
	Radius          float64
	AffectedRoad    string
	IsActive        bool
	VerifiedReports int
	Description     string
}

// RiskImpact scores how dangerous h is for a rider, in [0,1].
func (h Hazard) RiskImpact(p profile.Profile, t profile.RiderType) float64 {
	multiplier := 1.0
	switch {
	case h.Type == SteepIncline && (t == profile.Scooter || t == profile.EBike):
		multiplier = 1.5
	case h.Type == PoorLighting && !p.NightRiding:
		multiplier = 1.3
	case h.Type == FloodedArea && t == profile.EBike:
		multiplier = 1.4
	}
	adjustment := 1 - p.RiskTolerance*0.3
	return geo.Clamp(h.Severity.BaseRisk()*multiplier*adjustment, 0, 1)
}

// SpeedReduction returns the multiplier applied to the current speed.
func (h Hazard) SpeedReduction() float64 {
	return h.Severity.SpeedFactor()
}

// AffectsPosition reports whether pos lies inside an active hazard's radius.
func (h Hazard) AffectsPosition(pos geo.Position) bool {
	return h.IsActive && h.Position.DistanceTo(pos) <= h.Radius
}
