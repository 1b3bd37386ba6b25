package profile

// InitialSafetyScore is the score every rider starts a trip with.
const InitialSafetyScore = 100.0

// State holds the dynamic per-rider metrics mutated every tick.
// Bounded fields are clamped by every mutator.
type State struct {
	CurrentFatigue float64 // [0,1]
	Stress         float64 // [0,1]
	BatteryUsed    float64 // [0,100]
	TimeSaved      float64
	HazardsAvoided int
	RiskyManeuvers int
	SafetyScore    float64 // [0,100]
}

// NewState returns the state of a fresh rider.
func NewState() State {
	return State{SafetyScore: InitialSafetyScore}
}

// AddFatigue adjusts fatigue by delta, clamped to [0,1].
func (s *State) AddFatigue(delta float64) {
	s.CurrentFatigue = clamp(s.CurrentFatigue+delta, 0, 1)
}

// AddStress adjusts stress by delta, clamped to [0,1].
func (s *State) AddStress(delta float64) {
	s.Stress = clamp(s.Stress+delta, 0, 1)
}

// UseBattery drains delta percent, capped at 100.
func (s *State) UseBattery(delta float64) {
	s.BatteryUsed = clamp(s.BatteryUsed+delta, 0, 100)
}

// RecordRiskyManeuver counts a maneuver and lowers the safety score by penalty.
func (s *State) RecordRiskyManeuver(penalty float64) {
	s.RiskyManeuvers++
	s.SafetyScore = clamp(s.SafetyScore-penalty, 0, InitialSafetyScore)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
