package profile

import (
	"math/rand"
)

// RiderType is the kind of two-wheeler an agent rides.
type RiderType int

const (
	DeliveryRider RiderType = iota
	Commuter
	EBike
	Scooter
	PersonalMotorcycle
)

// AllTypes lists every rider type in declaration order.
var AllTypes = []RiderType{DeliveryRider, Commuter, EBike, Scooter, PersonalMotorcycle}

func (t RiderType) String() string {
	switch t {
	case DeliveryRider:
		return "delivery_rider"
	case Commuter:
		return "commuter"
	case EBike:
		return "e_bike"
	case Scooter:
		return "scooter"
	case PersonalMotorcycle:
		return "personal_motorcycle"
	}
	return "unknown"
}

// ParseRiderType maps a String() value back to a RiderType.
func ParseRiderType(s string) (RiderType, bool) {
	for _, t := range AllTypes {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// IsElectric reports whether the type runs on a battery that drains while riding.
func (t RiderType) IsElectric() bool {
	return t == EBike || t == Scooter
}

// Profile is the immutable preference bundle of a rider, generated at spawn.
type Profile struct {
	RiskTolerance      float64 // [0,1]
	PreferredSpeed     float64 // km/h
	BatteryLevel       float64 // [0,100]
	AvoidHighways      bool
	RainAvoidance      bool
	ShortcutPreference float64 // [0,1]
	FatigueRate        float64 // fatigue gained per second
	NightRiding        bool
	ExperienceLevel    float64 // [0,1]
}

type span struct{ lo, hi float64 }

func (s span) draw(rng *rand.Rand) float64 {
	return s.lo + rng.Float64()*(s.hi-s.lo)
}

type distribution struct {
	risk, speed, battery, shortcut, fatigue, experience span
	avoidHighways, rainAvoidance                         float64 // probability
	nightRiding                                          float64 // probability
}

var distributions = map[RiderType]distribution{
	DeliveryRider: {
		risk: span{0.6, 0.9}, speed: span{50, 65}, battery: span{100, 100},
		shortcut: span{0.7, 1.0}, fatigue: span{0.00008, 0.00015}, experience: span{0.5, 0.9},
		avoidHighways: 0.1, rainAvoidance: 0.1, nightRiding: 0.9,
	},
	Commuter: {
		risk: span{0.3, 0.6}, speed: span{40, 55}, battery: span{100, 100},
		shortcut: span{0.3, 0.6}, fatigue: span{0.00005, 0.0001}, experience: span{0.3, 0.8},
		avoidHighways: 0.3, rainAvoidance: 0.5, nightRiding: 0.5,
	},
	EBike: {
		risk: span{0.1, 0.3}, speed: span{25, 30}, battery: span{60, 100},
		shortcut: span{0.2, 0.5}, fatigue: span{0.0001, 0.0002}, experience: span{0.2, 0.7},
		avoidHighways: 0.9, rainAvoidance: 0.8, nightRiding: 0.2,
	},
	Scooter: {
		risk: span{0.2, 0.5}, speed: span{30, 45}, battery: span{50, 100},
		shortcut: span{0.4, 0.7}, fatigue: span{0.00006, 0.00012}, experience: span{0.2, 0.6},
		avoidHighways: 0.7, rainAvoidance: 0.6, nightRiding: 0.4,
	},
	PersonalMotorcycle: {
		risk: span{0.4, 0.8}, speed: span{50, 70}, battery: span{100, 100},
		shortcut: span{0.3, 0.7}, fatigue: span{0.00004, 0.00008}, experience: span{0.4, 0.95},
		avoidHighways: 0.1, rainAvoidance: 0.4, nightRiding: 0.8,
	},
}

// Generate draws a type-specific profile from rng.
func Generate(t RiderType, rng *rand.Rand) Profile {
	d, ok := distributions[t]
	if !ok {
		d = distributions[Commuter]
	}
	return Profile{
		RiskTolerance:      d.risk.draw(rng),
		PreferredSpeed:     d.speed.draw(rng),
		BatteryLevel:       d.battery.draw(rng),
		AvoidHighways:      rng.Float64() < d.avoidHighways,
		RainAvoidance:      rng.Float64() < d.rainAvoidance,
		ShortcutPreference: d.shortcut.draw(rng),
		FatigueRate:        d.fatigue.draw(rng),
		NightRiding:        rng.Float64() < d.nightRiding,
		ExperienceLevel:    d.experience.draw(rng),
	}
}

// RandomType picks a rider type uniformly.
func RandomType(rng *rand.Rand) RiderType {
	return AllTypes[rng.Intn(len(AllTypes))]
}
