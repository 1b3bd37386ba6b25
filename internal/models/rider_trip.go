package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripCompleted is the status of a trip that reached its destination.
const TripCompleted = "completed"

// RiderTrip is the outcome of one simulated rider journey.
type RiderTrip struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RunID          string             `json:"run_id" bson:"run_id"`
	RiderID        string             `json:"rider_id" bson:"rider_id"`
	RiderType      string             `json:"rider_type" bson:"rider_type"`
	Origin         string             `json:"origin" bson:"origin"`
	Destination    string             `json:"destination" bson:"destination"`
	StartLocation  Location           `json:"start_location" bson:"start_location"`
	EndLocation    Location           `json:"end_location" bson:"end_location"`
	Route          []string           `json:"route" bson:"route"`
	Distance       float64            `json:"distance" bson:"distance"`   // in meters
	Duration       float64            `json:"duration" bson:"duration"`   // in seconds
	WaitTime       float64            `json:"wait_time" bson:"wait_time"` // in seconds
	SafetyScore    float64            `json:"safety_score" bson:"safety_score"`
	NearMisses     int                `json:"near_misses" bson:"near_misses"`
	HazardsAvoided int                `json:"hazards_avoided" bson:"hazards_avoided"`
	RiskyManeuvers int                `json:"risky_maneuvers" bson:"risky_maneuvers"`
	Fatigue        float64            `json:"fatigue" bson:"fatigue"`
	Stress         float64            `json:"stress" bson:"stress"`
	BatteryUsed    float64            `json:"battery_used" bson:"battery_used"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}
