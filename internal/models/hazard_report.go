package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HazardReport is a community hazard report. Type and Severity hold the
// snake_case names used by the simulator, e.g. "flooded_area" and "high".
type HazardReport struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	HazardID        string             `json:"hazard_id" bson:"hazard_id"`
	Type            string             `json:"type" bson:"type"`
	Severity        string             `json:"severity" bson:"severity"`
	Location        Location           `json:"location" bson:"location"`
	Radius          float64            `json:"radius" bson:"radius"`   // in meters
	RoadID          string             `json:"road_id" bson:"road_id"` // empty when not tied to a road
	Active          bool               `json:"active" bson:"active"`
	VerifiedReports int                `json:"verified_reports" bson:"verified_reports"`
	Description     string             `json:"description" bson:"description"`
	ReportedAt      time.Time          `json:"reported_at" bson:"reported_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
