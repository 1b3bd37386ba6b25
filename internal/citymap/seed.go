package citymap

import (
	"github.com/ukydev/rider-sim/internal/geo"
	"github.com/ukydev/rider-sim/internal/graph"
	"github.com/ukydev/rider-sim/internal/hazard"
)

// RiderShortcut is an alternate edge outside the main road network, e.g. an
// alley or a cut through a parking lot.
type RiderShortcut struct {
	ID                 string
	From               string
	To                 string
	Distance           float64 // meters
	TimeSaving         float64 // seconds
	RiskLevel          float64 // [0,1]
	RequiredExperience float64 // [0,1]
	Description        string
}

// Default city layout.
var defaultGrid = graph.GridSpec{Rows: 4, Cols: 4, Spacing: 200}

var motorcycleLanes = []string{
	"I00-I01", "I01-I02", "I02-I03",
	"I30-I31", "I31-I32", "I32-I33",
}

var shortcuts = []RiderShortcut{
	{ID: "sc-alley", From: "I00", To: "I11", Distance: 180, TimeSaving: 40, RiskLevel: 0.4, RequiredExperience: 0.3, Description: "Back alley behind the market"},
	{ID: "sc-parking", From: "I13", To: "I22", Distance: 150, TimeSaving: 35, RiskLevel: 0.5, RequiredExperience: 0.5, Description: "Cut through the mall parking lot"},
	{ID: "sc-footpath", From: "I21", To: "I32", Distance: 190, TimeSaving: 50, RiskLevel: 0.7, RequiredExperience: 0.7, Description: "Riverside footpath"},
}

var dangerLevels = map[string]float64{
	"I11": 0.6,
	"I12": 0.8,
	"I22": 0.5,
}

var seedHazards = []hazard.Hazard{
	{ID: "hz-pothole-market", Type: hazard.Pothole, Severity: hazard.Moderate, Position: geo.Pos(100, 0), Radius: 5, AffectedRoad: "I00-I01", IsActive: true, VerifiedReports: 3, Description: "Deep pothole near the market"},
	{ID: "hz-flood-underpass", Type: hazard.FloodedArea, Severity: hazard.High, Position: geo.Pos(200, 300), Radius: 30, AffectedRoad: "I11-I21", IsActive: true, VerifiedReports: 5, Description: "Underpass floods after heavy rain"},
	{ID: "hz-junction-12", Type: hazard.AccidentProneSpot, Severity: hazard.High, Position: geo.Pos(400, 200), Radius: 25, IsActive: true, VerifiedReports: 8, Description: "Accident-prone junction"},
	{ID: "hz-hill-west", Type: hazard.SteepIncline, Severity: hazard.Moderate, Position: geo.Pos(0, 500), Radius: 40, AffectedRoad: "I20-I30", IsActive: true, VerifiedReports: 2, Description: "Steep climb on the west side"},
	{ID: "hz-unlit-east", Type: hazard.PoorLighting, Severity: hazard.Low, Position: geo.Pos(600, 500), Radius: 50, AffectedRoad: "I23-I33", IsActive: true, VerifiedReports: 1, Description: "Unlit stretch along the east road"},
	{ID: "hz-roadworks", Type: hazard.ConstructionZone, Severity: hazard.Critical, Position: geo.Pos(300, 400), Radius: 20, AffectedRoad: "I21-I22", IsActive: true, VerifiedReports: 6, Description: "Road works, lane closed"},
	{ID: "hz-gravel", Type: hazard.LooseGravel, Severity: hazard.Low, Position: geo.Pos(500, 0), Radius: 10, AffectedRoad: "I02-I03", IsActive: true, VerifiedReports: 1, Description: "Loose gravel on the bend"},
	{ID: "hz-narrow-bridge", Type: hazard.NarrowPassage, Severity: hazard.Moderate, Position: geo.Pos(300, 600), Radius: 10, AffectedRoad: "I31-I32", IsActive: true, VerifiedReports: 4, Description: "Narrow bridge, single file"},
	{ID: "hz-night-market", Type: hazard.HighCrimeArea, Severity: hazard.Moderate, Position: geo.Pos(500, 500), Radius: 60, IsActive: true, VerifiedReports: 2, Description: "Bag snatching reported near the night market"},
}
