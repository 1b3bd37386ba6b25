package models

import "github.com/ukydev/rider-sim/internal/geo"

// Location is a planar point in city meters as stored in MongoDB.
type Location struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

// LocationOf converts a simulation position.
func LocationOf(p geo.Position) Location {
	return Location{X: p.X, Y: p.Y}
}

// Position converts back to a simulation position.
func (l Location) Position() geo.Position {
	return geo.Pos(l.X, l.Y)
}
