package graph

import (
	"fmt"

	"github.com/ukydev/rider-sim/internal/geo"
)

// GridSpec describes a rectangular street grid.
type GridSpec struct {
	Rows    int
	Cols    int
	Spacing float64 // meters between neighboring intersections
	// Signalized marks which intersections carry a traffic signal.
	// Nil signalizes every interior intersection.
	Signalized func(row, col int) bool
}

// IntersectionID returns the grid id for (row, col), e.g. I12.
func IntersectionID(row, col int) string {
	return fmt.Sprintf("I%d%d", row, col)
}

// RoadID returns the id of the one-way road from one intersection to another.
func RoadID(from, to string) string {
	return from + "-" + to
}

// BuildGrid creates intersections I00..I(R-1)(C-1) laid out row-major with
// rows growing southward, and a pair of opposite one-way roads between every
// pair of neighbors. East-west roads carry two lanes at 50 km/h, north-south
// roads one lane at 40 km/h.
func BuildGrid(spec GridSpec) (*Network, error) {
	if spec.Rows < 1 || spec.Cols < 1 || spec.Rows > 10 || spec.Cols > 10 {
		return nil, fmt.Errorf("grid %dx%d out of range: %w", spec.Rows, spec.Cols, ErrInvalidRoad)
	}
	if spec.Spacing <= 0 {
		return nil, fmt.Errorf("grid spacing %.1f: %w", spec.Spacing, ErrInvalidRoad)
	}
	signalized := spec.Signalized
	if signalized == nil {
		signalized = func(r, c int) bool {
			return r > 0 && c > 0 && r < spec.Rows-1 && c < spec.Cols-1
		}
	}

	n := NewNetwork()
	for r := 0; r < spec.Rows; r++ {
		for c := 0; c < spec.Cols; c++ {
			pos := geo.Pos(float64(c)*spec.Spacing, float64(r)*spec.Spacing)
			if err := n.AddIntersection(NewIntersection(IntersectionID(r, c), pos, signalized(r, c))); err != nil {
				return nil, err
			}
		}
	}

	for r := 0; r < spec.Rows; r++ {
		for c := 0; c < spec.Cols; c++ {
			from := IntersectionID(r, c)
			if c+1 < spec.Cols {
				if err := n.addPair(from, IntersectionID(r, c+1), 2, 50); err != nil {
					return nil, err
				}
			}
			if r+1 < spec.Rows {
				if err := n.addPair(from, IntersectionID(r+1, c), 1, 40); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}

func (n *Network) addPair(a, b string, lanes int, limit float64) error {
	for _, ends := range [][2]string{{a, b}, {b, a}} {
		from := n.intersections[ends[0]]
		to := n.intersections[ends[1]]
		err := n.AddRoad(Road{
			ID:                RoadID(from.ID, to.ID),
			StartIntersection: from.ID,
			EndIntersection:   to.ID,
			Lanes:             lanes,
			Direction:         DirectionBetween(from.Position, to.Position),
			SpeedLimit:        limit,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
