package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ukydev/rider-sim/internal/geo"
)

var (
	ErrRoadNotFound         = errors.New("road not found")
	ErrIntersectionNotFound = errors.New("intersection not found")
	ErrDuplicateID          = errors.New("duplicate id")
	ErrInvalidRoad          = errors.New("invalid road")
)

// Network is the city graph: intersections and one-way roads keyed by id.
// All cross references are ids, never pointers between records.
type Network struct {
	intersections map[string]*Intersection
	roads         map[string]Road
	order         []string
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		intersections: make(map[string]*Intersection),
		roads:         make(map[string]Road),
	}
}

// AddIntersection inserts an intersection.
func (n *Network) AddIntersection(ix *Intersection) error {
	if _, ok := n.intersections[ix.ID]; ok {
		return fmt.Errorf("intersection %s: %w", ix.ID, ErrDuplicateID)
	}
	n.intersections[ix.ID] = ix
	n.order = append(n.order, ix.ID)
	return nil
}

// AddRoad inserts a road and connects it to its start intersection.
// Missing points default to the endpoint positions and a zero length is
// derived from the points.
func (n *Network) AddRoad(r Road) error {
	if _, ok := n.roads[r.ID]; ok {
		return fmt.Errorf("road %s: %w", r.ID, ErrDuplicateID)
	}
	start, ok := n.intersections[r.StartIntersection]
	if !ok {
		return fmt.Errorf("road %s start %s: %w", r.ID, r.StartIntersection, ErrIntersectionNotFound)
	}
	end, ok := n.intersections[r.EndIntersection]
	if !ok {
		return fmt.Errorf("road %s end %s: %w", r.ID, r.EndIntersection, ErrIntersectionNotFound)
	}
	if r.Lanes < 1 {
		return fmt.Errorf("road %s has %d lanes: %w", r.ID, r.Lanes, ErrInvalidRoad)
	}
	if len(r.Points) < 2 {
		r.Points = []geo.Position{start.Position, end.Position}
	}
	if r.Length <= 0 {
		r.Length = geo.PathLength(r.Points)
	}
	if r.Length <= 0 {
		return fmt.Errorf("road %s has zero length: %w", r.ID, ErrInvalidRoad)
	}
	n.roads[r.ID] = r
	start.Connect(r.ID)
	return nil
}

// Road looks up a road by id.
func (n *Network) Road(id string) (Road, error) {
	r, ok := n.roads[id]
	if !ok {
		return Road{}, fmt.Errorf("road %s: %w", id, ErrRoadNotFound)
	}
	return r, nil
}

// Intersection looks up an intersection by id.
func (n *Network) Intersection(id string) (*Intersection, error) {
	ix, ok := n.intersections[id]
	if !ok {
		return nil, fmt.Errorf("intersection %s: %w", id, ErrIntersectionNotFound)
	}
	return ix, nil
}

// Roads exposes the road map. Callers must treat it as read-only.
func (n *Network) Roads() map[string]Road {
	return n.roads
}

// Intersections exposes the intersection map.
func (n *Network) Intersections() map[string]*Intersection {
	return n.intersections
}

// IntersectionIDs returns intersection ids in insertion order.
func (n *Network) IntersectionIDs() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// RoadIDs returns all road ids sorted.
func (n *Network) RoadIDs() []string {
	ids := make([]string, 0, len(n.roads))
	for id := range n.roads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ShortestPath returns the road ids of the first path found by breadth-first
// search from start to end, i.e. a minimal hop count path. Ties follow the
// order in which roads were connected. Returns nil when start == end or when
// end is unreachable.
func (n *Network) ShortestPath(start, end string) []string {
	if start == end {
		return nil
	}
	if _, ok := n.intersections[start]; !ok {
		return nil
	}
	if _, ok := n.intersections[end]; !ok {
		return nil
	}

	visited := map[string]bool{start: true}
	via := make(map[string]string) // intersection -> road used to reach it
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, roadID := range n.intersections[cur].outgoing {
			next := n.roads[roadID].EndIntersection
			if visited[next] {
				continue
			}
			visited[next] = true
			via[next] = roadID
			if next == end {
				return n.unwind(via, start, end)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func (n *Network) unwind(via map[string]string, start, end string) []string {
	var path []string
	for at := end; at != start; {
		roadID := via[at]
		path = append(path, roadID)
		at = n.roads[roadID].StartIntersection
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
