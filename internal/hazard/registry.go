package hazard

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/ukydev/rider-sim/internal/geo"
	"github.com/ukydev/rider-sim/internal/profile"
)

// DefaultSearchRadius is used by Near when no positive radius is given.
const DefaultSearchRadius = 100.0

var ErrHazardNotFound = errors.New("hazard not found")

// Registry indexes hazards by id. Queries return hazards ordered by id.
type Registry struct {
	hazards map[string]Hazard
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hazards: make(map[string]Hazard)}
}

// Add inserts h, replacing any hazard with the same id.
func (r *Registry) Add(h Hazard) {
	r.hazards[h.ID] = h
}

// Remove deletes a hazard. Missing ids are ignored.
func (r *Registry) Remove(id string) {
	delete(r.hazards, id)
}

// Get returns the hazard with the given id.
func (r *Registry) Get(id string) (Hazard, bool) {
	h, ok := r.hazards[id]
	return h, ok
}

// Len returns the number of hazards, active or not.
func (r *Registry) Len() int {
	return len(r.hazards)
}

// SetActive toggles a hazard without removing it, e.g. once flooding clears.
func (r *Registry) SetActive(id string, active bool) error {
	h, ok := r.hazards[id]
	if !ok {
		return fmt.Errorf("hazard %s: %w", id, ErrHazardNotFound)
	}
	h.IsActive = active
	r.hazards[id] = h
	return nil
}

// Verify records one more confirming report for a hazard.
func (r *Registry) Verify(id string) error {
	h, ok := r.hazards[id]
	if !ok {
		return fmt.Errorf("hazard %s: %w", id, ErrHazardNotFound)
	}
	h.VerifiedReports++
	r.hazards[id] = h
	return nil
}

// All returns every hazard.
func (r *Registry) All() []Hazard {
	all := lo.Values(r.hazards)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Active returns the hazards with IsActive set.
func (r *Registry) Active() []Hazard {
	return lo.Filter(r.All(), func(h Hazard, _ int) bool {
		return h.IsActive
	})
}

// Near returns active hazards whose center lies within radius of pos.
func (r *Registry) Near(pos geo.Position, radius float64) []Hazard {
	if radius <= 0 {
		radius = DefaultSearchRadius
	}
	return lo.Filter(r.Active(), func(h Hazard, _ int) bool {
		return h.Position.DistanceTo(pos) <= radius
	})
}

// OnRoad returns active hazards attached to roadID.
func (r *Registry) OnRoad(roadID string) []Hazard {
	if roadID == "" {
		return nil
	}
	return lo.Filter(r.Active(), func(h Hazard, _ int) bool {
		return h.AffectedRoad == roadID
	})
}

// PathRisk averages the summed hazard risk over the roads of path that carry
// at least one hazard. Hazard-free roads do not dilute the average. Returns 0
// when no road on the path has a hazard.
func (r *Registry) PathRisk(path []string, p profile.Profile, t profile.RiderType) float64 {
	total := 0.0
	hazardous := 0
	for _, roadID := range path {
		hs := r.OnRoad(roadID)
		if len(hs) == 0 {
			continue
		}
		hazardous++
		total += lo.SumBy(hs, func(h Hazard) float64 {
			return h.RiskImpact(p, t)
		})
	}
	if hazardous == 0 {
		return 0
	}
	return total / float64(hazardous)
}

// Warning renders the rider-facing warning for h.
func Warning(h Hazard) string {
	return h.Severity.Label() + ": " + h.Description
}
