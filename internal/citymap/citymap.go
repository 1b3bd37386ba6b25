package citymap

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/rider-sim/internal/graph"
	"github.com/ukydev/rider-sim/internal/hazard"
	"github.com/ukydev/rider-sim/internal/profile"
	"github.com/ukydev/rider-sim/internal/rider"
)

var ErrNotEnoughIntersections = errors.New("at least two intersections are required to spawn riders")

// RiderCityMap owns the city graph, the hazard registry, the rider population
// and the rider-specific overlays. One instance backs one simulation run.
type RiderCityMap struct {
	network *graph.Network
	hazards *hazard.Registry

	riders     map[string]*rider.Rider
	riderOrder []string

	motorcycleLanes map[string]struct{}
	shortcuts       []RiderShortcut
	dangerLevels    map[string]float64

	rng *rand.Rand
	log logrus.FieldLogger
}

// Option configures a RiderCityMap.
type Option func(*options)

type options struct {
	grid   graph.GridSpec
	rng    *rand.Rand
	logger logrus.FieldLogger
}

// WithGrid overrides the default 4x4 grid. Seed overlays that reference
// intersections or roads outside the grid are skipped.
func WithGrid(spec graph.GridSpec) Option {
	return func(o *options) { o.grid = spec }
}

// WithRand injects the generator used for spawning and cruise jitter.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// New builds the grid, overlays and seed hazards.
func New(opts ...Option) (*RiderCityMap, error) {
	o := options{grid: defaultGrid}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(1))
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}

	network, err := graph.BuildGrid(o.grid)
	if err != nil {
		return nil, fmt.Errorf("building city grid: %w", err)
	}

	m := &RiderCityMap{
		network:         network,
		hazards:         hazard.NewRegistry(),
		riders:          make(map[string]*rider.Rider),
		motorcycleLanes: make(map[string]struct{}),
		dangerLevels:    make(map[string]float64),
		rng:             o.rng,
		log:             o.logger,
	}
	m.seed()

	m.log.WithFields(logrus.Fields{
		"intersections":    len(network.Intersections()),
		"roads":            len(network.Roads()),
		"hazards":          m.hazards.Len(),
		"shortcuts":        len(m.shortcuts),
		"motorcycle_lanes": len(m.motorcycleLanes),
	}).Info("Built rider city map")
	return m, nil
}

func (m *RiderCityMap) seed() {
	roads := m.network.Roads()
	ixs := m.network.Intersections()

	for _, id := range motorcycleLanes {
		if _, ok := roads[id]; ok {
			m.motorcycleLanes[id] = struct{}{}
		}
	}
	for _, sc := range shortcuts {
		_, from := ixs[sc.From]
		_, to := ixs[sc.To]
		if from && to {
			m.shortcuts = append(m.shortcuts, sc)
		}
	}
	for id, level := range dangerLevels {
		if _, ok := ixs[id]; ok {
			m.dangerLevels[id] = level
		}
	}
	for _, h := range seedHazards {
		if h.AffectedRoad != "" {
			if _, ok := roads[h.AffectedRoad]; !ok {
				continue
			}
		}
		m.hazards.Add(h)
	}
}

// Network returns the city graph.
func (m *RiderCityMap) Network() *graph.Network {
	return m.network
}

// Roads returns the road map keyed by id.
func (m *RiderCityMap) Roads() map[string]graph.Road {
	return m.network.Roads()
}

// Intersections returns the intersection map keyed by id.
func (m *RiderCityMap) Intersections() map[string]*graph.Intersection {
	return m.network.Intersections()
}

// Hazards returns the hazard registry.
func (m *RiderCityMap) Hazards() *hazard.Registry {
	return m.hazards
}

// Rand returns the generator shared by spawning and the tick loop.
func (m *RiderCityMap) Rand() *rand.Rand {
	return m.rng
}

// AddHazard inserts or replaces a hazard.
func (m *RiderCityMap) AddHazard(h hazard.Hazard) {
	m.hazards.Add(h)
}

// RemoveHazard deletes a hazard; unknown ids are ignored.
func (m *RiderCityMap) RemoveHazard(id string) {
	m.hazards.Remove(id)
}

// IsMotorcycleLane reports whether roadID is a dedicated motorcycle lane.
func (m *RiderCityMap) IsMotorcycleLane(roadID string) bool {
	_, ok := m.motorcycleLanes[roadID]
	return ok
}

// MotorcycleLanes returns the motorcycle lane road ids, sorted.
func (m *RiderCityMap) MotorcycleLanes() []string {
	ids := lo.Keys(m.motorcycleLanes)
	sort.Strings(ids)
	return ids
}

// Shortcuts returns the known shortcuts.
func (m *RiderCityMap) Shortcuts() []RiderShortcut {
	return append([]RiderShortcut(nil), m.shortcuts...)
}

// EligibleShortcuts lists the shortcuts p has the experience for.
func (m *RiderCityMap) EligibleShortcuts(p profile.Profile) []RiderShortcut {
	return lo.Filter(m.shortcuts, func(sc RiderShortcut, _ int) bool {
		return sc.RequiredExperience <= p.ExperienceLevel
	})
}

// DangerLevel returns the static danger level of an intersection, 0 if none.
func (m *RiderCityMap) DangerLevel(intersectionID string) float64 {
	return m.dangerLevels[intersectionID]
}

// FindPath returns the minimal hop count road sequence from start to end,
// or nil when start == end or end is unreachable.
func (m *RiderCityMap) FindPath(start, end string) []string {
	return m.network.ShortestPath(start, end)
}

// FindRiderPath plans a route for a specific rider. Hazard and shortcut
// aware routing plugs in here; today it is plain FindPath.
func (m *RiderCityMap) FindRiderPath(start, end string, _ profile.Profile, _ profile.RiderType) []string {
	return m.FindPath(start, end)
}

// PathRisk scores a planned path for a rider.
func (m *RiderCityMap) PathRisk(path []string, p profile.Profile, t profile.RiderType) float64 {
	return m.hazards.PathRisk(path, p, t)
}

// SpawnRiders replaces the population with count riders of random types,
// each with distinct random origin and destination and a planned route.
func (m *RiderCityMap) SpawnRiders(count int) error {
	ids := m.network.IntersectionIDs()
	if count > 0 && len(ids) < 2 {
		return ErrNotEnoughIntersections
	}
	m.ResetRiders()

	for i := 0; i < count; i++ {
		typ := profile.RandomType(m.rng)
		p := profile.Generate(typ, m.rng)

		a := m.rng.Intn(len(ids))
		b := m.rng.Intn(len(ids) - 1)
		if b >= a {
			b++
		}
		origin, destination := ids[a], ids[b]

		id, err := uuid.NewRandomFromReader(m.rng)
		if err != nil {
			return fmt.Errorf("generating rider id: %w", err)
		}
		start, err := m.network.Intersection(origin)
		if err != nil {
			return err
		}

		route := m.FindRiderPath(origin, destination, p, typ)
		r := rider.New(id.String(), typ, p, origin, start.Position, destination, route)
		m.riders[r.ID] = r
		m.riderOrder = append(m.riderOrder, r.ID)
	}

	m.log.WithField("riders", count).Info("Spawned riders")
	return nil
}

// Riders returns the population in spawn order.
func (m *RiderCityMap) Riders() []*rider.Rider {
	out := make([]*rider.Rider, 0, len(m.riderOrder))
	for _, id := range m.riderOrder {
		out = append(out, m.riders[id])
	}
	return out
}

// Rider looks up a rider by id.
func (m *RiderCityMap) Rider(id string) (*rider.Rider, bool) {
	r, ok := m.riders[id]
	return r, ok
}

// RemoveRider drops a rider from the population. Reaping finished riders is
// left to the caller.
func (m *RiderCityMap) RemoveRider(id string) {
	if _, ok := m.riders[id]; !ok {
		return
	}
	delete(m.riders, id)
	m.riderOrder = lo.Without(m.riderOrder, id)
}

// ResetRiders removes every rider.
func (m *RiderCityMap) ResetRiders() {
	m.riders = make(map[string]*rider.Rider)
	m.riderOrder = nil
}

// AdvanceSignals moves every signal phase forward by dt seconds.
func (m *RiderCityMap) AdvanceSignals(dt float64) {
	for _, id := range m.network.IntersectionIDs() {
		m.network.Intersections()[id].AdvanceSignal(dt)
	}
}

// World returns the read view riders update against.
func (m *RiderCityMap) World(timeOfDay float64) rider.World {
	return rider.World{
		Roads:         m.network.Roads(),
		Intersections: m.network.Intersections(),
		Hazards:       m.hazards,
		TimeOfDay:     timeOfDay,
		Rand:          m.rng,
	}
}

// CheckIntegrity verifies that every road endpoint and every road a rider
// references exists.
func (m *RiderCityMap) CheckIntegrity() error {
	roads := m.network.Roads()
	ixs := m.network.Intersections()
	for _, id := range m.network.RoadIDs() {
		r := roads[id]
		if _, ok := ixs[r.StartIntersection]; !ok {
			return fmt.Errorf("road %s start %s: %w", id, r.StartIntersection, graph.ErrIntersectionNotFound)
		}
		if _, ok := ixs[r.EndIntersection]; !ok {
			return fmt.Errorf("road %s end %s: %w", id, r.EndIntersection, graph.ErrIntersectionNotFound)
		}
	}
	for _, r := range m.Riders() {
		if r.CurrentRoad != "" {
			if _, ok := roads[r.CurrentRoad]; !ok {
				return fmt.Errorf("rider %s current road %s: %w", r.ID, r.CurrentRoad, graph.ErrRoadNotFound)
			}
		}
		for _, id := range r.RemainingRoute() {
			if _, ok := roads[id]; !ok {
				return fmt.Errorf("rider %s route road %s: %w", r.ID, id, graph.ErrRoadNotFound)
			}
		}
	}
	return nil
}
