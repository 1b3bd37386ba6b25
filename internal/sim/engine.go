// Package sim drives a RiderCityMap forward in fixed time steps.
package sim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/rider-sim/internal/citymap"
	"github.com/ukydev/rider-sim/internal/models"
	"github.com/ukydev/rider-sim/internal/rider"
)

const (
	DefaultTickSeconds = 1.0
	DefaultStartHour   = 8.0
)

// TripSink receives a record for every rider that reaches its destination.
type TripSink interface {
	InsertRiderTrip(ctx context.Context, trip models.RiderTrip) error
}

// Summary aggregates a run.
type Summary struct {
	RunID           string         `json:"run_id"`
	Ticks           int            `json:"ticks"`
	SimulatedTime   float64        `json:"simulated_seconds"`
	Riders          int            `json:"riders"`
	Arrived         int            `json:"arrived"`
	MeanSafetyScore float64        `json:"mean_safety_score"`
	NearMisses      int            `json:"near_misses"`
	HazardsAvoided  int            `json:"hazards_avoided"`
	RiskyManeuvers  int            `json:"risky_maneuvers"`
	TotalDistance   float64        `json:"total_distance_m"`
	Decisions       map[string]int `json:"decisions"`
}

// Engine runs the tick loop. Every rider sees the same snapshot of its
// neighbors within a tick, so results do not depend on update order.
type Engine struct {
	city  *citymap.RiderCityMap
	dt    float64
	clock float64 // hour of day, [0,24)
	ticks int

	runID     string
	sink      TripSink
	log       logrus.FieldLogger
	arrived   map[string]bool
	decisions map[rider.Decision]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithTickSeconds sets the step size.
func WithTickSeconds(dt float64) Option {
	return func(e *Engine) { e.dt = dt }
}

// WithStartHour sets the time of day the run starts at.
func WithStartHour(hour float64) Option {
	return func(e *Engine) { e.clock = wrapHour(hour) }
}

// WithTripSink records arrivals in sink.
func WithTripSink(sink TripSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithRunID tags trip records and the summary.
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine over city.
func NewEngine(city *citymap.RiderCityMap, opts ...Option) (*Engine, error) {
	e := &Engine{
		city:      city,
		dt:        DefaultTickSeconds,
		clock:     DefaultStartHour,
		log:       logrus.StandardLogger(),
		arrived:   make(map[string]bool),
		decisions: make(map[rider.Decision]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dt <= 0 || math.IsNaN(e.dt) {
		return nil, fmt.Errorf("tick size must be positive, got %v", e.dt)
	}
	return e, nil
}

// TimeOfDay returns the current simulated hour.
func (e *Engine) TimeOfDay() float64 {
	return e.clock
}

// Ticks returns the number of completed steps.
func (e *Engine) Ticks() int {
	return e.ticks
}

// Step advances the simulation by one tick. A referential-integrity failure
// in any rider aborts the tick and is returned.
func (e *Engine) Step(ctx context.Context) error {
	e.city.AdvanceSignals(e.dt)

	riders := e.city.Riders()
	sort.Slice(riders, func(i, j int) bool { return riders[i].ID < riders[j].ID })
	snapshots := lo.Map(riders, func(r *rider.Rider, _ int) rider.Snapshot {
		return r.Snapshot()
	})
	w := e.city.World(e.clock)

	for _, r := range riders {
		if r.HasReachedDestination {
			continue
		}
		if err := r.Update(e.dt, w, snapshots); err != nil {
			return fmt.Errorf("tick %d: %w", e.ticks, err)
		}
		e.decisions[r.LastDecision]++
		if r.HasReachedDestination && !e.arrived[r.ID] {
			e.arrived[r.ID] = true
			e.recordArrival(ctx, r)
		}
	}

	e.ticks++
	e.clock = wrapHour(e.clock + e.dt/3600)
	return nil
}

// Run steps up to ticks times, stopping early once every rider has arrived
// or ctx is done.
func (e *Engine) Run(ctx context.Context, ticks int) (Summary, error) {
	start := time.Now()
	e.log.WithFields(logrus.Fields{
		"run_id":     e.runID,
		"ticks":      ticks,
		"riders":     len(e.city.Riders()),
		"tick_s":     e.dt,
		"start_hour": e.clock,
	}).Info("Starting rider simulation")

	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return e.Summary(), err
		}
		if err := e.Step(ctx); err != nil {
			e.log.WithError(err).Error("Simulation aborted")
			return e.Summary(), err
		}
		if e.allArrived() {
			break
		}
	}

	s := e.Summary()
	e.log.WithFields(logrus.Fields{
		"run_id":      s.RunID,
		"ticks":       s.Ticks,
		"arrived":     s.Arrived,
		"riders":      s.Riders,
		"mean_safety": s.MeanSafetyScore,
		"near_misses": s.NearMisses,
		"elapsed":     time.Since(start),
	}).Info("Simulation finished")
	return s, nil
}

// Summary aggregates the current population.
func (e *Engine) Summary() Summary {
	riders := e.city.Riders()
	s := Summary{
		RunID:         e.runID,
		Ticks:         e.ticks,
		SimulatedTime: float64(e.ticks) * e.dt,
		Riders:        len(riders),
		Arrived:       lo.CountBy(riders, hasArrived),
		Decisions:     make(map[string]int, len(e.decisions)),
	}
	for d, n := range e.decisions {
		s.Decisions[d.String()] = n
	}
	for _, r := range riders {
		s.NearMisses += r.NearMissCount
		s.HazardsAvoided += r.State.HazardsAvoided
		s.RiskyManeuvers += r.State.RiskyManeuvers
		s.TotalDistance += r.TotalDistance
	}
	if len(riders) > 0 {
		s.MeanSafetyScore = lo.SumBy(riders, func(r *rider.Rider) float64 {
			return r.State.SafetyScore
		}) / float64(len(riders))
	}
	return s
}

func (e *Engine) allArrived() bool {
	return lo.EveryBy(e.city.Riders(), hasArrived)
}

func hasArrived(r *rider.Rider) bool {
	return r.HasReachedDestination
}

func (e *Engine) recordArrival(ctx context.Context, r *rider.Rider) {
	fields := logrus.Fields{
		"rider_id":     r.ID,
		"type":         r.Type.String(),
		"destination":  r.Destination,
		"travel_s":     r.TotalTime,
		"safety_score": r.State.SafetyScore,
	}
	e.log.WithFields(fields).Info("Rider arrived")
	if e.sink == nil {
		return
	}
	if err := e.sink.InsertRiderTrip(ctx, e.tripRecord(r)); err != nil {
		e.log.WithFields(fields).WithError(err).Error("Failed to store rider trip")
	}
}

func (e *Engine) tripRecord(r *rider.Rider) models.RiderTrip {
	trip := models.RiderTrip{
		RunID:          e.runID,
		RiderID:        r.ID,
		RiderType:      r.Type.String(),
		Origin:         r.Origin,
		Destination:    r.Destination,
		EndLocation:    models.LocationOf(r.Position),
		Route:          append([]string(nil), r.Route...),
		Distance:       r.TotalDistance,
		Duration:       r.TotalTime,
		WaitTime:       r.WaitTime,
		SafetyScore:    r.State.SafetyScore,
		NearMisses:     r.NearMissCount,
		HazardsAvoided: r.State.HazardsAvoided,
		RiskyManeuvers: r.State.RiskyManeuvers,
		Fatigue:        r.State.CurrentFatigue,
		Stress:         r.State.Stress,
		BatteryUsed:    r.State.BatteryUsed,
		Status:         models.TripCompleted,
	}
	if ix, ok := e.city.Intersections()[r.Origin]; ok {
		trip.StartLocation = models.LocationOf(ix.Position)
	}
	return trip
}

func wrapHour(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}
