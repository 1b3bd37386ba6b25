// Package reports keeps the in-memory hazard registry in step with the
// community hazard reports stored in MongoDB.
package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/rider-sim/internal/db"
	"github.com/ukydev/rider-sim/internal/hazard"
	"github.com/ukydev/rider-sim/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

var ErrInvalidReport = errors.New("invalid hazard report")

// HazardSink receives hazards pulled from the store.
type HazardSink interface {
	AddHazard(h hazard.Hazard)
}

// Syncer moves hazards between a report store and the simulation.
type Syncer struct {
	store db.HazardReportCollection
	log   logrus.FieldLogger
}

// NewSyncer creates a Syncer over store.
func NewSyncer(store db.HazardReportCollection, log logrus.FieldLogger) *Syncer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Syncer{store: store, log: log}
}

// Pull loads every stored report into sink. Reports with an unknown type or
// severity are logged and skipped. Returns the number of hazards added.
func (s *Syncer) Pull(ctx context.Context, sink HazardSink) (int, error) {
	cur, err := s.store.FindHazardReports(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("finding hazard reports: %w", err)
	}
	defer cur.Close(ctx)

	var reports []models.HazardReport
	if err := cur.All(ctx, &reports); err != nil {
		return 0, fmt.Errorf("decoding hazard reports: %w", err)
	}

	added := 0
	for _, r := range reports {
		h, err := ToHazard(r)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"hazard_id": r.HazardID,
				"type":      r.Type,
				"severity":  r.Severity,
			}).WithError(err).Warn("Skipping hazard report")
			continue
		}
		sink.AddHazard(h)
		added++
	}
	s.log.WithFields(logrus.Fields{"reports": len(reports), "added": added}).Info("Pulled hazard reports")
	return added, nil
}

// Push upserts hs into the store.
func (s *Syncer) Push(ctx context.Context, hs []hazard.Hazard) (int, error) {
	for i, h := range hs {
		if err := s.store.UpsertHazardReport(ctx, FromHazard(h)); err != nil {
			return i, fmt.Errorf("upserting hazard %s: %w", h.ID, err)
		}
	}
	s.log.WithField("hazards", len(hs)).Info("Pushed hazards")
	return len(hs), nil
}

// ToHazard converts a stored report. A report without a hazard id gets a
// fresh one.
func ToHazard(r models.HazardReport) (hazard.Hazard, error) {
	t, ok := hazard.ParseType(r.Type)
	if !ok {
		return hazard.Hazard{}, fmt.Errorf("type %q: %w", r.Type, ErrInvalidReport)
	}
	sev, ok := hazard.ParseSeverity(r.Severity)
	if !ok {
		return hazard.Hazard{}, fmt.Errorf("severity %q: %w", r.Severity, ErrInvalidReport)
	}
	id := r.HazardID
	if id == "" {
		id = uuid.NewString()
	}
	return hazard.Hazard{
		ID:              id,
		Type:            t,
		Severity:        sev,
		Position:        r.Location.Position(),
		Radius:          r.Radius,
		AffectedRoad:    r.RoadID,
		IsActive:        r.Active,
		VerifiedReports: r.VerifiedReports,
		Description:     r.Description,
	}, nil
}

// FromHazard converts a hazard to its stored form.
func FromHazard(h hazard.Hazard) models.HazardReport {
	return models.HazardReport{
		HazardID:        h.ID,
		Type:            h.Type.String(),
		Severity:        h.Severity.String(),
		Location:        models.LocationOf(h.Position),
		Radius:          h.Radius,
		RoadID:          h.AffectedRoad,
		Active:          h.IsActive,
		VerifiedReports: h.VerifiedReports,
		Description:     h.Description,
	}
}
