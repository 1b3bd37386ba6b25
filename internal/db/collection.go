package db

import (
	"context"

	"github.com/ukydev/rider-sim/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HazardReportCollection defines the interface for hazard report operations.
type HazardReportCollection interface {
	InsertHazardReport(ctx context.Context, report models.HazardReport) error
	UpsertHazardReport(ctx context.Context, report models.HazardReport) error
	FindHazardReports(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (HazardReportCursor, error)
	DeleteHazardReport(ctx context.Context, hazardID string) error
}

// HazardReportCursor defines the interface for hazard report cursor operations.
type HazardReportCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// RiderTripCollection defines the interface for rider trip operations.
type RiderTripCollection interface {
	InsertRiderTrip(ctx context.Context, trip models.RiderTrip) error
	FindRiderTrips(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (RiderTripCursor, error)
}

// RiderTripCursor defines the interface for rider trip cursor operations.
type RiderTripCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
