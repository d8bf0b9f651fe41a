package detection

import (
	"context"
	"time"
)

// Repository defines the interface for detection event storage.
// Events are partitioned by the owning drone id; a drone without events yields an empty slice.
type Repository interface {
	// Append stores the event and folds its telemetry into the owning drone in one
	// transaction. It fails with drone.ErrDroneNotFound when the drone is unknown and with
	// drone.ErrDroneMismatch when event.DroneID is set and names a different drone.
	Append(ctx context.Context, event *Event) error
	QueryRecent(ctx context.Context, droneID string, limit int) ([]*Event, error)
	QueryRange(ctx context.Context, droneID string, from, to time.Time) ([]*Event, error)
	QueryAfter(ctx context.Context, droneID string, after time.Time) ([]*Event, error)
	// ListAlertCandidates returns events across all drones with after < eventTime <= until
	// and confidence >= minConfidence, oldest first.
	ListAlertCandidates(ctx context.Context, after, until time.Time, minConfidence float64) ([]*Event, error)
}
