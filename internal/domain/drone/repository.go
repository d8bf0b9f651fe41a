package drone

import (
	"context"
	"time"
)

// Repository defines the interface for drone registry operations
type Repository interface {
	// Register creates the drone or stamps a new connect time on an existing one, and
	// provisions its event collection, all in one transaction.
	Register(ctx context.Context, in RegisterInput) (*RegisterOutcome, error)
	MarkConnected(ctx context.Context, name string, at time.Time) (*Drone, error)
	GetByName(ctx context.Context, name string) (*Drone, error)
	List(ctx context.Context) ([]*Drone, error)
	GetVideoMapping(ctx context.Context, name string) (*VideoMapping, error)
	UpsertVideoMapping(ctx context.Context, mapping *VideoMapping) error
}
