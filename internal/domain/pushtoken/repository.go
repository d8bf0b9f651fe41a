package pushtoken

import "context"

// Repository defines the interface for push token persistence
type Repository interface {
	Upsert(ctx context.Context, token *Token) error
	List(ctx context.Context) ([]*Token, error)
}
