package pushsub

import (
	"context"
	"time"

	"vitrine/internal/domain"
)

type Repository interface {
	// Upsert stores sub, replacing any registration with the same endpoint.
	Upsert(ctx context.Context, sub domain.PushSubscription) (domain.PushSubscription, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, storeID, endpoint string) error
	MarkFailed(ctx context.Context, endpoint string, at time.Time) error
}
