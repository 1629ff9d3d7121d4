package pushsub

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vitrine/internal/domain"
)

type memoryRepo struct {
	mu       sync.Mutex
	byEnd    map[string]domain.PushSubscription
	failedAt map[string]time.Time
	now      func() time.Time
}

// NewMemory returns a process-local Repository for runs without Postgres.
func NewMemory() Repository {
	return &memoryRepo{
		byEnd:    make(map[string]domain.PushSubscription),
		failedAt: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (r *memoryRepo) Upsert(_ context.Context, sub domain.PushSubscription) (domain.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byEnd[sub.Endpoint]; ok {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		sub.ID = uuid.NewString()
		sub.CreatedAt = r.now()
	}
	r.byEnd[sub.Endpoint] = sub
	delete(r.failedAt, sub.Endpoint)
	return sub, nil
}

func (r *memoryRepo) ListByStore(_ context.Context, storeID string) ([]domain.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PushSubscription
	for _, s := range r.byEnd {
		if s.StoreID == storeID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) DeleteByEndpoint(_ context.Context, storeID, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byEnd[endpoint]
	if !ok || s.StoreID != storeID {
		return domain.ErrNotFound
	}
	delete(r.byEnd, endpoint)
	delete(r.failedAt, endpoint)
	return nil
}

func (r *memoryRepo) MarkFailed(_ context.Context, endpoint string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEnd[endpoint]; !ok {
		return domain.ErrNotFound
	}
	r.failedAt[endpoint] = at
	return nil
}
