package push

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"vitrine/internal/domain"
	"vitrine/internal/repository/pushsub"
	"vitrine/internal/validation"
)

// Sender delivers one message to one device through the backend gateway.
type Sender interface {
	SendPush(ctx context.Context, token, slug string, sub domain.PushSubscription, msg domain.PushMessage) error
}

type Keys struct {
	P256DH string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// SubscribeInput mirrors the browser's PushSubscription JSON.
type SubscribeInput struct {
	Endpoint string `json:"endpoint" validate:"required,url,max=1000"`
	Keys     Keys   `json:"keys"`
}

type Service struct {
	repo   pushsub.Repository
	sender Sender
	now    func() time.Time

	mu         sync.Mutex
	lastUnread map[string]int
}

func New(repo pushsub.Repository, sender Sender) *Service {
	return &Service{
		repo:       repo,
		sender:     sender,
		now:        time.Now,
		lastUnread: make(map[string]int),
	}
}

func (s *Service) Subscribe(ctx context.Context, storeID, userID string, in SubscribeInput) (domain.PushSubscription, error) {
	in.Endpoint = strings.TrimSpace(in.Endpoint)
	if err := validation.Struct(in); err != nil {
		return domain.PushSubscription{}, err
	}
	return s.repo.Upsert(ctx, domain.PushSubscription{
		StoreID:  storeID,
		UserID:   userID,
		Endpoint: in.Endpoint,
		P256DH:   in.Keys.P256DH,
		Auth:     in.Keys.Auth,
	})
}

func (s *Service) Unsubscribe(ctx context.Context, storeID, endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return domain.Invalid("endpoint", "is required")
	}
	return s.repo.DeleteByEndpoint(ctx, storeID, endpoint)
}

// Notify sends msg to every device of store. Devices the gateway reports as
// gone are forgotten; other failures are recorded and returned together.
func (s *Service) Notify(ctx context.Context, token string, store domain.Store, msg domain.PushMessage) (int, error) {
	subs, err := s.repo.ListByStore(ctx, store.ID)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}
	sent := 0
	var errs error
	for _, sub := range subs {
		err := s.sender.SendPush(ctx, token, store.Slug, sub, msg)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, domain.ErrNotFound):
			errs = multierr.Append(errs, s.repo.DeleteByEndpoint(ctx, sub.StoreID, sub.Endpoint))
		default:
			errs = multierr.Append(errs, fmt.Errorf("push to %s: %w", sub.ID, err))
			errs = multierr.Append(errs, s.repo.MarkFailed(ctx, sub.Endpoint, s.now()))
		}
	}
	return sent, errs
}

// UnreadRose records the unread total for storeID and reports whether it
// grew since the previous observation. The first observation never counts.
func (s *Service) UnreadRose(storeID string, total int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, seen := s.lastUnread[storeID]
	s.lastUnread[storeID] = total
	return seen && total > prev
}
