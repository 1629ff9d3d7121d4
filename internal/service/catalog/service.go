package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vitrine/internal/cache"
	"vitrine/internal/domain"
)

// Source is the backend surface the catalog reads from.
type Source interface {
	GetStore(ctx context.Context, slug string) (domain.Store, error)
	ListProducts(ctx context.Context, slug string) ([]domain.Product, error)
	ListAdditionals(ctx context.Context, slug string) ([]domain.Additional, error)
}

type Service struct {
	source Source
	cache  cache.Cache
	ttl    time.Duration
}

func New(source Source, c cache.Cache, ttl time.Duration) *Service {
	return &Service{source: source, cache: c, ttl: ttl}
}

func (s *Service) Store(ctx context.Context, slug string) (domain.Store, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.Key("store", slug), s.ttl, func(ctx context.Context) (domain.Store, error) {
		return s.source.GetStore(ctx, slug)
	})
}

func (s *Service) Products(ctx context.Context, slug string) ([]domain.Product, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.Key("catalog", slug, "products"), s.ttl, func(ctx context.Context) ([]domain.Product, error) {
		return s.source.ListProducts(ctx, slug)
	})
}

func (s *Service) Additionals(ctx context.Context, slug string) ([]domain.Additional, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.Key("catalog", slug, "additionals"), s.ttl, func(ctx context.Context) ([]domain.Additional, error) {
		return s.source.ListAdditionals(ctx, slug)
	})
}

// Offers pairs every product of the store with its available additionals.
func (s *Service) Offers(ctx context.Context, slug string) ([]domain.Offer, error) {
	products, err := s.Products(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	additionals, err := s.Additionals(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("list additionals: %w", err)
	}
	offers := make([]domain.Offer, 0, len(products))
	for _, p := range products {
		offers = append(offers, domain.Offer{Product: p, Additionals: AvailableAdditionals(p, additionals)})
	}
	return offers, nil
}

func (s *Service) Offer(ctx context.Context, slug, productID string) (domain.Offer, error) {
	offers, err := s.Offers(ctx, slug)
	if err != nil {
		return domain.Offer{}, err
	}
	for _, o := range offers {
		if o.Product.ID == productID {
			return o, nil
		}
	}
	return domain.Offer{}, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
}

// Invalidate drops the cached store and catalog for slug.
func (s *Service) Invalidate(ctx context.Context, slug string) error {
	return cache.Invalidate(ctx, s.cache,
		cache.Key("store", slug),
		cache.Key("catalog", slug, "products"),
		cache.Key("catalog", slug, "additionals"),
	)
}

// AvailableAdditionals returns the active additionals linked to p, ordered by
// display order and then name. Products with additionals disabled get none.
func AvailableAdditionals(p domain.Product, all []domain.Additional) []domain.Additional {
	if !p.AdditionalsEnabled || len(p.AdditionalIDs) == 0 {
		return []domain.Additional{}
	}
	linked := make(map[string]struct{}, len(p.AdditionalIDs))
	for _, id := range p.AdditionalIDs {
		linked[id] = struct{}{}
	}
	out := make([]domain.Additional, 0, len(p.AdditionalIDs))
	for _, a := range all {
		if !a.IsActive {
			continue
		}
		if _, ok := linked[a.ID]; ok {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}
