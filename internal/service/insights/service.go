package insights

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"vitrine/internal/domain"
)

// Ranges accepted by the dashboard.
var Ranges = []string{"7d", "30d", "90d"}

const DefaultRange = "30d"

type Source interface {
	GetInsightsSummary(ctx context.Context, token, slug, rangeKey string) (domain.InsightsSummary, error)
	GetDailyRevenue(ctx context.Context, token, slug, rangeKey string) ([]domain.DailyRevenue, error)
	GetTopProducts(ctx context.Context, token, slug, rangeKey string) ([]domain.TopProduct, error)
}

// Dashboard is the merchant's sales overview for one range. Money values are
// in currency units with two decimals.
type Dashboard struct {
	Range               string                `json:"range"`
	Revenue             decimal.Decimal       `json:"revenue"`
	Orders              int64                 `json:"orders"`
	AverageTicket       decimal.Decimal       `json:"averageTicket"`
	RevenueGrowthPct    decimal.Decimal       `json:"revenueGrowthPct"`
	OrdersGrowthPct     decimal.Decimal       `json:"ordersGrowthPct"`
	Daily               []domain.DailyRevenue `json:"daily"`
	TopProducts         []domain.TopProduct   `json:"topProducts"`
	HasPreviousActivity bool                  `json:"hasPreviousActivity"`
}

type Service struct {
	source Source
}

func New(source Source) *Service {
	return &Service{source: source}
}

// ValidRange reports whether r is one of Ranges.
func ValidRange(r string) bool {
	for _, v := range Ranges {
		if v == r {
			return true
		}
	}
	return false
}

func (s *Service) Dashboard(ctx context.Context, token, slug, rangeKey string) (Dashboard, error) {
	if rangeKey == "" {
		rangeKey = DefaultRange
	}
	if !ValidRange(rangeKey) {
		return Dashboard{}, domain.Invalid("range", "must be one of 7d 30d 90d")
	}

	var (
		summary domain.InsightsSummary
		daily   []domain.DailyRevenue
		top     []domain.TopProduct
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.source.GetInsightsSummary(gctx, token, slug, rangeKey)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		daily, err = s.source.GetDailyRevenue(gctx, token, slug, rangeKey)
		if err != nil {
			return fmt.Errorf("daily: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		top, err = s.source.GetTopProducts(gctx, token, slug, rangeKey)
		if err != nil {
			return fmt.Errorf("top products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d := Summarise(summary)
	d.Range = rangeKey
	d.Daily = daily
	d.TopProducts = top
	return d, nil
}

// Summarise derives the headline figures from a backend summary.
func Summarise(s domain.InsightsSummary) Dashboard {
	revenue := cents(s.RevenueCents)
	d := Dashboard{
		Revenue:             revenue,
		Orders:              s.Orders,
		AverageTicket:       decimal.Zero,
		RevenueGrowthPct:    growth(decimal.NewFromInt(s.RevenueCents), decimal.NewFromInt(s.PreviousRevenueCents)),
		OrdersGrowthPct:     growth(decimal.NewFromInt(s.Orders), decimal.NewFromInt(s.PreviousOrders)),
		HasPreviousActivity: s.PreviousOrders > 0 || s.PreviousRevenueCents > 0,
	}
	if s.Orders > 0 {
		d.AverageTicket = revenue.Div(decimal.NewFromInt(s.Orders)).Round(2)
	}
	return d
}

func cents(v int64) decimal.Decimal {
	return decimal.NewFromInt(v).Shift(-2)
}

// growth is the percentage change from prev to cur, zero without a baseline.
func growth(cur, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1)
}
