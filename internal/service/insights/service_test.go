package insights

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"vitrine/internal/domain"
)

type stubSource struct {
	summary domain.InsightsSummary
	topErr  error
	calls   atomic.Int32
	ranges  chan string
}

func (s *stubSource) GetInsightsSummary(_ context.Context, _, _, r string) (domain.InsightsSummary, error) {
	s.calls.Add(1)
	s.ranges <- r
	return s.summary, nil
}

func (s *stubSource) GetDailyRevenue(context.Context, string, string, string) ([]domain.DailyRevenue, error) {
	s.calls.Add(1)
	return []domain.DailyRevenue{{Date: "2026-05-01", RevenueCents: 10000, Orders: 2}}, nil
}

func (s *stubSource) GetTopProducts(context.Context, string, string, string) ([]domain.TopProduct, error) {
	s.calls.Add(1)
	if s.topErr != nil {
		return nil, s.topErr
	}
	return []domain.TopProduct{{ProductID: "p1", Name: "Pizza", Quantity: 12}}, nil
}

func TestSummariseDerivesFigures(t *testing.T) {
	d := Summarise(domain.InsightsSummary{RevenueCents: 150000, Orders: 30, PreviousRevenueCents: 100000, PreviousOrders: 40})

	if d.Revenue.String() != "1500" {
		t.Fatalf("unexpected revenue %s", d.Revenue)
	}
	if d.AverageTicket.StringFixed(2) != "50.00" {
		t.Fatalf("unexpected average ticket %s", d.AverageTicket)
	}
	if d.RevenueGrowthPct.String() != "50" {
		t.Fatalf("unexpected revenue growth %s", d.RevenueGrowthPct)
	}
	if d.OrdersGrowthPct.String() != "-25" {
		t.Fatalf("unexpected orders growth %s", d.OrdersGrowthPct)
	}
	if !d.HasPreviousActivity {
		t.Fatalf("expected previous activity")
	}
}

func TestSummariseWithoutOrders(t *testing.T) {
	d := Summarise(domain.InsightsSummary{})
	if !d.AverageTicket.IsZero() || !d.RevenueGrowthPct.IsZero() {
		t.Fatalf("expected zero figures, got %+v", d)
	}
	if d.HasPreviousActivity {
		t.Fatalf("expected no previous activity")
	}
}

func TestSummariseRoundsAverageTicket(t *testing.T) {
	d := Summarise(domain.InsightsSummary{RevenueCents: 10000, Orders: 3})
	if d.AverageTicket.StringFixed(2) != "33.33" {
		t.Fatalf("unexpected average ticket %s", d.AverageTicket.StringFixed(2))
	}
}

func TestDashboardFetchesAllSections(t *testing.T) {
	src := &stubSource{summary: domain.InsightsSummary{RevenueCents: 5000, Orders: 1}, ranges: make(chan string, 1)}
	d, err := New(src).Dashboard(context.Background(), "tok", "pizzaria", "")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if src.calls.Load() != 3 {
		t.Fatalf("expected 3 backend calls, got %d", src.calls.Load())
	}
	if got := <-src.ranges; got != DefaultRange {
		t.Fatalf("expected default range, got %s", got)
	}
	if d.Range != DefaultRange || len(d.Daily) != 1 || len(d.TopProducts) != 1 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
}

func TestDashboardFailsWhenAnySectionFails(t *testing.T) {
	boom := errors.New("boom")
	src := &stubSource{topErr: boom, ranges: make(chan string, 1)}
	if _, err := New(src).Dashboard(context.Background(), "tok", "pizzaria", "7d"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestDashboardRejectsUnknownRange(t *testing.T) {
	src := &stubSource{ranges: make(chan string, 1)}
	_, err := New(src).Dashboard(context.Background(), "tok", "pizzaria", "1y")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "range" {
		t.Fatalf("expected range validation error, got %v", err)
	}
	if src.calls.Load() != 0 {
		t.Fatalf("invalid range must not reach the backend")
	}
}
