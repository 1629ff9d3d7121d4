package session

import (
	"testing"
	"time"

	"vitrine/internal/domain"
)

func newTestRegistry(ttl time.Duration) (*Registry, *time.Time) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(ttl)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestResolveReusesLiveSession(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)
	first, created := r.Resolve("pizzaria", "")
	if !created || first.ID == "" {
		t.Fatalf("expected new session")
	}
	again, created := r.Resolve("pizzaria", first.ID)
	if created || again != first {
		t.Fatalf("expected the same session back")
	}
}

func TestResolveOtherStoreGetsFreshSession(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)
	s, _ := r.Resolve("pizzaria", "")
	other, created := r.Resolve("padaria", s.ID)
	if !created || other.ID == s.ID || other.StoreSlug != "padaria" {
		t.Fatalf("expected a fresh session bound to padaria, got %+v", other)
	}
}

func TestExpiredSessionIsReplacedAndSwept(t *testing.T) {
	r, now := newTestRegistry(time.Hour)
	s, _ := r.Resolve("pizzaria", "")
	s.Cart.Add(domain.AddPayload{ProductID: "p1", Name: "Pizza", UnitPrice: 1000})
	s.Controller(domain.Offer{Product: domain.Product{ID: "p1"}})

	*now = now.Add(2 * time.Hour)
	if _, ok := r.Get(s.ID); ok {
		t.Fatalf("expired session should not be returned")
	}
	fresh, created := r.Resolve("pizzaria", s.ID)
	if !created || len(fresh.Cart.Lines()) != 0 {
		t.Fatalf("expected fresh empty cart")
	}

	if n := r.Sweep(); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	if r.Len() != 1 {
		t.Fatalf("expected only the fresh session, got %d", r.Len())
	}
	if s.Bus.Mounted("p1") {
		t.Fatalf("swept session should unmount its controllers")
	}
}

func TestTouchExtendsLifetime(t *testing.T) {
	r, now := newTestRegistry(time.Hour)
	s, _ := r.Resolve("pizzaria", "")
	for i := 0; i < 3; i++ {
		*now = now.Add(50 * time.Minute)
		if _, created := r.Resolve("pizzaria", s.ID); created {
			t.Fatalf("session expired despite activity at step %d", i)
		}
	}
}

func TestControllerMountsOnceAndRefreshes(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)
	s, _ := r.Resolve("pizzaria", "")
	offer := domain.Offer{
		Product:     domain.Product{ID: "p1", PriceCents: 1000, AdditionalsEnabled: true, AdditionalIDs: []string{"a1"}},
		Additionals: []domain.Additional{{ID: "a1", PriceCents: 200, IsActive: true}},
	}
	ctl := s.Controller(offer)
	ctl.Open()
	if err := ctl.ToggleAdditional("a1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	offer.Additionals = nil
	if again := s.Controller(offer); again != ctl {
		t.Fatalf("expected the mounted controller to be reused")
	}
	if v := ctl.View(); len(v.Selected) != 0 {
		t.Fatalf("refresh should prune stale selections, got %v", v.Selected)
	}

	s.Unmount("p1")
	if _, ok := s.Mounted("p1"); ok {
		t.Fatalf("expected p1 unmounted")
	}
	if s.Bus.Mounted("p1") {
		t.Fatalf("expected bus handler removed")
	}
}
