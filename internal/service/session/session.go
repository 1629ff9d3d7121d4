package session

import (
	"sync"
	"time"

	"vitrine/internal/domain"
	"vitrine/internal/service/cart"
	"vitrine/internal/service/draft"
	"vitrine/internal/service/editsignal"
)

// Session is one shopper's storefront state: a cart, the edit bus shared by
// its draft controllers, and the controllers currently mounted.
type Session struct {
	ID        string
	StoreSlug string
	Cart      *cart.Store
	Bus       *editsignal.Bus

	// mu serialises the shopper's interactions.
	mu sync.Mutex

	ctlMu       sync.Mutex
	controllers map[string]*draft.Controller

	seenMu   sync.Mutex
	lastSeen time.Time
}

func newSession(id, slug string, now time.Time) *Session {
	return &Session{
		ID:          id,
		StoreSlug:   slug,
		Cart:        cart.NewStore(),
		Bus:         editsignal.NewBus(),
		controllers: make(map[string]*draft.Controller),
		lastSeen:    now,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Controller returns the draft controller for offer.Product, mounting it on
// first use. An already mounted controller gets the fresh product record and
// additionals list.
func (s *Session) Controller(offer domain.Offer) *draft.Controller {
	s.ctlMu.Lock()
	ctl, ok := s.controllers[offer.Product.ID]
	if !ok {
		ctl = draft.New(offer, s.Cart, s.Bus)
		s.controllers[offer.Product.ID] = ctl
	}
	s.ctlMu.Unlock()

	if ok {
		ctl.SetProduct(offer.Product)
		ctl.SetAvailableAdditionals(offer.Additionals)
	}
	return ctl
}

// Mounted returns the controller for productID if one is mounted.
func (s *Session) Mounted(productID string) (*draft.Controller, bool) {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()
	ctl, ok := s.controllers[productID]
	return ctl, ok
}

// Unmount releases the controller for productID.
func (s *Session) Unmount(productID string) {
	s.ctlMu.Lock()
	ctl, ok := s.controllers[productID]
	delete(s.controllers, productID)
	s.ctlMu.Unlock()
	if ok {
		ctl.Unmount()
	}
}

func (s *Session) unmountAll() {
	s.ctlMu.Lock()
	ctls := s.controllers
	s.controllers = make(map[string]*draft.Controller)
	s.ctlMu.Unlock()
	for _, ctl := range ctls {
		ctl.Unmount()
	}
}

func (s *Session) touch(now time.Time) {
	s.seenMu.Lock()
	s.lastSeen = now
	s.seenMu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}
