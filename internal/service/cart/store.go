package cart

import (
	"sync"

	"vitrine/internal/domain"
)

// Snapshot is an immutable view of the cart after a mutation.
type Snapshot struct {
	Version  uint64            `json:"version"`
	Lines    []domain.CartLine `json:"lines"`
	Subtotal int64             `json:"subtotal"`
}

// Listener is called synchronously after every effective mutation.
type Listener func(Snapshot)

// Store holds the ordered cart lines of one session.
type Store struct {
	mu        sync.RWMutex
	lines     []domain.CartLine
	version   uint64
	listeners map[uint64]Listener
	nextID    uint64
}

func NewStore() *Store {
	return &Store{listeners: make(map[uint64]Listener)}
}

// Subscribe registers l and returns a function removing it. l must not call
// back into the store's mutating methods.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Add merges p into the cart. Non-custom payloads whose identity matches an
// existing line only bump its quantity; the existing price and additionals
// snapshot are kept as they were. An add that would take a line past
// domain.MaxLineQuantity leaves the cart unchanged.
func (s *Store) Add(p domain.AddPayload) error {
	qty := p.Quantity
	if qty <= 0 {
		qty = 1
	}
	if qty > domain.MaxLineQuantity {
		return domain.QuantityLimit()
	}
	lineID := LineID(p)
	var err error
	s.mutate(func() bool {
		if !p.IsCustom {
			if idx := s.indexLocked(lineID); idx >= 0 && !s.lines[idx].IsCustom {
				if s.lines[idx].Quantity > domain.MaxLineQuantity-qty {
					err = domain.QuantityLimit()
					return false
				}
				s.lines[idx].Quantity += qty
				return true
			}
		}
		line := domain.CartLine{
			LineID:    lineID,
			ProductID: p.ProductID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  qty,
			ItemNotes: NormalizeNotes(p.ItemNotes),
			IsCustom:  p.IsCustom,
		}
		if len(p.Additionals) > 0 {
			line.Additionals = append([]domain.AdditionalSnapshot(nil), p.Additionals...)
		}
		if p.IsCustom && p.Custom != nil {
			c := *p.Custom
			line.Custom = &c
		}
		s.lines = append(s.lines, line)
		return true
	})
	return err
}

// Increment raises the quantity by one. Unknown ids are ignored; a line
// already at domain.MaxLineQuantity is refused.
func (s *Store) Increment(lineID string) error {
	var err error
	s.mutate(func() bool {
		idx := s.indexLocked(lineID)
		if idx < 0 {
			return false
		}
		if s.lines[idx].Quantity >= domain.MaxLineQuantity {
			err = domain.QuantityLimit()
			return false
		}
		s.lines[idx].Quantity++
		return true
	})
	return err
}

// Decrement lowers the quantity by one and removes the line at quantity 1.
func (s *Store) Decrement(lineID string) {
	s.mutate(func() bool {
		idx := s.indexLocked(lineID)
		if idx < 0 {
			return false
		}
		if s.lines[idx].Quantity > 1 {
			s.lines[idx].Quantity--
			return true
		}
		s.removeLocked(idx)
		return true
	})
}

func (s *Store) RemoveLine(lineID string) {
	s.mutate(func() bool {
		idx := s.indexLocked(lineID)
		if idx < 0 {
			return false
		}
		s.removeLocked(idx)
		return true
	})
}

func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.lines) == 0 {
			return false
		}
		s.lines = nil
		return true
	})
}

// Subtotal returns the sum of UnitPrice * Quantity over all lines.
func (s *Store) Subtotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return subtotal(s.lines)
}

// Lines returns a copy of the current lines in append order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLines(s.lines)
}

// Line returns a copy of the line with the given id.
func (s *Store) Line(lineID string) (domain.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(lineID)
	if idx < 0 {
		return domain.CartLine{}, false
	}
	return s.lines[idx].Clone(), true
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:  s.version,
		Lines:    cloneLines(s.lines),
		Subtotal: subtotal(s.lines),
	}
}

func (s *Store) indexLocked(lineID string) int {
	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(idx int) {
	s.lines = append(s.lines[:idx:idx], s.lines[idx+1:]...)
}

func subtotal(lines []domain.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Total()
	}
	return total
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Clone())
	}
	return out
}
