// Package editsignal hands an edit request for a cart line to the draft
// controller mounted for that line's product.
package editsignal

import "sync"

// Request asks the controller of ProductID to load LineID for editing.
type Request struct {
	LineID    string
	ProductID string
}

type Handler func(Request)

// Bus routes edit requests by product id. Delivery is at-most-once and
// best-effort: requests for a product with no handler are dropped.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[uint64]Handler
	nextID   uint64
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[uint64]Handler)}
}

// Subscribe mounts h for productID and returns a function unmounting it.
func (b *Bus) Subscribe(productID string, h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.handlers[productID] == nil {
		b.handlers[productID] = make(map[uint64]Handler)
	}
	b.handlers[productID][id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[productID], id)
			if len(b.handlers[productID]) == 0 {
				delete(b.handlers, productID)
			}
		})
	}
}

// RequestEdit delivers the request to every handler mounted for productID
// and reports whether any received it.
func (b *Bus) RequestEdit(lineID, productID string) bool {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.handlers[productID]))
	for _, h := range b.handlers[productID] {
		targets = append(targets, h)
	}
	b.mu.RUnlock()

	req := Request{LineID: lineID, ProductID: productID}
	for _, h := range targets {
		h(req)
	}
	return len(targets) > 0
}

// Mounted reports whether any handler is registered for productID.
func (b *Bus) Mounted(productID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[productID]) > 0
}
