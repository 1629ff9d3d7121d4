// Package draft implements the per-product configuration flow that builds a
// candidate cart line, previews it against the cart and commits it.
package draft

import (
	"errors"
	"fmt"
	"sync"

	"vitrine/internal/domain"
	"vitrine/internal/service/cart"
	"vitrine/internal/service/editsignal"
)

type State string

const (
	StateClosed      State = "closed"
	StateConfiguring State = "configuring"
	StateReviewing   State = "reviewing"
	StateCustom      State = "custom"
)

// PreviewLineID marks the synthetic line built from the live draft. It can
// never collide with a real line id, which always contains "::" or is a UUID.
const PreviewLineID = "draft-preview"

var (
	ErrInvalidState = errors.New("draft: operation not allowed in current state")
	ErrWrongProduct = errors.New("draft: line belongs to another product")
)

// PreviewLine is one entry of the order preview. IsDraft marks the live draft;
// MergesInto names the cart line the draft would be merged into on confirm.
type PreviewLine struct {
	domain.CartLine
	IsDraft    bool   `json:"isDraft"`
	MergesInto string `json:"mergesInto,omitempty"`
}

// View is a read-only copy of the draft fields.
type View struct {
	ProductID     string              `json:"productId"`
	State         State               `json:"state"`
	Quantity      int                 `json:"quantity"`
	ItemNotes     string              `json:"itemNotes"`
	Selected      []string            `json:"selectedAdditionals"`
	EditingLineID string              `json:"editingLineId,omitempty"`
	Visible       bool                `json:"visible"`
	UnitPrice     int64               `json:"unitPrice"`
	Available     []domain.Additional `json:"availableAdditionals"`
}

// Controller owns the draft for one product within one session. All methods
// are safe for concurrent use; store and bus calls happen outside of any
// handler the controller registers.
type Controller struct {
	mu sync.Mutex

	product   domain.Product
	available []domain.Additional
	store     *cart.Store
	bus       *editsignal.Bus

	state     State
	selected  map[string]struct{}
	quantity  int
	notes     string
	editingID string
	visible   bool

	unsubscribe func()
}

// New mounts a controller for offer.Product on bus. Call Unmount to release it.
func New(offer domain.Offer, store *cart.Store, bus *editsignal.Bus) *Controller {
	c := &Controller{
		product:   offer.Product,
		available: append([]domain.Additional(nil), offer.Additionals...),
		store:     store,
		bus:       bus,
		state:     StateClosed,
		selected:  make(map[string]struct{}),
		quantity:  1,
		visible:   true,
	}
	if bus != nil {
		c.unsubscribe = bus.Subscribe(offer.Product.ID, func(req editsignal.Request) {
			// best-effort: a line removed in the meantime is ignored
			_ = c.LoadForEditByID(req.LineID)
		})
	}
	return c
}

// Unmount stops receiving edit signals.
func (c *Controller) Unmount() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Controller) ProductID() string { return c.product.ID }

// Open starts a fresh draft. Custom products enter the custom sub-flow.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.editingID = ""
	c.visible = true
	if c.product.IsCustom {
		c.state = StateCustom
		return
	}
	c.state = StateConfiguring
}

// LoadForEdit fills the draft from an existing non-custom line of this product.
func (c *Controller) LoadForEdit(line domain.CartLine) error {
	if line.IsCustom {
		return domain.Invalid("lineId", "custom items cannot be edited")
	}
	if line.ProductID != c.product.ID {
		return ErrWrongProduct
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	for _, id := range line.AdditionalIDs() {
		if c.isAvailableLocked(id) {
			c.selected[id] = struct{}{}
		}
	}
	c.quantity = line.Quantity
	if c.quantity < 1 {
		c.quantity = 1
	}
	c.notes = line.ItemNotes
	c.editingID = line.LineID
	c.visible = true
	c.state = StateConfiguring
	return nil
}

// LoadForEditByID looks lineID up in the cart and loads it for editing.
func (c *Controller) LoadForEditByID(lineID string) error {
	line, ok := c.store.Line(lineID)
	if !ok {
		return fmt.Errorf("line %s: %w", lineID, domain.ErrNotFound)
	}
	return c.LoadForEdit(line)
}

func (c *Controller) ToggleAdditional(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConfiguring {
		return ErrInvalidState
	}
	if !c.isAvailableLocked(id) {
		return domain.Invalid("additionalId", "additional is not available for this product")
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
	return nil
}

func (c *Controller) SetQuantity(q int) error {
	if q < 1 {
		return domain.Invalid("quantity", "quantity must be at least 1")
	}
	if q > domain.MaxLineQuantity {
		return domain.QuantityLimit()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConfiguring && c.state != StateReviewing {
		return ErrInvalidState
	}
	c.quantity = q
	return nil
}

func (c *Controller) SetNotes(notes string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConfiguring && c.state != StateReviewing {
		return ErrInvalidState
	}
	c.notes = notes
	return nil
}

// SetAvailableAdditionals replaces the additionals offered for the product
// and drops selected ids that are no longer offered.
func (c *Controller) SetAvailableAdditionals(list []domain.Additional) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = append([]domain.Additional(nil), list...)
	for id := range c.selected {
		if !c.isAvailableLocked(id) {
			delete(c.selected, id)
		}
	}
}

// SetProduct refreshes the product record, keeping the draft fields.
func (c *Controller) SetProduct(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.ID == c.product.ID {
		c.product = p
	}
}

func (c *Controller) AdvanceToSummary() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConfiguring {
		return ErrInvalidState
	}
	if !c.product.Availability.Orderable() {
		return domain.ErrUnavailable
	}
	c.state = StateReviewing
	return nil
}

func (c *Controller) BackToConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReviewing {
		return ErrInvalidState
	}
	c.state = StateConfiguring
	return nil
}

// Confirm commits the draft into the cart, replacing the edited line if any.
// It reports false without touching the cart when the draft is hidden or the
// flow is not open.
func (c *Controller) Confirm() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.visible {
		return false, nil
	}
	if c.state != StateConfiguring && c.state != StateReviewing {
		return false, nil
	}
	if !c.product.Availability.Orderable() {
		return false, domain.ErrUnavailable
	}

	payload := c.payloadLocked()
	if target, ok := c.store.Line(cart.LineID(payload)); ok && target.LineID != c.editingID &&
		target.Quantity > domain.MaxLineQuantity-payload.Quantity {
		return false, domain.QuantityLimit()
	}
	if c.editingID != "" {
		if old, ok := c.store.Line(c.editingID); ok && old.ProductID == c.product.ID {
			c.store.RemoveLine(c.editingID)
		}
	}
	if err := c.store.Add(payload); err != nil {
		return false, err
	}

	c.editingID = ""
	c.visible = false
	c.resetLocked()
	return true, nil
}

// DiscardDraftLine drops the draft from the preview. When editing, the edited
// line is removed from the cart as well.
func (c *Controller) DiscardDraftLine() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editingID != "" {
		c.store.RemoveLine(c.editingID)
		c.editingID = ""
	}
	c.visible = false
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// RemovePreviewLine hides the draft when given PreviewLineID; any other id
// is removed from the cart.
func (c *Controller) RemovePreviewLine(lineID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lineID == PreviewLineID {
		c.visible = false
		return
	}
	c.store.RemoveLine(lineID)
	if lineID == c.editingID {
		c.editingID = ""
	}
}

// RequestEdit starts editing lineID. Lines of this product are loaded here;
// lines of another product close this draft and are handed to that product's
// controller. It reports whether some controller took the request.
func (c *Controller) RequestEdit(lineID, productID string) (bool, error) {
	if productID == c.product.ID {
		if err := c.LoadForEditByID(lineID); err != nil {
			return false, err
		}
		return true, nil
	}
	c.Close()
	if c.bus == nil {
		return false, nil
	}
	return c.bus.RequestEdit(lineID, productID), nil
}

// Preview returns the cart as it would look if the draft were confirmed now.
func (c *Controller) Preview() []PreviewLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.store.Lines()
	out := make([]PreviewLine, 0, len(lines)+1)

	includeDraft := c.visible && (c.state == StateConfiguring || c.state == StateReviewing)
	var draftLine domain.CartLine
	mergeTarget := ""
	if includeDraft {
		payload := c.payloadLocked()
		draftLine = domain.CartLine{
			LineID:      PreviewLineID,
			ProductID:   payload.ProductID,
			Name:        payload.Name,
			UnitPrice:   payload.UnitPrice,
			Quantity:    payload.Quantity,
			Additionals: payload.Additionals,
			ItemNotes:   cart.NormalizeNotes(payload.ItemNotes),
		}
		identity := cart.LineID(payload)
		for _, l := range lines {
			if l.LineID == identity && l.LineID != c.editingID && !l.IsCustom {
				mergeTarget = l.LineID
				break
			}
		}
	}

	placed := !includeDraft
	for _, l := range lines {
		switch {
		case l.LineID == c.editingID:
			if !placed && mergeTarget == "" {
				out = append(out, PreviewLine{CartLine: draftLine, IsDraft: true})
				placed = true
			}
		case l.LineID == mergeTarget:
			merged := l
			merged.LineID = PreviewLineID
			merged.Quantity += draftLine.Quantity
			out = append(out, PreviewLine{CartLine: merged, IsDraft: true, MergesInto: l.LineID})
			placed = true
		default:
			out = append(out, PreviewLine{CartLine: l})
		}
	}
	if !placed {
		out = append(out, PreviewLine{CartLine: draftLine, IsDraft: true})
	}
	return out
}

// PreviewSubtotal sums the preview lines.
func (c *Controller) PreviewSubtotal() int64 {
	var total int64
	for _, l := range c.Preview() {
		total += l.Total()
	}
	return total
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		ProductID:     c.product.ID,
		State:         c.state,
		Quantity:      c.quantity,
		ItemNotes:     c.notes,
		EditingLineID: c.editingID,
		Visible:       c.visible,
		UnitPrice:     c.unitPriceLocked(),
		Available:     append([]domain.Additional(nil), c.available...),
	}
	v.Selected = c.selectedIDsLocked()
	return v
}

func (c *Controller) closeLocked() {
	c.state = StateClosed
	c.editingID = ""
	c.visible = true
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.selected = make(map[string]struct{})
	c.quantity = 1
	c.notes = ""
}

func (c *Controller) isAvailableLocked(id string) bool {
	for _, a := range c.available {
		if a.ID == id {
			return true
		}
	}
	return false
}

// selectedIDsLocked lists selected ids in the order additionals are offered.
func (c *Controller) selectedIDsLocked() []string {
	ids := make([]string, 0, len(c.selected))
	for _, a := range c.available {
		if _, ok := c.selected[a.ID]; ok {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func (c *Controller) unitPriceLocked() int64 {
	price := c.product.PriceCents
	for _, a := range c.available {
		if _, ok := c.selected[a.ID]; ok {
			price += a.PriceCents
		}
	}
	return price
}

func (c *Controller) payloadLocked() domain.AddPayload {
	var snaps []domain.AdditionalSnapshot
	for _, a := range c.available {
		if _, ok := c.selected[a.ID]; ok {
			snaps = append(snaps, a.Snapshot())
		}
	}
	return domain.AddPayload{
		ProductID:   c.product.ID,
		Name:        c.product.Name,
		UnitPrice:   c.unitPriceLocked(),
		Quantity:    c.quantity,
		Additionals: snaps,
		ItemNotes:   c.notes,
	}
}
