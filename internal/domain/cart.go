package domain

import "fmt"

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 999

// QuantityLimit is the validation error for quantities above MaxLineQuantity.
func QuantityLimit() error {
	return Invalid("quantity", fmt.Sprintf("quantity cannot exceed %d", MaxLineQuantity))
}

// AdditionalSnapshot freezes an additional's fields at add-time.
type AdditionalSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
}

// CustomDetails is the negotiated payload carried by custom lines.
type CustomDetails struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Weight      string `json:"weight,omitempty"`
}

// CartLine is one purchasable entry in a cart. UnitPrice is in cents and
// already includes the selected additionals.
type CartLine struct {
	LineID      string               `json:"lineId"`
	ProductID   string               `json:"productId"`
	Name        string               `json:"name"`
	UnitPrice   int64                `json:"unitPrice"`
	Quantity    int                  `json:"quantity"`
	Additionals []AdditionalSnapshot `json:"additionals,omitempty"`
	ItemNotes   string               `json:"itemNotes,omitempty"`
	IsCustom    bool                 `json:"isCustom"`
	Custom      *CustomDetails       `json:"custom,omitempty"`
}

// Total returns UnitPrice * Quantity.
func (l CartLine) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// AdditionalIDs returns the ids of the line's additionals in stored order.
func (l CartLine) AdditionalIDs() []string {
	ids := make([]string, 0, len(l.Additionals))
	for _, a := range l.Additionals {
		ids = append(ids, a.ID)
	}
	return ids
}

// Clone returns a deep copy so callers cannot alias store state.
func (l CartLine) Clone() CartLine {
	out := l
	if l.Additionals != nil {
		out.Additionals = append([]AdditionalSnapshot(nil), l.Additionals...)
	}
	if l.Custom != nil {
		c := *l.Custom
		out.Custom = &c
	}
	return out
}

// AddPayload is an add-to-cart request. Quantity <= 0 means 1.
type AddPayload struct {
	ProductID   string               `json:"productId" binding:"required"`
	Name        string               `json:"name" binding:"required"`
	UnitPrice   int64                `json:"unitPrice" binding:"min=0"`
	Quantity    int                  `json:"quantity,omitempty"`
	Additionals []AdditionalSnapshot `json:"additionals,omitempty"`
	ItemNotes   string               `json:"itemNotes,omitempty"`
	IsCustom    bool                 `json:"isCustom,omitempty"`
	Custom      *CustomDetails       `json:"custom,omitempty"`
}
