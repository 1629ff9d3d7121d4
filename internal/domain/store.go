package domain

import "time"

// Store is a tenant storefront as described by the backend.
type Store struct {
	ID       string          `json:"id"`
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	IsOpen   bool            `json:"isOpen"`
	Modules  map[string]bool `json:"modules,omitempty"`

	Hours          []OpeningHours  `json:"hours,omitempty"`
	ShippingTiers  []ShippingTier  `json:"shippingTiers,omitempty"`
	PaymentMethods []PaymentMethod `json:"paymentMethods,omitempty"`
}

// ModuleEnabled reports the backend's opaque module flag.
func (s Store) ModuleEnabled(name string) bool {
	return s.Modules[name]
}

type OpeningHours struct {
	Weekday int    `json:"weekday"`
	Opens   string `json:"opens"`
	Closes  string `json:"closes"`
	Closed  bool   `json:"closed"`
}

type ShippingTier struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	MaxDistance int    `json:"maxDistanceMeters"`
	FeeCents    int64  `json:"feeCents"`
}

type PaymentMethod struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// StoreSettings is the merchant-editable configuration of a store.
type StoreSettings struct {
	Hours          []OpeningHours  `json:"hours"`
	ShippingTiers  []ShippingTier  `json:"shippingTiers"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	UpdatedAt      time.Time       `json:"updatedAt,omitempty"`
}

// InventoryItem is the merchant view of a product's stock.
type InventoryItem struct {
	ProductID    string       `json:"productId"`
	Name         string       `json:"name"`
	PriceCents   int64        `json:"priceCents"`
	Stock        *int         `json:"stock,omitempty"`
	Availability Availability `json:"availability"`
}

// InventoryUpdate carries the fields a merchant may change; nil means unchanged.
type InventoryUpdate struct {
	PriceCents   *int64        `json:"priceCents,omitempty"`
	Stock        *int          `json:"stock,omitempty"`
	Availability *Availability `json:"availability,omitempty"`
}
