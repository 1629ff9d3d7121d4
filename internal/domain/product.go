package domain

// Availability describes whether a product can be ordered from the storefront.
type Availability string

const (
	AvailabilityAvailable      Availability = "available"
	AvailabilityUnavailable    Availability = "unavailable"
	AvailabilityContactToOrder Availability = "contact_to_order"
)

// Orderable reports whether the product may be configured and committed.
func (a Availability) Orderable() bool {
	return a == "" || a == AvailabilityAvailable
}

type Product struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description,omitempty"`
	PriceCents         int64        `json:"priceCents"`
	ImageURL           string       `json:"imageUrl,omitempty"`
	Category           string       `json:"category,omitempty"`
	AdditionalsEnabled bool         `json:"additionalsEnabled"`
	AdditionalIDs      []string     `json:"additionalIds,omitempty"`
	IsCustom           bool         `json:"isCustom"`
	Availability       Availability `json:"availability"`
	Stock              *int         `json:"stock,omitempty"`
}

type Additional struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceCents   int64  `json:"priceCents"`
	IsActive     bool   `json:"isActive"`
	DisplayOrder int    `json:"displayOrder"`
}

// Snapshot freezes the additional for a cart line.
func (a Additional) Snapshot() AdditionalSnapshot {
	return AdditionalSnapshot{ID: a.ID, Name: a.Name, Description: a.Description, Price: a.PriceCents}
}

// Offer is a product together with the additionals a customer may pick for it.
type Offer struct {
	Product     Product      `json:"product"`
	Additionals []Additional `json:"additionals"`
}
