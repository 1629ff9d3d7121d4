package domain

// Customer is who receives the order.
type Customer struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,min=8,max=20"`
	Address string `json:"address,omitempty" validate:"max=300"`
	Notes   string `json:"notes,omitempty" validate:"max=500"`
}

// CheckoutRequest is the plain serialisable handoff of a cart.
type CheckoutRequest struct {
	Lines          []CartLine `json:"lines"`
	Subtotal       int64      `json:"subtotal"`
	Customer       Customer   `json:"customer"`
	PaymentMethod  string     `json:"paymentMethod"`
	ShippingTierID string     `json:"shippingTierId,omitempty"`
	Delivery       bool       `json:"delivery"`
}

type CheckoutResult struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}
