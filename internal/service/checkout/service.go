package checkout

import (
	"context"
	"fmt"

	"vitrine/internal/domain"
	"vitrine/internal/service/cart"
	"vitrine/internal/validation"
)

// Submitter sends an order to the backend.
type Submitter interface {
	SubmitCheckout(ctx context.Context, slug string, req domain.CheckoutRequest) (domain.CheckoutResult, error)
}

// Input is what the shopper fills in at checkout.
type Input struct {
	Customer       domain.Customer `json:"customer"`
	PaymentMethod  string          `json:"paymentMethod" validate:"required"`
	ShippingTierID string          `json:"shippingTierId"`
	Delivery       bool            `json:"delivery"`
}

type Service struct {
	submitter Submitter
}

func New(submitter Submitter) *Service {
	return &Service{submitter: submitter}
}

// Handoff builds the serialisable order from a cart snapshot.
func Handoff(snap cart.Snapshot, in Input) domain.CheckoutRequest {
	return domain.CheckoutRequest{
		Lines:          snap.Lines,
		Subtotal:       snap.Subtotal,
		Customer:       in.Customer,
		PaymentMethod:  in.PaymentMethod,
		ShippingTierID: in.ShippingTierID,
		Delivery:       in.Delivery,
	}
}

// Submit validates the order against store, submits it and clears the cart
// once the backend accepted it.
func (s *Service) Submit(ctx context.Context, store domain.Store, c *cart.Store, in Input) (domain.CheckoutResult, error) {
	if err := validation.Struct(in); err != nil {
		return domain.CheckoutResult{}, err
	}
	if !store.IsOpen {
		return domain.CheckoutResult{}, domain.Invalid("store", "store is closed")
	}
	if !paymentAccepted(store, in.PaymentMethod) {
		return domain.CheckoutResult{}, domain.Invalid("paymentMethod", "payment method is not accepted")
	}
	if in.Delivery && len(store.ShippingTiers) > 0 && !tierExists(store, in.ShippingTierID) {
		return domain.CheckoutResult{}, domain.Invalid("shippingTierId", "shipping tier is not offered")
	}

	snap := c.Snapshot()
	if len(snap.Lines) == 0 {
		return domain.CheckoutResult{}, domain.Invalid("lines", "cart is empty")
	}

	res, err := s.submitter.SubmitCheckout(ctx, store.Slug, Handoff(snap, in))
	if err != nil {
		return domain.CheckoutResult{}, fmt.Errorf("submit checkout: %w", err)
	}
	c.Clear()
	return res, nil
}

func paymentAccepted(store domain.Store, method string) bool {
	if len(store.PaymentMethods) == 0 {
		return true
	}
	for _, m := range store.PaymentMethods {
		if m.ID == method && m.Enabled {
			return true
		}
	}
	return false
}

func tierExists(store domain.Store, id string) bool {
	for _, t := range store.ShippingTiers {
		if t.ID == id {
			return true
		}
	}
	return false
}
