package draft

import "vitrine/internal/domain"

// QuickPayload builds an add payload for offer without opening a draft, as
// the catalog's one-tap add does. Additional ids must be offered for the
// product; they are priced into the unit price in offer order.
func QuickPayload(offer domain.Offer, additionalIDs []string, quantity int, notes string) (domain.AddPayload, error) {
	p := offer.Product
	if p.IsCustom {
		return domain.AddPayload{}, ErrInvalidState
	}
	if !p.Availability.Orderable() {
		return domain.AddPayload{}, domain.ErrUnavailable
	}
	if quantity < 0 {
		return domain.AddPayload{}, domain.Invalid("quantity", "quantity must be at least 1")
	}
	if quantity > domain.MaxLineQuantity {
		return domain.AddPayload{}, domain.QuantityLimit()
	}

	wanted := make(map[string]struct{}, len(additionalIDs))
	for _, id := range additionalIDs {
		wanted[id] = struct{}{}
	}

	price := p.PriceCents
	var snaps []domain.AdditionalSnapshot
	for _, a := range offer.Additionals {
		if _, ok := wanted[a.ID]; !ok {
			continue
		}
		delete(wanted, a.ID)
		price += a.PriceCents
		snaps = append(snaps, a.Snapshot())
	}
	if len(wanted) > 0 {
		return domain.AddPayload{}, domain.Invalid("additionalIds", "additional is not available for this product")
	}

	return domain.AddPayload{
		ProductID:   p.ID,
		Name:        p.Name,
		UnitPrice:   price,
		Quantity:    quantity,
		Additionals: snaps,
		ItemNotes:   notes,
	}, nil
}
