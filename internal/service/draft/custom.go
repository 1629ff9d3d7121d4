package draft

import (
	"strings"

	"github.com/shopspring/decimal"

	"vitrine/internal/domain"
	"vitrine/internal/validation"
)

// CustomInput is the free-form entry for products priced per order.
type CustomInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	Weight      string `json:"weight" validate:"max=60"`
	Price       string `json:"price" validate:"required"`
}

// SubmitCustom validates in and appends a custom line. Nothing reaches the
// cart when validation fails.
func (c *Controller) SubmitCustom(in CustomInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Weight = strings.TrimSpace(in.Weight)

	if err := validation.Struct(in); err != nil {
		return err
	}
	cents, err := ParsePrice(in.Price)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCustom {
		return ErrInvalidState
	}
	err = c.store.Add(domain.AddPayload{
		ProductID: c.product.ID,
		Name:      in.Name,
		UnitPrice: cents,
		Quantity:  1,
		IsCustom:  true,
		Custom: &domain.CustomDetails{
			Name:        in.Name,
			Description: in.Description,
			Weight:      in.Weight,
		},
	})
	if err != nil {
		return err
	}
	c.closeLocked()
	return nil
}

// maxCustomPriceCents bounds a negotiated price at one million in the store
// currency.
const maxCustomPriceCents = 100_000_000

// ParsePrice reads a user-typed amount such as "12,50" or "12.50" into cents.
func ParsePrice(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return 0, domain.Invalid("price", "price must be a number")
	}
	amount = amount.Shift(2).Round(0)
	if amount.GreaterThan(decimal.NewFromInt(maxCustomPriceCents)) {
		return 0, domain.Invalid("price", "price is too large")
	}
	cents := amount.IntPart()
	if cents <= 0 {
		return 0, domain.Invalid("price", "price must be greater than zero")
	}
	return cents, nil
}
