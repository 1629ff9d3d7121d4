package backend

import (
	"time"

	"vitrine/internal/domain"
)

// Wire shapes use the backend's snake_case field names and are converted to
// domain types at the edge.

type wireStore struct {
	ID             string              `json:"id"`
	Slug           string              `json:"slug"`
	Name           string              `json:"name"`
	Currency       string              `json:"currency"`
	IsOpen         bool                `json:"is_open"`
	Modules        map[string]bool     `json:"modules"`
	OpeningHours   []wireHours         `json:"opening_hours"`
	ShippingTiers  []wireShippingTier  `json:"shipping_tiers"`
	PaymentMethods []wirePaymentMethod `json:"payment_methods"`
}

type wireHours struct {
	Weekday int    `json:"weekday"`
	Opens   string `json:"opens_at"`
	Closes  string `json:"closes_at"`
	Closed  bool   `json:"closed"`
}

type wireShippingTier struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	MaxDistance int    `json:"max_distance_m"`
	FeeCents    int64  `json:"fee_cents"`
}

type wirePaymentMethod struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

type wireProduct struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	PriceCents         int64    `json:"price_cents"`
	ImageURL           string   `json:"image_url"`
	Category           string   `json:"category"`
	AdditionalsEnabled bool     `json:"additionals_enabled"`
	AdditionalIDs      []string `json:"additional_ids"`
	IsCustom           bool     `json:"is_custom"`
	Availability       string   `json:"availability"`
	Stock              *int     `json:"stock"`
}

type wireAdditional struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	IsActive     bool   `json:"is_active"`
	DisplayOrder int    `json:"display_order"`
}

type wireOrderStatus struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type wireCheckoutLine struct {
	ProductID     string   `json:"product_id"`
	Name          string   `json:"name"`
	UnitPrice     int64    `json:"unit_price_cents"`
	Quantity      int      `json:"quantity"`
	AdditionalIDs []string `json:"additional_ids,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	IsCustom      bool     `json:"is_custom"`
	Description   string   `json:"custom_description,omitempty"`
	Weight        string   `json:"custom_weight,omitempty"`
}

type wireCheckout struct {
	Lines          []wireCheckoutLine `json:"items"`
	SubtotalCents  int64              `json:"subtotal_cents"`
	CustomerName   string             `json:"customer_name"`
	CustomerPhone  string             `json:"customer_phone"`
	Address        string             `json:"address,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	PaymentMethod  string             `json:"payment_method"`
	ShippingTierID string             `json:"shipping_tier_id,omitempty"`
	Delivery       bool               `json:"delivery"`
}

type wireCheckoutResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type wireUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	StoreSlug string `json:"store_slug"`
}

type wireLogin struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

type wireSettings struct {
	OpeningHours   []wireHours         `json:"opening_hours"`
	ShippingTiers  []wireShippingTier  `json:"shipping_tiers"`
	PaymentMethods []wirePaymentMethod `json:"payment_methods"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type wireInventoryItem struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	PriceCents   int64  `json:"price_cents"`
	Stock        *int   `json:"stock"`
	Availability string `json:"availability"`
}

type wireInventoryUpdate struct {
	PriceCents   *int64  `json:"price_cents,omitempty"`
	Stock        *int    `json:"stock,omitempty"`
	Availability *string `json:"availability,omitempty"`
}

type wireSummary struct {
	RevenueCents         int64 `json:"revenue_cents"`
	Orders               int64 `json:"orders"`
	PreviousRevenueCents int64 `json:"previous_revenue_cents"`
	PreviousOrders       int64 `json:"previous_orders"`
}

type wireDaily struct {
	Date         string `json:"date"`
	RevenueCents int64  `json:"revenue_cents"`
	Orders       int64  `json:"orders"`
}

type wireTopProduct struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	Quantity     int64  `json:"quantity"`
	RevenueCents int64  `json:"revenue_cents"`
}

type wireThread struct {
	ID            string    `json:"id"`
	ContactName   string    `json:"contact_name"`
	ContactPhone  string    `json:"contact_phone"`
	LastMessage   string    `json:"last_message"`
	UnreadCount   int       `json:"unread_count"`
	LastMessageAt time.Time `json:"last_message_at"`
}

type wireMessage struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Direction string    `json:"direction"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

type wirePush struct {
	Subscription wirePushSubscription `json:"subscription"`
	Title        string               `json:"title"`
	Body         string               `json:"body"`
	URL          string               `json:"url,omitempty"`
}

type wirePushSubscription struct {
	Endpoint string `json:"endpoint"`
	P256DH   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func (w wireStore) toDomain() domain.Store {
	s := domain.Store{
		ID:       w.ID,
		Slug:     w.Slug,
		Name:     w.Name,
		Currency: w.Currency,
		IsOpen:   w.IsOpen,
		Modules:  w.Modules,
	}
	s.Hours = hoursToDomain(w.OpeningHours)
	s.ShippingTiers = tiersToDomain(w.ShippingTiers)
	s.PaymentMethods = methodsToDomain(w.PaymentMethods)
	return s
}

func hoursToDomain(in []wireHours) []domain.OpeningHours {
	out := make([]domain.OpeningHours, 0, len(in))
	for _, h := range in {
		out = append(out, domain.OpeningHours{Weekday: h.Weekday, Opens: h.Opens, Closes: h.Closes, Closed: h.Closed})
	}
	return out
}

func hoursToWire(in []domain.OpeningHours) []wireHours {
	out := make([]wireHours, 0, len(in))
	for _, h := range in {
		out = append(out, wireHours{Weekday: h.Weekday, Opens: h.Opens, Closes: h.Closes, Closed: h.Closed})
	}
	return out
}

func tiersToDomain(in []wireShippingTier) []domain.ShippingTier {
	out := make([]domain.ShippingTier, 0, len(in))
	for _, t := range in {
		out = append(out, domain.ShippingTier{ID: t.ID, Label: t.Label, MaxDistance: t.MaxDistance, FeeCents: t.FeeCents})
	}
	return out
}

func tiersToWire(in []domain.ShippingTier) []wireShippingTier {
	out := make([]wireShippingTier, 0, len(in))
	for _, t := range in {
		out = append(out, wireShippingTier{ID: t.ID, Label: t.Label, MaxDistance: t.MaxDistance, FeeCents: t.FeeCents})
	}
	return out
}

func methodsToDomain(in []wirePaymentMethod) []domain.PaymentMethod {
	out := make([]domain.PaymentMethod, 0, len(in))
	for _, m := range in {
		out = append(out, domain.PaymentMethod{ID: m.ID, Label: m.Label, Enabled: m.Enabled})
	}
	return out
}

func methodsToWire(in []domain.PaymentMethod) []wirePaymentMethod {
	out := make([]wirePaymentMethod, 0, len(in))
	for _, m := range in {
		out = append(out, wirePaymentMethod{ID: m.ID, Label: m.Label, Enabled: m.Enabled})
	}
	return out
}

func (w wireProduct) toDomain() domain.Product {
	return domain.Product{
		ID:                 w.ID,
		Name:               w.Name,
		Description:        w.Description,
		PriceCents:         w.PriceCents,
		ImageURL:           w.ImageURL,
		Category:           w.Category,
		AdditionalsEnabled: w.AdditionalsEnabled,
		AdditionalIDs:      w.AdditionalIDs,
		IsCustom:           w.IsCustom,
		Availability:       domain.Availability(w.Availability),
		Stock:              w.Stock,
	}
}

func (w wireAdditional) toDomain() domain.Additional {
	return domain.Additional{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		PriceCents:   w.PriceCents,
		IsActive:     w.IsActive,
		DisplayOrder: w.DisplayOrder,
	}
}

func checkoutToWire(req domain.CheckoutRequest) wireCheckout {
	out := wireCheckout{
		Lines:          make([]wireCheckoutLine, 0, len(req.Lines)),
		SubtotalCents:  req.Subtotal,
		CustomerName:   req.Customer.Name,
		CustomerPhone:  req.Customer.Phone,
		Address:        req.Customer.Address,
		Notes:          req.Customer.Notes,
		PaymentMethod:  req.PaymentMethod,
		ShippingTierID: req.ShippingTierID,
		Delivery:       req.Delivery,
	}
	for _, l := range req.Lines {
		wl := wireCheckoutLine{
			ProductID:     l.ProductID,
			Name:          l.Name,
			UnitPrice:     l.UnitPrice,
			Quantity:      l.Quantity,
			AdditionalIDs: l.AdditionalIDs(),
			Notes:         l.ItemNotes,
			IsCustom:      l.IsCustom,
		}
		if l.Custom != nil {
			wl.Description = l.Custom.Description
			wl.Weight = l.Custom.Weight
		}
		out.Lines = append(out.Lines, wl)
	}
	return out
}

func (w wireUser) toDomain() domain.User {
	return domain.User{ID: w.ID, Name: w.Name, Email: w.Email, Role: w.Role, StoreSlug: w.StoreSlug}
}

func (w wireThread) toDomain() domain.Thread {
	return domain.Thread{
		ID:            w.ID,
		ContactName:   w.ContactName,
		ContactPhone:  w.ContactPhone,
		LastMessage:   w.LastMessage,
		UnreadCount:   w.UnreadCount,
		LastMessageAt: w.LastMessageAt,
	}
}

func (w wireMessage) toDomain() domain.Message {
	return domain.Message{ID: w.ID, ThreadID: w.ThreadID, Direction: w.Direction, Body: w.Body, SentAt: w.SentAt}
}
