package backend

import (
	"context"
	"net/http"
	"net/url"

	"vitrine/internal/domain"
)

func adminPath(slug string, parts ...string) string {
	return "/admin" + storePath(slug, parts...)
}

// Login exchanges merchant credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	var out wireLogin
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		in:     map[string]string{"email": email, "password": password},
		out:    &out,
	})
	if err != nil {
		return "", domain.User{}, err
	}
	return out.Token, out.User.toDomain(), nil
}

func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	var out wireUser
	if err := c.do(ctx, call{op: "me", method: http.MethodGet, path: "/auth/me", token: token, out: &out}); err != nil {
		return domain.User{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) GetSettings(ctx context.Context, token, slug string) (domain.StoreSettings, error) {
	var out wireSettings
	if err := c.do(ctx, call{op: "get_settings", method: http.MethodGet, path: adminPath(slug, "settings"), token: token, out: &out}); err != nil {
		return domain.StoreSettings{}, err
	}
	return settingsToDomain(out), nil
}

func (c *Client) UpdateSettings(ctx context.Context, token, slug string, s domain.StoreSettings) (domain.StoreSettings, error) {
	in := wireSettings{
		OpeningHours:   hoursToWire(s.Hours),
		ShippingTiers:  tiersToWire(s.ShippingTiers),
		PaymentMethods: methodsToWire(s.PaymentMethods),
	}
	var out wireSettings
	err := c.do(ctx, call{op: "update_settings", method: http.MethodPut, path: adminPath(slug, "settings"), token: token, in: in, out: &out})
	if err != nil {
		return domain.StoreSettings{}, err
	}
	return settingsToDomain(out), nil
}

func settingsToDomain(w wireSettings) domain.StoreSettings {
	return domain.StoreSettings{
		Hours:          hoursToDomain(w.OpeningHours),
		ShippingTiers:  tiersToDomain(w.ShippingTiers),
		PaymentMethods: methodsToDomain(w.PaymentMethods),
		UpdatedAt:      w.UpdatedAt,
	}
}

func (c *Client) ListInventory(ctx context.Context, token, slug string) ([]domain.InventoryItem, error) {
	var out []wireInventoryItem
	if err := c.do(ctx, call{op: "list_inventory", method: http.MethodGet, path: adminPath(slug, "inventory"), token: token, out: &out}); err != nil {
		return nil, err
	}
	items := make([]domain.InventoryItem, 0, len(out))
	for _, it := range out {
		items = append(items, inventoryToDomain(it))
	}
	return items, nil
}

func (c *Client) UpdateInventory(ctx context.Context, token, slug, productID string, upd domain.InventoryUpdate) (domain.InventoryItem, error) {
	in := wireInventoryUpdate{PriceCents: upd.PriceCents, Stock: upd.Stock}
	if upd.Availability != nil {
		a := string(*upd.Availability)
		in.Availability = &a
	}
	var out wireInventoryItem
	err := c.do(ctx, call{
		op:     "update_inventory",
		method: http.MethodPatch,
		path:   adminPath(slug, "inventory", productID),
		token:  token,
		in:     in,
		out:    &out,
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return inventoryToDomain(out), nil
}

func inventoryToDomain(w wireInventoryItem) domain.InventoryItem {
	return domain.InventoryItem{
		ProductID:    w.ProductID,
		Name:         w.Name,
		PriceCents:   w.PriceCents,
		Stock:        w.Stock,
		Availability: domain.Availability(w.Availability),
	}
}

func insightsQuery(rangeKey string) url.Values {
	return url.Values{"range": []string{rangeKey}}
}

func (c *Client) GetInsightsSummary(ctx context.Context, token, slug, rangeKey string) (domain.InsightsSummary, error) {
	var out wireSummary
	err := c.do(ctx, call{
		op:     "insights_summary",
		method: http.MethodGet,
		path:   adminPath(slug, "insights", "summary"),
		query:  insightsQuery(rangeKey),
		token:  token,
		out:    &out,
	})
	if err != nil {
		return domain.InsightsSummary{}, err
	}
	return domain.InsightsSummary{
		RevenueCents:         out.RevenueCents,
		Orders:               out.Orders,
		PreviousRevenueCents: out.PreviousRevenueCents,
		PreviousOrders:       out.PreviousOrders,
	}, nil
}

func (c *Client) GetDailyRevenue(ctx context.Context, token, slug, rangeKey string) ([]domain.DailyRevenue, error) {
	var out []wireDaily
	err := c.do(ctx, call{
		op:     "insights_daily",
		method: http.MethodGet,
		path:   adminPath(slug, "insights", "daily"),
		query:  insightsQuery(rangeKey),
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	days := make([]domain.DailyRevenue, 0, len(out))
	for _, d := range out {
		days = append(days, domain.DailyRevenue{Date: d.Date, RevenueCents: d.RevenueCents, Orders: d.Orders})
	}
	return days, nil
}

func (c *Client) GetTopProducts(ctx context.Context, token, slug, rangeKey string) ([]domain.TopProduct, error) {
	var out []wireTopProduct
	err := c.do(ctx, call{
		op:     "insights_top_products",
		method: http.MethodGet,
		path:   adminPath(slug, "insights", "top_products"),
		query:  insightsQuery(rangeKey),
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	top := make([]domain.TopProduct, 0, len(out))
	for _, p := range out {
		top = append(top, domain.TopProduct{ProductID: p.ProductID, Name: p.Name, Quantity: p.Quantity, RevenueCents: p.RevenueCents})
	}
	return top, nil
}

func (c *Client) ListThreads(ctx context.Context, token, slug string) ([]domain.Thread, error) {
	var out []wireThread
	if err := c.do(ctx, call{op: "list_threads", method: http.MethodGet, path: adminPath(slug, "whatsapp", "threads"), token: token, out: &out}); err != nil {
		return nil, err
	}
	threads := make([]domain.Thread, 0, len(out))
	for _, t := range out {
		threads = append(threads, t.toDomain())
	}
	return threads, nil
}

func (c *Client) ListMessages(ctx context.Context, token, slug, threadID string) ([]domain.Message, error) {
	var out []wireMessage
	err := c.do(ctx, call{
		op:     "list_messages",
		method: http.MethodGet,
		path:   adminPath(slug, "whatsapp", "threads", threadID, "messages"),
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(out))
	for _, m := range out {
		msgs = append(msgs, m.toDomain())
	}
	return msgs, nil
}

func (c *Client) SendMessage(ctx context.Context, token, slug, threadID, body string) (domain.Message, error) {
	var out wireMessage
	err := c.do(ctx, call{
		op:     "send_message",
		method: http.MethodPost,
		path:   adminPath(slug, "whatsapp", "threads", threadID, "messages"),
		token:  token,
		in:     map[string]string{"body": body},
		out:    &out,
	})
	if err != nil {
		return domain.Message{}, err
	}
	return out.toDomain(), nil
}

// SendPush asks the backend push gateway to deliver msg to one device.
func (c *Client) SendPush(ctx context.Context, token, slug string, sub domain.PushSubscription, msg domain.PushMessage) error {
	in := wirePush{
		Subscription: wirePushSubscription{Endpoint: sub.Endpoint, P256DH: sub.P256DH, Auth: sub.Auth},
		Title:        msg.Title,
		Body:         msg.Body,
		URL:          msg.URL,
	}
	return c.do(ctx, call{op: "send_push", method: http.MethodPost, path: adminPath(slug, "push", "send"), token: token, in: in})
}
