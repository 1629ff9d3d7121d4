package backend

import (
	"context"
	"net/http"

	"vitrine/internal/domain"
)

func publicPath(slug string, parts ...string) string {
	return "/public" + storePath(slug, parts...)
}

func (c *Client) GetStore(ctx context.Context, slug string) (domain.Store, error) {
	var out wireStore
	err := c.do(ctx, call{op: "get_store", method: http.MethodGet, path: publicPath(slug), out: &out})
	if err != nil {
		return domain.Store{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) ListProducts(ctx context.Context, slug string) ([]domain.Product, error) {
	var out []wireProduct
	if err := c.do(ctx, call{op: "list_products", method: http.MethodGet, path: publicPath(slug, "products"), out: &out}); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(out))
	for _, p := range out {
		products = append(products, p.toDomain())
	}
	return products, nil
}

func (c *Client) ListAdditionals(ctx context.Context, slug string) ([]domain.Additional, error) {
	var out []wireAdditional
	if err := c.do(ctx, call{op: "list_additionals", method: http.MethodGet, path: publicPath(slug, "additionals"), out: &out}); err != nil {
		return nil, err
	}
	list := make([]domain.Additional, 0, len(out))
	for _, a := range out {
		list = append(list, a.toDomain())
	}
	return list, nil
}

func (c *Client) SubmitCheckout(ctx context.Context, slug string, req domain.CheckoutRequest) (domain.CheckoutResult, error) {
	var out wireCheckoutResult
	err := c.do(ctx, call{
		op:     "submit_checkout",
		method: http.MethodPost,
		path:   publicPath(slug, "orders"),
		in:     checkoutToWire(req),
		out:    &out,
	})
	if err != nil {
		return domain.CheckoutResult{}, err
	}
	return domain.CheckoutResult{OrderID: out.OrderID, Status: out.Status}, nil
}

func (c *Client) GetOrderStatus(ctx context.Context, slug, orderID string) (domain.OrderStatus, error) {
	var out wireOrderStatus
	err := c.do(ctx, call{op: "get_order_status", method: http.MethodGet, path: publicPath(slug, "orders", orderID), out: &out})
	if err != nil {
		return domain.OrderStatus{}, err
	}
	return domain.OrderStatus{OrderID: out.ID, Status: out.Status, TotalCents: out.TotalCents, UpdatedAt: out.UpdatedAt}, nil
}
