package domain

import "time"

type OrderStatus struct {
	OrderID    string    `json:"orderId"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"totalCents"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Final reports whether the order left the active lifecycle.
func (o OrderStatus) Final() bool {
	switch o.Status {
	case "delivered", "canceled", "rejected":
		return true
	}
	return false
}
