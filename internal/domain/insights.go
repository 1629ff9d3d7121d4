package domain

// InsightsSummary is the backend's aggregate for a period and the one before it.
type InsightsSummary struct {
	RevenueCents         int64 `json:"revenueCents"`
	Orders               int64 `json:"orders"`
	PreviousRevenueCents int64 `json:"previousRevenueCents"`
	PreviousOrders       int64 `json:"previousOrders"`
}

type DailyRevenue struct {
	Date         string `json:"date"`
	RevenueCents int64  `json:"revenueCents"`
	Orders       int64  `json:"orders"`
}

type TopProduct struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Quantity     int64  `json:"quantity"`
	RevenueCents int64  `json:"revenueCents"`
}
