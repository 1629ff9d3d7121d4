package domain

// User is the merchant account behind an admin session.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	StoreSlug string `json:"storeSlug"`
}
