package market

import "time"

// Product is a marketplace listing.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Unit        string    `json:"unit"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"imageUrl"`
	Region      string    `json:"region"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Order lifecycle states.
const (
	OrderPlaced    = "placed"
	OrderConfirmed = "confirmed"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Order records a purchase of a single product.
type Order struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	BuyerID    string    `json:"buyerId"`
	SellerID   string    `json:"sellerId"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category string
	Region   string
	Search   string
	SellerID string
	Limit    int
}

// CreateProductRequest captures the listing payload.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
	Region      string  `json:"region"`
}
