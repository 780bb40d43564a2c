package market

import "context"

// Repository persists products and orders.
type Repository interface {
	CreateProduct(ctx context.Context, product Product) error
	GetProduct(ctx context.Context, id string) (Product, bool, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	UpdateProductStock(ctx context.Context, id string, delta int) error

	CreateOrder(ctx context.Context, order Order) error
	GetOrder(ctx context.Context, id string) (Order, bool, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (Order, error)
}
