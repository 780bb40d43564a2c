package market

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// Sentinel errors surfaced to the transport layer.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// validTransitions maps an order status to the states it may move to.
var validTransitions = map[string][]string{
	OrderPlaced:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderDelivered, OrderCancelled},
}

// Service exposes the marketplace operations.
type Service interface {
	CreateProduct(ctx context.Context, sellerID, sellerName string, req CreateProductRequest) (Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	PlaceOrder(ctx context.Context, buyerID, productID string, quantity int) (Order, error)
	ListOrders(ctx context.Context, userID string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, actorID, status string) (Order, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds the marketplace service.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

func (s *service) CreateProduct(ctx context.Context, sellerID, sellerName string, req CreateProductRequest) (Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Product{}, apperrors.Wrap("invalid_input", "product name is required", nil)
	}
	if req.Price <= 0 {
		return Product{}, apperrors.Wrap("invalid_input", "price must be positive", nil)
	}
	if req.Stock < 0 {
		return Product{}, apperrors.Wrap("invalid_input", "stock cannot be negative", nil)
	}
	product := Product{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		SellerName:  sellerName,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Unit:        strings.TrimSpace(req.Unit),
		Stock:       req.Stock,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Region:      strings.TrimSpace(req.Region),
		CreatedAt:   s.now().UTC(),
	}
	if product.Unit == "" {
		product.Unit = "kg"
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return Product{}, apperrors.Wrap("storage_error", "failed to create product", err)
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (Product, error) {
	product, ok, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, apperrors.Wrap("storage_error", "failed to load product", err)
	}
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *service) PlaceOrder(ctx context.Context, buyerID, productID string, quantity int) (Order, error) {
	if quantity <= 0 {
		return Order{}, apperrors.Wrap("invalid_input", "quantity must be positive", nil)
	}
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return Order{}, err
	}
	if product.SellerID == buyerID {
		return Order{}, apperrors.Wrap("invalid_input", "cannot order your own product", nil)
	}
	if product.Stock < quantity {
		return Order{}, ErrInsufficientStock
	}
	now := s.now().UTC()
	order := Order{
		ID:         uuid.NewString(),
		ProductID:  productID,
		BuyerID:    buyerID,
		SellerID:   product.SellerID,
		Quantity:   quantity,
		UnitPrice:  product.Price,
		TotalPrice: math.Round(product.Price*float64(quantity)*100) / 100,
		Status:     OrderPlaced,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return Order{}, apperrors.Wrap("storage_error", "failed to create order", err)
	}
	if err := s.repo.UpdateProductStock(ctx, productID, -quantity); err != nil {
		s.logger.Warn("failed to decrement stock", "product_id", productID, "error", err)
	}
	return order, nil
}

// ListOrders returns orders where the user is either buyer or seller.
func (s *service) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	bought, err := s.repo.ListOrdersByBuyer(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load orders", err)
	}
	sold, err := s.repo.ListOrdersBySeller(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load orders", err)
	}
	return append(bought, sold...), nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID, actorID, status string) (Order, error) {
	order, ok, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, apperrors.Wrap("storage_error", "failed to load order", err)
	}
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	if order.SellerID != actorID && !(status == OrderCancelled && order.BuyerID == actorID) {
		return Order{}, apperrors.Wrap("forbidden", "not allowed to update this order", nil)
	}
	if !transitionAllowed(order.Status, status) {
		return Order{}, apperrors.Wrap("invalid_input", "cannot move order from "+order.Status+" to "+status, nil)
	}
	updated, err := s.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return Order{}, apperrors.Wrap("storage_error", "failed to update order", err)
	}
	if status == OrderCancelled {
		if err := s.repo.UpdateProductStock(ctx, order.ProductID, order.Quantity); err != nil {
			s.logger.Warn("failed to restore stock", "product_id", order.ProductID, "error", err)
		}
	}
	return updated, nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
