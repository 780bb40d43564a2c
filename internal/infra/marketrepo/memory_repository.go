package marketrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agriconnect/agriconnect/internal/domain/market"
)

// MemoryRepository is an in-memory marketplace store for tests and dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[string]market.Product
	orders   map[string]market.Order
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products: make(map[string]market.Product),
		orders:   make(map[string]market.Order),
	}
}

func (r *MemoryRepository) CreateProduct(_ context.Context, p market.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *MemoryRepository) GetProduct(_ context.Context, id string) (market.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	return p, ok, nil
}

func (r *MemoryRepository) ListProducts(_ context.Context, filter market.ProductFilter) ([]market.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(filter.Search)
	var out []market.Product
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Region != "" && p.Region != filter.Region {
			continue
		}
		if filter.SellerID != "" && p.SellerID != filter.SellerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryRepository) UpdateProductStock(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return market.ErrProductNotFound
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	r.products[id] = p
	return nil
}

func (r *MemoryRepository) CreateOrder(_ context.Context, o market.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *MemoryRepository) GetOrder(_ context.Context, id string) (market.Order, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	return o, ok, nil
}

func (r *MemoryRepository) ListOrdersByBuyer(_ context.Context, buyerID string) ([]market.Order, error) {
	return r.listOrders(func(o market.Order) bool { return o.BuyerID == buyerID })
}

func (r *MemoryRepository) ListOrdersBySeller(_ context.Context, sellerID string) ([]market.Order, error) {
	return r.listOrders(func(o market.Order) bool { return o.SellerID == sellerID })
}

func (r *MemoryRepository) listOrders(keep func(market.Order) bool) ([]market.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []market.Order
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) UpdateOrderStatus(_ context.Context, id, status string) (market.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return market.Order{}, market.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return o, nil
}

var _ market.Repository = (*MemoryRepository)(nil)
