package marketrepo

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriconnect/agriconnect/internal/domain/market"
)

// PostgresRepository implements market.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id, seller_id, seller_name, name, description, category, price, unit, stock, image_url, region, created_at`

func (r *PostgresRepository) CreateProduct(ctx context.Context, p market.Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.SellerID, p.SellerName, p.Name, p.Description, p.Category,
		p.Price, p.Unit, p.Stock, p.ImageURL, p.Region, p.CreatedAt)
	return err
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (market.Product, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == pgx.ErrNoRows {
		return market.Product{}, false, nil
	}
	if err != nil {
		return market.Product{}, false, err
	}
	return p, true, nil
}

func (r *PostgresRepository) ListProducts(ctx context.Context, filter market.ProductFilter) ([]market.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		query += ` AND region = $` + strconv.Itoa(len(args))
	}
	if filter.SellerID != "" {
		args = append(args, filter.SellerID)
		query += ` AND seller_id = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		idx := strconv.Itoa(len(args))
		query += ` AND (LOWER(name) LIKE $` + idx + ` OR LOWER(description) LIKE $` + idx + `)`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []market.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateProductStock(ctx context.Context, id string, delta int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE products SET stock = GREATEST(stock + $2, 0) WHERE id = $1
	`, id, delta)
	return err
}

const orderColumns = `id, product_id, buyer_id, seller_id, quantity, unit_price, total_price, status, created_at, updated_at`

func (r *PostgresRepository) CreateOrder(ctx context.Context, o market.Order) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.ProductID, o.BuyerID, o.SellerID, o.Quantity, o.UnitPrice,
		o.TotalPrice, o.Status, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (market.Order, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err == pgx.ErrNoRows {
		return market.Order{}, false, nil
	}
	if err != nil {
		return market.Order{}, false, err
	}
	return o, true, nil
}

func (r *PostgresRepository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]market.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
}

func (r *PostgresRepository) ListOrdersBySeller(ctx context.Context, sellerID string) ([]market.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
}

func (r *PostgresRepository) listOrders(ctx context.Context, query, arg string) ([]market.Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []market.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id, status string) (market.Order, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns+`
	`, id, status)
	o, err := scanOrder(row)
	if err == pgx.ErrNoRows {
		return market.Order{}, market.ErrOrderNotFound
	}
	return o, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (market.Product, error) {
	var p market.Product
	err := row.Scan(&p.ID, &p.SellerID, &p.SellerName, &p.Name, &p.Description,
		&p.Category, &p.Price, &p.Unit, &p.Stock, &p.ImageURL, &p.Region, &p.CreatedAt)
	return p, err
}

func scanOrder(row rowScanner) (market.Order, error) {
	var o market.Order
	err := row.Scan(&o.ID, &o.ProductID, &o.BuyerID, &o.SellerID, &o.Quantity,
		&o.UnitPrice, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

var _ market.Repository = (*PostgresRepository)(nil)
