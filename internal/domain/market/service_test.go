package market_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect/internal/domain/market"
	"github.com/agriconnect/agriconnect/internal/infra/marketrepo"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

func newTestService() market.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return market.NewService(marketrepo.NewMemoryRepository(), logger)
}

func onionListing() market.CreateProductRequest {
	return market.CreateProductRequest{
		Name:     "Fresh Onions",
		Category: "vegetables",
		Price:    18.50,
		Stock:    200,
		Region:   "Nashik",
	}
}

func TestCreateProduct(t *testing.T) {
	svc := newTestService()

	product, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", onionListing())
	require.NoError(t, err)
	require.NotEmpty(t, product.ID)
	require.Equal(t, "seller1", product.SellerID)
	require.Equal(t, "kg", product.Unit)
	require.Equal(t, 200, product.Stock)

	got, err := svc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, product.Name, got.Name)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService()

	req := onionListing()
	req.Name = "  "
	_, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", req)
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	req = onionListing()
	req.Price = 0
	_, err = svc.CreateProduct(context.Background(), "seller1", "Ramesh", req)
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	req = onionListing()
	req.Stock = -1
	_, err = svc.CreateProduct(context.Background(), "seller1", "Ramesh", req)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestListProductsFiltered(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", onionListing())
	require.NoError(t, err)

	wheat := onionListing()
	wheat.Name = "Wheat Seeds"
	wheat.Category = "seeds"
	_, err = svc.CreateProduct(context.Background(), "seller2", "Suresh", wheat)
	require.NoError(t, err)

	got, err := svc.ListProducts(context.Background(), market.ProductFilter{Category: "seeds"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Wheat Seeds", got[0].Name)

	got, err = svc.ListProducts(context.Background(), market.ProductFilter{Search: "onion"})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestPlaceOrder(t *testing.T) {
	svc := newTestService()

	product, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", onionListing())
	require.NoError(t, err)

	order, err := svc.PlaceOrder(context.Background(), "buyer1", product.ID, 3)
	require.NoError(t, err)
	require.Equal(t, market.OrderPlaced, order.Status)
	require.Equal(t, 18.50, order.UnitPrice)
	require.Equal(t, 55.50, order.TotalPrice)
	require.Equal(t, "seller1", order.SellerID)

	// Stock is reserved as soon as the order is placed.
	got, err := svc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 197, got.Stock)
}

func TestPlaceOrderRejections(t *testing.T) {
	svc := newTestService()

	product, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", onionListing())
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), "buyer1", product.ID, 0)
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.PlaceOrder(context.Background(), "seller1", product.ID, 1)
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.PlaceOrder(context.Background(), "buyer1", product.ID, 500)
	require.ErrorIs(t, err, market.ErrInsufficientStock)

	_, err = svc.PlaceOrder(context.Background(), "buyer1", "missing", 1)
	require.ErrorIs(t, err, market.ErrProductNotFound)
}

func TestListOrdersCoversBothSides(t *testing.T) {
	svc := newTestService()

	product, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", onionListing())
	require.NoError(t, err)
	order, err := svc.PlaceOrder(context.Background(), "buyer1", product.ID, 2)
	require.NoError(t, err)

	bought, err := svc.ListOrders(context.Background(), "buyer1")
	require.NoError(t, err)
	require.Len(t, bought, 1)
	require.Equal(t, order.ID, bought[0].ID)

	sold, err := svc.ListOrders(context.Background(), "seller1")
	require.NoError(t, err)
	require.Len(t, sold, 1)

	none, err := svc.ListOrders(context.Background(), "stranger")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestOrderLifecycle(t *testing.T) {
	svc := newTestService()

	product, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", onionListing())
	require.NoError(t, err)
	order, err := svc.PlaceOrder(context.Background(), "buyer1", product.ID, 2)
	require.NoError(t, err)

	confirmed, err := svc.UpdateOrderStatus(context.Background(), order.ID, "seller1", market.OrderConfirmed)
	require.NoError(t, err)
	require.Equal(t, market.OrderConfirmed, confirmed.Status)

	delivered, err := svc.UpdateOrderStatus(context.Background(), order.ID, "seller1", market.OrderDelivered)
	require.NoError(t, err)
	require.Equal(t, market.OrderDelivered, delivered.Status)

	// Delivered is terminal.
	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, "seller1", market.OrderCancelled)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestBuyerCanOnlyCancel(t *testing.T) {
	svc := newTestService()

	product, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", onionListing())
	require.NoError(t, err)
	order, err := svc.PlaceOrder(context.Background(), "buyer1", product.ID, 2)
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, "buyer1", market.OrderConfirmed)
	require.True(t, apperrors.IsCode(err, "forbidden"))

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, "stranger", market.OrderCancelled)
	require.True(t, apperrors.IsCode(err, "forbidden"))

	cancelled, err := svc.UpdateOrderStatus(context.Background(), order.ID, "buyer1", market.OrderCancelled)
	require.NoError(t, err)
	require.Equal(t, market.OrderCancelled, cancelled.Status)
}

func TestCancelRestoresStock(t *testing.T) {
	svc := newTestService()

	product, err := svc.CreateProduct(context.Background(), "seller1", "Ramesh", onionListing())
	require.NoError(t, err)
	order, err := svc.PlaceOrder(context.Background(), "buyer1", product.ID, 10)
	require.NoError(t, err)

	got, err := svc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 190, got.Stock)

	_, err = svc.UpdateOrderStatus(context.Background(), order.ID, "buyer1", market.OrderCancelled)
	require.NoError(t, err)

	got, err = svc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 200, got.Stock)
}
