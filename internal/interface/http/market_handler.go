package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agriconnect/agriconnect/internal/domain/market"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// MarketHandler exposes the marketplace endpoints.
type MarketHandler struct {
	svc    market.Service
	logger *slog.Logger
}

// NewMarketHandler constructs the marketplace handler.
func NewMarketHandler(svc market.Service, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{svc: svc, logger: logger.With("component", "http.market")}
}

// ListProducts returns listings filtered by query parameters.
func (h *MarketHandler) ListProducts(c *gin.Context) {
	products, err := h.svc.ListProducts(c.Request.Context(), market.ProductFilter{
		Category: c.Query("category"),
		Region:   c.Query("region"),
		Search:   c.Query("search"),
		SellerID: c.Query("sellerId"),
		Limit:    queryLimit(c),
	})
	if err != nil {
		abortWithError(c, marketError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one listing.
func (h *MarketHandler) GetProduct(c *gin.Context) {
	product, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, marketError(err))
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct publishes a new listing.
func (h *MarketHandler) CreateProduct(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	var req market.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	product, err := h.svc.CreateProduct(c.Request.Context(), claims.UserID, claims.Email, req)
	if err != nil {
		abortWithError(c, marketError(err))
		return
	}
	c.JSON(http.StatusCreated, product)
}

// PlaceOrder purchases a product.
func (h *MarketHandler) PlaceOrder(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	order, err := h.svc.PlaceOrder(c.Request.Context(), claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		abortWithError(c, marketError(err))
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders returns the caller's orders, bought and sold.
func (h *MarketHandler) ListOrders(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	orders, err := h.svc.ListOrders(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, marketError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateOrderStatus moves an order through its lifecycle.
func (h *MarketHandler) UpdateOrderStatus(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	order, err := h.svc.UpdateOrderStatus(c.Request.Context(), c.Param("id"), claims.UserID, req.Status)
	if err != nil {
		abortWithError(c, marketError(err))
		return
	}
	c.JSON(http.StatusOK, order)
}

func marketError(err error) *HTTPError {
	switch {
	case errors.Is(err, market.ErrProductNotFound), errors.Is(err, market.ErrOrderNotFound):
		return NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err)
	case errors.Is(err, market.ErrInsufficientStock):
		return NewHTTPError(http.StatusConflict, "insufficient_stock", errMessage(err), err)
	case apperrors.IsCode(err, "invalid_input"):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.IsCode(err, "forbidden"):
		return NewHTTPError(http.StatusForbidden, "forbidden", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "market_failed", errMessage(err), err)
	}
}
