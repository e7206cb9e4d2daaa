package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/entity"
	"storefront/internal/service"
)

type InventoryHandler struct {
	stockService *service.StockService
}

func NewInventoryHandler(stockService *service.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

type stockRequest struct {
	Type     string `json:"transaction_type" validate:"required,oneof=purchase sale adjustment return damage"`
	Quantity int    `json:"quantity" validate:"required,min=-2147483647,max=2147483647"`
	Notes    string `json:"notes" validate:"max=1000"`
}

// AdjustStock --> POST /admin/products/:id/stock
func (h *InventoryHandler) AdjustStock(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req stockRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	txn, err := h.stockService.AdjustStock(c.Request().Context(), service.StockAdjustment{
		ProductID: productID,
		Type:      entity.TransactionType(req.Type),
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, txn)
}

// Overview --> GET /admin/inventory/overview
func (h *InventoryHandler) Overview(c echo.Context) error {
	overview, err := h.stockService.InventoryOverview(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, overview)
}

// LowStock --> GET /admin/inventory/low-stock
func (h *InventoryHandler) LowStock(c echo.Context) error {
	products, err := h.stockService.LowStockProducts(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if products == nil {
		products = []*entity.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

// Transactions --> GET /admin/inventory/transactions?product_id=&limit=
func (h *InventoryHandler) Transactions(c echo.Context) error {
	productID, err := queryInt(c, "product_id", 0)
	if err != nil {
		return respondError(c, err)
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}

	txns, err := h.stockService.ListTransactions(c.Request().Context(), productID, limit)
	if err != nil {
		return respondError(c, err)
	}
	if txns == nil {
		txns = []*entity.InventoryTransaction{}
	}
	return c.JSON(http.StatusOK, txns)
}
