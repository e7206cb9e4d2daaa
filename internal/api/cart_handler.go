package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/middleware"
	"storefront/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

type addCartItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gte=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// GetCart --> GET /cart
func (h *CartHandler) GetCart(c echo.Context) error {
	summary, err := h.cartService.GetCart(c.Request().Context(), middleware.CurrentClaims(c).CustomerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// AddItem --> POST /cart/items
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addCartItemRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	summary, err := h.cartService.AddItem(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// UpdateItem --> PUT /cart/items/:product_id
func (h *CartHandler) UpdateItem(c echo.Context) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateCartItemRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	summary, err := h.cartService.UpdateItem(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, productID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// RemoveItem --> DELETE /cart/items/:product_id
func (h *CartHandler) RemoveItem(c echo.Context) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		return respondError(c, err)
	}

	summary, err := h.cartService.RemoveItem(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Clear --> DELETE /cart
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.cartService.Clear(c.Request().Context(), middleware.CurrentClaims(c).CustomerID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
