package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/entity"
	"storefront/internal/middleware"
	"storefront/internal/service"
)

type WishlistHandler struct {
	wishlistService *service.WishlistService
}

func NewWishlistHandler(wishlistService *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

type wishlistRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

type moveToCartRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// List --> GET /wishlist
func (h *WishlistHandler) List(c echo.Context) error {
	items, err := h.wishlistService.List(c.Request().Context(), middleware.CurrentClaims(c).CustomerID)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []*entity.WishlistItem{}
	}
	return c.JSON(http.StatusOK, items)
}

// Add --> POST /wishlist/items
func (h *WishlistHandler) Add(c echo.Context) error {
	var req wishlistRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.wishlistService.Add(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, req.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// Remove --> DELETE /wishlist/items/:product_id
func (h *WishlistHandler) Remove(c echo.Context) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.wishlistService.Remove(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, productID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MoveToCart --> POST /wishlist/items/:product_id/move-to-cart
func (h *WishlistHandler) MoveToCart(c echo.Context) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		return respondError(c, err)
	}
	var req moveToCartRequest
	if c.Request().ContentLength != 0 {
		if err := bindRequest(c, &req); err != nil {
			return respondError(c, err)
		}
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.wishlistService.MoveToCart(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, productID, req.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
