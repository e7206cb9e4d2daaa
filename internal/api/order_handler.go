package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/entity"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/service"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	checkoutService *service.CheckoutService
	orderService    *service.OrderService
}

func NewOrderHandler(checkoutService *service.CheckoutService, orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{checkoutService: checkoutService, orderService: orderService}
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"max=1000"`
	PaymentMethod   string `json:"payment_method" validate:"max=50"`
}

type orderStatusRequest struct {
	Status        string `json:"status" validate:"required"`
	PaymentStatus string `json:"payment_status"`
}

// Checkout turns the caller's cart into an order --> POST /checkout
func (h *OrderHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.checkoutService.Checkout(c.Request().Context(), service.CheckoutRequest{
		CustomerID:      middleware.CurrentClaims(c).CustomerID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ListOrders --> GET /orders
func (h *OrderHandler) ListOrders(c echo.Context) error {
	defer func() {
		status := c.Response().Status >= 200 && c.Response().Status < 300
		metrics.RecordOperation("order_list", status)
	}()
	orders, err := h.orderService.ListCustomerOrders(c.Request().Context(), middleware.CurrentClaims(c).CustomerID)
	if err != nil {
		return respondError(c, err)
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder --> GET /orders/:id
func (h *OrderHandler) GetOrder(c echo.Context) error {
	defer func() {
		status := c.Response().Status >= 200 && c.Response().Status < 300
		metrics.RecordOperation("order_details", status)
	}()
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	order, err := h.orderService.GetCustomerOrder(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListAllOrders --> GET /admin/orders?status=
func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrders(c.Request().Context(), entity.OrderStatus(c.QueryParam("status")))
	if err != nil {
		return respondError(c, err)
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateStatus --> PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	defer func() {
		status := c.Response().Status >= 200 && c.Response().Status < 300
		metrics.RecordOperation("order_update_status", status)
	}()
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req orderStatusRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), id,
		entity.OrderStatus(req.Status), entity.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
