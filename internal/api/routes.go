package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/middleware"
)

type Handlers struct {
	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Cart      *CartHandler
	Orders    *OrderHandler
	Wishlist  *WishlistHandler
	Inventory *InventoryHandler
	Profile   *ProfileHandler
}

// RegisterRoutes mounts the public, customer and admin routes on e.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "storefront",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	e.GET("/products", h.Catalog.ListProducts)
	e.GET("/products/:id", h.Catalog.GetProduct)
	e.GET("/products/:id/reviews", h.Catalog.ListReviews)
	e.GET("/categories", h.Catalog.ListCategories)

	auth := middleware.JWT(jwtSecret)
	customer := e.Group("", auth)

	customer.GET("/profile", h.Profile.GetProfile)
	customer.PUT("/profile", h.Profile.UpdateProfile)

	customer.GET("/cart", h.Cart.GetCart)
	customer.POST("/cart/items", h.Cart.AddItem)
	customer.PUT("/cart/items/:product_id", h.Cart.UpdateItem)
	customer.DELETE("/cart/items/:product_id", h.Cart.RemoveItem)
	customer.DELETE("/cart", h.Cart.Clear)

	customer.POST("/checkout", h.Orders.Checkout)
	customer.GET("/orders", h.Orders.ListOrders)
	customer.GET("/orders/:id", h.Orders.GetOrder)

	customer.POST("/products/:id/reviews", h.Catalog.SubmitReview)

	customer.GET("/wishlist", h.Wishlist.List)
	customer.POST("/wishlist/items", h.Wishlist.Add)
	customer.DELETE("/wishlist/items/:product_id", h.Wishlist.Remove)
	customer.POST("/wishlist/items/:product_id/move-to-cart", h.Wishlist.MoveToCart)

	admin := e.Group("/admin", auth, middleware.RequireAdmin())

	admin.GET("/products", h.Catalog.ListAllProducts)
	admin.POST("/products", h.Catalog.CreateProduct)
	admin.PUT("/products/:id", h.Catalog.UpdateProduct)
	admin.POST("/products/:id/stock", h.Inventory.AdjustStock)
	admin.POST("/categories", h.Catalog.CreateCategory)

	admin.GET("/inventory/overview", h.Inventory.Overview)
	admin.GET("/inventory/low-stock", h.Inventory.LowStock)
	admin.GET("/inventory/transactions", h.Inventory.Transactions)

	admin.GET("/orders", h.Orders.ListAllOrders)
	admin.PUT("/orders/:id/status", h.Orders.UpdateStatus)
}
