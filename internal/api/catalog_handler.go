package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"storefront/internal/entity"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	reviewService  *service.ReviewService
}

func NewCatalogHandler(catalogService *service.CatalogService, reviewService *service.ReviewService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, reviewService: reviewService}
}

type productRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	InitialStock  int             `json:"initial_stock" validate:"gte=0"`
	MinStockLevel *int            `json:"min_stock_level" validate:"omitempty,gte=0"`
	CategoryID    int             `json:"category_id" validate:"gte=0"`
	SKU           string          `json:"sku" validate:"max=64"`
	Status        string          `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
}

func (r productRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		InitialStock:  r.InitialStock,
		MinStockLevel: r.MinStockLevel,
		CategoryID:    r.CategoryID,
		SKU:           r.SKU,
		Status:        entity.ProductStatus(r.Status),
	}
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=2000"`
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// ListProducts --> GET /products?category_id=&search=
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	return h.listProducts(c, false)
}

// ListAllProducts includes inactive and out-of-stock products --> GET /admin/products
func (h *CatalogHandler) ListAllProducts(c echo.Context) error {
	return h.listProducts(c, true)
}

func (h *CatalogHandler) listProducts(c echo.Context, includeUnavailable bool) error {
	categoryID, err := queryInt(c, "category_id", 0)
	if err != nil {
		return respondError(c, err)
	}

	products, err := h.catalogService.ListProducts(c.Request().Context(), repository.ProductFilter{
		CategoryID:         categoryID,
		Search:             c.QueryParam("search"),
		IncludeUnavailable: includeUnavailable,
	})
	if err != nil {
		return respondError(c, err)
	}
	if products == nil {
		products = []*entity.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct --> GET /products/:id
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.catalogService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// ListReviews --> GET /products/:id/reviews
func (h *CatalogHandler) ListReviews(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	reviews, err := h.reviewService.ListProductReviews(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if reviews == nil {
		reviews = []*entity.Review{}
	}
	return c.JSON(http.StatusOK, reviews)
}

// SubmitReview --> POST /products/:id/reviews
func (h *CatalogHandler) SubmitReview(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req reviewRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	review, err := h.reviewService.SubmitReview(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, productID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}

// ListCategories --> GET /categories
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalogService.ListCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if categories == nil {
		categories = []*entity.Category{}
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateProduct --> POST /admin/products
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	product, err := h.catalogService.CreateProduct(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct --> PUT /admin/products/:id
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req productRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	product, err := h.catalogService.UpdateProduct(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// CreateCategory --> POST /admin/categories
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	category, err := h.catalogService.CreateCategory(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}
