package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"storefront/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeUnauthorized   = "UNAUTHORIZED"
	codeNotFound       = "NOT_FOUND"
	codeInternal       = "INTERNAL_ERROR"
)

// requestError is a malformed or invalid request body, query or path parameter.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func invalidRequest(msg string) error {
	return &requestError{msg: msg}
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrEmptyCart, http.StatusUnprocessableEntity, "EMPTY_CART"},
	{service.ErrInvalidAddress, http.StatusBadRequest, "INVALID_ADDRESS"},
	{service.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
	{service.ErrPersistence, http.StatusServiceUnavailable, "PERSISTENCE_FAILURE"},
	{service.ErrNotEligibleToReview, http.StatusForbidden, "NOT_ELIGIBLE_TO_REVIEW"},
	{service.ErrDuplicateReview, http.StatusConflict, "DUPLICATE_REVIEW"},
	{service.ErrCheckoutInProgress, http.StatusConflict, "CHECKOUT_IN_PROGRESS"},
	{service.ErrProductUnavailable, http.StatusUnprocessableEntity, "PRODUCT_UNAVAILABLE"},
	{service.ErrInvalidStatusTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION"},
	{service.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{service.ErrCategoryExists, http.StatusConflict, "CATEGORY_EXISTS"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, codeUnauthorized},
	{service.ErrCustomerNotFound, http.StatusNotFound, codeNotFound},
	{service.ErrProductNotFound, http.StatusNotFound, codeNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound, codeNotFound},
	{service.ErrCartItemNotFound, http.StatusNotFound, codeNotFound},
	{service.ErrWishlistItemNotFound, http.StatusNotFound, codeNotFound},
	{service.ErrInvalidQuantity, http.StatusBadRequest, codeInvalidRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest, codeInvalidRequest},
	{service.ErrInvalidTransactionType, http.StatusBadRequest, codeInvalidRequest},
	{service.ErrInvalidRating, http.StatusBadRequest, codeInvalidRequest},
	{service.ErrInvalidProduct, http.StatusBadRequest, codeInvalidRequest},
	{service.ErrInvalidProfile, http.StatusBadRequest, codeInvalidRequest},
}

// respondError writes {"error": ..., "code": ...} for err.
func respondError(c echo.Context, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": reqErr.msg, "code": codeInvalidRequest})
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := map[string]string{"error": err.Error(), "code": m.code}
		var stockErr *service.InsufficientStockError
		if errors.As(err, &stockErr) {
			body["product_id"] = strconv.Itoa(stockErr.ProductID)
			body["available"] = strconv.Itoa(stockErr.Available)
			body["requested"] = strconv.Itoa(stockErr.Requested)
		}
		if m.status == http.StatusServiceUnavailable {
			// the cause stays in the logs
			body["error"] = service.ErrPersistence.Error()
		}
		return c.JSON(m.status, body)
	}

	logger.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error", "code": codeInternal})
}
