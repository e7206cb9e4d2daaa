package service

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidAddress          = errors.New("shipping address is required")
	ErrPersistence             = errors.New("persistence failure")
	ErrNotEligibleToReview     = errors.New("customer has no delivered order for this product")
	ErrDuplicateReview         = errors.New("customer already reviewed this product")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrProductUnavailable      = errors.New("product is not available for purchase")
	ErrOrderNotFound           = errors.New("order not found")
	ErrCartItemNotFound        = errors.New("product is not in the cart")
	ErrWishlistItemNotFound    = errors.New("product is not in the wishlist")
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("order status transition not allowed")
	ErrInvalidTransactionType  = errors.New("invalid inventory transaction type")
	ErrInvalidRating           = errors.New("rating must be between 1 and 5")
	ErrInvalidProduct          = errors.New("invalid product")
	ErrCategoryExists          = errors.New("category already exists")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrEmailTaken              = errors.New("email is already registered")
	ErrCheckoutInProgress      = errors.New("a checkout with this idempotency key is in progress")
	ErrInvalidProfile          = errors.New("invalid profile")
)

// InsufficientStockError names the product that could not cover the requested quantity.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available=%d, requested=%d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// PersistenceError wraps a store failure. Nothing of the failed operation was committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

var domainErrors = []error{
	ErrInsufficientStock,
	ErrEmptyCart,
	ErrInvalidAddress,
	ErrPersistence,
	ErrNotEligibleToReview,
	ErrDuplicateReview,
	ErrCustomerNotFound,
	ErrProductNotFound,
	ErrProductUnavailable,
	ErrOrderNotFound,
	ErrCartItemNotFound,
	ErrWishlistItemNotFound,
	ErrInvalidQuantity,
	ErrInvalidStatus,
	ErrInvalidStatusTransition,
	ErrInvalidTransactionType,
	ErrInvalidRating,
	ErrInvalidProduct,
	ErrCategoryExists,
	ErrInvalidCredentials,
	ErrEmailTaken,
	ErrCheckoutInProgress,
	ErrInvalidProfile,
}

// classify passes domain errors through and wraps everything else as a persistence failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return persistence(op, err)
}
