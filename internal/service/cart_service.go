package service

import (
	"context"
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

// CartService manages the server-side cart. Stock checks here are advisory; checkout re-validates.
type CartService struct {
	store repository.Store
}

func NewCartService(store repository.Store) *CartService {
	return &CartService{store: store}
}

// GetCart joins the cart with current catalog data. A customer without a cart gets an empty summary.
func (s *CartService) GetCart(ctx context.Context, customerID int) (*entity.CartSummary, error) {
	summary := &entity.CartSummary{CustomerID: customerID, TotalAmount: decimal.Zero, Lines: []entity.CartLine{}}

	cart, err := s.store.Carts().GetCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return summary, nil
		}
		return nil, persistence("load cart", err)
	}

	for _, item := range cart.Items {
		product, err := s.store.Products().GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, persistence("load cart product", err)
		}
		line := entity.CartLine{
			ProductID:         product.ID,
			Name:              product.Name,
			Quantity:          item.Quantity,
			UnitPrice:         product.Price,
			Subtotal:          product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			StockQuantity:     product.StockQuantity,
			InsufficientStock: item.Quantity > product.StockQuantity,
			Available:         product.Status == entity.ProductStatusActive,
		}
		summary.Lines = append(summary.Lines, line)
		summary.TotalItems += item.Quantity
		summary.TotalAmount = summary.TotalAmount.Add(line.Subtotal)
	}
	return summary, nil
}

// AddItem adds quantity units of a product, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, customerID, productID, quantity int) (*entity.CartSummary, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	err := repository.WithTx(ctx, s.store, func(tx repository.Tx) error {
		return addToCart(ctx, tx, customerID, productID, quantity)
	})
	if err != nil {
		err = classify("add cart item", err)
		logFailure(err, "Error adding item to cart")
		return nil, err
	}
	return s.GetCart(ctx, customerID)
}

// UpdateItem overwrites the quantity of an existing line.
func (s *CartService) UpdateItem(ctx context.Context, customerID, productID, quantity int) (*entity.CartSummary, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	err := repository.WithTx(ctx, s.store, func(tx repository.Tx) error {
		cart, err := tx.Carts().GetCartForUpdate(ctx, customerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}
		if cart.Item(productID) == nil {
			return ErrCartItemNotFound
		}
		product, err := purchasableProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		if quantity > product.StockQuantity {
			return &InsufficientStockError{ProductID: productID, Requested: quantity, Available: product.StockQuantity}
		}
		return tx.Carts().SetItemQuantity(ctx, cart.ID, productID, quantity)
	})
	if err != nil {
		err = classify("update cart item", err)
		logFailure(err, "Error updating cart item")
		return nil, err
	}
	return s.GetCart(ctx, customerID)
}

func (s *CartService) RemoveItem(ctx context.Context, customerID, productID int) (*entity.CartSummary, error) {
	cart, err := s.store.Carts().GetCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, persistence("load cart", err)
	}
	if err := s.store.Carts().RemoveItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, persistence("remove cart item", err)
	}
	return s.GetCart(ctx, customerID)
}

func (s *CartService) Clear(ctx context.Context, customerID int) error {
	cart, err := s.store.Carts().GetCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return persistence("load cart", err)
	}
	if err := s.store.Carts().ClearCart(ctx, cart.ID); err != nil {
		return persistence("clear cart", err)
	}
	return nil
}

// addToCart is shared by AddItem and the wishlist move. It creates the cart on first use.
func addToCart(ctx context.Context, tx repository.Tx, customerID, productID, quantity int) error {
	product, err := purchasableProduct(ctx, tx, productID)
	if err != nil {
		return err
	}

	cart, err := tx.Carts().GetCartForUpdate(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		cart, err = tx.Carts().CreateCart(ctx, customerID)
	}
	if err != nil {
		return err
	}

	existing := 0
	if item := cart.Item(productID); item != nil {
		existing = item.Quantity
	}
	// compared as a difference so a huge quantity cannot wrap the merged total
	if quantity > product.StockQuantity-existing {
		requested := quantity
		if quantity <= math.MaxInt-existing {
			requested += existing
		}
		return &InsufficientStockError{ProductID: productID, Requested: requested, Available: product.StockQuantity}
	}
	return tx.Carts().SetItemQuantity(ctx, cart.ID, productID, existing+quantity)
}

func purchasableProduct(ctx context.Context, tx repository.Tx, productID int) (*entity.Product, error) {
	product, err := tx.Products().GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.Status != entity.ProductStatusActive {
		return nil, ErrProductUnavailable
	}
	return product, nil
}
