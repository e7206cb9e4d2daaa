package service

import (
	"context"
	"errors"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type WishlistService struct {
	store repository.Store
}

func NewWishlistService(store repository.Store) *WishlistService {
	return &WishlistService{store: store}
}

// Add puts a product on the wishlist. Adding it twice is not an error.
func (s *WishlistService) Add(ctx context.Context, customerID, productID int) (*entity.WishlistItem, error) {
	product, err := s.store.Products().GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("load product", err)
	}

	item := &entity.WishlistItem{CustomerID: customerID, ProductID: productID}
	if err := s.store.Wishlist().AddItem(ctx, item); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, persistence("add wishlist item", err)
		}
		item, err = s.store.Wishlist().GetItem(ctx, customerID, productID)
		if err != nil {
			return nil, persistence("load wishlist item", err)
		}
	}
	item.Product = product
	return item, nil
}

func (s *WishlistService) Remove(ctx context.Context, customerID, productID int) error {
	if err := s.store.Wishlist().RemoveItem(ctx, customerID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWishlistItemNotFound
		}
		return persistence("remove wishlist item", err)
	}
	return nil
}

// List returns the wishlist newest first, each item carrying the current product.
func (s *WishlistService) List(ctx context.Context, customerID int) ([]*entity.WishlistItem, error) {
	items, err := s.store.Wishlist().ListItems(ctx, customerID)
	if err != nil {
		return nil, persistence("list wishlist", err)
	}
	for _, item := range items {
		product, err := s.store.Products().GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, persistence("load wishlist product", err)
		}
		item.Product = product
	}
	return items, nil
}

// MoveToCart adds the product to the cart and drops it from the wishlist in one transaction.
func (s *WishlistService) MoveToCart(ctx context.Context, customerID, productID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	err := repository.WithTx(ctx, s.store, func(tx repository.Tx) error {
		if _, err := tx.Wishlist().GetItem(ctx, customerID, productID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWishlistItemNotFound
			}
			return err
		}
		if err := addToCart(ctx, tx, customerID, productID, quantity); err != nil {
			return err
		}
		return tx.Wishlist().RemoveItem(ctx, customerID, productID)
	})
	if err != nil {
		err = classify("move wishlist item to cart", err)
		logFailure(err, "Error moving wishlist item to cart")
		return err
	}
	return nil
}
