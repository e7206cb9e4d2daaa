package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type ReviewService struct {
	store repository.Store
}

func NewReviewService(store repository.Store) *ReviewService {
	return &ReviewService{store: store}
}

// SubmitReview records a rating from a customer who has received the product.
func (s *ReviewService) SubmitReview(ctx context.Context, customerID, productID, rating int, comment string) (*entity.Review, error) {
	if rating < entity.MinRating || rating > entity.MaxRating {
		return nil, ErrInvalidRating
	}

	if _, err := s.store.Products().GetProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("load product", err)
	}

	delivered, err := s.store.Orders().HasDeliveredOrder(ctx, customerID, productID)
	if err != nil {
		return nil, persistence("check delivered orders", err)
	}
	if !delivered {
		return nil, ErrNotEligibleToReview
	}

	if _, err := s.store.Reviews().GetReview(ctx, customerID, productID); err == nil {
		return nil, ErrDuplicateReview
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, persistence("load review", err)
	}

	review := &entity.Review{
		CustomerID: customerID,
		ProductID:  productID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.store.Reviews().CreateReview(ctx, review); err != nil {
		// lost a race with a concurrent submit
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		err = persistence("create review", err)
		logFailure(err, "Error creating review")
		return nil, err
	}

	logger.Info().Int("customer_id", customerID).Int("product_id", productID).Int("rating", rating).Msg("Review submitted")
	return review, nil
}

func (s *ReviewService) ListProductReviews(ctx context.Context, productID int) ([]*entity.Review, error) {
	reviews, err := s.store.Reviews().ListProductReviews(ctx, productID)
	if err != nil {
		return nil, persistence("list reviews", err)
	}
	return reviews, nil
}
