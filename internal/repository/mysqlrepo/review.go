package mysqlrepo

import (
	"context"

	"storefront/internal/entity"
)

const (
	getReviewQuery          = `SELECT id, customer_id, product_id, rating, comment, created_at FROM reviews WHERE customer_id = ? AND product_id = ?`
	createReviewQuery       = `INSERT INTO reviews (customer_id, product_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?)`
	listProductReviewsQuery = `SELECT id, customer_id, product_id, rating, comment, created_at FROM reviews WHERE product_id = ? ORDER BY created_at DESC, id DESC`
)

type reviewRepository struct {
	q querier
}

func (r *reviewRepository) GetReview(ctx context.Context, customerID, productID int) (*entity.Review, error) {
	review := &entity.Review{}
	err := r.q.QueryRowContext(ctx, getReviewQuery, customerID, productID).Scan(&review.ID, &review.CustomerID, &review.ProductID,
		&review.Rating, &review.Comment, &review.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return review, nil
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *entity.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = nowUTC()
	}
	res, err := r.q.ExecContext(ctx, createReviewQuery, review.CustomerID, review.ProductID, review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	review.ID = int(id)
	return nil
}

func (r *reviewRepository) ListProductReviews(ctx context.Context, productID int) ([]*entity.Review, error) {
	rows, err := r.q.QueryContext(ctx, listProductReviewsQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review := &entity.Review{}
		if err := rows.Scan(&review.ID, &review.CustomerID, &review.ProductID, &review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
