package mysqlrepo

import (
	"context"

	"storefront/internal/entity"
)

const (
	listCategoriesQuery = `SELECT id, name, description, created_at FROM categories ORDER BY name`
	createCategoryQuery = `INSERT INTO categories (name, description, created_at) VALUES (?, ?, ?)`
)

type categoryRepository struct {
	q querier
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.q.QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*entity.Category
	for rows.Next() {
		category := &entity.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *entity.Category) error {
	if category.CreatedAt.IsZero() {
		category.CreatedAt = nowUTC()
	}
	res, err := r.q.ExecContext(ctx, createCategoryQuery, category.Name, category.Description, category.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	category.ID = int(id)
	return nil
}
