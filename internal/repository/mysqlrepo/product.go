package mysqlrepo

import (
	"context"
	"database/sql"
	"strings"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

const productColumns = `id, name, description, price, stock_quantity, min_stock_level, category_id, sku, status, created_at, updated_at`

const (
	getProductQuery          = `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	getProductForUpdateQuery = getProductQuery + ` FOR UPDATE`
	listLowStockQuery        = `SELECT ` + productColumns + ` FROM products WHERE stock_quantity <= min_stock_level AND status <> 'discontinued' ORDER BY stock_quantity, name`
	inventoryOverviewQuery   = `
		SELECT COUNT(*),
		       COALESCE(SUM(stock_quantity), 0),
		       COALESCE(SUM(CASE WHEN stock_quantity <= min_stock_level THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN stock_quantity = 0 THEN 1 ELSE 0 END), 0)
		FROM products WHERE status <> 'discontinued'`
	createProductQuery = `INSERT INTO products (name, description, price, stock_quantity, min_stock_level, category_id, sku, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	updateProductQuery = `UPDATE products SET name = ?, description = ?, price = ?, min_stock_level = ?, category_id = ?, sku = ?, status = ?, updated_at = ? WHERE id = ?`
	setStockQuery      = `UPDATE products SET stock_quantity = ?, updated_at = ? WHERE id = ?`
)

type productRepository struct {
	q querier
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	product := &entity.Product{}
	var categoryID sql.NullInt64
	err := row.Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.StockQuantity,
		&product.MinStockLevel, &categoryID, &product.SKU, &product.Status, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	product.CategoryID = int(categoryID.Int64)
	return product, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	product, err := scanProduct(r.q.QueryRowContext(ctx, getProductQuery, id))
	if err != nil {
		return nil, mapError(err)
	}
	return product, nil
}

func (r *productRepository) GetProductForUpdate(ctx context.Context, id int) (*entity.Product, error) {
	product, err := scanProduct(r.q.QueryRowContext(ctx, getProductForUpdateQuery, id))
	if err != nil {
		return nil, mapError(err)
	}
	return product, nil
}

func (r *productRepository) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1 = 1`
	var args []interface{}

	if !filter.IncludeUnavailable {
		query += ` AND status = 'active' AND stock_quantity > 0`
	}
	if filter.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += ` AND (name LIKE ? OR description LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY name`

	return r.queryProducts(ctx, query, args...)
}

func (r *productRepository) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	return r.queryProducts(ctx, listLowStockQuery)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepository) InventoryOverview(ctx context.Context) (*entity.InventoryOverview, error) {
	overview := &entity.InventoryOverview{}
	err := r.q.QueryRowContext(ctx, inventoryOverviewQuery).Scan(&overview.TotalProducts, &overview.TotalStock, &overview.LowStock, &overview.OutOfStock)
	if err != nil {
		return nil, err
	}
	return overview, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *entity.Product) error {
	now := nowUTC()
	res, err := r.q.ExecContext(ctx, createProductQuery, product.Name, product.Description, product.Price, product.StockQuantity,
		product.MinStockLevel, nullInt(product.CategoryID), product.SKU, product.Status, now, now)
	if err != nil {
		return mapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	product.ID = int(id)
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	now := nowUTC()
	res, err := r.q.ExecContext(ctx, updateProductQuery, product.Name, product.Description, product.Price, product.MinStockLevel,
		nullInt(product.CategoryID), product.SKU, product.Status, now, product.ID)
	if err != nil {
		return mapError(err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	product.UpdatedAt = now
	return nil
}

func (r *productRepository) SetStock(ctx context.Context, id int, quantity int) error {
	res, err := r.q.ExecContext(ctx, setStockQuery, quantity, nowUTC(), id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
