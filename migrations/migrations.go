package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

type table struct {
	name  string
	query string
}

// tables are listed in foreign key order.
var tables = []table{
	{"categories", `
		CREATE TABLE IF NOT EXISTS categories (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description TEXT NOT NULL,
			created_at DATETIME NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"customers", `
		CREATE TABLE IF NOT EXISTS customers (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			phone VARCHAR(20) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'customer',
			city VARCHAR(50) NOT NULL DEFAULT '',
			state VARCHAR(50) NOT NULL DEFAULT '',
			pin VARCHAR(10) NOT NULL DEFAULT '',
			address TEXT NOT NULL,
			created_at DATETIME NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			price DECIMAL(12,2) NOT NULL CHECK (price >= 0),
			stock_quantity INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
			min_stock_level INT NOT NULL DEFAULT 10,
			category_id INT NULL,
			sku VARCHAR(64) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_products_category (category_id),
			INDEX idx_products_name (name),
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"carts", `
		CREATE TABLE IF NOT EXISTS carts (
			id INT AUTO_INCREMENT PRIMARY KEY,
			customer_id INT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"cart_items", `
		CREATE TABLE IF NOT EXISTS cart_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			cart_id INT NOT NULL,
			product_id INT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			added_at DATETIME NOT NULL,
			UNIQUE KEY uq_cart_product (cart_id, product_id),
			FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			customer_id INT NOT NULL,
			order_date DATETIME NOT NULL,
			total_amount DECIMAL(12,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(50) NOT NULL,
			shipping_address TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_orders_customer (customer_id, order_date),
			INDEX idx_orders_status (status),
			FOREIGN KEY (customer_id) REFERENCES customers(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"order_items", `
		CREATE TABLE IF NOT EXISTS order_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			product_id INT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			price_at_purchase DECIMAL(12,2) NOT NULL,
			subtotal DECIMAL(12,2) NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"inventory_transactions", `
		CREATE TABLE IF NOT EXISTS inventory_transactions (
			id INT AUTO_INCREMENT PRIMARY KEY,
			product_id INT NOT NULL,
			transaction_type VARCHAR(20) NOT NULL,
			quantity_change INT NOT NULL,
			stock_before INT NOT NULL,
			stock_after INT NOT NULL,
			reference_type VARCHAR(20) NOT NULL,
			reference_id INT NULL,
			notes VARCHAR(1000) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			INDEX idx_inventory_product (product_id),
			CHECK (stock_after = stock_before + quantity_change),
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"reviews", `
		CREATE TABLE IF NOT EXISTS reviews (
			id INT AUTO_INCREMENT PRIMARY KEY,
			customer_id INT NOT NULL,
			product_id INT NOT NULL,
			rating TINYINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE KEY uq_review_customer_product (customer_id, product_id),
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
	{"wishlist_items", `
		CREATE TABLE IF NOT EXISTS wishlist_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			customer_id INT NOT NULL,
			product_id INT NOT NULL,
			added_at DATETIME NOT NULL,
			UNIQUE KEY uq_wishlist_customer_product (customer_id, product_id),
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`},
}

// AutoMigrate creates every table that does not exist yet, retrying each statement.
func AutoMigrate(db *sql.DB, retries int) error {
	for _, t := range tables {
		if err := exec(db, t.query, retries); err != nil {
			return fmt.Errorf("migrate %s table: %w", t.name, err)
		}
	}
	return nil
}

func exec(db *sql.DB, query string, retries int) error {
	_, err := db.Exec(query)
	// Retry creating the table
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(1 * time.Second)
		_, err = db.Exec(query)
	}
	return err
}
