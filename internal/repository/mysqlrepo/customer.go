package mysqlrepo

import (
	"context"

	"storefront/internal/entity"
)

const customerColumns = `id, name, email, phone, password_hash, role, city, state, pin, address, created_at`

const (
	getCustomerQuery        = `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	getCustomerByEmailQuery = `SELECT ` + customerColumns + ` FROM customers WHERE email = ?`
	updateCustomerQuery     = `UPDATE customers SET name = ?, email = ?, phone = ?, city = ?, state = ?, pin = ?, address = ? WHERE id = ?`
	createCustomerQuery     = `INSERT INTO customers (name, email, phone, password_hash, role, city, state, pin, address, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

type customerRepository struct {
	q querier
}

func scanCustomer(row rowScanner) (*entity.Customer, error) {
	c := &entity.Customer{}
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.PasswordHash, &c.Role, &c.City, &c.State, &c.Pin, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) GetCustomer(ctx context.Context, id int) (*entity.Customer, error) {
	customer, err := scanCustomer(r.q.QueryRowContext(ctx, getCustomerQuery, id))
	if err != nil {
		return nil, mapError(err)
	}
	return customer, nil
}

func (r *customerRepository) GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	customer, err := scanCustomer(r.q.QueryRowContext(ctx, getCustomerByEmailQuery, email))
	if err != nil {
		return nil, mapError(err)
	}
	return customer, nil
}

func (r *customerRepository) CreateCustomer(ctx context.Context, customer *entity.Customer) error {
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = nowUTC()
	}
	res, err := r.q.ExecContext(ctx, createCustomerQuery, customer.Name, customer.Email, customer.Phone, customer.PasswordHash,
		customer.Role, customer.City, customer.State, customer.Pin, customer.Address, customer.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	customer.ID = int(id)
	return nil
}

func (r *customerRepository) UpdateCustomer(ctx context.Context, customer *entity.Customer) error {
	res, err := r.q.ExecContext(ctx, updateCustomerQuery, customer.Name, customer.Email, customer.Phone,
		customer.City, customer.State, customer.Pin, customer.Address, customer.ID)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}
