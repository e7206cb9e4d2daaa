package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type productRepo struct{ v view }

func (r productRepo) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.with(ctx, "products.GetProduct", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyProduct(p)
		return nil
	})
	return out, err
}

func (r productRepo) GetProductForUpdate(ctx context.Context, id int) (*entity.Product, error) {
	if err := r.v.store.fault("products.GetProductForUpdate"); err != nil {
		return nil, err
	}
	return r.GetProduct(ctx, id)
}

func (r productRepo) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	err := r.v.with(ctx, "products.ListProducts", func(st *state) error {
		for _, p := range st.products {
			if !filter.IncludeUnavailable && !p.Purchasable() {
				continue
			}
			if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Description), search) {
				continue
			}
			out = append(out, copyProduct(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r productRepo) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.with(ctx, "products.ListLowStock", func(st *state) error {
		for _, p := range st.products {
			if p.LowStock() && p.Status != entity.ProductStatusDiscontinued {
				out = append(out, copyProduct(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQuantity != out[j].StockQuantity {
			return out[i].StockQuantity < out[j].StockQuantity
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r productRepo) InventoryOverview(ctx context.Context) (*entity.InventoryOverview, error) {
	overview := &entity.InventoryOverview{}
	err := r.v.with(ctx, "products.InventoryOverview", func(st *state) error {
		for _, p := range st.products {
			if p.Status == entity.ProductStatusDiscontinued {
				continue
			}
			overview.TotalProducts++
			overview.TotalStock += p.StockQuantity
			if p.LowStock() {
				overview.LowStock++
			}
			if p.StockQuantity == 0 {
				overview.OutOfStock++
			}
		}
		return nil
	})
	return overview, err
}

func (r productRepo) CreateProduct(ctx context.Context, product *entity.Product) error {
	return r.v.with(ctx, "products.CreateProduct", func(st *state) error {
		product.ID = st.nextID()
		product.CreatedAt = now()
		product.UpdatedAt = product.CreatedAt
		st.products[product.ID] = copyProduct(product)
		return nil
	})
}

func (r productRepo) UpdateProduct(ctx context.Context, product *entity.Product) error {
	return r.v.with(ctx, "products.UpdateProduct", func(st *state) error {
		existing, ok := st.products[product.ID]
		if !ok {
			return repository.ErrNotFound
		}
		updated := copyProduct(product)
		updated.StockQuantity = existing.StockQuantity
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = now()
		product.UpdatedAt = updated.UpdatedAt
		st.products[product.ID] = updated
		return nil
	})
}

func (r productRepo) SetStock(ctx context.Context, id int, quantity int) error {
	return r.v.with(ctx, "products.SetStock", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return repository.ErrNotFound
		}
		if quantity < 0 {
			return errNegativeStock
		}
		p.StockQuantity = quantity
		p.UpdatedAt = now()
		return nil
	})
}

type categoryRepo struct{ v view }

func (r categoryRepo) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.v.with(ctx, "categories.ListCategories", func(st *state) error {
		for _, c := range st.categories {
			cp := *c
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r categoryRepo) CreateCategory(ctx context.Context, category *entity.Category) error {
	return r.v.with(ctx, "categories.CreateCategory", func(st *state) error {
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, category.Name) {
				return repository.ErrDuplicate
			}
		}
		category.ID = st.nextID()
		if category.CreatedAt.IsZero() {
			category.CreatedAt = now()
		}
		cp := *category
		st.categories[category.ID] = &cp
		return nil
	})
}

type orderRepo struct{ v view }

func (r orderRepo) CreateOrder(ctx context.Context, order *entity.Order) error {
	return r.v.with(ctx, "orders.CreateOrder", func(st *state) error {
		if _, ok := st.customers[order.CustomerID]; !ok {
			return errForeignKey
		}
		order.ID = st.nextID()
		for i := range order.Items {
			if _, ok := st.products[order.Items[i].ProductID]; !ok {
				return errForeignKey
			}
			order.Items[i].ID = st.nextID()
			order.Items[i].OrderID = order.ID
		}
		st.orders[order.ID] = copyOrder(order)
		return nil
	})
}

func (r orderRepo) GetOrder(ctx context.Context, id int) (*entity.Order, error) {
	var out *entity.Order
	err := r.v.with(ctx, "orders.GetOrder", func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyOrder(o)
		return nil
	})
	return out, err
}

func (r orderRepo) GetOrderForUpdate(ctx context.Context, id int) (*entity.Order, error) {
	return r.GetOrder(ctx, id)
}

func (r orderRepo) ListOrdersByCustomer(ctx context.Context, customerID int) ([]*entity.Order, error) {
	return r.list(ctx, "orders.ListOrdersByCustomer", func(o *entity.Order) bool { return o.CustomerID == customerID })
}

func (r orderRepo) ListOrders(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	return r.list(ctx, "orders.ListOrders", func(o *entity.Order) bool { return status == "" || o.Status == status })
}

func (r orderRepo) list(ctx context.Context, op string, keep func(o *entity.Order) bool) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.v.with(ctx, op, func(st *state) error {
		for _, o := range st.orders {
			if keep(o) {
				out = append(out, copyOrder(o))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r orderRepo) UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus, paymentStatus entity.PaymentStatus) error {
	return r.v.with(ctx, "orders.UpdateOrderStatus", func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.Status = status
		o.PaymentStatus = paymentStatus
		o.UpdatedAt = now()
		return nil
	})
}

func (r orderRepo) HasDeliveredOrder(ctx context.Context, customerID, productID int) (bool, error) {
	var found bool
	err := r.v.with(ctx, "orders.HasDeliveredOrder", func(st *state) error {
		for _, o := range st.orders {
			if o.CustomerID == customerID && o.Status == entity.OrderStatusDelivered && o.Contains(productID) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r orderRepo) OrderStats(ctx context.Context, customerID int) (*entity.OrderStats, error) {
	stats := &entity.OrderStats{TotalSpent: decimal.Zero}
	err := r.v.with(ctx, "orders.OrderStats", func(st *state) error {
		for _, o := range st.orders {
			if o.CustomerID != customerID {
				continue
			}
			stats.OrderCount++
			stats.TotalSpent = stats.TotalSpent.Add(o.TotalAmount)
			if stats.LastOrderAt == nil || o.OrderDate.After(*stats.LastOrderAt) {
				t := o.OrderDate
				stats.LastOrderAt = &t
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type cartRepo struct{ v view }

func (r cartRepo) GetCart(ctx context.Context, customerID int) (*entity.Cart, error) {
	var out *entity.Cart
	err := r.v.with(ctx, "carts.GetCart", func(st *state) error {
		c, ok := st.carts[customerID]
		if !ok {
			return repository.ErrNotFound
		}
		out = copyCart(c)
		return nil
	})
	return out, err
}

func (r cartRepo) GetCartForUpdate(ctx context.Context, customerID int) (*entity.Cart, error) {
	if err := r.v.store.fault("carts.GetCartForUpdate"); err != nil {
		return nil, err
	}
	return r.GetCart(ctx, customerID)
}

func (r cartRepo) CreateCart(ctx context.Context, customerID int) (*entity.Cart, error) {
	var out *entity.Cart
	err := r.v.with(ctx, "carts.CreateCart", func(st *state) error {
		if _, ok := st.carts[customerID]; ok {
			return repository.ErrDuplicate
		}
		c := &entity.Cart{ID: st.nextID(), CustomerID: customerID, CreatedAt: now()}
		c.UpdatedAt = c.CreatedAt
		st.carts[customerID] = c
		out = copyCart(c)
		return nil
	})
	return out, err
}

func (r cartRepo) byID(st *state, cartID int) (*entity.Cart, error) {
	for _, c := range st.carts {
		if c.ID == cartID {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r cartRepo) SetItemQuantity(ctx context.Context, cartID, productID, quantity int) error {
	return r.v.with(ctx, "carts.SetItemQuantity", func(st *state) error {
		c, err := r.byID(st, cartID)
		if err != nil {
			return err
		}
		if quantity < 1 {
			return errInvalidQuantity
		}
		c.UpdatedAt = now()
		if item := c.Item(productID); item != nil {
			item.Quantity = quantity
			return nil
		}
		c.Items = append(c.Items, entity.CartItem{
			ID:        st.nextID(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   c.UpdatedAt,
		})
		return nil
	})
}

func (r cartRepo) RemoveItem(ctx context.Context, cartID, productID int) error {
	return r.v.with(ctx, "carts.RemoveItem", func(st *state) error {
		c, err := r.byID(st, cartID)
		if err != nil {
			return err
		}
		for i, item := range c.Items {
			if item.ProductID == productID {
				c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

func (r cartRepo) ClearCart(ctx context.Context, cartID int) error {
	return r.v.with(ctx, "carts.ClearCart", func(st *state) error {
		c, err := r.byID(st, cartID)
		if err != nil {
			return err
		}
		c.Items = nil
		return nil
	})
}

type inventoryRepo struct{ v view }

func (r inventoryRepo) AppendTransaction(ctx context.Context, txn *entity.InventoryTransaction) error {
	return r.v.with(ctx, "inventory.AppendTransaction", func(st *state) error {
		txn.ID = st.nextID()
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = now()
		}
		cp := *txn
		st.inventory = append(st.inventory, &cp)
		return nil
	})
}

func (r inventoryRepo) ListTransactions(ctx context.Context, productID int, limit int) ([]*entity.InventoryTransaction, error) {
	var out []*entity.InventoryTransaction
	err := r.v.with(ctx, "inventory.ListTransactions", func(st *state) error {
		for i := len(st.inventory) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
			txn := st.inventory[i]
			if productID != 0 && txn.ProductID != productID {
				continue
			}
			cp := *txn
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

type reviewRepo struct{ v view }

func (r reviewRepo) GetReview(ctx context.Context, customerID, productID int) (*entity.Review, error) {
	var out *entity.Review
	err := r.v.with(ctx, "reviews.GetReview", func(st *state) error {
		for _, rv := range st.reviews {
			if rv.CustomerID == customerID && rv.ProductID == productID {
				cp := *rv
				out = &cp
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r reviewRepo) CreateReview(ctx context.Context, review *entity.Review) error {
	return r.v.with(ctx, "reviews.CreateReview", func(st *state) error {
		for _, rv := range st.reviews {
			if rv.CustomerID == review.CustomerID && rv.ProductID == review.ProductID {
				return repository.ErrDuplicate
			}
		}
		review.ID = st.nextID()
		if review.CreatedAt.IsZero() {
			review.CreatedAt = now()
		}
		cp := *review
		st.reviews = append(st.reviews, &cp)
		return nil
	})
}

func (r reviewRepo) ListProductReviews(ctx context.Context, productID int) ([]*entity.Review, error) {
	var out []*entity.Review
	err := r.v.with(ctx, "reviews.ListProductReviews", func(st *state) error {
		for i := len(st.reviews) - 1; i >= 0; i-- {
			if st.reviews[i].ProductID == productID {
				cp := *st.reviews[i]
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

type wishlistRepo struct{ v view }

func (r wishlistRepo) ListItems(ctx context.Context, customerID int) ([]*entity.WishlistItem, error) {
	var out []*entity.WishlistItem
	err := r.v.with(ctx, "wishlist.ListItems", func(st *state) error {
		for i := len(st.wishlist) - 1; i >= 0; i-- {
			if st.wishlist[i].CustomerID == customerID {
				cp := *st.wishlist[i]
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

func (r wishlistRepo) GetItem(ctx context.Context, customerID, productID int) (*entity.WishlistItem, error) {
	var out *entity.WishlistItem
	err := r.v.with(ctx, "wishlist.GetItem", func(st *state) error {
		for _, item := range st.wishlist {
			if item.CustomerID == customerID && item.ProductID == productID {
				cp := *item
				out = &cp
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r wishlistRepo) AddItem(ctx context.Context, item *entity.WishlistItem) error {
	return r.v.with(ctx, "wishlist.AddItem", func(st *state) error {
		for _, existing := range st.wishlist {
			if existing.CustomerID == item.CustomerID && existing.ProductID == item.ProductID {
				return repository.ErrDuplicate
			}
		}
		item.ID = st.nextID()
		if item.AddedAt.IsZero() {
			item.AddedAt = now()
		}
		cp := *item
		cp.Product = nil
		st.wishlist = append(st.wishlist, &cp)
		return nil
	})
}

func (r wishlistRepo) RemoveItem(ctx context.Context, customerID, productID int) error {
	return r.v.with(ctx, "wishlist.RemoveItem", func(st *state) error {
		for i, item := range st.wishlist {
			if item.CustomerID == customerID && item.ProductID == productID {
				st.wishlist = append(st.wishlist[:i:i], st.wishlist[i+1:]...)
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

type customerRepo struct{ v view }

func (r customerRepo) GetCustomer(ctx context.Context, id int) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.with(ctx, "customers.GetCustomer", func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (r customerRepo) GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.with(ctx, "customers.GetCustomerByEmail", func(st *state) error {
		for _, c := range st.customers {
			if strings.EqualFold(c.Email, email) {
				cp := *c
				out = &cp
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r customerRepo) CreateCustomer(ctx context.Context, customer *entity.Customer) error {
	return r.v.with(ctx, "customers.CreateCustomer", func(st *state) error {
		for _, c := range st.customers {
			if strings.EqualFold(c.Email, customer.Email) {
				return repository.ErrDuplicate
			}
		}
		customer.ID = st.nextID()
		if customer.CreatedAt.IsZero() {
			customer.CreatedAt = now()
		}
		cp := *customer
		st.customers[customer.ID] = &cp
		return nil
	})
}

func (r customerRepo) UpdateCustomer(ctx context.Context, customer *entity.Customer) error {
	return r.v.with(ctx, "customers.UpdateCustomer", func(st *state) error {
		existing, ok := st.customers[customer.ID]
		if !ok {
			return repository.ErrNotFound
		}
		for id, c := range st.customers {
			if id != customer.ID && strings.EqualFold(c.Email, customer.Email) {
				return repository.ErrDuplicate
			}
		}
		updated := *customer
		updated.PasswordHash = existing.PasswordHash
		updated.Role = existing.Role
		updated.CreatedAt = existing.CreatedAt
		st.customers[customer.ID] = &updated
		return nil
	})
}
