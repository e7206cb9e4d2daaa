package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
)

func TestProfile_EmptyStats(t *testing.T) {
	f := newFixture(t)
	cust := f.customer(t, "ana@example.com")

	profile, err := NewProfileService(f.store).GetProfile(context.Background(), cust.ID)
	require.NoError(t, err)
	assert.Equal(t, cust.Email, profile.Customer.Email)
	assert.Equal(t, 0, profile.Stats.OrderCount)
	assert.True(t, profile.Stats.TotalSpent.IsZero())
	assert.Nil(t, profile.Stats.LastOrderAt)
}

func TestProfile_OrderStats(t *testing.T) {
	f := newFixture(t)
	ana := f.customer(t, "ana@example.com")
	bo := f.customer(t, "bo@example.com")
	mug := f.product(t, "Mug", "12.50", 10)

	f.placeOrder(t, ana.ID, mug.ID, 2)
	last := f.placeOrder(t, ana.ID, mug.ID, 1)
	f.placeOrder(t, bo.ID, mug.ID, 3)

	profile, err := NewProfileService(f.store).GetProfile(context.Background(), ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Stats.OrderCount)
	assert.True(t, decimal.RequireFromString("37.50").Equal(profile.Stats.TotalSpent), profile.Stats.TotalSpent.String())
	require.NotNil(t, profile.Stats.LastOrderAt)
	assert.True(t, last.OrderDate.Equal(*profile.Stats.LastOrderAt))
}

func TestProfile_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := NewProfileService(f.store).GetProfile(context.Background(), 404)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = NewProfileService(f.store).UpdateProfile(context.Background(), 404, ProfileUpdate{Name: "X", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestProfile_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuthService(f.store.Customers(), "secret", 0)
	cust, err := auth.Register(ctx, Registration{Name: "Ana", Email: "ana@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	profile, err := NewProfileService(f.store).UpdateProfile(ctx, cust.ID, ProfileUpdate{
		Name:    " Ana Silva ",
		Email:   "ANA.SILVA@example.com",
		Phone:   "555-0100",
		Address: "1 Main St",
		City:    "Porto",
		State:   "PT",
		Pin:     "4000",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", profile.Customer.Name)
	assert.Equal(t, "ana.silva@example.com", profile.Customer.Email)
	assert.Equal(t, "1 Main St, Porto, PT, 4000", profile.Customer.DeliveryAddress())
	assert.Equal(t, entity.RoleCustomer, profile.Customer.Role)

	// the password survives and the new email logs in
	_, _, err = auth.Login(ctx, "ana.silva@example.com", "correct-horse")
	assert.NoError(t, err)
}

func TestProfile_UpdateRejections(t *testing.T) {
	f := newFixture(t)
	ana := f.customer(t, "ana@example.com")
	f.customer(t, "bo@example.com")
	profiles := NewProfileService(f.store)

	tests := []struct {
		name    string
		upd     ProfileUpdate
		wantErr error
	}{
		{"blank name", ProfileUpdate{Name: " ", Email: "ana@example.com"}, ErrInvalidProfile},
		{"blank email", ProfileUpdate{Name: "Ana", Email: ""}, ErrInvalidProfile},
		{"email of another customer", ProfileUpdate{Name: "Ana", Email: "BO@example.com"}, ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := profiles.UpdateProfile(context.Background(), ana.ID, tt.upd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// keeping one's own email is not a conflict
	_, err := profiles.UpdateProfile(context.Background(), ana.ID, ProfileUpdate{Name: "Ana", Email: "ana@example.com"})
	assert.NoError(t, err)
}

func TestCheckout_DefaultsToProfileAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cust := f.customer(t, "ana@example.com")
	mug := f.product(t, "Mug", "5", 3)
	_, err := NewProfileService(f.store).UpdateProfile(ctx, cust.ID, ProfileUpdate{
		Name: "Ana", Email: "ana@example.com", Address: "1 Main St", City: "Porto",
	})
	require.NoError(t, err)
	f.addToCart(t, cust.ID, mug.ID, 1)

	order, err := f.checkout.Checkout(ctx, CheckoutRequest{CustomerID: cust.ID, ShippingAddress: "  "})
	require.NoError(t, err)
	assert.Equal(t, "1 Main St, Porto", order.ShippingAddress)
}
