package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

type ProfileUpdate struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	State   string
	Pin     string
}

type ProfileService struct {
	store repository.Store
}

func NewProfileService(store repository.Store) *ProfileService {
	return &ProfileService{store: store}
}

// GetProfile returns the customer's account details together with their order statistics.
func (s *ProfileService) GetProfile(ctx context.Context, customerID int) (*entity.Profile, error) {
	customer, err := s.store.Customers().GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, persistence("load customer", err)
	}

	stats, err := s.store.Orders().OrderStats(ctx, customerID)
	if err != nil {
		return nil, persistence("load order stats", err)
	}
	return &entity.Profile{Customer: customer, Stats: *stats}, nil
}

// UpdateProfile replaces the editable profile fields. Password and role are not touched.
func (s *ProfileService) UpdateProfile(ctx context.Context, customerID int, upd ProfileUpdate) (*entity.Profile, error) {
	name := strings.TrimSpace(upd.Name)
	email := strings.ToLower(strings.TrimSpace(upd.Email))
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidProfile)
	}

	customer, err := s.store.Customers().GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, persistence("load customer", err)
	}

	customer.Name = name
	customer.Email = email
	customer.Phone = strings.TrimSpace(upd.Phone)
	customer.Address = strings.TrimSpace(upd.Address)
	customer.City = strings.TrimSpace(upd.City)
	customer.State = strings.TrimSpace(upd.State)
	customer.Pin = strings.TrimSpace(upd.Pin)

	if err := s.store.Customers().UpdateCustomer(ctx, customer); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCustomerNotFound
		}
		err = persistence("update customer", err)
		logFailure(err, "Error updating profile")
		return nil, err
	}

	logger.Info().Int("customer_id", customerID).Msg("Profile updated")
	return s.GetProfile(ctx, customerID)
}
