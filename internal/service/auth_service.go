package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

const DefaultTokenTTL = 24 * time.Hour

type JwtCustomClaims struct {
	CustomerID int    `json:"customer_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type Registration struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	City     string
	State    string
	Pin      string
}

type AuthService struct {
	repo     repository.CustomerRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(repo repository.CustomerRepository, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{repo: repo, secret: []byte(secret), tokenTTL: tokenTTL, now: time.Now}
}

// Register creates a customer account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*entity.Customer, error) {
	return s.create(ctx, reg, entity.RoleCustomer)
}

func (s *AuthService) create(ctx context.Context, reg Registration, role string) (*entity.Customer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	customer := &entity.Customer{
		Name:         strings.TrimSpace(reg.Name),
		Email:        strings.ToLower(strings.TrimSpace(reg.Email)),
		Phone:        reg.Phone,
		PasswordHash: string(hash),
		Role:         role,
		City:         reg.City,
		State:        reg.State,
		Pin:          reg.Pin,
		Address:      reg.Address,
	}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		err = persistence("create customer", err)
		logFailure(err, "Error creating customer")
		return nil, err
	}

	logger.Info().Int("customer_id", customer.ID).Str("role", role).Msg("Customer registered")
	return customer, nil
}

// Login checks the password and issues a signed HS256 token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *entity.Customer, error) {
	customer, err := s.repo.GetCustomerByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, persistence("load customer", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := &JwtCustomClaims{
		CustomerID: customer.ID,
		Role:       customer.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(customer.ID),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, customer, nil
}

// EnsureAdmin creates the bootstrap admin account unless an account with that email exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.create(ctx, Registration{Name: "Administrator", Email: email, Password: password}, entity.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}
