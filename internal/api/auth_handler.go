package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"max=20"`
	Address  string `json:"address"`
	City     string `json:"city" validate:"max=50"`
	State    string `json:"state" validate:"max=50"`
	Pin      string `json:"pin" validate:"max=10"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a customer account --> POST /auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	customer, err := h.authService.Register(c.Request().Context(), service.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		Pin:      req.Pin,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

// Login exchanges credentials for a token --> POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	token, customer, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"token": token, "customer": customer})
}
