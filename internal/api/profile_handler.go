package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/middleware"
	"storefront/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type profileRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=100"`
	Phone   string `json:"phone" validate:"max=20"`
	Address string `json:"address"`
	City    string `json:"city" validate:"max=50"`
	State   string `json:"state" validate:"max=50"`
	Pin     string `json:"pin" validate:"max=10"`
}

// GetProfile --> GET /profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profileService.GetProfile(c.Request().Context(), middleware.CurrentClaims(c).CustomerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile --> PUT /profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	profile, err := h.profileService.UpdateProfile(c.Request().Context(), middleware.CurrentClaims(c).CustomerID, service.ProfileUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Pin:     req.Pin,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}
