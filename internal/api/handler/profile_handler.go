package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/guard"
	"github.com/marketingcrm/portal/internal/core/ports"
)

type ProfileHandler struct {
	profiles ports.ProfileService
}

func NewProfileHandler(profiles ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get renders the dashboard with the caller's profile.
//
// @Summary      Get profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Router       /dashboard [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	tok, _, err := bearer(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.Get(c.Request().Context(), tok)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileView(p, navFrom(c)))
}

// Update saves the dashboard form. idType is fixed once set and idNumber
// once the backend locks it.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      profileRequest  true  "Profile"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /dashboard [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tok, _, err := bearer(c)
	if err != nil {
		return err
	}

	p, err := h.profiles.Save(c.Request().Context(), tok, domain.ProfileUpdate{
		Name:     req.Name,
		IDType:   req.IDType,
		IDNumber: req.IDNumber,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileView(p, navFrom(c)))
}

func profileView(p *domain.Profile, nav []guard.NavItem) profileResponse {
	return profileResponse{Profile: p, IDTypeLocked: p != nil && p.IDType != "", Nav: nav}
}
