package handler

import (
	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/guard"
)

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerRequest struct {
	Email    string      `json:"email" form:"email" validate:"required,email"`
	Password string      `json:"password" form:"password" validate:"required"`
	Role     domain.Role `json:"role" form:"role" validate:"required,oneof=user admin"`
}

// sessionResponse describes the session after an auth operation or on the
// landing view.
type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Session       *domain.Session `json:"session,omitempty"`
	Redirect      string          `json:"redirect,omitempty"`
	Nav           []guard.NavItem `json:"nav,omitempty"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type profileRequest struct {
	Name     string        `json:"name" validate:"required"`
	IDType   domain.IDType `json:"idType" validate:"required,oneof=J G"`
	IDNumber string        `json:"idNumber" validate:"required"`
	Phone    string        `json:"phone" validate:"required"`
	Address  string        `json:"address" validate:"required"`
}

type profileResponse struct {
	Profile *domain.Profile `json:"profile"`
	// IDTypeLocked tells the form to render idType read-only.
	IDTypeLocked bool            `json:"idTypeLocked"`
	Nav          []guard.NavItem `json:"nav,omitempty"`
}

type orderView struct {
	domain.Order
	HasPaymentProof bool `json:"has_payment_proof"`
}

type ordersResponse struct {
	Orders   []orderView          `json:"orders"`
	Statuses []domain.OrderStatus `json:"statuses,omitempty"`
	Nav      []guard.NavItem      `json:"nav,omitempty"`
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

type catalogResponse struct {
	Services []domain.CatalogEntry `json:"services"`
	Nav      []guard.NavItem       `json:"nav,omitempty"`
}

type requestCreatedResponse struct {
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

func toOrderViews(orders []domain.Order) []orderView {
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = orderView{Order: o, HasPaymentProof: o.HasPaymentProof()}
	}
	return out
}
