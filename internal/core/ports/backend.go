package ports

import (
	"context"

	"github.com/marketingcrm/portal/internal/core/domain"
)

// AuthBackend is the part of the CRM backend that issues credentials.
type AuthBackend interface {
	Token(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Register(ctx context.Context, email, password string, role domain.Role) (*domain.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// ProfileBackend reads and writes the caller's profile.
type ProfileBackend interface {
	Profile(ctx context.Context, bearer string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, bearer string, upd domain.ProfileUpdate) (*domain.Profile, error)
}

// OrderBackend lists and administers orders.
type OrderBackend interface {
	MyRequests(ctx context.Context, bearer string) ([]domain.Order, error)
	Orders(ctx context.Context, bearer string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, bearer, orderID string, status domain.OrderStatus) error
	Invoice(ctx context.Context, bearer, orderID string) (*domain.Attachment, error)
	PaymentProof(ctx context.Context, bearer, orderID string) (*domain.Attachment, error)
}

// RequestBackend submits service requests.
type RequestBackend interface {
	RequestService(ctx context.Context, bearer string, req domain.ServiceRequest) (string, error)
}
