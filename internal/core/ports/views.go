package ports

import (
	"context"

	"github.com/marketingcrm/portal/internal/core/domain"
)

// ProfileService backs the dashboard view.
type ProfileService interface {
	Get(ctx context.Context, bearer string) (*domain.Profile, error)
	Save(ctx context.Context, bearer string, upd domain.ProfileUpdate) (*domain.Profile, error)
}

// OrderService backs the my-requests and orders views.
type OrderService interface {
	MyRequests(ctx context.Context, bearer string) ([]domain.Order, error)
	List(ctx context.Context, bearer, query string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, bearer, orderID string, status domain.OrderStatus) error
	Invoice(ctx context.Context, bearer, orderID string) (*domain.Attachment, error)
	PaymentProof(ctx context.Context, bearer, orderID string) (*domain.Attachment, error)
}

// SubmitRequestInput is what the request form collects.
type SubmitRequestInput struct {
	ServiceType string
	TransferID  string
	File        *domain.Attachment
}

// RequestService backs the service request view.
type RequestService interface {
	Catalog() []domain.CatalogEntry
	Submit(ctx context.Context, bearer, email string, in SubmitRequestInput) (string, error)
}
