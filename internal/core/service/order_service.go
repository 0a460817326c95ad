package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
)

type orderService struct {
	backend ports.OrderBackend
	log     zerolog.Logger
}

// NewOrderService returns the service behind the order views.
func NewOrderService(backend ports.OrderBackend, log zerolog.Logger) ports.OrderService {
	return &orderService{backend: backend, log: log}
}

func (s *orderService) MyRequests(ctx context.Context, bearer string) ([]domain.Order, error) {
	orders, err := s.backend.MyRequests(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("list own orders: %w", err)
	}
	return orders, nil
}

// List returns all orders matching query (see domain.Order.Matches).
func (s *orderService) List(ctx context.Context, bearer, query string) ([]domain.Order, error) {
	orders, err := s.backend.Orders(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := orders[:0]
	for _, o := range orders {
		if o.Matches(query) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, bearer, orderID string, status domain.OrderStatus) error {
	if orderID == "" {
		return domain.Invalid("order id is required")
	}
	if !status.Valid() {
		return domain.Invalid("status %q is not one of the known statuses", status)
	}
	if err := s.backend.UpdateOrderStatus(ctx, bearer, orderID, status); err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	s.log.Info().Str("order_id", orderID).Str("status", string(status)).Msg("order status updated")
	return nil
}

func (s *orderService) Invoice(ctx context.Context, bearer, orderID string) (*domain.Attachment, error) {
	if orderID == "" {
		return nil, domain.Invalid("order id is required")
	}
	att, err := s.backend.Invoice(ctx, bearer, orderID)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", orderID, err)
	}
	att.Filename = orderID + ".pdf"
	if att.ContentType == "" {
		att.ContentType = "application/pdf"
	}
	return att, nil
}

func (s *orderService) PaymentProof(ctx context.Context, bearer, orderID string) (*domain.Attachment, error) {
	if orderID == "" {
		return nil, domain.Invalid("order id is required")
	}
	att, err := s.backend.PaymentProof(ctx, bearer, orderID)
	if err != nil {
		return nil, fmt.Errorf("payment proof %s: %w", orderID, err)
	}
	if att.Filename == "" {
		att.Filename = "comprobante_" + orderID + ".jpg"
	}
	return att, nil
}
