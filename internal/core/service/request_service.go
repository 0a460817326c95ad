package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
)

type requestService struct {
	backend ports.RequestBackend
	log     zerolog.Logger
}

// NewRequestService returns the service behind the request form.
func NewRequestService(backend ports.RequestBackend, log zerolog.Logger) ports.RequestService {
	return &requestService{backend: backend, log: log}
}

func (s *requestService) Catalog() []domain.CatalogEntry {
	return domain.Catalog()
}

// Submit validates the form and forwards it with the catalog amount.
// Nothing is sent when validation fails.
func (s *requestService) Submit(ctx context.Context, bearer, email string, in ports.SubmitRequestInput) (string, error) {
	amount, ok := domain.ServiceCatalog[in.ServiceType]
	if !ok {
		return "", domain.Invalid("unknown service type %q", in.ServiceType)
	}
	if strings.TrimSpace(in.TransferID) == "" {
		return "", domain.Invalid("transfer id is required")
	}
	if in.File == nil || len(in.File.Body) == 0 {
		return "", domain.Invalid("payment proof file is required")
	}

	// Trust the bytes, not the declared content type.
	detected := mimetype.Detect(in.File.Body)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", domain.Invalid("payment proof must be an image, got %s", detected.String())
	}
	file := *in.File
	file.ContentType = detected.String()

	orderID, err := s.backend.RequestService(ctx, bearer, domain.ServiceRequest{
		ServiceType: in.ServiceType,
		Email:       email,
		Amount:      amount,
		TransferID:  strings.TrimSpace(in.TransferID),
		File:        file,
	})
	if err != nil {
		return "", fmt.Errorf("request service: %w", err)
	}

	s.log.Info().Str("order_id", orderID).Str("service_type", in.ServiceType).Msg("service requested")
	return orderID, nil
}
