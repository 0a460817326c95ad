package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
	"github.com/marketingcrm/portal/pkg/logger"
)

type profileService struct {
	backend ports.ProfileBackend
	log     zerolog.Logger
}

// NewProfileService returns the dashboard view service.
func NewProfileService(backend ports.ProfileBackend, log zerolog.Logger) ports.ProfileService {
	return &profileService{backend: backend, log: log}
}

func (s *profileService) Get(ctx context.Context, bearer string) (*domain.Profile, error) {
	p, err := s.backend.Profile(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Save refuses to change an identifier the stored profile has already
// fixed. The backend enforces the same rule authoritatively.
func (s *profileService) Save(ctx context.Context, bearer string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	current, err := s.backend.Profile(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if err := current.CheckImmutable(upd); err != nil {
		return nil, err
	}

	updated, err := s.backend.UpdateProfile(ctx, bearer, upd)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	if !current.IsIDNumberLocked && updated.IsIDNumberLocked {
		s.log.Info().Str("email", logger.MaskEmail(updated.Email)).Msg("profile id number locked")
	}
	return updated, nil
}
