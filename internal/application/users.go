package application

import (
	"context"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
)

func (s *Service) RegisterUser(ctx context.Context, p identity.Participant, profile domain.Profile) error {
	if err := requireIdentity(p, "participant"); err != nil {
		return err
	}
	return s.directory.Register(ctx, p, profile)
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.DirectoryEntry, domain.DecodeReport, error) {
	return s.directory.List(ctx)
}

func (s *Service) UserExists(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, domain.ErrInvalidInput
	}
	return s.directory.Exists(ctx, email)
}

func (s *Service) DisplayName(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", domain.ErrInvalidInput
	}
	return s.directory.DisplayName(ctx, email)
}
