package service

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
)

// ProfileRepositoryInterface defines the repository interface for profile
// persistence
type ProfileRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
}

// ProfileService handles user profile management.
type ProfileService struct {
	profileRepo ProfileRepositoryInterface
	uuidGen     UUIDGenerator
}

func NewProfileService(profileRepo ProfileRepositoryInterface) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

func NewProfileServiceWithUUIDGen(profileRepo ProfileRepositoryInterface, uuidGen UUIDGenerator) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		uuidGen:     uuidGen,
	}
}

// Create creates a profile. Usernames are unique.
func (s *ProfileService) Create(ctx context.Context, username string) (*domain.Profile, error) {
	if username == "" {
		return nil, domain.ErrMissingRequiredField
	}

	if _, err := s.profileRepo.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrProfileAlreadyExists
	} else if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}

	profile := &domain.Profile{
		ID:        s.uuidGen.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Ensure returns the profile with the given username, creating it if
// missing.
func (s *ProfileService) Ensure(ctx context.Context, username string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	return s.Create(ctx, username)
}

func (s *ProfileService) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

func (s *ProfileService) List(ctx context.Context) ([]*domain.Profile, error) {
	return s.profileRepo.List(ctx)
}
