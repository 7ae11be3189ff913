package service

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/telemetry"
)

// ChannelService handles channel management.
type ChannelService struct {
	channelRepo ChannelRepositoryInterface
	uuidGen     UUIDGenerator
}

func NewChannelService(channelRepo ChannelRepositoryInterface) *ChannelService {
	return &ChannelService{
		channelRepo: channelRepo,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

func NewChannelServiceWithUUIDGen(channelRepo ChannelRepositoryInterface, uuidGen UUIDGenerator) *ChannelService {
	return &ChannelService{
		channelRepo: channelRepo,
		uuidGen:     uuidGen,
	}
}

type CreateChannelInput struct {
	Name        string
	Description string
}

// Create creates a new channel. Channel names are unique.
func (s *ChannelService) Create(ctx context.Context, input CreateChannelInput) (*domain.Channel, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChannelService.Create", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	if _, err := s.channelRepo.GetByName(ctx, input.Name); err == nil {
		return nil, domain.ErrChannelAlreadyExists
	} else if !errors.Is(err, domain.ErrChannelNotFound) {
		return nil, err
	}

	channel := &domain.Channel{
		ID:          s.uuidGen.NewString(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := domain.ValidateChannel(channel); err != nil {
		return nil, err
	}

	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, err
	}

	return channel, nil
}

// Ensure returns the channel with the given name, creating it if missing.
// Used at startup to bootstrap an initial channel.
func (s *ChannelService) Ensure(ctx context.Context, name string) (*domain.Channel, error) {
	channel, err := s.channelRepo.GetByName(ctx, name)
	if err == nil {
		return channel, nil
	}
	if !errors.Is(err, domain.ErrChannelNotFound) {
		return nil, err
	}
	return s.Create(ctx, CreateChannelInput{Name: name})
}

func (s *ChannelService) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	return s.channelRepo.GetByID(ctx, id)
}

func (s *ChannelService) List(ctx context.Context) ([]*domain.Channel, error) {
	return s.channelRepo.List(ctx)
}
