package service

import (
	"context"
	"time"

	"eco_missions/internal/common"
	"eco_missions/internal/domain/countdown"
	"eco_missions/internal/domain/model"
	"eco_missions/internal/domain/repository"
	"eco_missions/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type EventService struct {
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
	now       func() time.Time
}

func NewEventService(eventRepo repository.EventRepository, userRepo repository.UserRepository) *EventService {
	return &EventService{eventRepo: eventRepo, userRepo: userRepo, now: time.Now}
}

type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
	CreatorID   string    `json:"creator_id"`
	CoinsReward int       `json:"coins_reward"`
}

type JoinRequest struct {
	EventID string `json:"event_id"`
	// UserID is optional; when present it must match the verified caller.
	UserID string `json:"user_id,omitempty"`
}

// CreateEvent validates the request and persists a new event. The verified
// caller must be the declared creator.
func (s *EventService) CreateEvent(ctx context.Context, callerID string, req CreateEventRequest) (*model.Event, error) {
	if callerID != req.CreatorID {
		return nil, common.Errorf("caller is not the declared creator: %w", common.ErrUnauthorized)
	}
	if req.Name == "" || req.Location == "" {
		return nil, common.Errorf("name and location are required: %w", common.ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, common.Errorf("date is required: %w", common.ErrValidation)
	}
	if len(req.Coordinates) != 2 {
		return nil, common.Errorf("coordinates must be [longitude, latitude]: %w", common.ErrValidation)
	}
	if req.CoinsReward < 0 {
		return nil, common.Errorf("coins reward must be non-negative: %w", common.ErrValidation)
	}

	event := &model.Event{
		ID:          uuid.NewString(),
		Slug:        slug.Make(req.Name),
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Coordinates: req.Coordinates,
		CreatorID:   req.CreatorID,
		CoinsReward: req.CoinsReward,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, common.Errorf("failed to create event: %w", err)
	}
	event.Expired = countdown.IsExpired(event.Date, s.now())
	return event, nil
}

// ListEvents returns all events ascending by scheduled date, with derived
// expiry and participant counts filled in.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, common.Errorf("failed to list events: %w", err)
	}
	now := s.now()
	for i := range events {
		events[i].Expired = countdown.IsExpired(events[i].Date, now)
	}
	return events, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.eventRepo.CountParticipants(ctx, id)
	if err != nil {
		return nil, common.Errorf("failed to count participants: %w", err)
	}
	event.Participants = count
	event.Expired = countdown.IsExpired(event.Date, s.now())
	return event, nil
}

// Join adds the caller to an event's membership. The expiry gate uses the
// server clock, so a client with a skewed clock cannot join a started event.
// Joining twice is a no-op, not an error.
func (s *EventService) Join(ctx context.Context, callerID string, req JoinRequest) (*model.Event, error) {
	if req.EventID == "" {
		return nil, common.Errorf("event_id is required: %w", common.ErrValidation)
	}
	if req.UserID != "" && req.UserID != callerID {
		return nil, common.Errorf("cannot join on behalf of another participant: %w", common.ErrUnauthorized)
	}

	if _, err := s.userRepo.FindByID(ctx, callerID); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if countdown.IsExpired(event.Date, s.now()) {
		metrics.ExpiredJoinRejections.Inc()
		return nil, common.Errorf("event %s started at %s: %w", event.ID, event.Date, common.ErrExpired)
	}

	if err := s.eventRepo.AddParticipant(ctx, event.ID, callerID); err != nil {
		return nil, common.Errorf("failed to join event: %w", err)
	}

	count, err := s.eventRepo.CountParticipants(ctx, event.ID)
	if err != nil {
		return nil, common.Errorf("failed to count participants: %w", err)
	}
	event.Participants = count
	return event, nil
}

// UserEvents returns the identifiers of all events a participant has joined.
func (s *EventService) UserEvents(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListJoinedEventIDs(ctx, userID)
}
