package service

import (
	"context"

	"eco_missions/internal/domain/model"
	"eco_missions/internal/domain/rank"
	"eco_missions/internal/domain/repository"
)

type LeaderboardService struct {
	eventRepo repository.EventRepository
}

func NewLeaderboardService(eventRepo repository.EventRepository) *LeaderboardService {
	return &LeaderboardService{eventRepo: eventRepo}
}

// EventLeaderboard ranks an event's participants by current coin balance.
// The ordering is recomputed from balances on every call; nothing is cached.
func (s *LeaderboardService) EventLeaderboard(ctx context.Context, eventID string) ([]model.LeaderboardEntry, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	standings, err := s.eventRepo.ListStandings(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return rank.Rank(standings), nil
}
