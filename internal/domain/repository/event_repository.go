package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eco_missions/internal/common"
	"eco_missions/internal/domain/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)

	// AddParticipant inserts a membership row; inserting an existing pair is a
	// no-op, making join idempotent.
	AddParticipant(ctx context.Context, eventID, userID string) error
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
	CountParticipants(ctx context.Context, eventID string) (int, error)
	ListJoinedEventIDs(ctx context.Context, userID string) ([]string, error)

	// ListStandings returns an event's participants with their current coin
	// balances, ordered by join time (insertion order for ranking ties).
	ListStandings(ctx context.Context, eventID string) ([]model.LeaderboardEntry, error)
}

type pgEventRepository struct {
	db *sql.DB
}

func NewPgEventRepository(db *sql.DB) EventRepository {
	return &pgEventRepository{db: db}
}

func (r *pgEventRepository) Create(ctx context.Context, event *model.Event) error {
	query := `INSERT INTO events (id, slug, name, description, date, location, longitude, latitude, creator_id, coins_reward)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Slug, event.Name, event.Description, event.Date, event.Location,
		event.Coordinates[0], event.Coordinates[1], event.CreatorID, event.CoinsReward,
	)
	if err != nil {
		return fmt.Errorf("pgEventRepository.Create: %w", err)
	}
	return nil
}

func (r *pgEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	query := `SELECT id, slug, name, description, date, location, longitude, latitude, creator_id, coins_reward, created_at
	          FROM events WHERE id = $1`
	event := &model.Event{}
	var lng, lat float64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.Slug, &event.Name, &event.Description, &event.Date, &event.Location,
		&lng, &lat, &event.CreatorID, &event.CoinsReward, &event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgEventRepository.FindByID: %w", err)
	}
	event.Coordinates = []float64{lng, lat}
	return event, nil
}

func (r *pgEventRepository) List(ctx context.Context) ([]model.Event, error) {
	// Participant counts are derived from membership, never from a stored
	// counter, so the displayed count cannot drift.
	query := `SELECT e.id, e.slug, e.name, e.description, e.date, e.location, e.longitude, e.latitude,
	                 e.creator_id, e.coins_reward, e.created_at,
	                 (SELECT COUNT(*) FROM event_participants ep WHERE ep.event_id = e.id) AS participants
	          FROM events e ORDER BY e.date ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgEventRepository.List: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var event model.Event
		var lng, lat float64
		if err := rows.Scan(
			&event.ID, &event.Slug, &event.Name, &event.Description, &event.Date, &event.Location,
			&lng, &lat, &event.CreatorID, &event.CoinsReward, &event.CreatedAt, &event.Participants,
		); err != nil {
			return nil, fmt.Errorf("pgEventRepository.List scan: %w", err)
		}
		event.Coordinates = []float64{lng, lat}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *pgEventRepository) AddParticipant(ctx context.Context, eventID, userID string) error {
	query := `INSERT INTO event_participants (event_id, user_id)
	          VALUES ($1, $2) ON CONFLICT (event_id, user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return fmt.Errorf("pgEventRepository.AddParticipant: %w", err)
	}
	return nil
}

func (r *pgEventRepository) IsParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgEventRepository.IsParticipant: %w", err)
	}
	return exists, nil
}

func (r *pgEventRepository) CountParticipants(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM event_participants WHERE event_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgEventRepository.CountParticipants: %w", err)
	}
	return count, nil
}

func (r *pgEventRepository) ListJoinedEventIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT event_id FROM event_participants WHERE user_id = $1 ORDER BY joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgEventRepository.ListJoinedEventIDs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgEventRepository.ListJoinedEventIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgEventRepository) ListStandings(ctx context.Context, eventID string) ([]model.LeaderboardEntry, error) {
	query := `SELECT u.id, u.username, u.email, u.coins
	          FROM event_participants ep
	          JOIN users u ON u.id = ep.user_id
	          WHERE ep.event_id = $1
	          ORDER BY ep.joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("pgEventRepository.ListStandings: %w", err)
	}
	defer rows.Close()

	var standings []model.LeaderboardEntry
	for rows.Next() {
		var entry model.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.Email, &entry.Coins); err != nil {
			return nil, fmt.Errorf("pgEventRepository.ListStandings scan: %w", err)
		}
		standings = append(standings, entry)
	}
	return standings, rows.Err()
}
