package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eco_missions/internal/common"
	"eco_missions/internal/domain/model"
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)

	// FindActive returns the user's non-terminal submission for an event, or
	// common.ErrNotFound when none is in flight.
	FindActive(ctx context.Context, userID, eventID string) (*model.Submission, error)

	UpdateProgress(ctx context.Context, id string, progress int) error

	// Transition moves a submission from one status to the next. The update is
	// guarded on the current status so a stale or duplicate caller cannot move
	// the state machine backwards; a guard miss returns common.ErrConflict.
	Transition(ctx context.Context, id string, from, to model.SubmissionStatus) error

	// Finish records a terminal status together with its result payload, with
	// the same status guard as Transition.
	Finish(ctx context.Context, id string, from, to model.SubmissionStatus, earnings int, message string) error

	IncrementAttempts(ctx context.Context, id string) (int, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, event_id, user_id, media_ref, description, status, progress, attempts)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.EventID, sub.UserID, sub.MediaRef, sub.Description, sub.Status, sub.Progress, sub.Attempts,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT id, event_id, user_id, media_ref, description, status, progress, attempts,
	                 earnings, result_message, submitted_at, updated_at
	          FROM submissions WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *pgSubmissionRepository) FindActive(ctx context.Context, userID, eventID string) (*model.Submission, error) {
	query := `SELECT id, event_id, user_id, media_ref, description, status, progress, attempts,
	                 earnings, result_message, submitted_at, updated_at
	          FROM submissions
	          WHERE user_id = $1 AND event_id = $2 AND status NOT IN ($3, $4)
	          ORDER BY submitted_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, eventID, model.SubmissionAccepted, model.SubmissionRejected))
}

func (r *pgSubmissionRepository) scanOne(row *sql.Row) (*model.Submission, error) {
	sub := &model.Submission{}
	var earnings sql.NullInt64
	var message sql.NullString
	err := row.Scan(
		&sub.ID, &sub.EventID, &sub.UserID, &sub.MediaRef, &sub.Description, &sub.Status,
		&sub.Progress, &sub.Attempts, &earnings, &message, &sub.SubmittedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository scan: %w", err)
	}
	if message.Valid {
		sub.Result = &model.SubmissionResult{Earnings: int(earnings.Int64), Message: message.String}
	}
	return sub, nil
}

func (r *pgSubmissionRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	query := `UPDATE submissions SET progress = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, progress); err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateProgress: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) Transition(ctx context.Context, id string, from, to model.SubmissionStatus) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("invalid submission transition %s -> %s: %w", from, to, common.ErrConflict)
	}
	query := `UPDATE submissions SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Transition: %w", err)
	}
	return requireRow(res, from, to)
}

func (r *pgSubmissionRepository) Finish(ctx context.Context, id string, from, to model.SubmissionStatus, earnings int, message string) error {
	if !from.CanTransition(to) || !to.Terminal() {
		return fmt.Errorf("invalid terminal transition %s -> %s: %w", from, to, common.ErrConflict)
	}
	query := `UPDATE submissions SET status = $3, earnings = $4, result_message = $5, updated_at = NOW()
	          WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, earnings, message)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Finish: %w", err)
	}
	return requireRow(res, from, to)
}

func (r *pgSubmissionRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	query := `UPDATE submissions SET attempts = attempts + 1, updated_at = NOW() WHERE id = $1 RETURNING attempts`
	var attempts int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("pgSubmissionRepository.IncrementAttempts: %w", err)
	}
	return attempts, nil
}

func requireRow(res sql.Result, from, to model.SubmissionStatus) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("submission no longer in status %s (wanted -> %s): %w", from, to, common.ErrConflict)
	}
	return nil
}
