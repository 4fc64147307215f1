package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eco_missions/internal/common"
)

type LedgerRepository interface {
	// Credit applies a coin credit for a submission at most once. The ledger
	// entry is keyed on the submission ID, so a retried call after a crash or
	// a duplicate completion check is a no-op that returns the current
	// balance with applied=false. The entry insert and the balance bump
	// commit in one transaction.
	Credit(ctx context.Context, userID, submissionID string, amount int) (balance int, applied bool, err error)

	Balance(ctx context.Context, userID string) (int, error)
}

type pgLedgerRepository struct {
	db *sql.DB
}

func NewPgLedgerRepository(db *sql.DB) LedgerRepository {
	return &pgLedgerRepository{db: db}
}

func (r *pgLedgerRepository) Credit(ctx context.Context, userID, submissionID string, amount int) (int, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("pgLedgerRepository.Credit begin: %w", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO ledger_entries (user_id, submission_id, amount)
	           VALUES ($1, $2, $3) ON CONFLICT (submission_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, insert, userID, submissionID, amount)
	if err != nil {
		return 0, false, fmt.Errorf("pgLedgerRepository.Credit insert: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("pgLedgerRepository.Credit rows affected: %w", err)
	}

	var balance int
	if inserted == 0 {
		// Already credited for this submission; report the current balance.
		if err := tx.QueryRowContext(ctx, `SELECT coins FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, false, common.ErrNotFound
			}
			return 0, false, fmt.Errorf("pgLedgerRepository.Credit balance read: %w", err)
		}
		return balance, false, tx.Commit()
	}

	bump := `UPDATE users SET coins = coins + $2, updated_at = NOW() WHERE id = $1 RETURNING coins`
	if err := tx.QueryRowContext(ctx, bump, userID, amount).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, common.ErrNotFound
		}
		return 0, false, fmt.Errorf("pgLedgerRepository.Credit bump: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("pgLedgerRepository.Credit commit: %w", err)
	}
	return balance, true, nil
}

func (r *pgLedgerRepository) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := r.db.QueryRowContext(ctx, `SELECT coins FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("pgLedgerRepository.Balance: %w", err)
	}
	return balance, nil
}
