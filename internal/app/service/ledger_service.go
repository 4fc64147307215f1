package service

import (
	"context"
	"log"

	"eco_missions/internal/common"
	"eco_missions/internal/domain/repository"
	"eco_missions/internal/platform/metrics"
)

// LedgerService is the only path through which coin balances change.
type LedgerService struct {
	ledgerRepo repository.LedgerRepository
}

func NewLedgerService(ledgerRepo repository.LedgerRepository) *LedgerService {
	return &LedgerService{ledgerRepo: ledgerRepo}
}

// Credit applies a reward for an accepted submission. The amount must be a
// non-negative integer. Idempotency is keyed on the submission ID, not the
// call: retrying after a crash or a duplicate completion check cannot credit
// twice. Returns the participant's new balance.
func (s *LedgerService) Credit(ctx context.Context, userID, submissionID string, amount int) (int, error) {
	if amount < 0 {
		return 0, common.Errorf("credit amount must be non-negative: %w", common.ErrValidation)
	}
	if userID == "" || submissionID == "" {
		return 0, common.Errorf("user and submission identifiers are required: %w", common.ErrValidation)
	}

	balance, applied, err := s.ledgerRepo.Credit(ctx, userID, submissionID, amount)
	if err != nil {
		return 0, common.Errorf("failed to credit ledger: %w", err)
	}
	if applied {
		metrics.CoinsCredited.Add(float64(amount))
		log.Printf("Credited %d coins to user %s for submission %s (balance now %d)", amount, userID, submissionID, balance)
	} else {
		log.Printf("WARN: Duplicate credit for submission %s ignored (balance %d)", submissionID, balance)
	}
	return balance, nil
}

// Balance returns a participant's current coin balance.
func (s *LedgerService) Balance(ctx context.Context, userID string) (int, error) {
	return s.ledgerRepo.Balance(ctx, userID)
}
