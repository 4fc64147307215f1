package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eco_missions/internal/app/service"
	"eco_missions/internal/common"
	"eco_missions/internal/domain/model"
	"eco_missions/internal/domain/repository"
	"eco_missions/internal/domain/verify"
	"eco_missions/internal/platform/config"
	"eco_missions/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Config carries the queue and workflow tuning for the worker. Kept explicit
// (rather than read from globals deep inside) so tests can run the workflow
// with a fast tick.
type Config struct {
	QueueName    string
	LockKey      string
	LockTTL      time.Duration
	UploadTick   time.Duration
	ProgressStep int
	MaxAttempts  int
}

// ConfigFromApp builds the worker config from the loaded application config.
func ConfigFromApp() Config {
	c := config.AppConfig
	return Config{
		QueueName:    c.VerificationQueueName,
		LockKey:      c.VerificationLockKey,
		LockTTL:      time.Duration(c.VerificationLockTTLSeconds) * time.Second,
		UploadTick:   time.Duration(c.UploadTickMs) * time.Millisecond,
		ProgressStep: c.UploadProgressStep,
		MaxAttempts:  c.MaxVerifyAttempts,
	}
}

// VerificationWorker drives queued submissions through the upload and
// verification stages to a terminal status, crediting the ledger on
// acceptance.
type VerificationWorker struct {
	rdb            *redis.Client
	submissionRepo repository.SubmissionRepository
	eventRepo      repository.EventRepository
	ledger         *service.LedgerService
	verifier       verify.Verifier
	cfg            Config
}

func NewVerificationWorker(
	rdb *redis.Client,
	subRepo repository.SubmissionRepository,
	eventRepo repository.EventRepository,
	ledger *service.LedgerService,
	verifier verify.Verifier,
	cfg Config,
) *VerificationWorker {
	return &VerificationWorker{
		rdb:            rdb,
		submissionRepo: subRepo,
		eventRepo:      eventRepo,
		ledger:         ledger,
		verifier:       verifier,
		cfg:            cfg,
	}
}

func (w *VerificationWorker) Start(ctx context.Context) {
	log.Println("Verification worker started, listening to queue:", w.cfg.QueueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Verification worker stopping...")
			return
		default:
			popped, err := w.rdb.BRPop(ctx, 0*time.Second, w.cfg.QueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", w.cfg.QueueName, err)
				time.Sleep(5 * time.Second)
				continue
			}

			// popped is an array: [queueName, value]
			if len(popped) < 2 || popped[1] == "" {
				log.Println("WARN: BRPop returned empty submission ID.")
				continue
			}
			submissionID := popped[1]
			log.Printf("Worker picked up submission ID: %s", submissionID)

			w.processWithLock(ctx, submissionID)
		}
	}
}

func (w *VerificationWorker) processWithLock(ctx context.Context, submissionID string) {
	lockValue := uuid.NewString()

	ok, err := w.rdb.SetNX(ctx, w.cfg.LockKey, lockValue, w.cfg.LockTTL).Result()
	if err != nil {
		log.Printf("ERROR: Failed to attempt lock acquisition for submission %s: %v", submissionID, err)
		w.requeue(ctx, submissionID)
		return
	}
	if !ok {
		log.Printf("INFO: Could not acquire verification lock for submission %s, another worker is busy. Re-queueing.", submissionID)
		w.requeue(ctx, submissionID)
		return
	}

	defer func() {
		// Release the lock only if we still hold it (compare-and-delete).
		script := redis.NewScript(`
            if redis.call("get", KEYS[1]) == ARGV[1] then
                return redis.call("del", KEYS[1])
            else
                return 0
            end
        `)
		deleted, err := script.Run(ctx, w.rdb, []string{w.cfg.LockKey}, lockValue).Result()
		if err != nil {
			log.Printf("ERROR: Failed to release lock for submission %s: %v", submissionID, err)
		} else if deleted.(int64) != 1 {
			log.Printf("WARN: Did not release lock for submission %s; it might have expired.", submissionID)
		}
	}()

	if err := w.ProcessSubmission(ctx, submissionID); err != nil {
		if errors.Is(err, common.ErrServiceUnavailable) {
			log.Printf("INFO: Submission %s hit a transient failure, re-queueing: %v", submissionID, err)
			w.requeue(ctx, submissionID)
			return
		}
		log.Printf("ERROR: Failed to process submission %s: %v", submissionID, err)
	}
}

func (w *VerificationWorker) requeue(ctx context.Context, submissionID string) {
	if err := w.rdb.RPush(ctx, w.cfg.QueueName, submissionID).Err(); err != nil {
		log.Printf("ERROR: Failed to re-queue submission %s: %v", submissionID, err)
	} else {
		log.Printf("INFO: Submission %s re-queued.", submissionID)
	}
}

// ProcessSubmission runs one submission as far toward a terminal status as it
// can. It is safe to call again for the same submission: terminal submissions
// are left alone, an already-processing submission skips the upload stage, and
// the ledger credit is keyed on the submission ID so re-entry cannot credit
// twice. A returned error wrapping common.ErrServiceUnavailable means the
// submission was deliberately left in processing for a retry.
func (w *VerificationWorker) ProcessSubmission(ctx context.Context, submissionID string) error {
	sub, err := w.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("fetch submission %s: %w", submissionID, err)
	}
	if sub.Status.Terminal() {
		log.Printf("WARN: Submission %s already terminal (status: %s). Ignoring.", sub.ID, sub.Status)
		return nil
	}

	event, err := w.eventRepo.FindByID(ctx, sub.EventID)
	if err != nil {
		return fmt.Errorf("fetch event %s for submission %s: %w", sub.EventID, sub.ID, err)
	}

	if sub.Status == model.SubmissionUploading {
		if err := w.runUpload(ctx, sub); err != nil {
			return err
		}
		if err := w.submissionRepo.Transition(ctx, sub.ID, model.SubmissionUploading, model.SubmissionProcessing); err != nil {
			return fmt.Errorf("transition submission %s to processing: %w", sub.ID, err)
		}
		sub.Status = model.SubmissionProcessing
	}

	attempts, err := w.submissionRepo.IncrementAttempts(ctx, sub.ID)
	if err != nil {
		return fmt.Errorf("bump attempts for submission %s: %w", sub.ID, err)
	}

	outcome, err := w.verifier.Verify(ctx, sub, event)
	if err != nil {
		if attempts >= w.cfg.MaxAttempts {
			log.Printf("WARN: Submission %s failed verification %d times, rejecting: %v", sub.ID, attempts, err)
			return w.finish(ctx, sub.ID, model.SubmissionRejected, 0, verify.FailureMessage)
		}
		return fmt.Errorf("verification attempt %d for submission %s failed: %v: %w", attempts, sub.ID, err, common.ErrServiceUnavailable)
	}

	if !outcome.Accepted {
		return w.finish(ctx, sub.ID, model.SubmissionRejected, 0, outcome.Message)
	}

	// The credit must land before the submission is visibly accepted. If the
	// status write below fails the submission stays in processing and is
	// retried; the submission-keyed ledger entry makes the retry's credit a
	// no-op.
	if _, err := w.ledger.Credit(ctx, sub.UserID, sub.ID, outcome.Earnings); err != nil {
		return fmt.Errorf("credit for submission %s failed: %v: %w", sub.ID, err, common.ErrServiceUnavailable)
	}

	return w.finish(ctx, sub.ID, model.SubmissionAccepted, outcome.Earnings, outcome.Message)
}

// runUpload advances the upload progress in fixed increments on a periodic
// tick until it reaches 100. Progress only ever moves forward; a submission
// resumed after a crash picks up from its persisted progress.
func (w *VerificationWorker) runUpload(ctx context.Context, sub *model.Submission) error {
	progress := sub.Progress
	ticker := time.NewTicker(w.cfg.UploadTick)
	defer ticker.Stop()

	for progress < 100 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			progress += w.cfg.ProgressStep
			if progress > 100 {
				progress = 100
			}
			if err := w.submissionRepo.UpdateProgress(ctx, sub.ID, progress); err != nil {
				return fmt.Errorf("update progress for submission %s: %w", sub.ID, err)
			}
		}
	}
	sub.Progress = progress
	return nil
}

func (w *VerificationWorker) finish(ctx context.Context, submissionID string, status model.SubmissionStatus, earnings int, message string) error {
	if err := w.submissionRepo.Finish(ctx, submissionID, model.SubmissionProcessing, status, earnings, message); err != nil {
		return fmt.Errorf("finish submission %s as %s: %w", submissionID, status, err)
	}
	metrics.SubmissionsFinished.WithLabelValues(string(status)).Inc()
	log.Printf("Submission %s finished as %s (earnings: %d)", submissionID, status, earnings)
	return nil
}
