package service

import (
	"context"
	"errors"
	"log"

	"eco_missions/internal/common"
	"eco_missions/internal/domain/model"
	"eco_missions/internal/domain/repository"
	"eco_missions/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	eventRepo      repository.EventRepository
	rdb            *redis.Client
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	eventRepo repository.EventRepository,
	rdb *redis.Client,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		eventRepo:      eventRepo,
		rdb:            rdb,
	}
}

type CreateSubmissionRequest struct {
	EventID     string `json:"event_id"`
	MediaRef    string `json:"media_ref"`
	Description string `json:"description,omitempty"`
}

// CreateSubmission starts the verification workflow for one proof upload.
// A submission with no media reference never leaves idle; here that means it
// is rejected up front with a validation error. Only event participants may
// submit, and a participant can have at most one submission in flight per
// event.
func (s *SubmissionService) CreateSubmission(ctx context.Context, userID string, req CreateSubmissionRequest) (*model.Submission, error) {
	if req.MediaRef == "" {
		return nil, common.Errorf("a media reference is required to submit: %w", common.ErrValidation)
	}
	if req.EventID == "" {
		return nil, common.Errorf("event_id is required: %w", common.ErrValidation)
	}

	event, err := s.eventRepo.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	member, err := s.eventRepo.IsParticipant(ctx, event.ID, userID)
	if err != nil {
		return nil, common.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, common.Errorf("join the event before submitting work: %w", common.ErrForbidden)
	}

	if _, err := s.submissionRepo.FindActive(ctx, userID, event.ID); err == nil {
		return nil, common.Errorf("a submission is already in flight for this event: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.Errorf("failed to check in-flight submissions: %w", err)
	}

	submission := &model.Submission{
		ID:          uuid.NewString(),
		EventID:     event.ID,
		UserID:      userID,
		MediaRef:    req.MediaRef,
		Description: req.Description,
		Status:      model.SubmissionUploading, // Validated submit moves idle -> uploading
		Progress:    0,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, common.Errorf("failed to create submission: %w", err)
	}

	if err := s.rdb.LPush(ctx, config.AppConfig.VerificationQueueName, submission.ID).Err(); err != nil {
		return nil, common.Errorf("failed to push submission to verification queue: %w", err)
	}

	log.Printf("Submission %s created for event %s and queued for verification.", submission.ID, event.ID)
	return submission, nil
}

// GetSubmission returns a submission's current status, progress, and result.
// Only the owner may read it.
func (s *SubmissionService) GetSubmission(ctx context.Context, callerID, id string) (*model.Submission, error) {
	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.UserID != callerID {
		return nil, common.Errorf("submission belongs to another participant: %w", common.ErrForbidden)
	}
	return submission, nil
}
