package model

import "time"

type SubmissionStatus string

const (
	SubmissionIdle       SubmissionStatus = "idle"
	SubmissionUploading  SubmissionStatus = "uploading"
	SubmissionProcessing SubmissionStatus = "processing"
	SubmissionAccepted   SubmissionStatus = "accepted"
	SubmissionRejected   SubmissionStatus = "rejected"
)

// Terminal reports whether the status is an end state. Terminal submissions
// never transition again.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionAccepted || s == SubmissionRejected
}

// CanTransition reports whether the forward-only state machine allows
// moving from s to next.
func (s SubmissionStatus) CanTransition(next SubmissionStatus) bool {
	switch s {
	case SubmissionIdle:
		return next == SubmissionUploading
	case SubmissionUploading:
		return next == SubmissionProcessing
	case SubmissionProcessing:
		return next == SubmissionAccepted || next == SubmissionRejected
	default:
		return false
	}
}

type Submission struct {
	ID          string            `json:"id"`
	EventID     string            `json:"event_id"`
	UserID      string            `json:"user_id"`
	MediaRef    string            `json:"media_ref"` // Opaque reference to the uploaded proof
	Description string            `json:"description,omitempty"`
	Status      SubmissionStatus  `json:"status"`
	Progress    int               `json:"progress"` // 0-100, meaningful while uploading
	Attempts    int               `json:"attempts"` // Verification attempts so far
	Result      *SubmissionResult `json:"result,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SubmissionResult is set exactly once, when the submission goes terminal.
type SubmissionResult struct {
	Earnings int    `json:"earnings"`
	Message  string `json:"message"`
}
