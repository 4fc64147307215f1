// Package verify defines the proof-of-participation decision function.
// Real media verification lives outside this service; the default verifier
// mirrors the platform's current stubbed outcome.
package verify

import (
	"context"

	"eco_missions/internal/domain/model"
)

const (
	AcceptedMessage = "Great work! Your submission has been verified."
	RejectedMessage = "Unfortunately, your submission did not meet our criteria."
	FailureMessage  = "An error occurred while submitting your work."
)

// Outcome is the verdict for one submission.
type Outcome struct {
	Accepted bool
	Earnings int
	Message  string
}

// Verifier decides whether a submission's proof is acceptable.
type Verifier interface {
	Verify(ctx context.Context, sub *model.Submission, event *model.Event) (Outcome, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, sub *model.Submission, event *model.Event) (Outcome, error)

func (f VerifierFunc) Verify(ctx context.Context, sub *model.Submission, event *model.Event) (Outcome, error) {
	return f(ctx, sub, event)
}

// StubVerifier accepts every submission and awards the event's configured
// reward. It stands in for the external media verification service.
type StubVerifier struct{}

func (StubVerifier) Verify(_ context.Context, _ *model.Submission, event *model.Event) (Outcome, error) {
	return Outcome{
		Accepted: true,
		Earnings: event.CoinsReward,
		Message:  AcceptedMessage,
	}, nil
}
