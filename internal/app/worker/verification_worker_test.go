package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eco_missions/internal/app/service"
	"eco_missions/internal/app/worker"
	"eco_missions/internal/common"
	"eco_missions/internal/domain/model"
	"eco_missions/internal/domain/repository"
	"eco_missions/internal/domain/verify"

	. "github.com/smartystreets/goconvey/convey"
)

type fixture struct {
	subs   *repository.MemorySubmissionRepository
	events *repository.MemoryEventRepository
	ledger *repository.MemoryLedgerRepository
	svc    *service.LedgerService
}

func newFixture(ctx context.Context) *fixture {
	f := &fixture{
		subs:   repository.NewMemorySubmissionRepository(),
		events: repository.NewMemoryEventRepository(),
		ledger: repository.NewMemoryLedgerRepository(),
	}
	f.svc = service.NewLedgerService(f.ledger)
	f.events.Create(ctx, &model.Event{
		ID: "event-1", Name: "Beach Cleanup", Date: time.Now().Add(time.Hour), CoinsReward: 50,
	})
	return f
}

func (f *fixture) newSubmission(ctx context.Context) *model.Submission {
	sub := &model.Submission{
		ID: "sub-1", EventID: "event-1", UserID: "user-1",
		MediaRef: "proof.jpg", Status: model.SubmissionUploading,
	}
	f.subs.Create(ctx, sub)
	return sub
}

func (f *fixture) newWorker(v verify.Verifier, maxAttempts int) *worker.VerificationWorker {
	return worker.NewVerificationWorker(nil, f.subs, f.events, f.svc, v, worker.Config{
		UploadTick:   time.Millisecond,
		ProgressStep: 25,
		MaxAttempts:  maxAttempts,
	})
}

func TestProcessSubmissionAccepted(t *testing.T) {
	ctx := context.Background()

	Convey("Given an uploading submission for a reward-50 event", t, func() {
		f := newFixture(ctx)
		f.newSubmission(ctx)
		w := f.newWorker(verify.StubVerifier{}, 3)

		Convey("When the worker runs it to completion", func() {
			So(w.ProcessSubmission(ctx, "sub-1"), ShouldBeNil)

			sub, err := f.subs.FindByID(ctx, "sub-1")
			So(err, ShouldBeNil)

			Convey("The submission is accepted with the event's reward", func() {
				So(sub.Status, ShouldEqual, model.SubmissionAccepted)
				So(sub.Progress, ShouldEqual, 100)
				So(sub.Result, ShouldNotBeNil)
				So(sub.Result.Earnings, ShouldEqual, 50)
				So(sub.Result.Message, ShouldEqual, verify.AcceptedMessage)
			})

			Convey("The ledger is credited exactly 50", func() {
				balance, err := f.ledger.Balance(ctx, "user-1")
				So(err, ShouldBeNil)
				So(balance, ShouldEqual, 50)
			})

			Convey("Running the completion again changes nothing", func() {
				So(w.ProcessSubmission(ctx, "sub-1"), ShouldBeNil)
				balance, err := f.ledger.Balance(ctx, "user-1")
				So(err, ShouldBeNil)
				So(balance, ShouldEqual, 50) // 50, not 100
			})
		})
	})
}

func TestProcessSubmissionRejected(t *testing.T) {
	ctx := context.Background()

	Convey("Given a verifier that rejects", t, func() {
		f := newFixture(ctx)
		f.newSubmission(ctx)
		rejecting := verify.VerifierFunc(func(context.Context, *model.Submission, *model.Event) (verify.Outcome, error) {
			return verify.Outcome{Accepted: false, Message: verify.RejectedMessage}, nil
		})
		w := f.newWorker(rejecting, 3)

		Convey("The submission goes terminal with zero earnings and no credit", func() {
			So(w.ProcessSubmission(ctx, "sub-1"), ShouldBeNil)

			sub, err := f.subs.FindByID(ctx, "sub-1")
			So(err, ShouldBeNil)
			So(sub.Status, ShouldEqual, model.SubmissionRejected)
			So(sub.Result.Earnings, ShouldEqual, 0)
			So(sub.Result.Message, ShouldEqual, verify.RejectedMessage)

			balance, err := f.ledger.Balance(ctx, "user-1")
			So(err, ShouldBeNil)
			So(balance, ShouldEqual, 0)
		})
	})
}

func TestProcessSubmissionTransientFailure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a verifier that fails once then accepts", t, func() {
		f := newFixture(ctx)
		f.newSubmission(ctx)

		calls := 0
		flaky := verify.VerifierFunc(func(_ context.Context, _ *model.Submission, event *model.Event) (verify.Outcome, error) {
			calls++
			if calls == 1 {
				return verify.Outcome{}, errors.New("verifier unreachable")
			}
			return verify.Outcome{Accepted: true, Earnings: event.CoinsReward, Message: verify.AcceptedMessage}, nil
		})
		w := f.newWorker(flaky, 3)

		Convey("The first run leaves the submission in processing for a retry", func() {
			err := w.ProcessSubmission(ctx, "sub-1")
			So(err, ShouldWrap, common.ErrServiceUnavailable)

			sub, ferr := f.subs.FindByID(ctx, "sub-1")
			So(ferr, ShouldBeNil)
			So(sub.Status, ShouldEqual, model.SubmissionProcessing)

			Convey("The retry accepts and credits exactly once", func() {
				So(w.ProcessSubmission(ctx, "sub-1"), ShouldBeNil)

				sub, err := f.subs.FindByID(ctx, "sub-1")
				So(err, ShouldBeNil)
				So(sub.Status, ShouldEqual, model.SubmissionAccepted)

				balance, err := f.ledger.Balance(ctx, "user-1")
				So(err, ShouldBeNil)
				So(balance, ShouldEqual, 50)
			})
		})
	})

	Convey("Given a verifier that always fails", t, func() {
		f := newFixture(ctx)
		f.newSubmission(ctx)
		broken := verify.VerifierFunc(func(context.Context, *model.Submission, *model.Event) (verify.Outcome, error) {
			return verify.Outcome{}, errors.New("verifier down")
		})
		w := f.newWorker(broken, 2)

		Convey("After the attempt cap the submission is rejected with a generic message", func() {
			err := w.ProcessSubmission(ctx, "sub-1")
			So(err, ShouldWrap, common.ErrServiceUnavailable)

			So(w.ProcessSubmission(ctx, "sub-1"), ShouldBeNil)

			sub, ferr := f.subs.FindByID(ctx, "sub-1")
			So(ferr, ShouldBeNil)
			So(sub.Status, ShouldEqual, model.SubmissionRejected)
			So(sub.Result.Message, ShouldEqual, verify.FailureMessage)

			balance, berr := f.ledger.Balance(ctx, "user-1")
			So(berr, ShouldBeNil)
			So(balance, ShouldEqual, 0)
		})
	})
}

func TestProcessSubmissionUnknown(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unknown submission ID", t, func() {
		f := newFixture(ctx)
		w := f.newWorker(verify.StubVerifier{}, 3)

		Convey("Processing surfaces NotFound", func() {
			err := w.ProcessSubmission(ctx, "missing")
			So(err, ShouldWrap, common.ErrNotFound)
		})
	})
}
