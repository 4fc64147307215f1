package service

import (
	"context"
	"testing"
	"time"

	"eco_missions/internal/common"
	"eco_missions/internal/domain/model"
	"eco_missions/internal/domain/repository"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCreateSubmission(t *testing.T) {
	ctx := context.Background()

	Convey("Given a participant who joined an event", t, func() {
		users := repository.NewMemoryUserRepository()
		events := repository.NewMemoryEventRepository()
		events.Users = users
		subs := repository.NewMemorySubmissionRepository()
		svc := NewSubmissionService(subs, events, nil)

		So(users.Create(ctx, &model.User{ID: "user-1", Username: "ahmed", Email: "a@example.com"}), ShouldBeNil)
		So(events.Create(ctx, &model.Event{ID: "event-1", Name: "Cleanup", Date: time.Now().Add(time.Hour), CoinsReward: 50}), ShouldBeNil)
		So(events.AddParticipant(ctx, "event-1", "user-1"), ShouldBeNil)

		Convey("An empty media reference fails validation and creates nothing", func() {
			_, err := svc.CreateSubmission(ctx, "user-1", CreateSubmissionRequest{EventID: "event-1"})
			So(err, ShouldWrap, common.ErrValidation)

			_, err = subs.FindActive(ctx, "user-1", "event-1")
			So(err, ShouldWrap, common.ErrNotFound)
		})

		Convey("An unknown event is not found", func() {
			_, err := svc.CreateSubmission(ctx, "user-1", CreateSubmissionRequest{EventID: "nope", MediaRef: "proof.jpg"})
			So(err, ShouldWrap, common.ErrNotFound)
		})

		Convey("A non-member cannot submit", func() {
			So(users.Create(ctx, &model.User{ID: "outsider", Username: "out", Email: "o@example.com"}), ShouldBeNil)
			_, err := svc.CreateSubmission(ctx, "outsider", CreateSubmissionRequest{EventID: "event-1", MediaRef: "proof.jpg"})
			So(err, ShouldWrap, common.ErrForbidden)
		})

		Convey("A second submission while one is in flight conflicts", func() {
			So(subs.Create(ctx, &model.Submission{
				ID: "sub-1", EventID: "event-1", UserID: "user-1",
				MediaRef: "proof.jpg", Status: model.SubmissionUploading,
			}), ShouldBeNil)

			_, err := svc.CreateSubmission(ctx, "user-1", CreateSubmissionRequest{EventID: "event-1", MediaRef: "again.jpg"})
			So(err, ShouldWrap, common.ErrConflict)
		})
	})
}

func TestGetSubmission(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored submission", t, func() {
		subs := repository.NewMemorySubmissionRepository()
		svc := NewSubmissionService(subs, repository.NewMemoryEventRepository(), nil)

		So(subs.Create(ctx, &model.Submission{
			ID: "sub-1", EventID: "event-1", UserID: "user-1",
			MediaRef: "proof.jpg", Status: model.SubmissionProcessing, Progress: 100,
		}), ShouldBeNil)

		Convey("The owner can read it", func() {
			sub, err := svc.GetSubmission(ctx, "user-1", "sub-1")
			So(err, ShouldBeNil)
			So(sub.Status, ShouldEqual, model.SubmissionProcessing)
			So(sub.Progress, ShouldEqual, 100)
		})

		Convey("Another participant cannot", func() {
			_, err := svc.GetSubmission(ctx, "user-2", "sub-1")
			So(err, ShouldWrap, common.ErrForbidden)
		})

		Convey("An unknown submission is not found", func() {
			_, err := svc.GetSubmission(ctx, "user-1", "missing")
			So(err, ShouldWrap, common.ErrNotFound)
		})
	})
}
