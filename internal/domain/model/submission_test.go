package model_test

import (
	"testing"

	"eco_missions/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSubmissionTransitions(t *testing.T) {
	all := []model.SubmissionStatus{
		model.SubmissionIdle,
		model.SubmissionUploading,
		model.SubmissionProcessing,
		model.SubmissionAccepted,
		model.SubmissionRejected,
	}

	Convey("Given the submission state machine", t, func() {
		Convey("Only forward edges are allowed", func() {
			So(model.SubmissionIdle.CanTransition(model.SubmissionUploading), ShouldBeTrue)
			So(model.SubmissionUploading.CanTransition(model.SubmissionProcessing), ShouldBeTrue)
			So(model.SubmissionProcessing.CanTransition(model.SubmissionAccepted), ShouldBeTrue)
			So(model.SubmissionProcessing.CanTransition(model.SubmissionRejected), ShouldBeTrue)
		})

		Convey("No edge skips a stage or moves backwards", func() {
			So(model.SubmissionIdle.CanTransition(model.SubmissionProcessing), ShouldBeFalse)
			So(model.SubmissionIdle.CanTransition(model.SubmissionAccepted), ShouldBeFalse)
			So(model.SubmissionUploading.CanTransition(model.SubmissionIdle), ShouldBeFalse)
			So(model.SubmissionUploading.CanTransition(model.SubmissionAccepted), ShouldBeFalse)
			So(model.SubmissionProcessing.CanTransition(model.SubmissionUploading), ShouldBeFalse)
		})

		Convey("Terminal states have no outgoing edges at all", func() {
			for _, terminal := range []model.SubmissionStatus{model.SubmissionAccepted, model.SubmissionRejected} {
				So(terminal.Terminal(), ShouldBeTrue)
				for _, next := range all {
					So(terminal.CanTransition(next), ShouldBeFalse)
				}
			}
		})

		Convey("Non-terminal states report as such", func() {
			So(model.SubmissionIdle.Terminal(), ShouldBeFalse)
			So(model.SubmissionUploading.Terminal(), ShouldBeFalse)
			So(model.SubmissionProcessing.Terminal(), ShouldBeFalse)
		})
	})
}
