package common_test

import (
	"fmt"
	"net/http"
	"testing"

	"eco_missions/internal/common"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHTTPStatusFromError(t *testing.T) {
	Convey("Given the domain error taxonomy", t, func() {
		cases := map[error]int{
			nil:                          http.StatusOK,
			common.ErrNotFound:           http.StatusNotFound,
			common.ErrUnauthorized:       http.StatusUnauthorized,
			common.ErrForbidden:          http.StatusForbidden,
			common.ErrValidation:         http.StatusBadRequest,
			common.ErrBadRequest:         http.StatusBadRequest,
			common.ErrConflict:           http.StatusConflict,
			common.ErrExpired:            http.StatusGone,
			common.ErrServiceUnavailable: http.StatusServiceUnavailable,
		}

		Convey("Each sentinel maps to its status code", func() {
			for err, want := range cases {
				So(common.HTTPStatusFromError(err), ShouldEqual, want)
			}
		})

		Convey("Wrapped sentinels map the same way", func() {
			err := fmt.Errorf("event 42 started yesterday: %w", common.ErrExpired)
			So(common.HTTPStatusFromError(err), ShouldEqual, http.StatusGone)
		})

		Convey("Unknown errors are internal server errors", func() {
			So(common.HTTPStatusFromError(fmt.Errorf("boom")), ShouldEqual, http.StatusInternalServerError)
		})
	})
}
