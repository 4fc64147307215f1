package service

import (
	"context"
	"testing"

	"eco_missions/internal/common"
	"eco_missions/internal/domain/repository"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLedgerCredit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ledger", t, func() {
		svc := NewLedgerService(repository.NewMemoryLedgerRepository())

		Convey("A credit increases the balance and returns it", func() {
			balance, err := svc.Credit(ctx, "user-1", "sub-1", 50)
			So(err, ShouldBeNil)
			So(balance, ShouldEqual, 50)
		})

		Convey("Crediting the same submission twice applies once", func() {
			_, err := svc.Credit(ctx, "user-1", "sub-1", 50)
			So(err, ShouldBeNil)
			balance, err := svc.Credit(ctx, "user-1", "sub-1", 50)
			So(err, ShouldBeNil)
			So(balance, ShouldEqual, 50)
		})

		Convey("Distinct submissions each credit", func() {
			_, err := svc.Credit(ctx, "user-1", "sub-1", 50)
			So(err, ShouldBeNil)
			balance, err := svc.Credit(ctx, "user-1", "sub-2", 30)
			So(err, ShouldBeNil)
			So(balance, ShouldEqual, 80)
		})

		Convey("Credits for different participants do not interfere", func() {
			_, err := svc.Credit(ctx, "user-1", "sub-1", 50)
			So(err, ShouldBeNil)
			_, err = svc.Credit(ctx, "user-2", "sub-2", 70)
			So(err, ShouldBeNil)

			b1, err := svc.Balance(ctx, "user-1")
			So(err, ShouldBeNil)
			So(b1, ShouldEqual, 50)
			b2, err := svc.Balance(ctx, "user-2")
			So(err, ShouldBeNil)
			So(b2, ShouldEqual, 70)
		})

		Convey("A negative amount fails validation", func() {
			_, err := svc.Credit(ctx, "user-1", "sub-1", -1)
			So(err, ShouldWrap, common.ErrValidation)
		})

		Convey("A zero amount is allowed and changes nothing", func() {
			balance, err := svc.Credit(ctx, "user-1", "sub-1", 0)
			So(err, ShouldBeNil)
			So(balance, ShouldEqual, 0)
		})
	})
}
