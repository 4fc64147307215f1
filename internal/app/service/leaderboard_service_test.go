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

func TestEventLeaderboard(t *testing.T) {
	ctx := context.Background()

	Convey("Given an event with participants holding different balances", t, func() {
		users := repository.NewMemoryUserRepository()
		events := repository.NewMemoryEventRepository()
		events.Users = users
		svc := NewLeaderboardService(events)

		So(events.Create(ctx, &model.Event{ID: "event-1", Name: "Cleanup", Date: time.Now().Add(time.Hour)}), ShouldBeNil)

		seed := []struct {
			id    string
			coins int
		}{
			{"u1", 450}, {"u2", 380}, {"u3", 380}, {"u4", 320},
		}
		for _, s := range seed {
			So(users.Create(ctx, &model.User{ID: s.id, Username: s.id, Email: s.id + "@example.com", Coins: s.coins}), ShouldBeNil)
			So(events.AddParticipant(ctx, "event-1", s.id), ShouldBeNil)
		}

		Convey("The leaderboard is descending with ties in join order", func() {
			entries, err := svc.EventLeaderboard(ctx, "event-1")
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 4)
			So(entries[0].UserID, ShouldEqual, "u1")
			So(entries[1].UserID, ShouldEqual, "u2")
			So(entries[2].UserID, ShouldEqual, "u3")
			So(entries[3].UserID, ShouldEqual, "u4")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[3].Rank, ShouldEqual, 4)
		})

		Convey("An unknown event is not found", func() {
			_, err := svc.EventLeaderboard(ctx, "missing")
			So(err, ShouldWrap, common.ErrNotFound)
		})
	})
}
