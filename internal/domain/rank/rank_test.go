package rank_test

import (
	"testing"

	"eco_missions/internal/domain/model"
	"eco_missions/internal/domain/rank"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRank(t *testing.T) {
	Convey("Given participants with balances 450, 380, 380, 320 in join order", t, func() {
		entries := []model.LeaderboardEntry{
			{UserID: "u1", Username: "ahmed", Coins: 450},
			{UserID: "u2", Username: "erika", Coins: 380},
			{UserID: "u3", Username: "mohamed", Coins: 380},
			{UserID: "u4", Username: "fatma", Coins: 320},
		}

		Convey("When ranked", func() {
			ranked := rank.Rank(entries)

			Convey("Order is descending by coins with ties kept in join order", func() {
				So(ranked[0].UserID, ShouldEqual, "u1")
				So(ranked[1].UserID, ShouldEqual, "u2")
				So(ranked[2].UserID, ShouldEqual, "u3")
				So(ranked[3].UserID, ShouldEqual, "u4")
			})

			Convey("Rank numbers are dense and 1-based", func() {
				for i, entry := range ranked {
					So(entry.Rank, ShouldEqual, i+1)
				}
			})

			Convey("The input slice is untouched", func() {
				So(entries[0].Rank, ShouldEqual, 0)
				So(entries[1].UserID, ShouldEqual, "u2")
			})
		})
	})

	Convey("Given balances in arbitrary order", t, func() {
		entries := []model.LeaderboardEntry{
			{UserID: "low", Coins: 10},
			{UserID: "high", Coins: 900},
			{UserID: "mid", Coins: 500},
		}

		Convey("The projection is purely a function of balances", func() {
			ranked := rank.Rank(entries)
			So(ranked[0].UserID, ShouldEqual, "high")
			So(ranked[1].UserID, ShouldEqual, "mid")
			So(ranked[2].UserID, ShouldEqual, "low")
		})
	})

	Convey("Given no participants", t, func() {
		Convey("Ranking returns an empty slice", func() {
			So(rank.Rank(nil), ShouldBeEmpty)
		})
	})
}
