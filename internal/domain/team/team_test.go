package team_test

import (
	"testing"

	"github.com/okian/courtrank/internal/domain/team"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw team names from schedule tables", t, func() {
		Convey("When the name carries a poll ranking", func() {
			So(team.Normalize("Duke (3)"), ShouldEqual, "duke")
			So(team.Normalize("North Carolina (12)"), ShouldEqual, "north-carolina")
		})

		Convey("When the name has surrounding whitespace", func() {
			So(team.Normalize("  Gonzaga \n"), ShouldEqual, "gonzaga")
		})

		Convey("When the name uses non-breaking spaces", func() {
			So(team.Normalize("Saint\u00a0Mary's"), ShouldEqual, "saint-mary's")
			So(team.Normalize("Houston\u00a0(1)"), ShouldEqual, "houston")
		})

		Convey("When the name is already an identifier", func() {
			So(team.Normalize("michigan-state"), ShouldEqual, "michigan-state")
		})

		Convey("When equivalent spellings are normalized", func() {
			So(team.Normalize("UConn (5)"), ShouldEqual, team.Normalize("uconn"))
		})

		Convey("When the name is empty or blank", func() {
			So(team.Normalize(""), ShouldEqual, "")
			So(team.Normalize("   "), ShouldEqual, "")
		})

		Convey("When normalizing is repeated", func() {
			once := team.Normalize("Texas A&M (20)")
			So(team.Normalize(once), ShouldEqual, once)
		})
	})
}

func TestNormalizeAll(t *testing.T) {
	Convey("Given a teams file content", t, func() {
		names := []string{"Duke", "", "  ", "Kansas (7)"}

		Convey("Then blanks are dropped and the rest normalized", func() {
			So(team.NormalizeAll(names), ShouldResemble, []string{"duke", "kansas"})
		})
	})
}
