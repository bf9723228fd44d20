package outcome_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/courtrank/internal/domain/outcome"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOutcome(t *testing.T) {
	Convey("Given outcomes with missing sides", t, func() {
		log := outcome.Log{
			{Winner: "a", Loser: "b"},
			{Winner: "", Loser: "c"},
			{Winner: "d", Loser: ""},
			{Winner: "b", Loser: "e"},
		}

		Convey("Then only complete outcomes are kept, in order", func() {
			So(log.Complete(), ShouldResemble, outcome.Log{
				{Winner: "a", Loser: "b"},
				{Winner: "b", Loser: "e"},
			})
		})

		Convey("Then teams from incomplete outcomes are never listed", func() {
			So(log.Teams(), ShouldResemble, []string{"b", "a", "e"})
		})
	})
}

func TestStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := outcome.NewStore(nil)

		Convey("Then it starts at version zero", func() {
			So(s.Len(), ShouldEqual, 0)
			So(s.Version(), ShouldEqual, 0)
		})

		Convey("When appending a complete and an incomplete outcome", func() {
			So(s.Append(ctx, outcome.Outcome{Winner: "duke", Loser: "unc"}), ShouldBeTrue)
			So(s.Append(ctx, outcome.Outcome{Winner: "", Loser: "unc"}), ShouldBeFalse)

			Convey("Then only the complete one is stored", func() {
				So(s.Len(), ShouldEqual, 1)
				So(s.Version(), ShouldEqual, 1)
			})

			Convey("And snapshots are copies", func() {
				snap, version := s.Snapshot(ctx)
				So(version, ShouldEqual, 1)
				snap[0].Winner = "changed"
				again, _ := s.Snapshot(ctx)
				So(again[0].Winner, ShouldEqual, "duke")
			})
		})

		Convey("When appending a whole log", func() {
			n := s.AppendLog(ctx, outcome.Log{{Winner: "a", Loser: "b"}, {Winner: "a"}, {Winner: "c", Loser: "a"}})

			Convey("Then the complete outcomes are stored in one version bump", func() {
				So(n, ShouldEqual, 2)
				So(s.Len(), ShouldEqual, 2)
				So(s.Version(), ShouldEqual, 1)
			})
		})

		Convey("When many goroutines append concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					s.Append(ctx, outcome.Outcome{Winner: fmt.Sprintf("w%d", i), Loser: "l"})
				}(i)
			}
			wg.Wait()

			Convey("Then every outcome is stored", func() {
				So(s.Len(), ShouldEqual, 50)
				So(s.Version(), ShouldEqual, 50)
			})
		})
	})

	Convey("Given a seeded store", t, func() {
		s := outcome.NewStore(outcome.Log{{Winner: "a", Loser: "b"}, {Loser: "c"}})

		Convey("Then incomplete seed rows are skipped", func() {
			So(s.Len(), ShouldEqual, 1)
			So(s.Version(), ShouldEqual, 1)
		})
	})
}
