package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/courtrank/internal/adapters/repository"
	"github.com/okian/courtrank/internal/domain/outcome"
	"github.com/okian/courtrank/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func engine(t *testing.T, log outcome.Log) *ranking.Engine {
	t.Helper()
	e, err := ranking.New(context.Background(), log)
	if err != nil {
		t.Fatalf("build ranking: %v", err)
	}
	return e
}

var season = outcome.Log{
	{Winner: "duke", Loser: "unc"},
	{Winner: "duke", Loser: "wake-forest"},
	{Winner: "unc", Loser: "wake-forest"},
	{Winner: "virginia", Loser: "duke"},
	{Winner: "virginia", Loser: "unc"},
	{Winner: "wake-forest", Loser: "clemson"},
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with nothing published", t, func() {
		s := repository.NewSnapshotStore()

		Convey("Then it answers like an empty ranking", func() {
			So(s.Count(ctx), ShouldEqual, 0)
			So(s.Version(), ShouldEqual, 0)
			So(s.Score(ctx, "duke"), ShouldEqual, 0.0)
			top, err := s.TopN(ctx, 10, false)
			So(err, ShouldBeNil)
			So(top, ShouldBeEmpty)
			_, err = s.Rank(ctx, "duke")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(s.Versus(ctx, "duke", "unc").Winner, ShouldEqual, "unc")
			So(s.Summary(ctx).BuiltAtMS, ShouldEqual, 0)
		})
	})

	Convey("Given a published ranking", t, func() {
		s := repository.NewSnapshotStore()
		e := engine(t, season)
		s.Publish(ctx, e, 7)

		Convey("Then reads come from it", func() {
			So(s.Count(ctx), ShouldEqual, 5)
			So(s.Version(), ShouldEqual, 7)
			So(s.Score(ctx, "virginia"), ShouldEqual, e.Rank("virginia"))
		})

		Convey("Then TopN respects the limit", func() {
			top, err := s.TopN(ctx, 2, false)
			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 2)
			So(top[0].Team, ShouldEqual, "virginia")
			So(top[0].Position, ShouldEqual, 1)

			all, err := s.TopN(ctx, 100, false)
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 5)
		})

		Convey("Then normalized TopN scales against the full ranking", func() {
			top, err := s.TopN(ctx, 2, true)
			So(err, ShouldBeNil)
			So(top[0].Score, ShouldEqual, 1.0)
			So(top[1].Score, ShouldBeLessThan, 1.0)
			So(top[1].Score, ShouldBeGreaterThan, 0.0)
		})

		Convey("Then an invalid limit is rejected", func() {
			_, err := s.TopN(ctx, 0, false)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("Then Rank reports position and score", func() {
			entry, err := s.Rank(ctx, "clemson")
			So(err, ShouldBeNil)
			So(entry.Position, ShouldEqual, 5)
			So(entry.Score, ShouldEqual, e.Rank("clemson"))

			_, err = s.Rank(ctx, "gonzaga")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then Versus carries both scores", func() {
			m := s.Versus(ctx, "clemson", "virginia")
			So(m.Winner, ShouldEqual, "virginia")
			So(m.ScoreA, ShouldEqual, e.Rank("clemson"))
			So(m.ScoreB, ShouldEqual, e.Rank("virginia"))
		})

		Convey("Then the summary describes the ranking", func() {
			sum := s.Summary(ctx)
			So(sum.Teams, ShouldEqual, 5)
			So(sum.Games, ShouldEqual, 6)
			So(sum.Policy, ShouldEqual, "collapse")
			So(sum.Version, ShouldEqual, 7)
			So(sum.BuiltAtMS, ShouldBeGreaterThan, 0)
		})

		Convey("When a nil engine is published", func() {
			s.Publish(ctx, nil, 8)

			Convey("Then the previous ranking stays", func() {
				So(s.Version(), ShouldEqual, 7)
				So(s.Count(ctx), ShouldEqual, 5)
			})
		})
	})

	Convey("Given a store created with an engine", t, func() {
		s := repository.NewSnapshotStore(repository.WithEngine(engine(t, season[:1]), 1))

		Convey("Then it is published immediately", func() {
			So(s.Count(ctx), ShouldEqual, 2)
			So(s.Version(), ShouldEqual, 1)
		})
	})

	Convey("Given readers racing a publisher", t, func() {
		s := repository.NewSnapshotStore()
		small := engine(t, season[:1])
		large := engine(t, season)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					if j%2 == 0 {
						s.Publish(ctx, small, uint64(j))
					} else {
						s.Publish(ctx, large, uint64(j))
					}
				}
			}()
		}
		counts := make(chan int, 800)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					top, _ := s.TopN(ctx, 100, false)
					counts <- len(top)
				}
			}()
		}
		wg.Wait()
		close(counts)

		Convey("Then every read sees a whole ranking", func() {
			for c := range counts {
				So(c, ShouldBeIn, []int{0, 2, 5})
			}
		})
	})
}
