package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/courtrank/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a game is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "game-1")

			Convey("Then it is new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same game is recorded twice", func() {
			d.SeenAndRecord(ctx, "game-1")
			seen := d.SeenAndRecord(ctx, "game-1")

			Convey("Then the second is a duplicate", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a recorded game is unrecorded", func() {
			d.SeenAndRecord(ctx, "game-1")
			d.Unrecord(ctx, "game-1")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "game-1"), ShouldBeFalse)
			})
		})

		Convey("When an unknown game is unrecorded", func() {
			d.SeenAndRecord(ctx, "game-1")
			d.Unrecord(ctx, "game-2")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a deduper bounded to three games", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("game-%d", i))
		}

		Convey("When a fourth game arrives", func() {
			d.SeenAndRecord(ctx, "game-4")

			Convey("Then the oldest game is forgotten", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "game-2"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "game-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "game-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "game-1"), ShouldBeFalse)
			})
		})

		Convey("When the oldest game is unrecorded first", func() {
			d.Unrecord(ctx, "game-1")
			d.SeenAndRecord(ctx, "game-4")

			Convey("Then no eviction is needed", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "game-2"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("game-%d", i))
		}

		Convey("Then nothing is evicted", func() {
			So(d.Size(), ShouldEqual, 1000)
			So(d.SeenAndRecord(ctx, "game-0"), ShouldBeTrue)
		})
	})

	Convey("Given concurrent submitters", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("game-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each game is new exactly once", func() {
			So(fresh, ShouldEqual, 100)
			So(d.Size(), ShouldEqual, 100)
		})
	})
}
