package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/courtrank/internal/adapters/mq/queue"
	"github.com/okian/courtrank/internal/adapters/mq/worker"
	"github.com/okian/courtrank/internal/adapters/repository"
	"github.com/okian/courtrank/internal/domain/model"
	"github.com/okian/courtrank/internal/domain/outcome"
	"github.com/okian/courtrank/internal/domain/pagerank"
	"github.com/okian/courtrank/internal/domain/ranking"
	logging "github.com/okian/courtrank/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// mockQueue hands out a channel the test controls.
type mockQueue struct {
	games chan queue.Game
	once  sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{games: make(chan queue.Game, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Game { return mq.games }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.games) })
	return nil
}

// rejectingStore refuses every outcome.
type rejectingStore struct{}

func (rejectingStore) Append(context.Context, outcome.Outcome) bool { return false }
func (rejectingStore) Len() int                                     { return 0 }

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a worker reading from a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mq := newMockQueue()
		store := outcome.NewStore(nil)
		w := worker.NewInMemoryWorker(mq, store, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When complete games arrive", func() {
			mq.games <- model.Game{GameID: "g1", Winner: "Duke (3)", Loser: "North Carolina"}
			mq.games <- model.Game{GameID: "g2", Winner: "UNC", Loser: "Duke"}

			convey.Convey("Then normalized outcomes are stored", func() {
				convey.So(waitFor(func() bool { return store.Len() == 2 }), convey.ShouldBeTrue)
				log, version := store.Snapshot(ctx)
				convey.So(log[0], convey.ShouldResemble, outcome.Outcome{Winner: "duke", Loser: "north-carolina"})
				convey.So(version, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When an incomplete game arrives", func() {
			mq.games <- model.Game{GameID: "g1", Winner: "Duke", Loser: ""}
			mq.games <- model.Game{GameID: "g2", Winner: "Duke", Loser: "UNC"}

			convey.Convey("Then it is dropped and later games still land", func() {
				convey.So(waitFor(func() bool { return store.Len() == 1 }), convey.ShouldBeTrue)
				convey.So(store.Version(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then Run returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(waitFor(func() bool {
					select {
					case <-w.Done():
						return true
					default:
						return false
					}
				}), convey.ShouldBeTrue)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a store that rejects outcomes", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mq := newMockQueue()
		w := worker.NewInMemoryWorker(mq, rejectingStore{})
		go w.Run(ctx)
		mq.games <- model.Game{GameID: "g1", Winner: "Duke", Loser: "UNC"}
		_ = mq.Close()

		convey.Convey("Then the worker keeps running until the queue drains", func() {
			convey.So(waitFor(func() bool {
				select {
				case <-w.Done():
					return true
				default:
					return false
				}
			}), convey.ShouldBeTrue)
		})
	})
}

func TestPool(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a pool over a real queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		store := outcome.NewStore(nil)
		p := worker.NewPool(4, q, store)
		p.Start(ctx)

		for i := 0; i < 50; i++ {
			q.Enqueue(ctx, model.Game{GameID: string(rune('a' + i%26)), Winner: "Duke", Loser: "UNC"})
		}

		convey.Convey("When it shuts down", func() {
			err := p.Shutdown(context.Background())

			convey.Convey("Then every queued game was drained", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Size(), convey.ShouldEqual, 4)
				convey.So(store.Len(), convey.ShouldEqual, 50)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		p := worker.NewPool(0, newMockQueue(), outcome.NewStore(nil))

		convey.Convey("Then one worker per CPU is used", func() {
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}

func TestRebuilder(t *testing.T) {
	_ = logging.Init()
	ctx := context.Background()

	convey.Convey("Given a store with games and an empty repository", t, func() {
		store := outcome.NewStore(outcome.Log{
			{Winner: "duke", Loser: "unc"},
			{Winner: "virginia", Loser: "duke"},
		})
		repo := repository.NewSnapshotStore()
		r := worker.NewRebuilder(store, repo)

		convey.Convey("When a rebuild is forced", func() {
			e, err := r.Rebuild(ctx)

			convey.Convey("Then the ranking is published at the store version", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Len(), convey.ShouldEqual, 3)
				convey.So(repo.Count(ctx), convey.ShouldEqual, 3)
				convey.So(repo.Version(), convey.ShouldEqual, store.Version())
			})
		})

		convey.Convey("When the loop runs and a game is appended", func() {
			rctx, cancel := context.WithCancel(ctx)
			defer cancel()
			r := worker.NewRebuilder(store, repo, worker.WithInterval(10*time.Millisecond))
			go r.Run(rctx)

			convey.So(waitFor(func() bool { return repo.Count(ctx) == 3 }), convey.ShouldBeTrue)
			store.Append(ctx, outcome.Outcome{Winner: "clemson", Loser: "virginia"})

			convey.Convey("Then the new team is published", func() {
				convey.So(waitFor(func() bool { return repo.Count(ctx) == 4 }), convey.ShouldBeTrue)
				convey.So(repo.Version(), convey.ShouldEqual, store.Version())
				convey.So(r.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given rankings that cannot converge", t, func() {
		store := outcome.NewStore(outcome.Log{
			{Winner: "duke", Loser: "unc"},
			{Winner: "virginia", Loser: "duke"},
		})
		prev, err := ranking.New(ctx, outcome.Log{{Winner: "a", Loser: "b"}})
		convey.So(err, convey.ShouldBeNil)
		repo := repository.NewSnapshotStore(repository.WithEngine(prev, 0))
		r := worker.NewRebuilder(store, repo, worker.WithRankingOptions(ranking.WithMaxIterations(1)))

		convey.Convey("When a rebuild is forced", func() {
			_, err := r.Rebuild(ctx)

			convey.Convey("Then the previous ranking stays published", func() {
				convey.So(errors.Is(err, pagerank.ErrNotConverged), convey.ShouldBeTrue)
				convey.So(repo.Count(ctx), convey.ShouldEqual, 2)
				convey.So(repo.Version(), convey.ShouldEqual, 0)
			})
		})
	})
}
