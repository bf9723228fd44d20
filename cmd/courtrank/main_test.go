package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/courtrank/internal/adapters/http/api"
	"github.com/okian/courtrank/internal/config"
	"github.com/okian/courtrank/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestConfigWiring(t *testing.T) {
	_ = logger.Init()

	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("COURTRANK_ADDR", ":8080")
		t.Setenv("COURTRANK_QUEUE_SIZE", "1000")
		t.Setenv("COURTRANK_WORKER_COUNT", "4")
		t.Setenv("COURTRANK_EDGE_POLICY", "accumulate")

		convey.Convey("Then the loaded config builds a service", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.GameQueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)

			svc, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc, convey.ShouldNotBeNil)
			convey.So(svc.GetStats()["workerCount"], convey.ShouldEqual, 4)
		})
	})

	convey.Convey("Given an unknown edge policy", t, func() {
		cfg := config.New()
		cfg.EdgePolicy = "weighted"

		convey.Convey("Then no service is built", func() {
			svc, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(svc, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given an empty address", t, func() {
		t.Setenv("COURTRANK_ADDR", "")

		convey.Convey("Then configuration loading fails", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestSetupLogging(t *testing.T) {
	convey.Convey("Given a JSON format and an invalid level", t, func() {
		cfg := config.New()
		cfg.LogFormat = "json"
		cfg.LogLevel = "loud"

		convey.Convey("Then logging still initializes", func() {
			convey.So(setupLogging(context.Background(), cfg), convey.ShouldBeNil)
			convey.So(func() { logger.Get() }, convey.ShouldNotPanic)
		})
	})

	convey.Convey("Given an unknown format", t, func() {
		cfg := config.New()
		cfg.LogFormat = "xml"

		convey.Convey("Then setup fails", func() {
			convey.So(setupLogging(context.Background(), cfg), convey.ShouldNotBeNil)
		})
	})

	_ = logger.Init()
}

func TestSeededServer(t *testing.T) {
	_ = logger.Init()

	convey.Convey("Given a service seeded from a CSV outcome log", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.WorkerCount = 2
		svc, err := newService(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)

		path := writeSeed(t, "winner,loser\nDuke,North Carolina\nVirginia,Duke\nClemson,\n")
		convey.So(seed(ctx, svc, path), convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, svc, cfg.MaxRankingsLimit)

		convey.Convey("Then the rankings route serves the seeded teams", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rankings", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var entries []api.Entry
			convey.So(json.Unmarshal(rec.Body.Bytes(), &entries), convey.ShouldBeNil)
			convey.So(len(entries), convey.ShouldEqual, 3)
			convey.So(entries[0].Team, convey.ShouldEqual, "virginia")
		})

		convey.Convey("Then the docs routes are mounted", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})
	})

	convey.Convey("Given a seed file that does not exist", t, func() {
		svc, err := newService(config.New(), logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then seeding fails", func() {
			err := seed(context.Background(), svc, filepath.Join(t.TempDir(), "missing.csv"))
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then an empty path is a no-op", func() {
			convey.So(seed(context.Background(), svc, ""), convey.ShouldBeNil)
			convey.So(svc.GetStats()["storedGames"], convey.ShouldEqual, 0)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	_ = logger.Init()

	convey.Convey("Given the background metrics updaters", t, func() {
		svc, err := newService(config.New(), logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then they return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
