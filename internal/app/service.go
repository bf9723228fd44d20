// Package service wires ingestion, ranking and the published snapshot into
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	gamequeue "github.com/okian/courtrank/internal/adapters/mq/queue"
	workerpool "github.com/okian/courtrank/internal/adapters/mq/worker"
	"github.com/okian/courtrank/internal/adapters/repository"
	"github.com/okian/courtrank/internal/domain/dedupe"
	"github.com/okian/courtrank/internal/domain/model"
	"github.com/okian/courtrank/internal/domain/outcome"
	"github.com/okian/courtrank/internal/domain/ranking"
	"github.com/okian/courtrank/internal/domain/types"
	"github.com/okian/courtrank/pkg/logger"
	"github.com/okian/courtrank/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	games     *outcome.Store
	rankings  repository.Store
	deduper   dedupe.Deduper
	queue     *gamequeue.InMemoryQueue
	pool      *workerpool.Pool
	rebuilder *workerpool.Rebuilder

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	rebuildInterval time.Duration
	rankingOpts     []ranking.Option

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued games.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many game IDs are remembered for idempotency.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRebuildInterval sets how often the ranking is rebuilt when new games
// have arrived.
func WithRebuildInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.rebuildInterval = d
		}
	}
}

// WithRankingOptions sets the edge policy and PageRank parameters.
func WithRankingOptions(opts ...ranking.Option) Option {
	return func(s *Service) {
		s.rankingOpts = append(s.rankingOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. The outcome store and the published ranking
// exist immediately so the service can be seeded before Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       10_000,
		dedupeSize:      dedupe.DefaultMaxSize,
		rebuildInterval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.games = outcome.NewStore(nil)
	s.rankings = repository.NewSnapshotStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	s.rebuilder = s.newRebuilder()
	return s
}

func (s *Service) newRebuilder() *workerpool.Rebuilder {
	opts := append([]ranking.Option{ranking.WithLogger(s.logger.Named("ranking"))}, s.rankingOpts...)
	return workerpool.NewRebuilder(s.games, s.rankings,
		workerpool.WithInterval(s.rebuildInterval),
		workerpool.WithRankingOptions(opts...),
		workerpool.WithRebuilderLogger(s.logger.Named("rebuilder")),
	)
}

func (s *Service) currentRebuilder() *workerpool.Rebuilder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rebuilder
}

// Start launches the ingest workers and the rebuild loop. Seeded games are
// ranked before Start returns.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting ranking service...")

	if s.games.Version() != s.rankings.Version() {
		if _, err := s.rebuilder.Rebuild(ctx); err != nil {
			s.logger.Warn(ctx, "initial ranking failed", logger.Error(err))
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.rebuilder = s.newRebuilder()

	s.queue = gamequeue.NewInMemoryQueue(gamequeue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.games)
	s.pool.Start(runCtx)
	go s.rebuilder.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("rebuildInterval", s.rebuildInterval),
	)
	return nil
}

// Stop drains queued games, stops the rebuild loop and publishes a final
// ranking covering everything that was ingested.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping ranking service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.rebuilder.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "rebuilder shutdown", logger.Error(err))
	}
	s.cancel()

	if s.games.Version() != s.rankings.Version() {
		if _, err := s.rebuilder.Rebuild(ctx); err != nil {
			s.logger.Warn(ctx, "final ranking failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

// Seed appends complete outcomes from log to the store and returns how many
// were kept. The ranking picks them up on the next rebuild.
func (s *Service) Seed(ctx context.Context, log outcome.Log) int {
	n := s.games.AppendLog(ctx, log)
	for i := n; i < len(log); i++ {
		metrics.RecordGameDiscarded("incomplete")
	}
	metrics.UpdateGamesStored(s.games.Len())
	s.logger.Info(ctx, "seeded games", logger.Int("kept", n), logger.Int("dropped", len(log)-n))
	return n
}

// SeenAndRecord reports whether a game id was already submitted and records
// it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordGameDuplicate()
	}
	return seen
}

// Unrecord forgets a game id, allowing it to be submitted again.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered game ids.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue submits a game for asynchronous ingestion. Returns false on
// backpressure or when the service is not running.
func (s *Service) Enqueue(ctx context.Context, g model.Game) bool {
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()

	if !started {
		s.logger.Warn(ctx, "game rejected, service not running", logger.String("game_id", g.GameID))
		return false
	}

	metrics.RecordGameReceived()
	s.logger.Debug(ctx, "enqueueing game",
		logger.String("game_id", g.GameID),
		logger.String("winner", g.Winner),
		logger.String("loser", g.Loser),
	)
	return q.Enqueue(ctx, g)
}

// Rankings returns the first n entries of the published ranking.
func (s *Service) Rankings(ctx context.Context, n int, normalize bool) ([]ranking.Entry, error) {
	entries, err := s.rankings.TopN(ctx, n, normalize)
	if err != nil {
		return nil, fmt.Errorf("rankings: %w", err)
	}
	return entries, nil
}

// Rank returns the position and score of a team.
func (s *Service) Rank(ctx context.Context, team string) (ranking.Entry, error) {
	entry, err := s.rankings.Rank(ctx, team)
	if err != nil {
		return ranking.Entry{}, fmt.Errorf("rank %s: %w", team, err)
	}
	return entry, nil
}

// Versus compares two teams in the published ranking.
func (s *Service) Versus(ctx context.Context, a, b string) types.Matchup {
	return s.rankings.Versus(ctx, a, b)
}

// Score returns a team's raw score, 0 when unknown.
func (s *Service) Score(ctx context.Context, team string) float64 {
	return s.rankings.Score(ctx, team)
}

// Rebuild ranks every stored game now and publishes the result.
func (s *Service) Rebuild(ctx context.Context) (types.Summary, error) {
	if _, err := s.currentRebuilder().Rebuild(ctx); err != nil {
		return s.rankings.Summary(ctx), err
	}
	return s.rankings.Summary(ctx), nil
}

// Summary describes the published ranking.
func (s *Service) Summary(ctx context.Context) types.Summary {
	return s.rankings.Summary(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	summary := s.rankings.Summary(ctx)
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"seenGames":     s.deduper.Size(),
		"storedGames":   s.games.Len(),
		"storeVersion":  s.games.Version(),
		"rankedVersion": summary.Version,
		"totalTeams":    summary.Teams,
		"edges":         summary.Edges,
		"iterations":    summary.Iterations,
		"policy":        summary.Policy,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}
	metrics.UpdateGamesStored(s.games.Len())
	metrics.UpdateRankedTeams(summary.Teams)
	return stats
}
