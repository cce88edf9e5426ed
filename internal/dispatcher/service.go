package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/interfaces/queue"
)

// Config sizes the worker pool.
type Config struct {
	// Workers is the number of shards, each drained by one goroutine.
	Workers int
	// QueueSize bounds every shard's backlog.
	QueueSize int
	// JobTimeout caps a single job run; zero disables the cap.
	JobTimeout time.Duration
}

// Dependencies groups the collaborators required by the dispatcher.
type Dependencies struct {
	Name   string
	Config Config
	Logger logger.Logger
}

// Stats reports lifetime counters.
type Stats struct {
	Enqueued int64
	Dropped  int64
	Failed   int64
	Panicked int64
}

// Service is a bounded, sharded worker pool. Jobs sharing a key land on the
// same shard and run in submission order; Enqueue never blocks.
type Service struct {
	name    string
	cfg     Config
	logger  logger.Logger
	shards  []chan queue.Job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	rr      atomic.Uint64
	baseCtx context.Context
	cancel  context.CancelFunc

	enqueued atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
	panicked atomic.Int64
}

var _ queue.Queue = (*Service)(nil)

var errJobRequired = errors.New("dispatcher: job run func is required")

// New builds the pool and starts its workers.
func New(deps Dependencies) (*Service, error) {
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Name == "" {
		deps.Name = "dispatcher"
	}
	if deps.Config.Workers <= 0 {
		deps.Config.Workers = 4
	}
	if deps.Config.QueueSize <= 0 {
		deps.Config.QueueSize = 256
	}
	if deps.Config.JobTimeout < 0 {
		return nil, fmt.Errorf("dispatcher: job timeout must be >= 0")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		name:    deps.Name,
		cfg:     deps.Config,
		logger:  deps.Logger.With(logger.Field{Key: "pool", Value: deps.Name}),
		shards:  make([]chan queue.Job, deps.Config.Workers),
		baseCtx: ctx,
		cancel:  cancel,
	}
	for i := range s.shards {
		s.shards[i] = make(chan queue.Job, deps.Config.QueueSize)
	}
	for i := range s.shards {
		s.wg.Add(1)
		go s.work(s.shards[i])
	}
	return s, nil
}

// Enqueue schedules job without blocking. The caller's ctx is not propagated
// to the job: jobs outlive the request that scheduled them.
func (s *Service) Enqueue(_ context.Context, job queue.Job) error {
	if job.Run == nil {
		return errJobRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return queue.ErrClosed
	}
	select {
	case s.shards[s.shardFor(job.Key)] <- job:
		s.enqueued.Add(1)
		return nil
	default:
		s.dropped.Add(1)
		return queue.ErrFull
	}
}

// Close stops intake and waits for queued jobs to finish. When ctx expires
// first, in-flight jobs are cancelled and ctx.Err() is returned.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, shard := range s.shards {
		close(shard)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// Stats returns a snapshot of the pool counters.
func (s *Service) Stats() Stats {
	return Stats{
		Enqueued: s.enqueued.Load(),
		Dropped:  s.dropped.Load(),
		Failed:   s.failed.Load(),
		Panicked: s.panicked.Load(),
	}
}

func (s *Service) shardFor(key string) int {
	n := len(s.shards)
	if key == "" {
		return int(s.rr.Add(1) % uint64(n))
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func (s *Service) work(jobs <-chan queue.Job) {
	defer s.wg.Done()
	for job := range jobs {
		s.run(job)
	}
}

func (s *Service) run(job queue.Job) {
	ctx := s.baseCtx
	if s.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			s.panicked.Add(1)
			s.logger.Error("dispatcher job panicked",
				logger.Field{Key: "job", Value: job.Name},
				logger.Field{Key: "key", Value: job.Key},
				logger.Field{Key: "panic", Value: r},
			)
		}
	}()
	if err := job.Run(ctx); err != nil {
		s.failed.Add(1)
		s.logger.Warn("dispatcher job failed",
			logger.Field{Key: "job", Value: job.Name},
			logger.Field{Key: "key", Value: job.Key},
			logger.Field{Key: "error", Value: err},
		)
	}
}
