package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Backend performs the actual compute for a job. Translate is called from
// worker goroutines and must be safe for concurrent use.
type Backend interface {
	Load(spec ModelSpec) (Model, error)
	Translate(ctx context.Context, model Model, text string) (string, error)
}

// Config sizes the worker pool.
type Config struct {
	Workers   int
	QueueSize int
}

type job struct {
	id       string
	model    Model
	text     string
	callback Callback
	queued   time.Time
}

// Service is the asynchronous engine: a fixed pool of workers draining a
// bounded queue of jobs. Submitting blocks while the queue is full.
type Service struct {
	backend Backend
	logger  zerolog.Logger
	workers int

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

// NewService starts the worker pool. Workers <= 0 uses one worker per CPU;
// QueueSize <= 0 uses four slots per worker.
func NewService(backend Backend, cfg Config, logger zerolog.Logger) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("engine backend is nil")
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 4 * workers
	}

	s := &Service{
		backend: backend,
		logger:  logger.With().Str("component", "engine").Logger(),
		workers: workers,
		jobs:    make(chan job, queueSize),
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.work(i)
	}

	s.logger.Debug().Int("workers", workers).Int("queue_size", queueSize).Msg("engine service started")
	return s, nil
}

// Workers reports the pool size.
func (s *Service) Workers() int {
	if s == nil {
		return 0
	}
	return s.workers
}

// LoadModel constructs a model through the backend.
func (s *Service) LoadModel(spec ModelSpec) (Model, error) {
	if s == nil || s.backend == nil {
		return nil, fmt.Errorf("engine service is not initialized")
	}
	if s.logger.GetLevel() <= zerolog.TraceLevel {
		if rendered, err := spec.Config.YAML(); err == nil {
			s.logger.Trace().Str("model", spec.Name).Str("config", rendered).Msg("loading model")
		}
	}
	model, err := s.backend.Load(spec)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", spec.Name, err)
	}
	return model, nil
}

// Translate queues one job. The callback is invoked exactly once.
func (s *Service) Translate(model Model, text string, callback Callback) {
	if callback == nil {
		callback = func(Response) {}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		callback(Response{Err: ErrServiceClosed})
		return
	}

	s.jobs <- job{
		id:       uuid.NewString(),
		model:    model,
		text:     text,
		callback: callback,
		queued:   time.Now(),
	}
}

// Close stops accepting jobs, lets queued jobs finish and waits for workers.
func (s *Service) Close() {
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Debug().Msg("engine service stopped")
}

func (s *Service) work(worker int) {
	defer s.wg.Done()
	for j := range s.jobs {
		s.run(worker, j)
	}
}

func (s *Service) run(worker int, j job) {
	started := time.Now()
	resp := s.compute(j)

	event := s.logger.Debug()
	if resp.Err != nil {
		event = s.logger.Warn().Err(resp.Err)
	}
	event.
		Str("job_id", j.id).
		Str("model", modelName(j.model)).
		Int("worker", worker).
		Dur("queued", started.Sub(j.queued)).
		Dur("latency", time.Since(started)).
		Msg("engine job finished")

	j.callback(resp)
}

func (s *Service) compute(j job) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{Err: fmt.Errorf("engine job %s panicked: %v", j.id, r)}
		}
	}()

	if j.model == nil {
		return Response{Err: fmt.Errorf("engine job %s has no model", j.id)}
	}
	text, err := s.backend.Translate(context.Background(), j.model, j.text)
	if err != nil {
		return Response{Err: err}
	}
	return Response{Text: text}
}

func modelName(model Model) string {
	if model == nil {
		return ""
	}
	return model.Name()
}
