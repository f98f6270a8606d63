package media

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/metrics"
)

// Deleter removes a stored object by its public location.
type Deleter interface {
	Delete(ctx context.Context, location string) error
}

// JanitorConfig controls the concurrency characteristics of the janitor.
type JanitorConfig struct {
	QueueSize     int
	Workers       int
	DeleteTimeout time.Duration
}

// Janitor deletes replaced or orphaned objects in the background.
type Janitor struct {
	store   Deleter
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan string
	wg     sync.WaitGroup
	once   sync.Once
}

// NewJanitor starts cfg.Workers goroutines that drain the deletion queue.
func NewJanitor(store Deleter, cfg JanitorConfig, logger *slog.Logger) *Janitor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DeleteTimeout <= 0 {
		cfg.DeleteTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &Janitor{
		store:   store,
		logger:  logger,
		timeout: cfg.DeleteTimeout,
		jobs:    make(chan string, cfg.QueueSize),
	}

	j.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go j.worker()
	}

	return j
}

// Enqueue schedules deletion of location. Empty locations are ignored.
func (j *Janitor) Enqueue(ctx context.Context, location string) error {
	if location == "" {
		return nil
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrJanitorClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.jobs <- location:
		metrics.MediaDeletionQueueDepth.Inc()
		return nil
	}
}

// Shutdown stops accepting work and waits for queued deletions to finish.
func (j *Janitor) Shutdown(ctx context.Context) error {
	j.once.Do(func() {
		j.mu.Lock()
		j.closed = true
		close(j.jobs)
		j.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (j *Janitor) worker() {
	defer j.wg.Done()

	for location := range j.jobs {
		metrics.MediaDeletionQueueDepth.Dec()
		j.handle(location)
	}
}

func (j *Janitor) handle(location string) {
	if j.store == nil {
		j.logger.Error("media janitor missing object store", "location", location)
		metrics.MediaDeletionsTotal.WithLabelValues("failed").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.store.Delete(ctx, location); err != nil {
		j.logger.Error("delete media object", "location", location, "error", err)
		metrics.MediaDeletionsTotal.WithLabelValues("failed").Inc()
		return
	}
	j.logger.Debug("deleted media object", "location", location)
	metrics.MediaDeletionsTotal.WithLabelValues("deleted").Inc()
}
