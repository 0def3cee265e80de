// Package worker provides an asynchronous worker pool for recording model
// usage after a response has been delivered.
//
// The pool decouples accounting from the HTTP hot path so that recording
// never adds latency to a client response.
package worker

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lecternhq/lectern/pkg/llm"
	"github.com/lecternhq/lectern/pkg/usage"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	RequestID string
	Route     string
	ModelID   string
	Usage     llm.Usage
	Duration  time.Duration
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Totals receives the recorded usage.
	Totals *usage.Accumulator

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes usage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("usage job queued",
			zap.String("route", job.Route),
			zap.String("model", job.ModelID),
		)
		return true
	default:
		p.logger.Error("usage job not queued, queue full, job dropped",
			zap.String("route", job.Route),
			zap.String("model", job.ModelID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("usage worker stopped", zap.Uint("worker_id", id))
}

// processJob records the job's usage and logs the completed invocation.
func (p *Pool) processJob(job Job) {
	p.config.Totals.Record(job.ModelID, job.Usage)

	p.logger.Info("model invocation recorded",
		zap.String("request_id", job.RequestID),
		zap.String("route", job.Route),
		zap.String("model", job.ModelID),
		zap.Int("input_tokens", job.Usage.InputTokens),
		zap.Int("output_tokens", job.Usage.OutputTokens),
		zap.Duration("duration", job.Duration),
	)
}
