package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/history-importer/internal/service"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// Runner executes one import run.
type Runner interface {
	Run(ctx context.Context, req service.Request) (*service.Result, error)
}

// ImportQueue runs submitted imports one at a time on a single goroutine.
type ImportQueue struct {
	runner   Runner
	reporter *service.ProgressReporter
	logger   *zap.Logger
	jobs     chan service.Request

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewImportQueue builds a queue holding up to capacity pending runs.
func NewImportQueue(runner Runner, reporter *service.ProgressReporter, logger *zap.Logger, capacity int) *ImportQueue {
	if capacity <= 0 {
		capacity = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportQueue{
		runner:   runner,
		reporter: reporter,
		logger:   logger,
		jobs:     make(chan service.Request, capacity),
		done:     make(chan struct{}),
	}
}

// Start consumes jobs until Stop is called or ctx ends.
func (q *ImportQueue) Start(ctx context.Context) {
	go func() {
		defer close(q.done)
		for {
			select {
			case <-ctx.Done():
				return
			case req, ok := <-q.jobs:
				if !ok {
					return
				}
				if _, err := q.runner.Run(ctx, req); err != nil {
					q.logger.Warn("queued import failed", zap.String("run_id", req.RunID), zap.Error(err))
				}
			}
		}
	}()
}

// Submit assigns a run id and enqueues req.
func (q *ImportQueue) Submit(req service.Request) (string, error) {
	if req.Manifest == nil {
		return "", errorutil.NewValidationError("manifest is required", nil)
	}
	if err := req.Manifest.Validate(); err != nil {
		return "", err
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", errorutil.NewValidationError("import queue is stopped", nil)
	}
	select {
	case q.jobs <- req:
	default:
		return "", errorutil.NewValidationError("import queue is full", map[string]any{"capacity": cap(q.jobs)})
	}
	if q.reporter != nil {
		q.reporter.Track(req.RunID, req.Manifest.Vendor, req.Manifest.ProjectID)
	}
	return req.RunID, nil
}

// Stop refuses new runs and waits for the pending ones to drain. Runs still
// queued when the Start context ends are dropped. Start must have been called.
func (q *ImportQueue) Stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	<-q.done
}
