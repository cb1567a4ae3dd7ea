// Package worker runs the background loop that drains the evaluation request
// queue: claiming queued requests, calling the completion provider and
// persisting results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campforge/campforge-api/internal/domain"
	"github.com/campforge/campforge-api/internal/llm"
	"github.com/campforge/campforge-api/internal/service/evaluation"
	"github.com/campforge/campforge-api/internal/store"
	"github.com/google/uuid"
)

// ResultWriter persists a finished completion result for a request.
// *evaluation.Writer is the production implementation.
type ResultWriter interface {
	SaveResult(
		ctx context.Context,
		requestID, activityID uuid.UUID,
		result *llm.EvaluationResult,
	) (*domain.Evaluation, error)
}

var _ ResultWriter = (*evaluation.Writer)(nil)

// Config holds the worker's tuning knobs.
type Config struct {
	// PollInterval is how often the queue is polled for work.
	PollInterval time.Duration

	// BatchSize caps how many requests one poll claims.
	BatchSize int

	// JobTimeout bounds a single request's provider call and write.
	JobTimeout time.Duration

	// StuckAge is how long a request may sit in processing before the
	// startup sweep fails it as orphaned.
	StuckAge time.Duration
}

// Worker polls the evaluation request queue and processes claimed requests
// concurrently. Each request is isolated: a failure or panic in one never
// affects the others in the batch.
type Worker struct {
	logger        *slog.Logger
	cfg           Config
	requestStore  store.EvaluationRequestStore
	activityStore store.ActivityStore
	groupStore    store.GroupStore
	client        llm.Client
	writer        ResultWriter

	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a Worker.
func New(
	logger *slog.Logger,
	cfg Config,
	requestStore store.EvaluationRequestStore,
	activityStore store.ActivityStore,
	groupStore store.GroupStore,
	client llm.Client,
	writer ResultWriter,
) (*Worker, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if requestStore == nil || activityStore == nil || groupStore == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if client == nil {
		return nil, errors.New("llm client cannot be nil")
	}
	if writer == nil {
		return nil, errors.New("writer cannot be nil")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("batch size must be positive")
	}
	if cfg.JobTimeout <= 0 {
		return nil, errors.New("job timeout must be positive")
	}

	return &Worker{
		logger:        logger.With(slog.String("component", "evaluation_worker")),
		cfg:           cfg,
		requestStore:  requestStore,
		activityStore: activityStore,
		groupStore:    groupStore,
		client:        client,
		writer:        writer,
		done:          make(chan struct{}),
	}, nil
}

// Start sweeps orphaned requests and launches the polling loop in a
// goroutine. The loop stops when Stop is called or the parent context is
// cancelled; requests already in flight run to completion either way.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	if w.cfg.StuckAge > 0 {
		swept, err := w.requestStore.FinalizeExpired(ctx, w.cfg.StuckAge)
		if err != nil {
			w.logger.ErrorContext(ctx, "failed to sweep orphaned requests",
				slog.String("error", err.Error()))
		} else if swept > 0 {
			w.logger.WarnContext(ctx, "failed orphaned requests from previous run",
				slog.Int("count", swept))
		}
	}

	go w.run(ctx)
}

// Stop signals the loop to exit and waits for in-flight requests to finish,
// or for ctx to expire.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	w.logger.InfoContext(ctx, "worker started",
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Int("batch_size", w.cfg.BatchSize))

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("worker stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll claims one batch and processes each request in its own goroutine.
func (w *Worker) poll(ctx context.Context) {
	requests, err := w.requestStore.ClaimBatch(ctx, w.cfg.BatchSize)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "failed to claim requests",
				slog.String("error", err.Error()))
		}
		return
	}

	if len(requests) == 0 {
		return
	}

	w.logger.InfoContext(ctx, "claimed requests", slog.Int("count", len(requests)))

	// Claimed requests run to completion even if the loop's context is
	// cancelled mid-batch; Stop waits for them.
	base := context.WithoutCancel(ctx)

	for _, req := range requests {
		w.wg.Add(1)
		go func(req *domain.EvaluationRequest) {
			defer w.wg.Done()
			w.processRequest(base, req)
		}(req)
	}
}

// processRequest runs one claimed request end to end, recording any failure
// on the request row. Panics are contained and recorded as internal errors.
func (w *Worker) processRequest(ctx context.Context, req *domain.EvaluationRequest) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	log := w.logger.With(
		slog.String("request_id", req.ID.String()),
		slog.String("activity_id", req.ActivityID.String()))

	defer func() {
		if p := recover(); p != nil {
			log.ErrorContext(ctx, "panic while processing request", slog.Any("panic", p))
			w.fail(ctx, req.ID, domain.CodeInternalError, fmt.Sprintf("panic: %v", p))
		}
	}()

	activity, err := w.activityStore.GetByID(ctx, req.ActivityID)
	if err != nil {
		if errors.Is(err, store.ErrActivityNotFound) {
			w.fail(ctx, req.ID, domain.CodeNotFound, "activity deleted before evaluation ran")
		} else {
			w.fail(ctx, req.ID, domain.CodeInternalError, err.Error())
		}
		return
	}

	group, err := w.groupStore.GetByID(ctx, activity.GroupID)
	if err != nil {
		w.fail(ctx, req.ID, domain.CodeInternalError, err.Error())
		return
	}

	prompt, err := evaluation.BuildPrompt(activity, group)
	if err != nil {
		w.fail(ctx, req.ID, domain.CodeInternalError, err.Error())
		return
	}

	result, err := w.client.Complete(ctx, prompt)
	if err != nil {
		w.fail(ctx, req.ID, llm.CodeForError(err), err.Error())
		return
	}

	eval, err := w.writer.SaveResult(ctx, req.ID, req.ActivityID, result)
	if err != nil {
		w.fail(ctx, req.ID, llm.CodeForError(err), err.Error())
		return
	}

	log.InfoContext(ctx, "request completed", slog.Int("version", eval.Version))
}

// fail records a terminal failure on the request row. Finalization runs on a
// fresh timeout so an expired job context cannot block the bookkeeping.
func (w *Worker) fail(ctx context.Context, id uuid.UUID, code domain.ErrorCode, message string) {
	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := w.requestStore.FinalizeFailure(finalizeCtx, id, code, message); err != nil {
		w.logger.ErrorContext(finalizeCtx, "failed to record request failure",
			slog.String("request_id", id.String()),
			slog.String("code", string(code)),
			slog.String("error", err.Error()))
		return
	}

	w.logger.WarnContext(finalizeCtx, "request failed",
		slog.String("request_id", id.String()),
		slog.String("code", string(code)))
}
