package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/af-corp/prism-enhance/internal/config"
	"github.com/af-corp/prism-enhance/internal/enhance"
	"github.com/af-corp/prism-enhance/internal/normalize"
	"github.com/af-corp/prism-enhance/internal/telemetry"
)

// ErrQueueFull is returned by Submit when the backlog is at capacity or the
// pool is shutting down.
var ErrQueueFull = errors.New("task queue full")

// Enhancer is the slice of the enhancement service the workers need.
type Enhancer interface {
	Enhance(ctx context.Context, callerID, message string, style normalize.Style, tone normalize.Tone) (*enhance.Result, error)
}

// job carries the worker's private copy of the task plus everything needed
// to run it. Nothing here is shared after Submit returns.
type job struct {
	task        Task
	callerID    string
	style       normalize.Style
	tone        normalize.Tone
	callbackURL string
}

// Manager owns the worker pool and every task record transition.
type Manager struct {
	store    Store
	enhancer Enhancer
	notifier Notifier
	settings func() config.TasksConfig
	metrics  *telemetry.Metrics
	logger   *slog.Logger

	queue chan job
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewManager sizes the queue from the current configuration. Queue capacity
// and worker count are fixed for the process lifetime; other task settings
// follow reloads.
func NewManager(store Store, enhancer Enhancer, notifier Notifier, settings func() config.TasksConfig, metrics *telemetry.Metrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		enhancer: enhancer,
		notifier: notifier,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
		queue:    make(chan job, settings().QueueSize),
	}
}

// Start launches the worker pool.
func (m *Manager) Start() {
	workers := m.settings().Workers
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	m.logger.Info("task workers started", "workers", workers, "queue_size", cap(m.queue))
}

// Stop closes the queue and waits for the workers to drain it. Queued jobs
// still run; the wait is bounded by ctx.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.logger.Info("task workers stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit writes the pending record and hands the job to the pool, returning
// as soon as it is queued. The pending record is removed again when the
// queue rejects the job, so a full queue leaves nothing behind.
func (m *Manager) Submit(ctx context.Context, callerID, message string, style normalize.Style, tone normalize.Tone, callbackURL string) (*Task, error) {
	cfg := m.settings()
	t := Task{
		TaskID:    uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
		Original:  message,
		Style:     string(style),
		Tone:      string(tone),
	}
	if err := m.store.Save(ctx, &t, cfg.Retention); err != nil {
		return nil, fmt.Errorf("save pending task: %w", err)
	}
	m.recordTransition(StatusPending)

	j := job{
		task:        t,
		callerID:    callerID,
		style:       style,
		tone:        tone,
		callbackURL: callbackURL,
	}
	if !m.enqueue(j) {
		_ = m.store.Delete(ctx, t.TaskID)
		return nil, ErrQueueFull
	}
	return &t, nil
}

// enqueue hands the job to the pool without blocking. The mutex pairs the
// closed check with the send so Stop cannot close the channel in between.
func (m *Manager) enqueue(j job) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	select {
	case m.queue <- j:
		m.setQueueDepth()
		return true
	default:
		return false
	}
}

// Get returns the stored record for the task id.
func (m *Manager) Get(ctx context.Context, taskID string) (*Task, error) {
	return m.store.Get(ctx, taskID)
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for j := range m.queue {
		m.setQueueDepth()
		m.run(j)
	}
}

// run executes one job start to finish. Panics become task failures so a
// bad job cannot take its worker down with it.
func (m *Manager) run(j job) {
	ctx := context.Background()
	cfg := m.settings()

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("task worker panic", "task_id", j.task.TaskID, "panic", r)
			if !j.task.Status.Terminal() {
				m.fail(ctx, &j, fmt.Errorf("panic: %v", r), cfg.Retention)
			}
		}
	}()

	j.task.Status = StatusProcessing
	m.save(ctx, &j.task, cfg.Retention)
	m.recordTransition(StatusProcessing)

	res, err := m.enhancer.Enhance(ctx, j.callerID, j.task.Original, j.style, j.tone)
	if err != nil {
		m.fail(ctx, &j, err, cfg.Retention)
		return
	}

	now := time.Now().UTC()
	j.task.Status = StatusCompleted
	j.task.CompletedAt = &now
	j.task.Enhanced = res.Enhanced
	j.task.Improvements = res.Improvements
	j.task.Metadata = &res.Metadata
	m.save(ctx, &j.task, cfg.Retention)
	m.recordTransition(StatusCompleted)
	m.notify(ctx, &j)
}

func (m *Manager) fail(ctx context.Context, j *job, cause error, retention time.Duration) {
	now := time.Now().UTC()
	j.task.Status = StatusFailed
	j.task.CompletedAt = &now
	j.task.Error = cause.Error()
	m.save(ctx, &j.task, retention)
	m.recordTransition(StatusFailed)
	m.notify(ctx, j)
}

// save logs transition write failures instead of aborting the job: pollers
// may see a stale status but the work itself proceeds.
func (m *Manager) save(ctx context.Context, t *Task, retention time.Duration) {
	if err := m.store.Save(ctx, t, retention); err != nil {
		m.logger.Warn("task transition write failed",
			"task_id", t.TaskID,
			"status", t.Status,
			"error", err,
		)
	}
}

func (m *Manager) notify(ctx context.Context, j *job) {
	if j.callbackURL == "" || m.notifier == nil {
		return
	}
	m.notifier.Notify(ctx, j.callbackURL, &j.task)
}

func (m *Manager) recordTransition(s Status) {
	if m.metrics != nil {
		m.metrics.RecordTaskTransition(string(s))
	}
}

func (m *Manager) setQueueDepth() {
	if m.metrics != nil {
		m.metrics.SetTaskQueueDepth(len(m.queue))
	}
}
