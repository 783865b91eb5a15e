// Package queue runs background jobs (outbound mail) off the request path.
//
// Usage:
//
//	q := queue.New(queue.NewMemoryDriver(1000))
//	q.Register(func() queue.Job { return &jobs.SendMail{} })
//	go q.Work(ctx, 2)
//
//	q.Dispatch(ctx, &jobs.SendMail{To: "jane@example.com", ...})
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Job is the interface every queued job must satisfy. Jobs are JSON encoded
// onto the driver, so exported fields are the job's payload.
type Job interface {
	Handle(ctx context.Context) error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Payload  []byte
	Err      string
	FailedAt time.Time
	Attempts int
}

// FailedStore persists failed jobs. A nil store keeps them in memory only.
type FailedStore interface {
	Record(ctx context.Context, f FailedJob) error
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is ready or ctx ends. A nil payload with a
	// nil error means the driver timed out with nothing to do.
	Pop(ctx context.Context) ([]byte, error)
}

// ErrUnregistered is returned by Dispatch for a job type without a factory.
var ErrUnregistered = errors.New("queue: job type not registered")

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ------------------- Manager -------------------

// Manager is the central queue hub.
type Manager struct {
	driver   Driver
	maxRetry int
	backoff  func(attempt int) time.Duration
	store    FailedStore

	mu       sync.RWMutex
	registry map[string]func() Job // type name → constructor
	failed   []FailedJob
}

type Option func(*Manager)

// WithMaxRetry sets how many times a failing job is attempted.
func WithMaxRetry(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxRetry = n
		}
	}
}

// WithBackoff overrides the pause between attempts (default attempt seconds).
func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(m *Manager) { m.backoff = f }
}

func WithFailedStore(s FailedStore) Option {
	return func(m *Manager) { m.store = s }
}

func New(driver Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
		registry: map[string]func() Job{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func typeName(job Job) string { return fmt.Sprintf("%T", job) }

// Register makes a job type available for decoding. The factory must return a
// pointer so the payload can be unmarshalled into it.
func (m *Manager) Register(factory func() Job) {
	name := typeName(factory())
	m.mu.Lock()
	m.registry[name] = factory
	m.mu.Unlock()
}

// ------------------- Dispatch -------------------

// Dispatch encodes job and pushes it onto the driver.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	name := typeName(job)

	m.mu.RLock()
	_, ok := m.registry[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnregistered, name)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", name, err)
	}

	env, err := json.Marshal(envelope{Type: name, Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	return m.driver.Push(ctx, env)
}

// ------------------- Worker -------------------

// Work runs n workers until ctx is cancelled, then waits for in-flight jobs.
func (m *Manager) Work(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	logger.Info("queue: workers started", "count", n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	wg.Wait()
	logger.Info("queue: workers stopped")
}

func (m *Manager) work(ctx context.Context) {
	for {
		raw, err := m.driver.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			if !sleep(ctx, 500*time.Millisecond) {
				return
			}
			continue
		}
		if raw == nil {
			continue
		}
		// In-flight jobs finish even if shutdown starts.
		m.process(context.WithoutCancel(ctx), raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(ctx, job, env)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, env envelope) {
	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= m.maxRetry; attempt++ {
		if err := job.Handle(ctx); err != nil {
			lastErr = err
			logger.Warn("queue: job failed",
				"type", env.Type, "attempt", attempt, "error", err)
			if attempt < m.maxRetry {
				sleep(ctx, m.backoff(attempt))
			}
			continue
		}
		metrics.RecordQueueJob(env.Type, "success", start)
		logger.Debug("queue: job processed", "type", env.Type)
		return
	}

	metrics.RecordQueueJob(env.Type, "failed", start)
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
	m.persistFailed(ctx, FailedJob{
		Type:     env.Type,
		Payload:  env.Payload,
		Err:      lastErr.Error(),
		FailedAt: time.Now(),
		Attempts: m.maxRetry,
	})
}

// persistFailed keeps the failure in memory and, when configured, in the
// failed store.
func (m *Manager) persistFailed(ctx context.Context, f FailedJob) {
	m.mu.Lock()
	m.failed = append(m.failed, f)
	m.mu.Unlock()

	if m.store == nil {
		return
	}
	if err := m.store.Record(ctx, f); err != nil {
		logger.Error("queue: persist failed job", "type", f.Type, "error", err)
	}
}

// FailedJobs returns a snapshot of all failed jobs seen by this process.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
