package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/urlextract/internal/crawler"
	"github.com/nao1215/urlextract/internal/model"
	"github.com/nao1215/urlextract/internal/pipeline"
	"github.com/nao1215/urlextract/internal/report"
)

// DefaultMaxJobs is the number of jobs allowed to be queued or running at once.
const DefaultMaxJobs = 4

// Status messages shown to API clients.
const (
	messageQueued  = "Encolado"
	messageRunning = "Explorando sitio..."
)

// PipelineFactory builds the pipeline for one job. The factory must register
// progress on the spider so the job can report it.
type PipelineFactory func(target pipeline.Target, progress func(crawler.Progress)) *pipeline.Pipeline

// Manager tracks asynchronous crawl jobs.
type Manager struct {
	factory    PipelineFactory
	resultsDir string
	maxJobs    int
	logger     *slog.Logger

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu     sync.Mutex
	jobs   map[string]*entry
	closed bool
}

// entry is the manager's private state of one job.
type entry struct {
	job    model.Job
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithResultsDir sets the directory result files are written to.
// Empty disables result files.
func WithResultsDir(dir string) Option {
	return func(m *Manager) {
		m.resultsDir = dir
	}
}

// WithMaxJobs sets the number of jobs that may be active at once.
func WithMaxJobs(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxJobs = n
		}
	}
}

// WithLogger sets the logger for job lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager whose jobs stop when ctx is cancelled.
func NewManager(ctx context.Context, factory PipelineFactory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		maxJobs: DefaultMaxJobs,
		logger:  slog.Default(),
		jobs:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.stop = context.WithCancel(ctx)
	return m
}

// Submit queues a crawl of seed and starts it.
// depth is clamped to crawler.MinDepth..crawler.MaxDepth.
func (m *Manager) Submit(seed string, depth int) (*model.Job, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, crawler.ErrEmptySeed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrShutdown
	}
	if m.active() >= m.maxJobs {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyJobs, m.maxJobs)
	}

	now := time.Now()
	ctx, cancel := context.WithCancel(m.ctx)
	e := &entry{
		job: model.Job{
			ID:        uuid.NewString(),
			Seed:      seed,
			Depth:     crawler.ClampDepth(depth),
			State:     model.JobQueued,
			Message:   messageQueued,
			CreatedAt: now,
			UpdatedAt: now,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.jobs[e.job.ID] = e

	m.wg.Add(1)
	go m.run(ctx, e)

	m.logger.Info("job submitted", "job_id", e.job.ID, "seed", seed, "depth", e.job.Depth)
	return snapshot(e), nil
}

// active counts jobs that are not yet terminal. The caller holds m.mu.
func (m *Manager) active() int {
	n := 0
	for _, e := range m.jobs {
		if !e.job.State.Terminal() {
			n++
		}
	}
	return n
}

// run executes one job. It owns e.done.
func (m *Manager) run(ctx context.Context, e *entry) {
	defer m.wg.Done()
	defer close(e.done)
	defer e.cancel()

	m.update(e, func(j *model.Job) {
		j.State = model.JobRunning
		j.Message = messageRunning
	})

	target := pipeline.Target{Seed: e.job.Seed, Depth: e.job.Depth}
	progress := func(p crawler.Progress) {
		m.update(e, func(j *model.Job) {
			j.Visited = p.Visited
			j.CurrentURL = p.URL.String()
			j.Message = fmt.Sprintf("Explorando (%d): %s", p.Visited, p.URL)
		})
	}

	rep := model.NewCrawlReport(target.Seed, target.Depth)
	err := m.factory(target, progress).Execute(ctx, rep)

	var resultFile string
	if err == nil && m.resultsDir != "" {
		resultFile, err = report.WriteResultFile(m.resultsDir, rep)
	}

	m.update(e, func(j *model.Job) {
		j.Report = rep
		j.CurrentURL = ""
		if err != nil {
			j.State = model.JobError
			j.Message = errorMessage(err)
			return
		}
		j.State = model.JobDone
		j.ResultFile = resultFile
		j.Message = fmt.Sprintf("Completado: %d URLs encontradas", rep.FoundCount())
	})

	if err != nil {
		m.logger.Warn("job failed", "job_id", e.job.ID, "error", err)
		return
	}
	m.logger.Info("job finished", "job_id", e.job.ID, "found", rep.FoundCount(), "file", resultFile)
}

// errorMessage renders err for API clients.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "Cancelado"
	case errors.Is(err, crawler.ErrUnreachable):
		return "No se pudo acceder al sitio: " + err.Error()
	default:
		return err.Error()
	}
}

// update applies fn to the job under the lock and stamps UpdatedAt.
func (m *Manager) update(e *entry, fn func(j *model.Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&e.job)
	e.job.UpdatedAt = time.Now()
}

// Get returns a snapshot of the job with the given ID.
func (m *Manager) Get(id string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snapshot(e), nil
}

// List returns snapshots of every job, oldest first.
func (m *Manager) List() []*model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*model.Job, 0, len(m.jobs))
	for _, e := range m.jobs {
		jobs = append(jobs, snapshot(e))
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

// Cancel stops a queued or running job. Cancelling a finished job is a no-op.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	e, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.cancel()
	return nil
}

// Wait blocks until the job finishes or ctx is done and returns the final
// snapshot.
func (m *Manager) Wait(ctx context.Context, id string) (*model.Job, error) {
	m.mu.Lock()
	e, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	select {
	case <-e.done:
		return m.Get(id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the result file path of a finished job.
func (m *Manager) Result(id string) (string, error) {
	j, err := m.Get(id)
	if err != nil {
		return "", err
	}
	if j.State != model.JobDone || j.ResultFile == "" {
		return "", fmt.Errorf("%w: %s is %s", ErrNotFinished, id, j.State)
	}
	return j.ResultFile, nil
}

// Shutdown cancels every job and waits for them to stop or ctx to end.
// Submit fails with ErrShutdown afterwards.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.stop()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// snapshot copies the job. The caller holds m.mu.
func snapshot(e *entry) *model.Job {
	j := e.job
	return &j
}
