// Package jobs dispatches the maintenance jobs by name and records their
// outcome metrics. Jobs run one-shot: triggered over HTTP by a scheduler or
// from the worker binary.
package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/metrics"
	"github.com/topicboard/topicboard/internal/usecase/cleanup"
	"github.com/topicboard/topicboard/internal/usecase/enrich"
	"github.com/topicboard/topicboard/internal/usecase/fetch"
	"github.com/topicboard/topicboard/internal/usecase/notes"
)

// Job names accepted by Run.
const (
	JobFetch   = "fetch"
	JobNotes   = "notes"
	JobEnrich  = "enrich"
	JobCleanup = "cleanup"
)

// Per-job consumer interfaces (ISP).
type (
	fetchService interface {
		Run(ctx context.Context) (fetch.Report, error)
	}
	notesService interface {
		Run(ctx context.Context) (notes.Report, error)
	}
	enrichService interface {
		Run(ctx context.Context) (enrich.Report, error)
	}
	cleanupService interface {
		Run(ctx context.Context) (cleanup.Report, error)
	}
)

// Report wraps a job-specific report with run metadata.
type Report struct {
	Job      string `json:"job"`
	Duration string `json:"duration"`
	Details  any    `json:"details"`
}

// Runner dispatches jobs by name.
type Runner struct {
	fetch   fetchService
	notes   notesService
	enrich  enrichService
	cleanup cleanupService
	logger  *zap.Logger
}

// NewRunner wires the four maintenance jobs.
func NewRunner(f fetchService, n notesService, e enrichService, c cleanupService, logger *zap.Logger) *Runner {
	return &Runner{fetch: f, notes: n, enrich: e, cleanup: c, logger: logger}
}

// Run executes the named job. An unrecognized name returns domain.ErrUnknownJob.
func (r *Runner) Run(ctx context.Context, name string) (Report, error) {
	start := time.Now()

	details, items, err := r.dispatch(ctx, name)

	duration := time.Since(start)

	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(name, "error").Inc()
		return Report{}, err
	}

	metrics.JobRunsTotal.WithLabelValues(name, "success").Inc()
	metrics.JobDuration.WithLabelValues(name).Observe(duration.Seconds())
	metrics.JobItemsProcessed.WithLabelValues(name).Add(float64(items))

	r.logger.Info("Job finished",
		zap.String("job", name),
		zap.Duration("duration", duration),
		zap.Int("items", items),
	)

	return Report{
		Job:      name,
		Duration: duration.Round(time.Millisecond).String(),
		Details:  details,
	}, nil
}

func (r *Runner) dispatch(ctx context.Context, name string) (details any, items int, err error) {
	switch name {
	case JobFetch:
		rep, err := r.fetch.Run(ctx)
		return rep, rep.Upserted, err
	case JobNotes:
		rep, err := r.notes.Run(ctx)
		return rep, rep.Generated, err
	case JobEnrich:
		rep, err := r.enrich.Run(ctx)
		return rep, rep.Embedded, err
	case JobCleanup:
		rep, err := r.cleanup.Run(ctx)
		return rep, int(rep.Pruned), err
	default:
		return nil, 0, fmt.Errorf("job %q: %w", name, domain.ErrUnknownJob)
	}
}
