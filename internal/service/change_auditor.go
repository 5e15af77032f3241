package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
	"github.com/bbarathsrinivasan/ACMHack/internal/planner"
	"github.com/bbarathsrinivasan/ACMHack/pkg/jobs"
	"github.com/bbarathsrinivasan/ACMHack/pkg/middleware/requestid"
)

const auditJobType = "plan.change"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ChangeEntry is one committed plan mutation awaiting audit.
type ChangeEntry struct {
	Source    string
	UserID    string
	RequestID string
	Version   string
	Before    []models.PlanBlock
	After     []models.PlanBlock
	Cap       int
	Location  *time.Location
}

// ChangeAuditor explains committed mutations off the request path. Without a dispatcher entries are
// handled inline.
type ChangeAuditor struct {
	dispatcher jobDispatcher
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewChangeAuditor builds an auditor. Call UseDispatcher once the queue exists.
func NewChangeAuditor(metrics *MetricsService, logger *zap.Logger) *ChangeAuditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeAuditor{metrics: metrics, logger: logger}
}

// UseDispatcher routes future entries through dispatcher.
func (a *ChangeAuditor) UseDispatcher(dispatcher jobDispatcher) {
	a.dispatcher = dispatcher
}

// Record submits an entry. A rejected enqueue falls back to inline handling so nothing is lost.
func (a *ChangeAuditor) Record(ctx context.Context, entry ChangeEntry) {
	if a == nil {
		return
	}
	if entry.RequestID == "" {
		entry.RequestID = requestid.FromContext(ctx)
	}
	job := jobs.Job{ID: uuid.NewString(), Type: auditJobType, Payload: entry}
	if a.dispatcher != nil {
		err := a.dispatcher.Enqueue(job)
		if err == nil {
			return
		}
		a.logger.Warn("audit enqueue failed, auditing inline", zap.String("source", entry.Source), zap.Error(err))
	}
	if err := a.Handle(ctx, job); err != nil {
		a.logger.Error("audit failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}

// Handle processes a queued audit job.
func (a *ChangeAuditor) Handle(_ context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(ChangeEntry)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}

	report := planner.Diff(entry.Before, entry.After, entry.Cap, entry.Location)
	summary := planner.Summarize(report)
	a.metrics.RecordPlanChanges(summary)

	a.logger.Info("plan changed",
		zap.String("job_id", job.ID),
		zap.String("source", entry.Source),
		zap.String("user_id", entry.UserID),
		zap.String("request_id", entry.RequestID),
		zap.String("version", entry.Version),
		zap.Int("added", summary.Added),
		zap.Int("removed", summary.Removed),
		zap.Int("moved", summary.Moved),
		zap.Int("flagged", summary.Flagged),
	)
	for _, day := range report {
		for _, change := range append(day.Added, day.Moved...) {
			if len(change.Reasons) == 0 {
				continue
			}
			a.logger.Warn("plan change flagged",
				zap.String("day", day.DayKey),
				zap.String("block_id", change.Block.ID),
				zap.String("type", string(change.Type)),
				zap.Strings("reasons", change.Reasons),
			)
		}
	}
	return nil
}
