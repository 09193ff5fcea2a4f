package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gemlot/gemlot/internal/observability"
	"github.com/gemlot/gemlot/internal/reports"
)

// ReportWarmupJob pre-builds the P&L cache so the first dashboard read of
// the day is served hot.
type ReportWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reportSvc *reports.Service, logger *slog.Logger, metrics *observability.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reports: reportSvc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	from, to := payload.From, payload.To
	if from.IsZero() || to.IsZero() {
		now := j.clock()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	}

	report, err := j.Reports.PnL(ctx, from, to)
	if err != nil {
		if j.Metrics != nil {
			j.Metrics.ObserveJob(TaskTypeReportWarmup, "error")
		}
		return err
	}
	if j.Metrics != nil {
		j.Metrics.ObserveJob(TaskTypeReportWarmup, "ok")
	}
	if j.Logger != nil {
		j.Logger.Info("report warmup complete",
			slog.Time("from", from), slog.Time("to", to),
			slog.Int("lines", report.LinesResolved))
	}
	return nil
}
