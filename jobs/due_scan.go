package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gemlot/gemlot/internal/expenses"
	"github.com/gemlot/gemlot/internal/observability"
)

// DueScanJob scans for expense templates whose next due date has arrived
// and emails a reminder. It never materializes occurrences or advances due
// dates; that remains a user-initiated action.
type DueScanJob struct {
	Expenses  *expenses.Service
	Mailer    *Client
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Recipient string
	clock     func() time.Time
}

// NewDueScanJob wires dependencies for the due-scan handler.
func NewDueScanJob(expenseSvc *expenses.Service, mailer *Client, logger *slog.Logger, metrics *observability.Metrics, recipient string) *DueScanJob {
	return &DueScanJob{
		Expenses:  expenseSvc,
		Mailer:    mailer,
		Logger:    logger,
		Metrics:   metrics,
		Recipient: recipient,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (j *DueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// Handle processes due-scan tasks.
func (j *DueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Expenses == nil {
		return errors.New("due scan: handler not configured")
	}
	var payload DueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.now()
	}

	due, err := j.Expenses.ListDue(ctx, asOf)
	if err != nil {
		if j.Metrics != nil {
			j.Metrics.ObserveJob(TaskTypeDueScan, "error")
		}
		return err
	}
	if j.Metrics != nil {
		j.Metrics.SetDueTemplates(len(due))
		j.Metrics.ObserveJob(TaskTypeDueScan, "ok")
	}
	if j.Logger != nil {
		j.Logger.Info("due scan complete", slog.Int("due", len(due)), slog.Time("as_of", asOf))
	}
	if len(due) == 0 || j.Mailer == nil || j.Recipient == "" {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d recurring expense(s) due as of %s:\n\n", len(due), asOf.Format("2006-01-02"))
	for _, tmpl := range due {
		fmt.Fprintf(&b, "- %s (%s, %s due %s)\n",
			tmpl.Description, tmpl.Amount.StringFixed(2), tmpl.Frequency, tmpl.NextDueDate.Format("2006-01-02"))
	}
	b.WriteString("\nReview and record them from the expenses screen.\n")

	_, err = j.Mailer.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      j.Recipient,
		Subject: fmt.Sprintf("%d recurring expenses due", len(due)),
		Body:    b.String(),
	})
	return err
}
