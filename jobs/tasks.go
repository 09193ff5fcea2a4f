package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDueScan is the advisory scan for due expense templates. It
	// reminds only; occurrence materialization stays user-initiated.
	TaskTypeDueScan = "expense:due_scan"
	// TaskTypeReportWarmup pre-builds the current-period reports cache.
	TaskTypeReportWarmup = "report:warmup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: SMTP delivery is configured per deployment.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// DueScanPayload scopes a due-template scan.
type DueScanPayload struct {
	AsOf time.Time `json:"as_of"`
}

// NewDueScanTask constructs a due-scan task.
func NewDueScanTask(asOf time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(DueScanPayload{AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDueScan, data), nil
}

// ReportWarmupPayload scopes a reports warmup.
type ReportWarmupPayload struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewReportWarmupTask constructs a warmup task.
func NewReportWarmupTask(from, to time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReportWarmup, data), nil
}
