package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/gemlot/gemlot/internal/expenses"
	"github.com/gemlot/gemlot/internal/observability"
)

type templateStore struct {
	templates []expenses.Template
}

func (s *templateStore) GetExpense(context.Context, int64) (*expenses.Expense, error) {
	return nil, expenses.ErrExpenseNotFound
}
func (s *templateStore) UpdateExpense(context.Context, int64, map[string]interface{}) error {
	return expenses.ErrExpenseNotFound
}
func (s *templateStore) DeleteExpense(context.Context, int64) error {
	return expenses.ErrExpenseNotFound
}
func (s *templateStore) ListExpenses(context.Context, expenses.ListExpensesRequest) ([]expenses.Expense, int, error) {
	return nil, 0, nil
}
func (s *templateStore) GetTemplate(context.Context, int64) (*expenses.Template, error) {
	return nil, expenses.ErrTemplateNotFound
}
func (s *templateStore) UpdateTemplate(context.Context, int64, map[string]interface{}) error {
	return expenses.ErrTemplateNotFound
}
func (s *templateStore) ListTemplates(context.Context, bool) ([]expenses.Template, error) {
	return s.templates, nil
}
func (s *templateStore) ListDue(_ context.Context, asOf time.Time) ([]expenses.Template, error) {
	var due []expenses.Template
	for _, t := range s.templates {
		if t.IsActive && !t.NextDueDate.After(asOf) {
			due = append(due, t)
		}
	}
	return due, nil
}
func (s *templateStore) WithTx(context.Context, func(context.Context, expenses.TxStore) error) error {
	return nil
}

func TestDueScanSetsGaugeAndLeavesTemplatesUntouched(t *testing.T) {
	asOf := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	store := &templateStore{templates: []expenses.Template{
		{ID: 1, Description: "Rent", Amount: decimal.NewFromInt(1500),
			Frequency: expenses.FrequencyMonthly,
			NextDueDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), IsActive: true},
		{ID: 2, Description: "Insurance", Amount: decimal.NewFromInt(90),
			Frequency: expenses.FrequencyMonthly,
			NextDueDate: time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), IsActive: true},
	}}
	svc := expenses.NewService(store, nil, nil, nil)
	metrics := observability.NewMetrics()

	job := NewDueScanJob(svc, nil, nil, metrics, "")
	task, err := NewDueScanTask(asOf)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	// the scan is advisory: due dates stay where they were
	require.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		store.templates[0].NextDueDate)
}

func TestDueScanRejectsMalformedPayload(t *testing.T) {
	svc := expenses.NewService(&templateStore{}, nil, nil, nil)
	job := NewDueScanJob(svc, nil, nil, nil, "")

	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeDueScan, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
