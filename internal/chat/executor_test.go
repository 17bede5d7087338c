package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository/memory"
	"ledgerchat-backend/internal/service/ledger"
)

const testUser = "user-1"

func newTestExecutor(t *testing.T) (*Executor, *ledger.Service) {
	t.Helper()
	svc := ledger.NewService(memory.NewStore(), nil, zap.NewNop())
	return NewExecutor(svc, zap.NewNop()), svc
}

func TestExecuteCreateJobThenLinkedExpenseUpdatesAggregates(t *testing.T) {
	ctx := context.Background()
	exec, svc := newTestExecutor(t)

	result := exec.Execute(ctx, testUser, []Action{
		{Type: ActionCreateJob, Data: map[string]any{"name": "Plumbing A", "revenue": 5000.0}},
		{Type: ActionCreateExpense, Data: map[string]any{"name": "Tools", "amount": 1200.0, "jobName": "Plumbing A"}},
	})

	require.True(t, result.Success)
	assert.True(t, result.AnyMutationApplied)
	require.Len(t, result.Log, 2)
	assert.Equal(t, statusSuccess, result.Log[0].Status)
	assert.Equal(t, statusSuccess, result.Log[1].Status)

	jobs, err := svc.ListJobs(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.InDelta(t, 1200.0, jobs[0].Expenses, domain.MoneyEpsilon)
	assert.InDelta(t, 3800.0, jobs[0].Profit, domain.MoneyEpsilon)
}

func TestExecuteCompensatesCreationsOnMidTurnFailure(t *testing.T) {
	ctx := context.Background()
	exec, svc := newTestExecutor(t)

	result := exec.Execute(ctx, testUser, []Action{
		{Type: ActionCreateJob, Data: map[string]any{"name": "Cocina", "revenue": 5000.0}},
		{Type: ActionCreateExpense, Data: map[string]any{"name": "Cemento", "amount": 250.0}},
		// Missing amount fails validation after two successful creations.
		{Type: ActionCreateExpense, Data: map[string]any{"name": "Varilla"}},
	})

	require.False(t, result.Success)
	assert.True(t, result.AnyMutationApplied)
	assert.NotEmpty(t, result.ErrorMessage)

	require.Len(t, result.Log, 4)
	rollback := result.Log[3]
	assert.Equal(t, rollbackLogAction, rollback.Action)
	assert.Equal(t, 2, rollback.Payload["attempted"])
	assert.Equal(t, 2, rollback.Payload["rolledBack"])

	jobs, err := svc.ListJobs(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	expenses, err := svc.ListExpenses(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestExecuteUpdatesAndDeletesAreNotCompensable(t *testing.T) {
	ctx := context.Background()
	exec, svc := newTestExecutor(t)

	_, err := svc.CreateJob(ctx, testUser, ledger.CreateJobInput{Name: "Cocina", Revenue: 5000})
	require.NoError(t, err)

	result := exec.Execute(ctx, testUser, []Action{
		{Type: ActionUpdateJob, Data: map[string]any{"jobName": "Cocina", "revenue": 7000.0}},
		{Type: ActionCreateExpense, Data: map[string]any{"name": "Varilla"}},
	})

	require.False(t, result.Success)
	rollback := result.Log[len(result.Log)-1]
	require.Equal(t, rollbackLogAction, rollback.Action)
	// The update counts as attempted but cannot be reversed.
	assert.Equal(t, 1, rollback.Payload["attempted"])
	assert.Equal(t, 0, rollback.Payload["rolledBack"])

	job, err := svc.ListJobs(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, job, 1)
	assert.InDelta(t, 7000.0, job[0].Revenue, domain.MoneyEpsilon)
}

func TestExecuteFailureMessageStaysInReplyLocale(t *testing.T) {
	ctx := context.Background()
	exec, _ := newTestExecutor(t)

	result := exec.Execute(ctx, testUser, []Action{
		{Type: ActionCreateJob, Data: map[string]any{"name": "Cocina", "revenue": 5000.0}},
		{Type: ActionDeleteCategory, Data: map[string]any{"categoryName": "Otros"}},
	})

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "No pude completar la acción 2 (delete_category)")
	assert.Contains(t, result.ErrorMessage, "los datos de la acción no son válidos")
	// Internal English text stays in the log, never in the reply.
	assert.NotContains(t, result.ErrorMessage, "default category")
	assert.Contains(t, result.Log[1].Detail, "default category")
}

func TestExecuteFailureMessageKeepsChatLayerHints(t *testing.T) {
	exec, _ := newTestExecutor(t)

	result := exec.Execute(context.Background(), testUser, []Action{
		{Type: ActionCreateJob, Data: map[string]any{"revenue": 5000.0}},
	})

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "falta el nombre del trabajo")
}

func TestExecuteResolvesFuzzyNameTieBrokenByMostRecentlyUpdated(t *testing.T) {
	ctx := context.Background()
	exec, svc := newTestExecutor(t)

	first, err := svc.CreateJob(ctx, testUser, ledger.CreateJobInput{Name: "Remodelación cocina", Revenue: 1000})
	require.NoError(t, err)
	second, err := svc.CreateJob(ctx, testUser, ledger.CreateJobInput{Name: "Cocina exterior", Revenue: 2000})
	require.NoError(t, err)
	// Touch the second job so it is the most recently updated match.
	_, err = svc.UpdateJobStatus(ctx, testUser, second.ID, "completed")
	require.NoError(t, err)

	result := exec.Execute(ctx, testUser, []Action{
		{Type: ActionUpdateJobStatus, Data: map[string]any{"jobName": "cocina", "status": "paid"}},
	})
	require.True(t, result.Success)

	updated, err := svc.GetJob(ctx, testUser, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPaid, updated.Status)

	untouched, err := svc.GetJob(ctx, testUser, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, untouched.Status)
}

func TestExecuteFailsCleanlyWhenFirstActionInvalid(t *testing.T) {
	exec, _ := newTestExecutor(t)

	result := exec.Execute(context.Background(), testUser, []Action{
		{Type: ActionDeleteJob, Data: map[string]any{"jobName": "No existe"}},
	})

	require.False(t, result.Success)
	assert.False(t, result.AnyMutationApplied)
	// No mutation happened, so there is no rollback entry.
	require.Len(t, result.Log, 1)
	assert.Equal(t, statusError, result.Log[0].Status)
}

func TestExecuteQueryIsReadOnly(t *testing.T) {
	exec, _ := newTestExecutor(t)

	result := exec.Execute(context.Background(), testUser, []Action{
		{Type: ActionQuery, Data: map[string]any{}},
	})

	require.True(t, result.Success)
	assert.False(t, result.AnyMutationApplied)
}

func TestExecuteZeroAmountExpenseUpdateIsRejected(t *testing.T) {
	ctx := context.Background()
	exec, svc := newTestExecutor(t)

	job, err := svc.CreateJob(ctx, testUser, ledger.CreateJobInput{Name: "Cocina", Revenue: 5000})
	require.NoError(t, err)
	exp, err := svc.CreateExpense(ctx, testUser, ledger.CreateExpenseInput{Name: "Tools", Amount: 1200, JobID: job.ID})
	require.NoError(t, err)

	result := exec.Execute(ctx, testUser, []Action{
		{Type: ActionUpdateExpense, Data: map[string]any{"expenseId": exp.ID, "amount": 0.0}},
	})

	require.False(t, result.Success)

	// Deletion is the supported path to zeroing a job's cost.
	result = exec.Execute(ctx, testUser, []Action{
		{Type: ActionDeleteExpense, Data: map[string]any{"expenseId": exp.ID}},
	})
	require.True(t, result.Success)

	refreshed, err := svc.GetJob(ctx, testUser, job.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, refreshed.Expenses, domain.MoneyEpsilon)
	assert.InDelta(t, 5000.0, refreshed.Profit, domain.MoneyEpsilon)
}
