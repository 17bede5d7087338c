package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository/memory"
	appErrors "ledgerchat-backend/pkg/errors"
)

const testUser = "user-1"

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewStore(), nil, zap.NewNop())
}

func TestJobAggregatesFollowExpenseMutations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	job, err := svc.CreateJob(ctx, testUser, CreateJobInput{Name: "Cocina", Revenue: 5000})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, job.Revenue)
	assert.Equal(t, 0.0, job.Expenses)
	assert.Equal(t, 5000.0, job.Profit)

	expense, err := svc.CreateExpense(ctx, testUser, CreateExpenseInput{
		Name: "Cemento", Amount: 1200, JobID: job.ID,
	})
	require.NoError(t, err)

	job, err = svc.GetJob(ctx, testUser, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, job.Expenses)
	assert.Equal(t, 3800.0, job.Profit)

	amount := 1500.0
	_, err = svc.UpdateExpense(ctx, testUser, expense.ID, UpdateExpenseInput{Amount: &amount})
	require.NoError(t, err)

	job, err = svc.GetJob(ctx, testUser, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, job.Expenses)
	assert.Equal(t, 3500.0, job.Profit)

	require.NoError(t, svc.DeleteExpense(ctx, testUser, expense.ID))
	job, err = svc.GetJob(ctx, testUser, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, job.Expenses)
	assert.Equal(t, 5000.0, job.Profit)
}

func TestCreateJobWithExplicitStatusKeepsProfitAtRevenue(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	job, err := svc.CreateJob(ctx, testUser, CreateJobInput{Name: "Cocina", Revenue: 5000, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, 5000.0, job.Profit)
	assert.Equal(t, 0.0, job.Expenses)
}

func TestUpdateJobRevenueRecomputesProfit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	job, err := svc.CreateJob(ctx, testUser, CreateJobInput{Name: "Cocina", Revenue: 5000})
	require.NoError(t, err)
	_, err = svc.CreateExpense(ctx, testUser, CreateExpenseInput{Name: "Cemento", Amount: 1200, JobID: job.ID})
	require.NoError(t, err)

	revenue := 8000.0
	updated, err := svc.UpdateJob(ctx, testUser, job.ID, UpdateJobInput{Revenue: &revenue})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, updated.Expenses)
	assert.Equal(t, 6800.0, updated.Profit)
}

func TestDeleteJobDetachesLinkedExpenses(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	job, err := svc.CreateJob(ctx, testUser, CreateJobInput{Name: "Cocina", Revenue: 5000})
	require.NoError(t, err)
	expense, err := svc.CreateExpense(ctx, testUser, CreateExpenseInput{Name: "Cemento", Amount: 1200, JobID: job.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteJob(ctx, testUser, job.ID))

	_, err = svc.GetJob(ctx, testUser, job.ID)
	assert.True(t, appErrors.IsNotFound(err))

	// The expense survives the job, detached.
	survivor, err := svc.GetExpense(ctx, testUser, expense.ID)
	require.NoError(t, err)
	assert.Empty(t, survivor.JobID)
}

func TestAttachAndDetachExpense(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	jobA, err := svc.CreateJob(ctx, testUser, CreateJobInput{Name: "Cocina", Revenue: 5000})
	require.NoError(t, err)
	jobB, err := svc.CreateJob(ctx, testUser, CreateJobInput{Name: "Baño", Revenue: 3000})
	require.NoError(t, err)
	expense, err := svc.CreateExpense(ctx, testUser, CreateExpenseInput{Name: "Cemento", Amount: 1000, JobID: jobA.ID})
	require.NoError(t, err)

	// Moving the link recomputes both sides.
	_, err = svc.AttachExpense(ctx, testUser, expense.ID, jobB.ID)
	require.NoError(t, err)

	jobA, err = svc.GetJob(ctx, testUser, jobA.ID)
	require.NoError(t, err)
	jobB, err = svc.GetJob(ctx, testUser, jobB.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, jobA.Expenses)
	assert.Equal(t, 1000.0, jobB.Expenses)
	assert.Equal(t, 2000.0, jobB.Profit)

	_, err = svc.DetachExpense(ctx, testUser, expense.ID)
	require.NoError(t, err)
	jobB, err = svc.GetJob(ctx, testUser, jobB.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, jobB.Expenses)
}

func TestCreateExpenseRejectsForeignJob(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	job, err := svc.CreateJob(ctx, "someone-else", CreateJobInput{Name: "Cocina", Revenue: 5000})
	require.NoError(t, err)

	_, err = svc.CreateExpense(ctx, testUser, CreateExpenseInput{Name: "Cemento", Amount: 100, JobID: job.ID})
	assert.True(t, appErrors.IsNotFound(err))
}

func TestCreateExpenseWithUnknownCategoryCreatesIt(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	expense, err := svc.CreateExpense(ctx, testUser, CreateExpenseInput{
		Name: "Cemento", Amount: 250, Category: "Materiales",
	})
	require.NoError(t, err)
	assert.Equal(t, "Materiales", expense.Category)

	categories, err := svc.ListCategories(ctx, testUser)
	require.NoError(t, err)
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Materiales")
	assert.Contains(t, names, domain.DefaultCategoryName)
}

func TestCreateExpenseWithoutCategoryUsesDefault(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	expense, err := svc.CreateExpense(ctx, testUser, CreateExpenseInput{Name: "Gasolina", Amount: 40})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategoryName, expense.Category)
}

func TestRenameCategoryCascadesToExpenses(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	category, err := svc.CreateCategory(ctx, testUser, "Materiales")
	require.NoError(t, err)
	expense, err := svc.CreateExpense(ctx, testUser, CreateExpenseInput{
		Name: "Cemento", Amount: 250, Category: "Materiales",
	})
	require.NoError(t, err)

	_, err = svc.RenameCategory(ctx, testUser, category.ID, "Construcción")
	require.NoError(t, err)

	updated, err := svc.GetExpense(ctx, testUser, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "Construcción", updated.Category)
}

func TestRenameCategoryToSameNameIsCaseInsensitiveNoOp(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	category, err := svc.CreateCategory(ctx, testUser, "Materiales")
	require.NoError(t, err)
	expense, err := svc.CreateExpense(ctx, testUser, CreateExpenseInput{
		Name: "Cemento", Amount: 250, Category: "Materiales",
	})
	require.NoError(t, err)

	renamed, err := svc.RenameCategory(ctx, testUser, category.ID, "MATERIALES")
	require.NoError(t, err)
	assert.Equal(t, "Materiales", renamed.Name)

	// No expense rewrite happened.
	after, err := svc.GetExpense(ctx, testUser, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "Materiales", after.Category)
	assert.Equal(t, expense.UpdatedAt, after.UpdatedAt)
}

func TestRenameCategoryRejectsCollision(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateCategory(ctx, testUser, "Materiales")
	require.NoError(t, err)
	other, err := svc.CreateCategory(ctx, testUser, "Herramientas")
	require.NoError(t, err)

	_, err = svc.RenameCategory(ctx, testUser, other.ID, "Materiales")
	assert.True(t, appErrors.IsValidation(err))
}

func TestDeleteCategoryReassignsExpensesToDefault(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	category, err := svc.CreateCategory(ctx, testUser, "Materiales")
	require.NoError(t, err)
	expense, err := svc.CreateExpense(ctx, testUser, CreateExpenseInput{
		Name: "Cemento", Amount: 250, Category: "Materiales",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, testUser, category.ID))

	updated, err := svc.GetExpense(ctx, testUser, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategoryName, updated.Category)
}

func TestDeleteDefaultCategoryFails(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	categories, err := svc.ListCategories(ctx, testUser)
	require.NoError(t, err)

	var defaultID string
	for _, c := range categories {
		if c.IsDefault() {
			defaultID = c.ID
		}
	}
	require.NotEmpty(t, defaultID)

	err = svc.DeleteCategory(ctx, testUser, defaultID)
	assert.True(t, appErrors.IsValidation(err))
}

func TestRenameDefaultCategoryFails(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	categories, err := svc.ListCategories(ctx, testUser)
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	_, err = svc.RenameCategory(ctx, testUser, categories[0].ID, "Varios")
	assert.True(t, appErrors.IsValidation(err))
}

func TestNotificationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateNotification(ctx, testUser, CreateNotificationInput{
		Message: "El trabajo Cocina lleva tres semanas sin gastos.",
		Type:    "reminder",
	})
	require.NoError(t, err)
	assert.False(t, created.Read)

	read, err := svc.MarkNotificationRead(ctx, testUser, created.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	// Marking again is idempotent.
	again, err := svc.MarkNotificationRead(ctx, testUser, created.ID)
	require.NoError(t, err)
	assert.True(t, again.Read)

	require.NoError(t, svc.DeleteNotification(ctx, testUser, created.ID))
	remaining, err := svc.ListNotifications(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCreateJobValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateJob(ctx, testUser, CreateJobInput{Name: "", Revenue: 100})
	assert.True(t, appErrors.IsValidation(err))

	_, err = svc.CreateJob(ctx, testUser, CreateJobInput{Name: "Cocina", Revenue: -1})
	assert.True(t, appErrors.IsValidation(err))
}

func TestSnapshotIncludesDefaultCategory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	snap, err := svc.Snapshot(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, snap.Categories, 1)
	assert.True(t, snap.Categories[0].IsDefault())
}
