package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository"
)

const testUser = "user-1"

func TestJobRoundTripAndIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := domain.NewJob(testUser, "Cocina", 5000)
	require.NoError(t, store.CreateJob(ctx, job))

	// Mutating the caller's copy after the write must not leak into the store.
	job.Name = "mutated"

	got, err := store.GetJob(ctx, testUser, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cocina", got.Name)

	// Mutating a read copy must not leak either.
	got.Revenue = 0
	again, err := store.GetJob(ctx, testUser, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, again.Revenue)
}

func TestGetJobScopedToOwner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := domain.NewJob(testUser, "Cocina", 5000)
	require.NoError(t, store.CreateJob(ctx, job))

	_, err := store.GetJob(ctx, "someone-else", job.ID)
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
	assert.True(t, repository.IsNotFound(err))
}

func TestListJobsOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"Primero", "Segundo", "Tercero"} {
		job := domain.NewJob(testUser, name, 1000)
		job.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.CreateJob(ctx, job))
	}

	jobs, err := store.ListJobs(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "Primero", jobs[0].Name)
	assert.Equal(t, "Segundo", jobs[1].Name)
	assert.Equal(t, "Tercero", jobs[2].Name)
}

func TestUpdateMissingJobFails(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := domain.NewJob(testUser, "Cocina", 5000)
	err := store.UpdateJob(ctx, job)
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestExpenseFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	linked := domain.NewExpense(testUser, "Cemento", 250)
	linked.JobID = "job-1"
	linked.Category = "Materiales"
	require.NoError(t, store.CreateExpense(ctx, linked))

	loose := domain.NewExpense(testUser, "Gasolina", 40)
	loose.Category = "Transporte"
	require.NoError(t, store.CreateExpense(ctx, loose))

	byJob, err := store.ListExpensesByJob(ctx, testUser, "job-1")
	require.NoError(t, err)
	require.Len(t, byJob, 1)
	assert.Equal(t, "Cemento", byJob[0].Name)

	// Category filtering is case-insensitive.
	byCategory, err := store.ListExpensesByCategory(ctx, testUser, "materiales")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Cemento", byCategory[0].Name)

	all, err := store.ListExpenses(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCategoryLookupByNameIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	category := domain.NewCategory(testUser, "Materiales")
	require.NoError(t, store.CreateCategory(ctx, category))

	got, err := store.GetCategoryByName(ctx, testUser, "MATERIALES")
	require.NoError(t, err)
	assert.Equal(t, category.ID, got.ID)

	_, err = store.GetCategoryByName(ctx, testUser, "Herramientas")
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
}

func TestNotificationRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	notification := domain.NewNotification(testUser, "hola", domain.NotificationTypeInfo)
	require.NoError(t, store.CreateNotification(ctx, notification))

	notification.Read = true
	require.NoError(t, store.UpdateNotification(ctx, notification))

	got, err := store.GetNotification(ctx, testUser, notification.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)

	require.NoError(t, store.DeleteNotification(ctx, testUser, notification.ID))
	_, err = store.GetNotification(ctx, testUser, notification.ID)
	assert.ErrorIs(t, err, repository.ErrNotificationNotFound)
}

func TestConversationMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.GetConversationMemory(ctx, testUser)
	assert.ErrorIs(t, err, repository.ErrMemoryNotFound)

	memory := &domain.ConversationMemory{
		UserID:    testUser,
		Summary:   "Usuario: hola",
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveConversationMemory(ctx, memory))

	got, err := store.GetConversationMemory(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "Usuario: hola", got.Summary)
}
