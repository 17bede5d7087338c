// Package repository defines the persistence interfaces for the financial
// entities. Implementations live in the ddb (DynamoDB) and memory
// (in-process, tests and local development) subpackages.
//
// Repositories are deliberately dumb: ownership checks, cascades, and
// aggregate recomputation belong to the ledger service, which is the single
// source of truth for financial invariants.
package repository

import (
	"context"

	"ledgerchat-backend/internal/domain"
)

// JobRepository persists jobs.
type JobRepository interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJob(ctx context.Context, userID, jobID string) (*domain.Job, error)
	ListJobs(ctx context.Context, userID string) ([]*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, userID, jobID string) error
}

// ExpenseRepository persists expenses.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, expense *domain.Expense) error
	GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, userID string) ([]*domain.Expense, error)
	ListExpensesByJob(ctx context.Context, userID, jobID string) ([]*domain.Expense, error)
	ListExpensesByCategory(ctx context.Context, userID, category string) ([]*domain.Expense, error)
	UpdateExpense(ctx context.Context, expense *domain.Expense) error
	DeleteExpense(ctx context.Context, userID, expenseID string) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error)
	GetCategoryByName(ctx context.Context, userID, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, userID string) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *domain.Notification) error
	GetNotification(ctx context.Context, userID, notificationID string) (*domain.Notification, error)
	ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error)
	UpdateNotification(ctx context.Context, notification *domain.Notification) error
	DeleteNotification(ctx context.Context, userID, notificationID string) error
}

// MemoryRepository persists the per-user conversation memory.
type MemoryRepository interface {
	GetConversationMemory(ctx context.Context, userID string) (*domain.ConversationMemory, error)
	SaveConversationMemory(ctx context.Context, memory *domain.ConversationMemory) error
}

// Store aggregates all entity repositories behind one dependency.
type Store interface {
	JobRepository
	ExpenseRepository
	CategoryRepository
	NotificationRepository
	MemoryRepository
}
