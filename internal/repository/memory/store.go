// Package memory provides an in-process implementation of repository.Store.
// It backs unit tests and local development; the production driver is the
// ddb package.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository"
)

// Store keeps every entity in per-user maps guarded by one RWMutex.
type Store struct {
	mu            sync.RWMutex
	jobs          map[string]map[string]*domain.Job          // userID -> jobID -> job
	expenses      map[string]map[string]*domain.Expense      // userID -> expenseID -> expense
	categories    map[string]map[string]*domain.Category     // userID -> categoryID -> category
	notifications map[string]map[string]*domain.Notification // userID -> notifID -> notification
	memories      map[string]*domain.ConversationMemory      // userID -> memory
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		jobs:          make(map[string]map[string]*domain.Job),
		expenses:      make(map[string]map[string]*domain.Expense),
		categories:    make(map[string]map[string]*domain.Category),
		notifications: make(map[string]map[string]*domain.Notification),
		memories:      make(map[string]*domain.ConversationMemory),
	}
}

var _ repository.Store = (*Store)(nil)

// ----- jobs -----

func (s *Store) CreateJob(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobs[job.UserID] == nil {
		s.jobs[job.UserID] = make(map[string]*domain.Job)
	}
	cp := *job
	s.jobs[job.UserID][job.ID] = &cp
	return nil
}

func (s *Store) GetJob(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[userID][jobID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *Store) ListJobs(ctx context.Context, userID string) ([]*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Job, 0, len(s.jobs[userID]))
	for _, job := range s.jobs[userID] {
		cp := *job
		out = append(out, &cp)
	}
	sortByCreation(out, func(j *domain.Job) (string, string) {
		return j.CreatedAt.Format("2006-01-02T15:04:05.000000000"), j.ID
	})
	return out, nil
}

func (s *Store) UpdateJob(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.UserID][job.ID]; !ok {
		return repository.ErrJobNotFound
	}
	cp := *job
	s.jobs[job.UserID][job.ID] = &cp
	return nil
}

func (s *Store) DeleteJob(ctx context.Context, userID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[userID][jobID]; !ok {
		return repository.ErrJobNotFound
	}
	delete(s.jobs[userID], jobID)
	return nil
}

// ----- expenses -----

func (s *Store) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expenses[expense.UserID] == nil {
		s.expenses[expense.UserID] = make(map[string]*domain.Expense)
	}
	cp := *expense
	s.expenses[expense.UserID][expense.ID] = &cp
	return nil
}

func (s *Store) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expense, ok := s.expenses[userID][expenseID]
	if !ok {
		return nil, repository.ErrExpenseNotFound
	}
	cp := *expense
	return &cp, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]*domain.Expense, error) {
	return s.listExpenses(userID, func(*domain.Expense) bool { return true })
}

func (s *Store) ListExpensesByJob(ctx context.Context, userID, jobID string) ([]*domain.Expense, error) {
	return s.listExpenses(userID, func(e *domain.Expense) bool { return e.JobID == jobID })
}

func (s *Store) ListExpensesByCategory(ctx context.Context, userID, category string) ([]*domain.Expense, error) {
	return s.listExpenses(userID, func(e *domain.Expense) bool {
		return strings.EqualFold(e.Category, category)
	})
}

func (s *Store) listExpenses(userID string, keep func(*domain.Expense) bool) ([]*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Expense, 0, len(s.expenses[userID]))
	for _, expense := range s.expenses[userID] {
		if keep(expense) {
			cp := *expense
			out = append(out, &cp)
		}
	}
	sortByCreation(out, func(e *domain.Expense) (string, string) {
		return e.CreatedAt.Format("2006-01-02T15:04:05.000000000"), e.ID
	})
	return out, nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense *domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[expense.UserID][expense.ID]; !ok {
		return repository.ErrExpenseNotFound
	}
	cp := *expense
	s.expenses[expense.UserID][expense.ID] = &cp
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[userID][expenseID]; !ok {
		return repository.ErrExpenseNotFound
	}
	delete(s.expenses[userID], expenseID)
	return nil
}

// ----- categories -----

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categories[category.UserID] == nil {
		s.categories[category.UserID] = make(map[string]*domain.Category)
	}
	cp := *category
	s.categories[category.UserID][category.ID] = &cp
	return nil
}

func (s *Store) GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.categories[userID][categoryID]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *category
	return &cp, nil
}

func (s *Store) GetCategoryByName(ctx context.Context, userID, name string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, category := range s.categories[userID] {
		if strings.EqualFold(category.Name, name) {
			cp := *category
			return &cp, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Category, 0, len(s.categories[userID]))
	for _, category := range s.categories[userID] {
		cp := *category
		out = append(out, &cp)
	}
	sortByCreation(out, func(c *domain.Category) (string, string) {
		return c.CreatedAt.Format("2006-01-02T15:04:05.000000000"), c.ID
	})
	return out, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[category.UserID][category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	cp := *category
	s.categories[category.UserID][category.ID] = &cp
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[userID][categoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(s.categories[userID], categoryID)
	return nil
}

// ----- notifications -----

func (s *Store) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notifications[notification.UserID] == nil {
		s.notifications[notification.UserID] = make(map[string]*domain.Notification)
	}
	cp := *notification
	s.notifications[notification.UserID][notification.ID] = &cp
	return nil
}

func (s *Store) GetNotification(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notification, ok := s.notifications[userID][notificationID]
	if !ok {
		return nil, repository.ErrNotificationNotFound
	}
	cp := *notification
	return &cp, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Notification, 0, len(s.notifications[userID]))
	for _, notification := range s.notifications[userID] {
		cp := *notification
		out = append(out, &cp)
	}
	sortByCreation(out, func(n *domain.Notification) (string, string) {
		return n.CreatedAt.Format("2006-01-02T15:04:05.000000000"), n.ID
	})
	return out, nil
}

func (s *Store) UpdateNotification(ctx context.Context, notification *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[notification.UserID][notification.ID]; !ok {
		return repository.ErrNotificationNotFound
	}
	cp := *notification
	s.notifications[notification.UserID][notification.ID] = &cp
	return nil
}

func (s *Store) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[userID][notificationID]; !ok {
		return repository.ErrNotificationNotFound
	}
	delete(s.notifications[userID], notificationID)
	return nil
}

// ----- conversation memory -----

func (s *Store) GetConversationMemory(ctx context.Context, userID string) (*domain.ConversationMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	memory, ok := s.memories[userID]
	if !ok {
		return nil, repository.ErrMemoryNotFound
	}
	cp := *memory
	return &cp, nil
}

func (s *Store) SaveConversationMemory(ctx context.Context, memory *domain.ConversationMemory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *memory
	s.memories[memory.UserID] = &cp
	return nil
}

// sortByCreation orders entities by creation timestamp, then id, so list
// results (and therefore alias token assignment) are deterministic.
func sortByCreation[T any](items []T, key func(T) (string, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if ti != tj {
			return ti < tj
		}
		return idi < idj
	})
}
