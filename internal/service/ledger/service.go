// Package ledger implements the entity service: CRUD for jobs, expenses,
// categories and notifications, ownership enforcement, and recomputation of
// the derived financial aggregates. It is the single source of truth for
// financial invariants; nothing mutates the store except through it.
package ledger

import (
	"context"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/messaging"
	"ledgerchat-backend/internal/repository"
	appErrors "ledgerchat-backend/pkg/errors"
)

// Service is the entity service.
type Service struct {
	store     repository.Store
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewService creates a ledger service. A nil publisher disables events.
func NewService(store repository.Store, publisher messaging.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Snapshot loads the user's full financial state. Called once per
// orchestration turn; alias tokens are assigned in this order.
func (s *Service) Snapshot(ctx context.Context, userID string) (*domain.Snapshot, error) {
	jobs, err := s.store.ListJobs(ctx, userID)
	if err != nil {
		return nil, appErrors.NewPersistence("failed to list jobs", err)
	}
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, appErrors.NewPersistence("failed to list expenses", err)
	}
	categories, err := s.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{
		Jobs:       jobs,
		Expenses:   expenses,
		Categories: categories,
	}, nil
}

// GetConversationMemory returns the user's conversation memory, or an empty
// one when none has been stored yet.
func (s *Service) GetConversationMemory(ctx context.Context, userID string) (*domain.ConversationMemory, error) {
	memory, err := s.store.GetConversationMemory(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return &domain.ConversationMemory{UserID: userID}, nil
		}
		return nil, appErrors.NewPersistence("failed to load conversation memory", err)
	}
	return memory, nil
}

// SaveConversationMemory stores the user's conversation memory.
func (s *Service) SaveConversationMemory(ctx context.Context, memory *domain.ConversationMemory) error {
	if err := s.store.SaveConversationMemory(ctx, memory); err != nil {
		return appErrors.NewPersistence("failed to save conversation memory", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event messaging.Event) {
	s.publisher.Publish(ctx, event)
}
