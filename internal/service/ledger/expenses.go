package ledger

import (
	"context"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/messaging"
	"ledgerchat-backend/internal/repository"
	appErrors "ledgerchat-backend/pkg/errors"
)

// CreateExpense creates an expense for the user. A job link must reference an
// owned job; the linked job's aggregates are recomputed afterwards.
func (s *Service) CreateExpense(ctx context.Context, userID string, input CreateExpenseInput) (*domain.Expense, error) {
	expense := domain.NewExpense(userID, input.Name, input.Amount)
	expense.Vendor = input.Vendor
	expense.Notes = input.Notes
	expense.ReceiptRef = input.ReceiptRef
	if input.Date != nil {
		expense.Date = *input.Date
	}

	category, err := s.resolveCategory(ctx, userID, input.Category)
	if err != nil {
		return nil, err
	}
	expense.Category = category

	if input.JobID != "" {
		if _, err := s.GetJob(ctx, userID, input.JobID); err != nil {
			return nil, err
		}
		expense.JobID = input.JobID
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, appErrors.NewPersistence("failed to create expense", err)
	}
	if err := s.recomputeJobAggregates(ctx, userID, expense.JobID); err != nil {
		return nil, err
	}

	s.logger.Info("expense created",
		zap.String("user_id", userID),
		zap.String("expense_id", expense.ID),
		zap.String("job_id", expense.JobID),
		zap.Float64("amount", expense.Amount),
	)
	s.publish(ctx, messaging.Event{
		Kind:       messaging.EventExpenseCreated,
		UserID:     userID,
		EntityID:   expense.ID,
		OccurredAt: expense.CreatedAt,
		Detail:     map[string]any{"name": expense.Name, "amount": expense.Amount},
	})
	return expense, nil
}

// GetExpense returns one of the user's expenses.
func (s *Service) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	expense, err := s.store.GetExpense(ctx, userID, expenseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound("expense not found: " + expenseID)
		}
		return nil, appErrors.NewPersistence("failed to load expense", err)
	}
	return expense, nil
}

// ListExpenses returns all of the user's expenses.
func (s *Service) ListExpenses(ctx context.Context, userID string) ([]*domain.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, appErrors.NewPersistence("failed to list expenses", err)
	}
	return expenses, nil
}

// UpdateExpense applies a partial update and recomputes every job whose
// aggregate the change affects: the previously linked job, and the newly
// linked one when the link moved.
func (s *Service) UpdateExpense(ctx context.Context, userID, expenseID string, input UpdateExpenseInput) (*domain.Expense, error) {
	expense, err := s.GetExpense(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	previousJobID := expense.JobID

	if input.Name != nil {
		expense.Name = *input.Name
	}
	if input.Amount != nil {
		expense.Amount = *input.Amount
	}
	if input.Category != nil {
		category, err := s.resolveCategory(ctx, userID, *input.Category)
		if err != nil {
			return nil, err
		}
		expense.Category = category
	}
	if input.JobID != nil {
		if *input.JobID != "" {
			if _, err := s.GetJob(ctx, userID, *input.JobID); err != nil {
				return nil, err
			}
		}
		expense.JobID = *input.JobID
	}
	if input.Date != nil {
		expense.Date = *input.Date
	}
	if input.Vendor != nil {
		expense.Vendor = *input.Vendor
	}
	if input.Notes != nil {
		expense.Notes = *input.Notes
	}
	if input.ReceiptRef != nil {
		expense.ReceiptRef = *input.ReceiptRef
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}
	expense.Touch()
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound("expense not found: " + expenseID)
		}
		return nil, appErrors.NewPersistence("failed to update expense", err)
	}

	if err := s.recomputeJobAggregates(ctx, userID, previousJobID); err != nil {
		return nil, err
	}
	if expense.JobID != previousJobID {
		if err := s.recomputeJobAggregates(ctx, userID, expense.JobID); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, messaging.Event{
		Kind:       messaging.EventExpenseUpdated,
		UserID:     userID,
		EntityID:   expense.ID,
		OccurredAt: expense.UpdatedAt,
	})
	return expense, nil
}

// DeleteExpense removes an expense and recomputes the linked job, if any.
// Deletion is the only way to zero out a job's linked cost: amounts must stay
// positive.
func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	expense, err := s.GetExpense(ctx, userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteExpense(ctx, userID, expenseID); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFound("expense not found: " + expenseID)
		}
		return appErrors.NewPersistence("failed to delete expense", err)
	}
	if err := s.recomputeJobAggregates(ctx, userID, expense.JobID); err != nil {
		return err
	}

	s.logger.Info("expense deleted",
		zap.String("user_id", userID),
		zap.String("expense_id", expenseID),
	)
	s.publish(ctx, messaging.Event{
		Kind:     messaging.EventExpenseDeleted,
		UserID:   userID,
		EntityID: expenseID,
	})
	return nil
}

// AttachExpense links an expense to a job and recomputes the aggregates of
// both the previous and new jobs.
func (s *Service) AttachExpense(ctx context.Context, userID, expenseID, jobID string) (*domain.Expense, error) {
	if jobID == "" {
		return nil, appErrors.NewValidation("job id is required to attach an expense")
	}
	return s.UpdateExpense(ctx, userID, expenseID, UpdateExpenseInput{JobID: &jobID})
}

// DetachExpense removes an expense's job link and recomputes the previously
// linked job's aggregates.
func (s *Service) DetachExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	empty := ""
	return s.UpdateExpense(ctx, userID, expenseID, UpdateExpenseInput{JobID: &empty})
}
