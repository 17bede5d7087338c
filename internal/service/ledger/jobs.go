package ledger

import (
	"context"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/messaging"
	"ledgerchat-backend/internal/repository"
	appErrors "ledgerchat-backend/pkg/errors"
)

// CreateJob creates a job for the user.
func (s *Service) CreateJob(ctx context.Context, userID string, input CreateJobInput) (*domain.Job, error) {
	job := domain.NewJob(userID, input.Name, input.Revenue)
	job.Client = input.Client
	job.Address = input.Address
	job.Description = input.Description
	job.StartDate = input.StartDate
	job.EndDate = input.EndDate
	if input.Status != "" {
		status, err := domain.ParseJobStatus(input.Status)
		if err != nil {
			return nil, err
		}
		job.Status = status
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, appErrors.NewPersistence("failed to create job", err)
	}

	s.logger.Info("job created",
		zap.String("user_id", userID),
		zap.String("job_id", job.ID),
		zap.String("name", job.Name),
	)
	s.publish(ctx, messaging.Event{
		Kind:       messaging.EventJobCreated,
		UserID:     userID,
		EntityID:   job.ID,
		OccurredAt: job.CreatedAt,
		Detail:     map[string]any{"name": job.Name, "revenue": job.Revenue},
	})
	return job, nil
}

// GetJob returns one of the user's jobs.
func (s *Service) GetJob(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	job, err := s.store.GetJob(ctx, userID, jobID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound("job not found: " + jobID)
		}
		return nil, appErrors.NewPersistence("failed to load job", err)
	}
	return job, nil
}

// ListJobs returns all of the user's jobs.
func (s *Service) ListJobs(ctx context.Context, userID string) ([]*domain.Job, error) {
	jobs, err := s.store.ListJobs(ctx, userID)
	if err != nil {
		return nil, appErrors.NewPersistence("failed to list jobs", err)
	}
	return jobs, nil
}

// UpdateJob applies a partial update. A revenue change triggers an aggregate
// recomputation since profit derives from revenue.
func (s *Service) UpdateJob(ctx context.Context, userID, jobID string, input UpdateJobInput) (*domain.Job, error) {
	job, err := s.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	revenueChanged := false
	if input.Name != nil {
		job.Name = *input.Name
	}
	if input.Client != nil {
		job.Client = *input.Client
	}
	if input.Address != nil {
		job.Address = *input.Address
	}
	if input.Description != nil {
		job.Description = *input.Description
	}
	if input.Revenue != nil {
		job.Revenue = *input.Revenue
		revenueChanged = true
	}
	if input.Status != nil {
		status, err := domain.ParseJobStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		job.Status = status
	}
	if input.StartDate != nil {
		job.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		job.EndDate = input.EndDate
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	job.Touch()
	if err := s.store.UpdateJob(ctx, job); err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound("job not found: " + jobID)
		}
		return nil, appErrors.NewPersistence("failed to update job", err)
	}

	if revenueChanged {
		if err := s.recomputeJobAggregates(ctx, userID, jobID); err != nil {
			return nil, err
		}
		job, err = s.GetJob(ctx, userID, jobID)
		if err != nil {
			return nil, err
		}
	}

	s.publish(ctx, messaging.Event{
		Kind:       messaging.EventJobUpdated,
		UserID:     userID,
		EntityID:   job.ID,
		OccurredAt: job.UpdatedAt,
	})
	return job, nil
}

// UpdateJobStatus transitions a job's lifecycle state.
func (s *Service) UpdateJobStatus(ctx context.Context, userID, jobID, status string) (*domain.Job, error) {
	return s.UpdateJob(ctx, userID, jobID, UpdateJobInput{Status: &status})
}

// DeleteJob removes a job. Linked expenses survive and are detached, so the
// user's cost history is preserved.
func (s *Service) DeleteJob(ctx context.Context, userID, jobID string) error {
	if _, err := s.GetJob(ctx, userID, jobID); err != nil {
		return err
	}

	linked, err := s.store.ListExpensesByJob(ctx, userID, jobID)
	if err != nil {
		return appErrors.NewPersistence("failed to list linked expenses", err)
	}
	for _, expense := range linked {
		expense.JobID = ""
		expense.Touch()
		if err := s.store.UpdateExpense(ctx, expense); err != nil {
			return appErrors.NewPersistence("failed to detach expense "+expense.ID, err)
		}
	}

	if err := s.store.DeleteJob(ctx, userID, jobID); err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFound("job not found: " + jobID)
		}
		return appErrors.NewPersistence("failed to delete job", err)
	}

	s.logger.Info("job deleted",
		zap.String("user_id", userID),
		zap.String("job_id", jobID),
		zap.Int("detached_expenses", len(linked)),
	)
	s.publish(ctx, messaging.Event{
		Kind:     messaging.EventJobDeleted,
		UserID:   userID,
		EntityID: jobID,
	})
	return nil
}
