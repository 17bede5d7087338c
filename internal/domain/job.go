// Package domain holds the financial entities managed by the service.
// Entities are plain structs; all invariants that span entities (aggregate
// recomputation, category cascades) are enforced by the ledger service, and
// entities are never written to the store except through it.
package domain

import (
	"time"

	"github.com/google/uuid"

	appErrors "ledgerchat-backend/pkg/errors"
)

// MoneyEpsilon is the tolerance used when comparing derived monetary fields.
const MoneyEpsilon = 0.01

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusPaid       JobStatus = "paid"
)

// ParseJobStatus validates and normalizes a status string.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobStatusInProgress, JobStatusCompleted, JobStatusPaid:
		return JobStatus(s), nil
	}
	return "", appErrors.NewValidation("invalid job status: " + s)
}

// Job is a contract with cached financial aggregates. Expenses and Profit are
// derived fields, recomputed after every linked-expense mutation:
// Expenses = sum of linked expense amounts, Profit = Revenue - Expenses.
type Job struct {
	ID          string
	UserID      string
	Name        string
	Client      string
	Address     string
	Description string
	Status      JobStatus
	Revenue     float64
	Expenses    float64
	Profit      float64
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewJob creates a job with a fresh identifier and timestamps. Profit starts
// equal to revenue since no expenses are linked yet.
func NewJob(userID, name string, revenue float64) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Status:    JobStatusInProgress,
		Revenue:   revenue,
		Expenses:  0,
		Profit:    revenue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the job's own invariants.
func (j *Job) Validate() error {
	if j.UserID == "" {
		return appErrors.NewValidation("job owner is required")
	}
	if j.Name == "" {
		return appErrors.NewValidation("job name is required")
	}
	if j.Revenue <= 0 {
		return appErrors.NewValidation("job revenue must be greater than zero")
	}
	if _, err := ParseJobStatus(string(j.Status)); err != nil {
		return err
	}
	return nil
}

// Touch bumps the modification timestamp.
func (j *Job) Touch() {
	j.UpdatedAt = time.Now().UTC()
}
