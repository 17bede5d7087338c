package domain

import (
	"time"

	"github.com/google/uuid"

	appErrors "ledgerchat-backend/pkg/errors"
)

// Expense is a cost item, optionally linked to a job. Any mutation of its
// amount, job link, or existence must be followed by an aggregate
// recomputation of every affected job.
type Expense struct {
	ID         string
	UserID     string
	JobID      string // empty when unlinked
	Name       string
	Amount     float64
	Category   string
	Date       time.Time
	Vendor     string
	Notes      string
	ReceiptRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewExpense creates an expense with a fresh identifier and timestamps.
// The category defaults to the reserved default category when empty.
func NewExpense(userID, name string, amount float64) *Expense {
	now := time.Now().UTC()
	return &Expense{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Amount:    amount,
		Category:  DefaultCategoryName,
		Date:      now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the expense's own invariants.
func (e *Expense) Validate() error {
	if e.UserID == "" {
		return appErrors.NewValidation("expense owner is required")
	}
	if e.Name == "" {
		return appErrors.NewValidation("expense name is required")
	}
	if e.Amount <= 0 {
		return appErrors.NewValidation("expense amount must be greater than zero")
	}
	if e.Category == "" {
		return appErrors.NewValidation("expense category is required")
	}
	return nil
}

// Touch bumps the modification timestamp.
func (e *Expense) Touch() {
	e.UpdatedAt = time.Now().UTC()
}
