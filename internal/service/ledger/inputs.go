package ledger

import "time"

// CreateJobInput carries the fields for a new job. Name and Revenue are
// required; everything else is optional.
type CreateJobInput struct {
	Name        string
	Client      string
	Address     string
	Description string
	Revenue     float64
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateJobInput carries partial job updates; nil fields are untouched.
type UpdateJobInput struct {
	Name        *string
	Client      *string
	Address     *string
	Description *string
	Revenue     *float64
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// CreateExpenseInput carries the fields for a new expense. Name and Amount
// are required. An empty Category falls back to the reserved default.
type CreateExpenseInput struct {
	Name       string
	Amount     float64
	Category   string
	JobID      string
	Date       *time.Time
	Vendor     string
	Notes      string
	ReceiptRef string
}

// UpdateExpenseInput carries partial expense updates; nil fields are
// untouched. Setting JobID to the empty string detaches the expense.
type UpdateExpenseInput struct {
	Name       *string
	Amount     *float64
	Category   *string
	JobID      *string
	Date       *time.Time
	Vendor     *string
	Notes      *string
	ReceiptRef *string
}

// CreateNotificationInput carries the fields for a new notification.
type CreateNotificationInput struct {
	Message string
	Type    string
	JobID   string
}
