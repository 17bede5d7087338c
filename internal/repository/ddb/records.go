package ddb

import (
	"time"

	"ledgerchat-backend/internal/domain"
)

// Item records mirror the domain entities with DynamoDB key attributes and
// string timestamps. Conversions are kept next to the records so the key
// scheme lives in one file.

type jobRecord struct {
	PK          string  `dynamodbav:"PK"`
	SK          string  `dynamodbav:"SK"`
	EntityType  string  `dynamodbav:"EntityType"`
	ID          string  `dynamodbav:"ID"`
	UserID      string  `dynamodbav:"UserID"`
	Name        string  `dynamodbav:"Name"`
	Client      string  `dynamodbav:"Client,omitempty"`
	Address     string  `dynamodbav:"Address,omitempty"`
	Description string  `dynamodbav:"Description,omitempty"`
	Status      string  `dynamodbav:"Status"`
	Revenue     float64 `dynamodbav:"Revenue"`
	Expenses    float64 `dynamodbav:"Expenses"`
	Profit      float64 `dynamodbav:"Profit"`
	StartDate   string  `dynamodbav:"StartDate,omitempty"`
	EndDate     string  `dynamodbav:"EndDate,omitempty"`
	CreatedAt   string  `dynamodbav:"CreatedAt"`
	UpdatedAt   string  `dynamodbav:"UpdatedAt"`
}

func toJobRecord(job *domain.Job) jobRecord {
	rec := jobRecord{
		PK:          userPK(job.UserID),
		SK:          skJobPrefix + job.ID,
		EntityType:  "JOB",
		ID:          job.ID,
		UserID:      job.UserID,
		Name:        job.Name,
		Client:      job.Client,
		Address:     job.Address,
		Description: job.Description,
		Status:      string(job.Status),
		Revenue:     job.Revenue,
		Expenses:    job.Expenses,
		Profit:      job.Profit,
		CreatedAt:   job.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if job.StartDate != nil {
		rec.StartDate = job.StartDate.UTC().Format(time.RFC3339Nano)
	}
	if job.EndDate != nil {
		rec.EndDate = job.EndDate.UTC().Format(time.RFC3339Nano)
	}
	return rec
}

func (r jobRecord) toDomain() *domain.Job {
	job := &domain.Job{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Client:      r.Client,
		Address:     r.Address,
		Description: r.Description,
		Status:      domain.JobStatus(r.Status),
		Revenue:     r.Revenue,
		Expenses:    r.Expenses,
		Profit:      r.Profit,
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
	if r.StartDate != "" {
		t := parseTime(r.StartDate)
		job.StartDate = &t
	}
	if r.EndDate != "" {
		t := parseTime(r.EndDate)
		job.EndDate = &t
	}
	return job
}

type expenseRecord struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	ID         string  `dynamodbav:"ID"`
	UserID     string  `dynamodbav:"UserID"`
	JobID      string  `dynamodbav:"JobID,omitempty"`
	Name       string  `dynamodbav:"Name"`
	Amount     float64 `dynamodbav:"Amount"`
	Category   string  `dynamodbav:"Category"`
	Date       string  `dynamodbav:"Date"`
	Vendor     string  `dynamodbav:"Vendor,omitempty"`
	Notes      string  `dynamodbav:"Notes,omitempty"`
	ReceiptRef string  `dynamodbav:"ReceiptRef,omitempty"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
	UpdatedAt  string  `dynamodbav:"UpdatedAt"`
}

func toExpenseRecord(expense *domain.Expense) expenseRecord {
	return expenseRecord{
		PK:         userPK(expense.UserID),
		SK:         skExpensePrefix + expense.ID,
		EntityType: "EXPENSE",
		ID:         expense.ID,
		UserID:     expense.UserID,
		JobID:      expense.JobID,
		Name:       expense.Name,
		Amount:     expense.Amount,
		Category:   expense.Category,
		Date:       expense.Date.UTC().Format(time.RFC3339Nano),
		Vendor:     expense.Vendor,
		Notes:      expense.Notes,
		ReceiptRef: expense.ReceiptRef,
		CreatedAt:  expense.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  expense.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (r expenseRecord) toDomain() *domain.Expense {
	return &domain.Expense{
		ID:         r.ID,
		UserID:     r.UserID,
		JobID:      r.JobID,
		Name:       r.Name,
		Amount:     r.Amount,
		Category:   r.Category,
		Date:       parseTime(r.Date),
		Vendor:     r.Vendor,
		Notes:      r.Notes,
		ReceiptRef: r.ReceiptRef,
		CreatedAt:  parseTime(r.CreatedAt),
		UpdatedAt:  parseTime(r.UpdatedAt),
	}
}

type categoryRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	ID         string `dynamodbav:"ID"`
	UserID     string `dynamodbav:"UserID"`
	Name       string `dynamodbav:"Name"`
	NameLower  string `dynamodbav:"NameLower"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func (r categoryRecord) toDomain() *domain.Category {
	return &domain.Category{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

type notificationRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	ID         string `dynamodbav:"ID"`
	UserID     string `dynamodbav:"UserID"`
	Message    string `dynamodbav:"Message"`
	Type       string `dynamodbav:"Type"`
	JobID      string `dynamodbav:"JobID,omitempty"`
	Read       bool   `dynamodbav:"Read"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func (r notificationRecord) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Message:   r.Message,
		Type:      domain.NotificationType(r.Type),
		JobID:     r.JobID,
		Read:      r.Read,
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

type memoryRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
	Summary    string `dynamodbav:"Summary"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
