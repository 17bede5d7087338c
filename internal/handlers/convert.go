package handlers

import (
	"time"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/pkg/api"
)

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toJobResponse(j *domain.Job) api.JobResponse {
	return api.JobResponse{
		JobID:       j.ID,
		Name:        j.Name,
		Client:      j.Client,
		Address:     j.Address,
		Description: j.Description,
		Status:      string(j.Status),
		Revenue:     j.Revenue,
		Expenses:    j.Expenses,
		Profit:      j.Profit,
		StartDate:   formatDate(j.StartDate),
		EndDate:     formatDate(j.EndDate),
		CreatedAt:   j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   j.UpdatedAt.Format(time.RFC3339),
	}
}

func toJobResponses(jobs []*domain.Job) []api.JobResponse {
	out := make([]api.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	return out
}

func toExpenseResponse(e *domain.Expense) api.ExpenseResponse {
	return api.ExpenseResponse{
		ExpenseID:  e.ID,
		JobID:      e.JobID,
		Name:       e.Name,
		Amount:     e.Amount,
		Category:   e.Category,
		Date:       e.Date.Format(dateLayout),
		Vendor:     e.Vendor,
		Notes:      e.Notes,
		ReceiptRef: e.ReceiptRef,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.Format(time.RFC3339),
	}
}

func toExpenseResponses(expenses []*domain.Expense) []api.ExpenseResponse {
	out := make([]api.ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

func toCategoryResponse(c *domain.Category) api.CategoryResponse {
	return api.CategoryResponse{
		CategoryID: c.ID,
		Name:       c.Name,
		IsDefault:  c.IsDefault(),
	}
}

func toCategoryResponses(categories []*domain.Category) []api.CategoryResponse {
	out := make([]api.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out
}

func toNotificationResponse(n *domain.Notification) api.NotificationResponse {
	return api.NotificationResponse{
		NotificationID: n.ID,
		Message:        n.Message,
		Type:           string(n.Type),
		JobID:          n.JobID,
		Read:           n.Read,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
}

func toNotificationResponses(notifications []*domain.Notification) []api.NotificationResponse {
	out := make([]api.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toNotificationResponse(n))
	}
	return out
}
