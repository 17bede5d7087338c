// Package api defines the contracts for API requests and responses.
// It decouples the API structure from the internal domain models.
package api

// ChatMessage is a single entry in the conversation history.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// ChatContext carries optional per-turn context supplied by the client.
type ChatContext struct {
	ConversationID     string    `json:"conversationId,omitempty"`
	ConversationMemory string    `json:"conversationMemory,omitempty"`
	Receipts           []Receipt `json:"receipts,omitempty"`
}

// ChatRequest is the expected body for a POST /api/chat request.
type ChatRequest struct {
	Prompt  string        `json:"prompt" validate:"required"`
	History []ChatMessage `json:"history" validate:"omitempty,dive"`
	Context *ChatContext  `json:"context,omitempty"`
}

// ChatResponse is the result of one orchestration turn.
type ChatResponse struct {
	Text          string   `json:"text"`
	Actions       []Action `json:"actions,omitempty"`
	CorrelationID string   `json:"correlationId"`
}

// Action is a single requested mutation or query in wire form. The action
// name is validated against the closed taxonomy at the input boundary.
type Action struct {
	Action              string         `json:"action" validate:"required"`
	Data                map[string]any `json:"data,omitempty"`
	ConfirmationMessage string         `json:"confirmationMessage,omitempty"`
}

// ExecuteActionsRequest is the expected body for POST /api/actions/execute.
type ExecuteActionsRequest struct {
	Actions []Action `json:"actions" validate:"required,min=1,dive"`
}

// ActionLogEntry is one row of the per-turn execution trace.
type ActionLogEntry struct {
	Action    string         `json:"action"`
	Status    string         `json:"status"`
	Detail    string         `json:"detail,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	ElapsedMs int64          `json:"elapsedMs"`
}

// ExecuteActionsResponse reports the outcome of a multi-action execution.
type ExecuteActionsResponse struct {
	Success bool             `json:"success"`
	Mutated bool             `json:"mutated"`
	Log     []ActionLogEntry `json:"log"`
	Error   string           `json:"error,omitempty"`
}

// Receipt carries structured fields extracted from a receipt photo by the
// (out-of-scope) OCR pipeline. Action handlers bind these verbatim into the
// corresponding expense fields.
type Receipt struct {
	Path     string        `json:"path,omitempty"`
	Vendor   string        `json:"vendor,omitempty"`
	Subtotal float64       `json:"subtotal,omitempty"`
	Tax      float64       `json:"tax,omitempty"`
	Total    float64       `json:"total,omitempty"`
	Date     string        `json:"date,omitempty"`
	Items    []ReceiptItem `json:"items,omitempty"`
}

// ReceiptItem is one line of a receipt's itemized list.
type ReceiptItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// CreateJobRequest is the expected body for a POST /api/jobs request.
type CreateJobRequest struct {
	Name        string  `json:"name" validate:"required"`
	Client      string  `json:"client,omitempty"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
	Revenue     float64 `json:"revenue" validate:"required,gt=0"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=in_progress completed paid"`
	StartDate   string  `json:"startDate,omitempty"`
	EndDate     string  `json:"endDate,omitempty"`
}

// UpdateJobRequest is the expected body for a PUT /api/jobs/{jobId} request.
// Nil fields are left untouched.
type UpdateJobRequest struct {
	Name        *string  `json:"name,omitempty"`
	Client      *string  `json:"client,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Description *string  `json:"description,omitempty"`
	Revenue     *float64 `json:"revenue,omitempty" validate:"omitempty,gt=0"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=in_progress completed paid"`
	StartDate   *string  `json:"startDate,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
}

// JobResponse is the API representation of a single job.
type JobResponse struct {
	JobID       string  `json:"jobId"`
	Name        string  `json:"name"`
	Client      string  `json:"client,omitempty"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Revenue     float64 `json:"revenue"`
	Expenses    float64 `json:"expenses"`
	Profit      float64 `json:"profit"`
	StartDate   string  `json:"startDate,omitempty"`
	EndDate     string  `json:"endDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CreateExpenseRequest is the expected body for a POST /api/expenses request.
type CreateExpenseRequest struct {
	Name       string  `json:"name" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Category   string  `json:"category,omitempty"`
	JobID      string  `json:"jobId,omitempty"`
	Date       string  `json:"date,omitempty"`
	Vendor     string  `json:"vendor,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	ReceiptRef string  `json:"receiptRef,omitempty"`
}

// UpdateExpenseRequest is the expected body for a PUT /api/expenses/{expenseId}
// request. Nil fields are left untouched.
type UpdateExpenseRequest struct {
	Name       *string  `json:"name,omitempty"`
	Amount     *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Category   *string  `json:"category,omitempty"`
	JobID      *string  `json:"jobId,omitempty"`
	Date       *string  `json:"date,omitempty"`
	Vendor     *string  `json:"vendor,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	ReceiptRef *string  `json:"receiptRef,omitempty"`
}

// ExpenseResponse is the API representation of a single expense.
type ExpenseResponse struct {
	ExpenseID  string  `json:"expenseId"`
	JobID      string  `json:"jobId,omitempty"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Date       string  `json:"date"`
	Vendor     string  `json:"vendor,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	ReceiptRef string  `json:"receiptRef,omitempty"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
}

// CreateCategoryRequest is the expected body for a POST /api/categories request.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// RenameCategoryRequest is the expected body for a PUT /api/categories/{categoryId}.
type RenameCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryResponse is the API representation of a single category.
type CategoryResponse struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	IsDefault  bool   `json:"isDefault"`
}

// NotificationResponse is the API representation of a single notification.
type NotificationResponse struct {
	NotificationID string `json:"notificationId"`
	Message        string `json:"message"`
	Type           string `json:"type"`
	JobID          string `json:"jobId,omitempty"`
	Read           bool   `json:"read"`
	CreatedAt      string `json:"createdAt"`
}
