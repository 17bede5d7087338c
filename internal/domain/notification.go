package domain

import (
	"time"

	"github.com/google/uuid"

	appErrors "ledgerchat-backend/pkg/errors"
)

// NotificationType classifies a notification for the client UI.
type NotificationType string

const (
	NotificationTypeInfo     NotificationType = "info"
	NotificationTypeReminder NotificationType = "reminder"
	NotificationTypeAlert    NotificationType = "alert"
)

// Notification is a message shown to the user, optionally tied to a job.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Type      NotificationType
	JobID     string // empty when not job-related
	Read      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNotification creates a notification with a fresh identifier.
func NewNotification(userID, message string, typ NotificationType) *Notification {
	now := time.Now().UTC()
	if typ == "" {
		typ = NotificationTypeInfo
	}
	return &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Message:   message,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the notification's own invariants.
func (n *Notification) Validate() error {
	if n.UserID == "" {
		return appErrors.NewValidation("notification owner is required")
	}
	if n.Message == "" {
		return appErrors.NewValidation("notification message is required")
	}
	return nil
}
