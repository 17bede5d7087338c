package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "ledgerchat-backend/pkg/errors"
)

// DefaultCategoryName is the reserved category every user owns. It cannot be
// deleted or renamed; deleting another category reassigns its expenses here.
const DefaultCategoryName = "Otros"

// Category groups expenses under a per-user unique name.
type Category struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory creates a category with a fresh identifier and timestamps.
func NewCategory(userID, name string) *Category {
	now := time.Now().UTC()
	return &Category{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the category's own invariants.
func (c *Category) Validate() error {
	if c.UserID == "" {
		return appErrors.NewValidation("category owner is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return appErrors.NewValidation("category name is required")
	}
	return nil
}

// IsDefault reports whether this is the reserved default category.
func (c *Category) IsDefault() bool {
	return strings.EqualFold(c.Name, DefaultCategoryName)
}
