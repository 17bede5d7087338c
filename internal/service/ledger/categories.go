package ledger

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository"
	appErrors "ledgerchat-backend/pkg/errors"
)

// resolveCategory maps a requested category name onto an existing category's
// display name, creating the reserved default when the name is empty. Unknown
// names are created on the fly so chat-driven expenses never fail on a
// category the user mentioned for the first time.
func (s *Service) resolveCategory(ctx context.Context, userID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if err := s.ensureDefaultCategory(ctx, userID); err != nil {
			return "", err
		}
		return domain.DefaultCategoryName, nil
	}

	existing, err := s.store.GetCategoryByName(ctx, userID, name)
	if err == nil {
		return existing.Name, nil
	}
	if !repository.IsNotFound(err) {
		return "", appErrors.NewPersistence("failed to look up category", err)
	}

	created, err := s.CreateCategory(ctx, userID, name)
	if err != nil {
		return "", err
	}
	return created.Name, nil
}

// ensureDefaultCategory creates the reserved default category if missing.
func (s *Service) ensureDefaultCategory(ctx context.Context, userID string) error {
	_, err := s.store.GetCategoryByName(ctx, userID, domain.DefaultCategoryName)
	if err == nil {
		return nil
	}
	if !repository.IsNotFound(err) {
		return appErrors.NewPersistence("failed to look up default category", err)
	}

	category := domain.NewCategory(userID, domain.DefaultCategoryName)
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return appErrors.NewPersistence("failed to create default category", err)
	}
	return nil
}

// CreateCategory creates a category with a per-user unique name.
func (s *Service) CreateCategory(ctx context.Context, userID, name string) (*domain.Category, error) {
	category := domain.NewCategory(userID, strings.TrimSpace(name))
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetCategoryByName(ctx, userID, category.Name); err == nil {
		return nil, appErrors.NewValidation("category already exists: " + category.Name)
	} else if !repository.IsNotFound(err) {
		return nil, appErrors.NewPersistence("failed to look up category", err)
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, appErrors.NewPersistence("failed to create category", err)
	}
	s.logger.Info("category created",
		zap.String("user_id", userID), zap.String("name", category.Name))
	return category, nil
}

// ListCategories returns the user's categories, guaranteeing the reserved
// default is present.
func (s *Service) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	if err := s.ensureDefaultCategory(ctx, userID); err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, appErrors.NewPersistence("failed to list categories", err)
	}
	return categories, nil
}

// RenameCategory renames a category and cascades the new name to every
// expense referencing the old one. Renaming to a name that differs only in
// case from the current one is a no-op with no expense rewrites. The reserved
// default category cannot be renamed.
func (s *Service) RenameCategory(ctx context.Context, userID, categoryID, newName string) (*domain.Category, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, appErrors.NewValidation("category name is required")
	}

	category, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound("category not found: " + categoryID)
		}
		return nil, appErrors.NewPersistence("failed to load category", err)
	}
	if category.IsDefault() {
		return nil, appErrors.NewValidation("the default category cannot be renamed")
	}
	if strings.EqualFold(category.Name, newName) {
		return category, nil
	}

	if existing, err := s.store.GetCategoryByName(ctx, userID, newName); err == nil && existing.ID != categoryID {
		return nil, appErrors.NewValidation("category already exists: " + newName)
	} else if err != nil && !repository.IsNotFound(err) {
		return nil, appErrors.NewPersistence("failed to look up category", err)
	}

	oldName := category.Name
	category.Name = newName
	category.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, appErrors.NewPersistence("failed to rename category", err)
	}

	affected, err := s.store.ListExpensesByCategory(ctx, userID, oldName)
	if err != nil {
		return nil, appErrors.NewPersistence("failed to list category expenses", err)
	}
	for _, expense := range affected {
		expense.Category = newName
		expense.Touch()
		if err := s.store.UpdateExpense(ctx, expense); err != nil {
			return nil, appErrors.NewPersistence("failed to rewrite expense "+expense.ID, err)
		}
	}

	s.logger.Info("category renamed",
		zap.String("user_id", userID),
		zap.String("old_name", oldName),
		zap.String("new_name", newName),
		zap.Int("expenses_rewritten", len(affected)),
	)
	return category, nil
}

// DeleteCategory removes a category, reassigning its expenses to the reserved
// default. Deleting the default category always fails with a validation error.
func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	category, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		if repository.IsNotFound(err) {
			return appErrors.NewNotFound("category not found: " + categoryID)
		}
		return appErrors.NewPersistence("failed to load category", err)
	}
	if category.IsDefault() {
		return appErrors.NewValidation("the default category cannot be deleted")
	}

	if err := s.ensureDefaultCategory(ctx, userID); err != nil {
		return err
	}

	affected, err := s.store.ListExpensesByCategory(ctx, userID, category.Name)
	if err != nil {
		return appErrors.NewPersistence("failed to list category expenses", err)
	}
	for _, expense := range affected {
		expense.Category = domain.DefaultCategoryName
		expense.Touch()
		if err := s.store.UpdateExpense(ctx, expense); err != nil {
			return appErrors.NewPersistence("failed to reassign expense "+expense.ID, err)
		}
	}

	if err := s.store.DeleteCategory(ctx, userID, categoryID); err != nil {
		return appErrors.NewPersistence("failed to delete category", err)
	}
	s.logger.Info("category deleted",
		zap.String("user_id", userID),
		zap.String("name", category.Name),
		zap.Int("expenses_reassigned", len(affected)),
	)
	return nil
}
