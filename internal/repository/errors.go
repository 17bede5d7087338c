package repository

import "errors"

// Sentinel errors returned by repository implementations. The ledger service
// maps them onto the application error taxonomy.
var (
	ErrJobNotFound          = errors.New("job not found")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMemoryNotFound       = errors.New("conversation memory not found")
)

// IsNotFound reports whether err is any of the repository not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrExpenseNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrMemoryNotFound)
}
