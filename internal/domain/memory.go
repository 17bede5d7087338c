package domain

import "time"

// ConversationMemory is the rolling free-text summary of a user's chat
// history. It is read and written by the context loader only; the action
// executor never mutates it.
type ConversationMemory struct {
	UserID    string
	Summary   string
	UpdatedAt time.Time
}

// Snapshot is the current financial state of one user, loaded once per
// orchestration turn. Alias tokens are assigned in snapshot order, so the
// slices keep their repository ordering.
type Snapshot struct {
	Jobs       []*Job
	Expenses   []*Expense
	Categories []*Category
}

// JobByID returns the snapshot job with the given id, or nil.
func (s *Snapshot) JobByID(id string) *Job {
	for _, j := range s.Jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// ExpenseByID returns the snapshot expense with the given id, or nil.
func (s *Snapshot) ExpenseByID(id string) *Expense {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e
		}
	}
	return nil
}
