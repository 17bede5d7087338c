package chat

import (
	"context"
	"strings"

	"ledgerchat-backend/internal/domain"
	appErrors "ledgerchat-backend/pkg/errors"
)

// Entity resolution: an explicit id wins if it still exists under the
// caller's ownership; otherwise the reference is fuzzy-resolved by
// case-insensitive substring match over the display name, tie-broken by
// most-recently-updated. No match is a not-found error.

func (e *Executor) resolveJob(ctx context.Context, userID string, data map[string]any) (*domain.Job, error) {
	if id, ok := stringField(data, "jobId", "id"); ok {
		if job, err := e.ledger.GetJob(ctx, userID, id); err == nil {
			return job, nil
		} else if !appErrors.IsNotFound(err) {
			return nil, err
		}
	}

	name, ok := stringField(data, "jobName", "name", "job")
	if !ok {
		return nil, replyValidation("falta la referencia al trabajo")
	}

	jobs, err := e.ledger.ListJobs(ctx, userID)
	if err != nil {
		return nil, err
	}
	var best *domain.Job
	needle := strings.ToLower(name)
	for _, j := range jobs {
		if !strings.Contains(strings.ToLower(j.Name), needle) {
			continue
		}
		if best == nil || j.UpdatedAt.After(best.UpdatedAt) {
			best = j
		}
	}
	if best == nil {
		return nil, replyNotFound("no encontré el trabajo \"" + name + "\"")
	}
	return best, nil
}

func (e *Executor) resolveExpense(ctx context.Context, userID string, data map[string]any) (*domain.Expense, error) {
	if id, ok := stringField(data, "expenseId", "id"); ok {
		if exp, err := e.ledger.GetExpense(ctx, userID, id); err == nil {
			return exp, nil
		} else if !appErrors.IsNotFound(err) {
			return nil, err
		}
	}

	name, ok := stringField(data, "expenseName", "name", "expense")
	if !ok {
		return nil, replyValidation("falta la referencia al gasto")
	}

	expenses, err := e.ledger.ListExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	var best *domain.Expense
	needle := strings.ToLower(name)
	for _, x := range expenses {
		if !strings.Contains(strings.ToLower(x.Name), needle) {
			continue
		}
		if best == nil || x.UpdatedAt.After(best.UpdatedAt) {
			best = x
		}
	}
	if best == nil {
		return nil, replyNotFound("no encontré el gasto \"" + name + "\"")
	}
	return best, nil
}

func (e *Executor) resolveCategory(ctx context.Context, userID string, data map[string]any) (*domain.Category, error) {
	categories, err := e.ledger.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	if id, ok := stringField(data, "categoryId", "id"); ok {
		for _, c := range categories {
			if c.ID == id {
				return c, nil
			}
		}
	}

	name, ok := stringField(data, "categoryName", "category", "name")
	if !ok {
		return nil, replyValidation("falta la referencia a la categoría")
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	needle := strings.ToLower(name)
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return c, nil
		}
	}
	return nil, replyNotFound("no encontré la categoría \"" + name + "\"")
}

// resolveJobLink resolves an optional job reference on an expense payload.
// ok is false when the payload carries no job reference at all.
func (e *Executor) resolveJobLink(ctx context.Context, userID string, data map[string]any) (jobID string, ok bool, err error) {
	// A bare "name" key on an expense payload is the expense's own name, so
	// only the job-specific keys count as a link reference here.
	ref := map[string]any{}
	if id, has := stringField(data, "jobId"); has {
		ref["jobId"] = id
	}
	if name, has := stringField(data, "jobName", "job"); has {
		ref["jobName"] = name
	}
	if len(ref) == 0 {
		return "", false, nil
	}
	job, err := e.resolveJob(ctx, userID, ref)
	if err != nil {
		return "", true, err
	}
	return job.ID, true, nil
}
