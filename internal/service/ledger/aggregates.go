package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appErrors "ledgerchat-backend/pkg/errors"
)

// recomputeJobAggregates re-derives a job's cached financial fields from the
// authoritative linked-expense state and writes them back:
//
//	expenses = sum of linked expense amounts
//	profit   = revenue - expenses
//
// It is invoked after every expense mutation that changes a job linkage or
// amount, never speculatively. Summation goes through decimal arithmetic so
// repeated recomputation cannot accumulate float drift. A jobID that no
// longer exists is not an error: a concurrent delete may have won the race,
// and the aggregate dies with the job.
func (s *Service) recomputeJobAggregates(ctx context.Context, userID, jobID string) error {
	if jobID == "" {
		return nil
	}

	job, err := s.store.GetJob(ctx, userID, jobID)
	if err != nil {
		s.logger.Debug("skipping aggregate recomputation, job gone",
			zap.String("job_id", jobID), zap.Error(err))
		return nil
	}

	linked, err := s.store.ListExpensesByJob(ctx, userID, jobID)
	if err != nil {
		return appErrors.NewPersistence("failed to list linked expenses", err)
	}

	total := decimal.Zero
	for _, expense := range linked {
		total = total.Add(decimal.NewFromFloat(expense.Amount))
	}
	expenses, _ := total.Float64()
	profit, _ := decimal.NewFromFloat(job.Revenue).Sub(total).Float64()

	job.Expenses = expenses
	job.Profit = profit
	job.Touch()

	if err := s.store.UpdateJob(ctx, job); err != nil {
		return appErrors.NewPersistence("failed to write back job aggregates", err)
	}

	s.logger.Debug("job aggregates recomputed",
		zap.String("job_id", jobID),
		zap.Float64("expenses", expenses),
		zap.Float64("profit", profit),
	)
	return nil
}
