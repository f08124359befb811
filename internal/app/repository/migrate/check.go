package migrate

import (
	"context"

	"go.uber.org/zap"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository"
)

// CheckRowCounts counts each planned table on both sides. Tables that cannot
// be counted get -1 and an error message instead of failing the check.
func CheckRowCounts(ctx context.Context, source repository.SourceDAO, target repository.TargetDAO, plan *model.Plan, logger *zap.Logger) []model.RowCount {
	if plan == nil {
		plan = model.DefaultPlan()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	counts := make([]model.RowCount, 0, len(plan.Tables))
	for _, table := range plan.TableNames() {
		count := model.RowCount{Table: table, Source: -1, Target: -1}

		if n, err := source.CountRows(ctx, table); err != nil {
			logger.Warn("Failed to count source rows", zap.String("table", table), zap.Error(err))
			count.Error = "source: " + err.Error()
		} else {
			count.Source = n
		}

		if n, err := target.CountRows(ctx, table); err != nil {
			logger.Warn("Failed to count target rows", zap.String("table", table), zap.Error(err))
			if count.Error != "" {
				count.Error += "; "
			}
			count.Error += "target: " + err.Error()
		} else {
			count.Target = n
		}

		counts = append(counts, count)
	}
	return counts
}
