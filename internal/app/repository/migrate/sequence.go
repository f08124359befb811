package migrate

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository"
)

// Resynchronizer moves each table's sequence past the largest migrated key so
// that new rows never collide with copied ones.
type Resynchronizer struct {
	target  repository.TargetDAO
	logger  *zap.Logger
	plan    *model.Plan
	metrics *Metrics
}

func NewResynchronizer(target repository.TargetDAO, logger *zap.Logger, plan *model.Plan, metrics *Metrics) *Resynchronizer {
	if plan == nil {
		plan = model.DefaultPlan()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resynchronizer{target: target, logger: logger, plan: plan, metrics: metrics}
}

// Run resets every sequence of the plan. Each table is its own transaction;
// a failure is logged and the next table is attempted.
func (r *Resynchronizer) Run(ctx context.Context) []model.SequenceResult {
	var results []model.SequenceResult
	for _, table := range r.plan.Sequences {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Sequence reset interrupted", zap.Error(err))
			break
		}
		result := r.ResetTable(ctx, table)
		r.metrics.ObserveSequence(result)
		results = append(results, result)
	}
	return results
}

// ResetTable sets the table's sequence so that the next generated key is
// MAX(key) + 1.
func (r *Resynchronizer) ResetTable(ctx context.Context, table string) model.SequenceResult {
	keyColumn := r.plan.KeyColumn
	if keyColumn == "" {
		keyColumn = model.DefaultKeyColumn
	}
	logger := r.logger.With(zap.String("table", table))
	result := model.SequenceResult{Table: table}

	fail := func(tx repository.SequenceTx, msg string, err error) model.SequenceResult {
		logger.Error(msg, zap.Error(err))
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Rollback failed", zap.Error(rbErr))
			}
		}
		result.Status = model.SequenceFailed
		result.Error = err.Error()
		return result
	}

	skip := func(tx repository.SequenceTx, status model.SequenceStatus, msg string, fields ...zap.Field) model.SequenceResult {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Rollback failed", zap.Error(rbErr))
		}
		logger.Info(msg, fields...)
		result.Status = status
		return result
	}

	tx, err := r.target.BeginSequence(ctx)
	if err != nil {
		return fail(nil, "Failed to start sequence transaction", err)
	}

	raw, err := tx.MaxKey(ctx, table, keyColumn)
	if err != nil {
		return fail(tx, "Failed to read max key", err)
	}
	if raw == nil {
		return skip(tx, model.SequenceEmpty, "Table is empty, skipping")
	}

	maxKey, err := integerKey(raw)
	if err != nil {
		result.Error = err.Error()
		return skip(tx, model.SequenceNonNumeric, "Key column is not numeric, skipping", zap.Error(err))
	}
	result.MaxKey = maxKey
	result.NextValue = maxKey + 1

	set, err := tx.SetSequence(ctx, table, keyColumn, result.NextValue)
	if err != nil {
		return fail(tx, "Error setting sequence", err)
	}
	if !set {
		return skip(tx, model.SequenceMissing, "Key column has no sequence, skipping")
	}

	if err := tx.Commit(); err != nil {
		return fail(nil, "Failed to commit sequence reset", err)
	}
	logger.Info("Set sequence", zap.Int64("next", result.NextValue))
	result.Status = model.SequenceReset
	return result
}

// integerKey accepts the integer shapes database drivers return for MAX().
// NUMERIC columns arrive as []byte.
func integerKey(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case []byte:
		if parsed, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return parsed, nil
		}
		return 0, apperrors.Mark(fmt.Errorf("max key %q", n), apperrors.ErrNonNumericKey)
	default:
		return 0, apperrors.Mark(fmt.Errorf("max key %v (%T)", v, v), apperrors.ErrNonNumericKey)
	}
}
