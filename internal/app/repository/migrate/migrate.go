package migrate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository"
)

// Config controls a migration run. Progress and Metrics are optional.
type Config struct {
	Plan     *model.Plan
	DryRun   bool
	Progress *ProgressManager
	Metrics  *Metrics
}

// Migrator copies tables from the source database into the target database.
// Each table is migrated in its own transaction, so a table that aborts never
// takes rows of previously committed tables with it.
type Migrator struct {
	source   repository.SourceDAO
	target   repository.TargetDAO
	logger   *zap.Logger
	plan     *model.Plan
	dryRun   bool
	progress *ProgressManager
	metrics  *Metrics
}

func NewMigrator(source repository.SourceDAO, target repository.TargetDAO, logger *zap.Logger, config Config) *Migrator {
	plan := config.Plan
	if plan == nil {
		plan = model.DefaultPlan()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{
		source:   source,
		target:   target,
		logger:   logger,
		plan:     plan,
		dryRun:   config.DryRun,
		progress: config.Progress,
		metrics:  config.Metrics,
	}
}

// Run migrates every table of the plan in order. A table that fails does not
// stop the run; only context cancellation does.
func (m *Migrator) Run(ctx context.Context) *model.Report {
	report := &model.Report{
		RunID:     uuid.New().String(),
		DryRun:    m.dryRun,
		StartedAt: time.Now(),
	}
	logger := m.logger.With(zap.String("run_id", report.RunID))
	logger.Info("Starting migration",
		zap.Strings("tables", m.plan.TableNames()),
		zap.Bool("dry_run", m.dryRun))

	for _, name := range m.plan.TableNames() {
		if err := ctx.Err(); err != nil {
			logger.Warn("Migration interrupted", zap.Error(err))
			break
		}
		result := m.migrateTable(ctx, logger, name)
		m.metrics.ObserveTable(result)
		report.Tables = append(report.Tables, result)
	}
	m.progress.Wait()

	report.FinishedAt = time.Now()
	logger.Info("Migration finished",
		zap.Int("rows_inserted", report.TotalInserted()),
		zap.Int("tables_aborted", len(report.Aborted())),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report
}

// MigrateTable copies one table. Failures are reported through the result's
// Status and Error.
func (m *Migrator) MigrateTable(ctx context.Context, name string) model.TableResult {
	result := m.migrateTable(ctx, m.logger, name)
	m.metrics.ObserveTable(result)
	return result
}

func (m *Migrator) migrateTable(ctx context.Context, logger *zap.Logger, name string) (result model.TableResult) {
	start := time.Now()
	logger = logger.With(zap.String("table", name))
	logger.Info("Migrating table")

	result = model.TableResult{Table: name}
	defer func() { result.Duration = time.Since(start) }()

	table, err := m.source.DescribeTable(ctx, name)
	if err != nil {
		logger.Error("Failed to describe table", zap.Error(err))
		result.Status = model.TableSkipped
		result.Error = err.Error()
		return result
	}
	if len(table.Columns) == 0 {
		logger.Warn("Table not found or empty")
		result.Status = model.TableSkipped
		return result
	}

	rows, err := m.source.ReadRows(ctx, table)
	if err != nil {
		logger.Error("Failed to read rows", zap.Error(err))
		result.Status = model.TableSkipped
		result.Error = err.Error()
		return result
	}
	result.RowsRead = len(rows)
	logger.Info("Found rows", zap.Int("count", len(rows)))
	if len(rows) == 0 {
		result.Status = model.TableEmpty
		return result
	}

	result.ConflictKey = m.conflictKey(table)
	columns := table.ColumnNames()
	bar := m.progress.CreateBar(len(rows), name)
	defer bar.Complete()

	if m.dryRun {
		for _, row := range rows {
			_, conversions := ConvertRow(row, columns)
			m.tally(logger, &result, conversions)
			bar.Increment()
		}
		result.Status = model.TableDryRun
		return result
	}

	writer, err := m.target.BeginTable(ctx, table, result.ConflictKey)
	if err != nil {
		logger.Error("Failed to start table transaction", zap.Error(err))
		result.Status = model.TableAborted
		result.Error = err.Error()
		return result
	}

	for _, row := range rows {
		converted, conversions := ConvertRow(row, columns)
		m.tally(logger, &result, conversions)

		inserted, err := writer.Insert(ctx, converted)
		if err != nil {
			logger.Error("Error inserting row",
				zap.Any("row", row[0]),
				zap.Error(err))
			if rbErr := writer.Rollback(); rbErr != nil {
				logger.Error("Rollback failed", zap.Error(rbErr))
			}
			result.Status = model.TableAborted
			result.Error = err.Error()
			result.RowsInserted = 0
			result.RowsConflicted = 0
			return result
		}
		if inserted {
			result.RowsInserted++
		} else {
			result.RowsConflicted++
		}
		bar.Increment()
	}

	if err := writer.Commit(); err != nil {
		logger.Error("Failed to commit table", zap.Error(err))
		result.Status = model.TableAborted
		result.Error = err.Error()
		result.RowsInserted = 0
		result.RowsConflicted = 0
		return result
	}

	result.Status = model.TableMigrated
	logger.Info("Table migrated",
		zap.Int("inserted", result.RowsInserted),
		zap.Int("already_present", result.RowsConflicted))
	return result
}

// conflictKey picks the column used to skip rows that already exist. User
// tables without an id are keyed by username.
func (m *Migrator) conflictKey(table model.Table) string {
	if key := m.plan.ConflictKeyFor(table.Name); key != "" {
		return key
	}
	keyColumn := m.plan.KeyColumn
	if keyColumn == "" {
		keyColumn = model.DefaultKeyColumn
	}
	if table.Name == "User" && !table.HasColumn(keyColumn) {
		return "username"
	}
	return keyColumn
}

func (m *Migrator) tally(logger *zap.Logger, result *model.TableResult, conversions []ConversionResult) {
	for _, c := range conversions {
		switch c.Outcome {
		case Converted:
			result.TimestampsFixed++
		case Failed:
			result.ConversionErrors++
			logger.Warn("Timestamp left unconverted",
				zap.String("column", c.Column),
				zap.Any("value", c.Value),
				zap.Error(c.Err))
		}
	}
}
