package migrate

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"pos-migrate/cmd/posmigrate/cmd/common"
	"pos-migrate/internal/app/export"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository/migrate"
)

var (
	dryRun      bool
	reportPath  string
	metricsPath string
	progress    bool
	strict      bool
)

func init() {
	Cmd.Flags().BoolVar(&dryRun, "dry-run", false, "read and convert rows without writing to PostgreSQL")
	Cmd.Flags().StringVarP(&reportPath, "report", "r", "", "write an xlsx run report to this path")
	Cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "write Prometheus text metrics to this path")
	Cmd.Flags().BoolVar(&progress, "progress", false, "show progress bars even when stderr is not a terminal")
	Cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any table aborts")
}

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy the point-of-sale tables from SQLite into PostgreSQL",
	Long: `Copy the point-of-sale tables from SQLite into PostgreSQL

- Tables are copied in plan order, each in its own transaction
- Integer timestamps in time columns are converted to timestamps
- Rows whose key already exists in PostgreSQL are left alone, so re-runs are safe
- A failing row aborts only its table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := common.Setup(cmd.Context(), true)
		defer rt.Close()
		if err != nil {
			return err
		}

		metrics := migrate.NewMetrics()
		migrator := migrate.NewMigrator(rt.Source, rt.Target, rt.Logger, migrate.Config{
			Plan:     rt.Plan,
			DryRun:   dryRun,
			Progress: migrate.NewProgressManager(migrate.ProgressConfig{Enabled: migrate.ShouldShowProgress(progress)}),
			Metrics:  metrics,
		})

		report := migrator.Run(cmd.Context())
		printReport(report)

		if reportPath != "" {
			if err := export.ToExcel(report, reportPath); err != nil {
				return err
			}
			rt.Logger.Info("Report written", zap.String("path", reportPath))
		}
		if metricsPath != "" {
			if err := metrics.WriteToFile(metricsPath); err != nil {
				return err
			}
			rt.Logger.Info("Metrics written", zap.String("path", metricsPath))
		}

		if err := cmd.Context().Err(); err != nil {
			return err
		}
		if aborted := report.Aborted(); strict && len(aborted) > 0 {
			return fmt.Errorf("%d table(s) aborted", len(aborted))
		}
		return nil
	},
}

func printReport(report *model.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tSTATUS\tREAD\tINSERTED\tPRESENT\tTIMESTAMPS\tERROR")
	for _, t := range report.Tables {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			t.Table, t.Status, t.RowsRead, t.RowsInserted, t.RowsConflicted, t.TimestampsFixed, t.Error)
	}
	_ = w.Flush()
	fmt.Printf("migration finished, run id: %s\n", report.RunID)
}
