package resetseq

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"pos-migrate/cmd/posmigrate/cmd/common"
	"pos-migrate/internal/app/export"
	"pos-migrate/internal/app/model"
	"pos-migrate/internal/app/repository/migrate"
)

var (
	reportPath  string
	metricsPath string
	strict      bool
)

func init() {
	Cmd.Flags().StringVarP(&reportPath, "report", "r", "", "write an xlsx report to this path")
	Cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "write Prometheus text metrics to this path")
	Cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any sequence reset fails")
}

// Cmd represents the reset-sequences command
var Cmd = &cobra.Command{
	Use:   "reset-sequences",
	Short: "Move PostgreSQL sequences past the largest migrated key",
	Long: `Move PostgreSQL sequences past the largest migrated key

- For each table, the serial sequence of the key column is set to MAX(key) + 1
- Empty tables and tables with non-numeric keys are skipped
- Each table is reset in its own transaction`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := common.Setup(cmd.Context(), false)
		defer rt.Close()
		if err != nil {
			return err
		}

		metrics := migrate.NewMetrics()
		results := migrate.NewResynchronizer(rt.Target, rt.Logger, rt.Plan, metrics).Run(cmd.Context())

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tSTATUS\tMAX\tNEXT\tERROR")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Table, r.Status, r.MaxKey, r.NextValue, r.Error)
		}
		_ = w.Flush()

		if reportPath != "" {
			if err := export.SequencesToExcel(results, reportPath); err != nil {
				return err
			}
			rt.Logger.Info("Report written", zap.String("path", reportPath))
		}
		if metricsPath != "" {
			if err := metrics.WriteToFile(metricsPath); err != nil {
				return err
			}
		}

		if err := cmd.Context().Err(); err != nil {
			return err
		}
		failed := lo.Filter(results, func(r model.SequenceResult, _ int) bool {
			return r.Status == model.SequenceFailed
		})
		if strict && len(failed) > 0 {
			return fmt.Errorf("%d sequence reset(s) failed", len(failed))
		}
		return nil
	},
}
