package check

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
	reportPath string
	strict     bool
)

func init() {
	Cmd.Flags().StringVarP(&reportPath, "report", "r", "", "write an xlsx report to this path")
	Cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any table differs")
}

// Cmd represents the check command
var Cmd = &cobra.Command{
	Use:   "check",
	Short: "Compare per-table row counts between SQLite and PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := common.Setup(cmd.Context(), true)
		defer rt.Close()
		if err != nil {
			return err
		}

		counts := migrate.CheckRowCounts(cmd.Context(), rt.Source, rt.Target, rt.Plan, rt.Logger)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tSQLITE\tPOSTGRES\tMATCH\tERROR")
		for _, c := range counts {
			fmt.Fprintf(w, "%s\t%d\t%d\t%t\t%s\n", c.Table, c.Source, c.Target, c.Matches(), c.Error)
		}
		_ = w.Flush()

		if reportPath != "" {
			if err := export.CountsToExcel(counts, reportPath); err != nil {
				return err
			}
			rt.Logger.Info("Report written", zap.String("path", reportPath))
		}

		mismatched := lo.Reject(counts, func(c model.RowCount, _ int) bool { return c.Matches() })
		if strict && len(mismatched) > 0 {
			return fmt.Errorf("%d table(s) differ", len(mismatched))
		}
		return nil
	},
}
