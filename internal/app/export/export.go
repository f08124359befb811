package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
)

// ToExcel writes a migration report workbook with a summary sheet and one
// row per table.
func ToExcel(report *model.Report, outputFilePath string) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Run")
	if err != nil {
		return err
	}
	addPair(summary, "Run ID", report.RunID)
	addPair(summary, "Dry Run", fmt.Sprint(report.DryRun))
	addPair(summary, "Started", report.StartedAt.Format(time.RFC3339))
	addPair(summary, "Finished", report.FinishedAt.Format(time.RFC3339))
	addPair(summary, "Rows Inserted", fmt.Sprint(report.TotalInserted()))
	addPair(summary, "Tables Aborted", fmt.Sprint(len(report.Aborted())))

	sheet, err := file.AddSheet("Tables")
	if err != nil {
		return err
	}
	addHeader(sheet, "Table", "Status", "Conflict Key", "Rows Read", "Inserted",
		"Already Present", "Timestamps Converted", "Conversion Errors", "Duration", "Error")
	for _, t := range report.Tables {
		row := sheet.AddRow()
		row.AddCell().Value = t.Table
		row.AddCell().Value = string(t.Status)
		row.AddCell().Value = t.ConflictKey
		row.AddCell().SetInt(t.RowsRead)
		row.AddCell().SetInt(t.RowsInserted)
		row.AddCell().SetInt(t.RowsConflicted)
		row.AddCell().SetInt(t.TimestampsFixed)
		row.AddCell().SetInt(t.ConversionErrors)
		row.AddCell().Value = t.Duration.Round(time.Millisecond).String()
		row.AddCell().Value = t.Error
	}

	return save(file, outputFilePath)
}

// SequencesToExcel writes the outcome of a sequence resync.
func SequencesToExcel(results []model.SequenceResult, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sequences")
	if err != nil {
		return err
	}
	addHeader(sheet, "Table", "Status", "Max Key", "Next Value", "Error")
	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().Value = r.Table
		row.AddCell().Value = string(r.Status)
		row.AddCell().SetInt64(r.MaxKey)
		row.AddCell().SetInt64(r.NextValue)
		row.AddCell().Value = r.Error
	}
	return save(file, outputFilePath)
}

// CountsToExcel writes a source/target row count comparison.
func CountsToExcel(counts []model.RowCount, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Row Counts")
	if err != nil {
		return err
	}
	addHeader(sheet, "Table", "Source", "Target", "Match", "Error")
	for _, c := range counts {
		row := sheet.AddRow()
		row.AddCell().Value = c.Table
		row.AddCell().SetInt64(c.Source)
		row.AddCell().SetInt64(c.Target)
		row.AddCell().SetBool(c.Matches())
		row.AddCell().Value = c.Error
	}
	return save(file, outputFilePath)
}

func addHeader(sheet *xlsx.Sheet, titles ...string) {
	row := sheet.AddRow()
	for _, title := range titles {
		row.AddCell().Value = title
	}
}

func addPair(sheet *xlsx.Sheet, key, value string) {
	row := sheet.AddRow()
	row.AddCell().Value = key
	row.AddCell().Value = value
}

func save(file *xlsx.File, outputFilePath string) error {
	if err := file.Save(outputFilePath); err != nil {
		return apperrors.Mark(fmt.Errorf("save %s: %w", outputFilePath, err), apperrors.ErrFileWriteFailed)
	}
	return nil
}
