package model

import "time"

// TableStatus is the outcome of migrating one table.
type TableStatus string

const (
	TableMigrated TableStatus = "migrated"
	TableSkipped  TableStatus = "skipped"
	TableEmpty    TableStatus = "empty"
	TableAborted  TableStatus = "aborted"
	TableDryRun   TableStatus = "dry-run"
)

// TableResult summarizes one table of a migration run.
type TableResult struct {
	Table            string
	Status           TableStatus
	ConflictKey      string
	RowsRead         int
	RowsInserted     int
	RowsConflicted   int
	TimestampsFixed  int
	ConversionErrors int
	Error            string
	Duration         time.Duration
}

// SequenceStatus is the outcome of resetting one table's sequence.
type SequenceStatus string

const (
	SequenceReset      SequenceStatus = "reset"
	SequenceEmpty      SequenceStatus = "empty"
	SequenceNonNumeric SequenceStatus = "non-numeric"
	SequenceMissing    SequenceStatus = "no-sequence"
	SequenceFailed     SequenceStatus = "failed"
)

// SequenceResult summarizes one table of a sequence resync.
type SequenceResult struct {
	Table     string
	Status    SequenceStatus
	MaxKey    int64
	NextValue int64
	Error     string
}

// RowCount compares a table's size in both databases. -1 means the table
// could not be counted on that side.
type RowCount struct {
	Table  string
	Source int64
	Target int64
	Error  string
}

// Matches reports whether both sides were counted and agree.
func (c RowCount) Matches() bool {
	return c.Source >= 0 && c.Target >= 0 && c.Source == c.Target
}

// Report is the outcome of one migration run.
type Report struct {
	RunID      string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Tables     []TableResult
}

// Aborted returns the tables whose migration stopped on an insert error.
func (r *Report) Aborted() []TableResult {
	var aborted []TableResult
	for _, t := range r.Tables {
		if t.Status == TableAborted {
			aborted = append(aborted, t)
		}
	}
	return aborted
}

// TotalInserted sums inserted rows across tables.
func (r *Report) TotalInserted() int {
	total := 0
	for _, t := range r.Tables {
		total += t.RowsInserted
	}
	return total
}
