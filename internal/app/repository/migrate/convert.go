package migrate

import (
	"strings"
	"time"

	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
)

// Integers above this are millisecond timestamps. Prisma writes 13-digit
// millisecond values to SQLite; 10 digits and below are whole seconds.
const millisecondThreshold = 9999999999

// Outcome tells what the converter did with one value.
type Outcome int

const (
	Unchanged Outcome = iota
	Converted
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Converted:
		return "converted"
	case Failed:
		return "failed"
	default:
		return "unchanged"
	}
}

// ConversionResult is the converter's verdict on a single value. Value is
// always usable: on Failed it holds the original input.
type ConversionResult struct {
	Column  string
	Value   any
	Outcome Outcome
	Err     error
}

// IsTimeColumn reports whether a column name holds a timestamp.
func IsTimeColumn(name string) bool {
	return strings.HasSuffix(name, "At") || name == "date" || name == "expiresAt"
}

// ConvertValue converts an integer epoch value in a time column to a UTC
// time.Time. Anything else comes back unchanged.
func ConvertValue(column string, value any) ConversionResult {
	result := ConversionResult{Column: column, Value: value}
	if !IsTimeColumn(column) {
		return result
	}

	var epoch int64
	switch v := value.(type) {
	case int64:
		epoch = v
	case int:
		epoch = int64(v)
	case int32:
		epoch = int64(v)
	default:
		return result
	}

	var t time.Time
	if epoch > millisecondThreshold {
		t = time.UnixMilli(epoch).UTC()
	} else {
		t = time.Unix(epoch, 0).UTC()
	}
	if year := t.Year(); year < 1 || year > 9999 {
		result.Outcome = Failed
		result.Err = apperrors.Wrapf(apperrors.ErrTimestampRange, "%s=%d is year %d", column, epoch, year)
		return result
	}

	result.Value = t
	result.Outcome = Converted
	return result
}

// ConvertRow applies ConvertValue to every value of a row. The returned row
// is a new slice; failed conversions keep the original value.
func ConvertRow(row model.Row, columns []string) (model.Row, []ConversionResult) {
	converted := make(model.Row, len(row))
	results := make([]ConversionResult, len(row))
	for i, value := range row {
		column := ""
		if i < len(columns) {
			column = columns[i]
		}
		results[i] = ConvertValue(column, value)
		converted[i] = results[i].Value
	}
	return converted, results
}
