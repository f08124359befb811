package migrate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
)

func TestIsTimeColumn(t *testing.T) {
	tests := []struct {
		column string
		want   bool
	}{
		{"createdAt", true},
		{"updatedAt", true},
		{"expiresAt", true},
		{"date", true},
		{"At", true},
		{"dateOfBirth", false},
		{"Date", false},
		{"AtHome", false},
		{"id", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeColumn(tt.column))
		})
	}
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name    string
		column  string
		value   any
		want    any
		outcome Outcome
	}{
		{
			name:    "milliseconds",
			column:  "createdAt",
			value:   int64(1700000000000),
			want:    time.Unix(1700000000, 0).UTC(),
			outcome: Converted,
		},
		{
			name:    "milliseconds_keep_fraction",
			column:  "updatedAt",
			value:   int64(1700000000123),
			want:    time.Unix(1700000000, 123*int64(time.Millisecond)).UTC(),
			outcome: Converted,
		},
		{
			name:    "seconds_at_threshold",
			column:  "date",
			value:   int64(9999999999),
			want:    time.Unix(9999999999, 0).UTC(),
			outcome: Converted,
		},
		{
			name:    "milliseconds_just_above_threshold",
			column:  "date",
			value:   int64(10000000000),
			want:    time.Unix(10000000, 0).UTC(),
			outcome: Converted,
		},
		{
			name:    "seconds_plain_int",
			column:  "expiresAt",
			value:   1700000000,
			want:    time.Unix(1700000000, 0).UTC(),
			outcome: Converted,
		},
		{
			name:    "seconds_int32",
			column:  "createdAt",
			value:   int32(86400),
			want:    time.Unix(86400, 0).UTC(),
			outcome: Converted,
		},
		{
			name:    "zero_is_epoch",
			column:  "createdAt",
			value:   int64(0),
			want:    time.Unix(0, 0).UTC(),
			outcome: Converted,
		},
		{
			name:    "integer_in_plain_column",
			column:  "quantity",
			value:   int64(1700000000000),
			want:    int64(1700000000000),
			outcome: Unchanged,
		},
		{
			name:    "string_in_time_column",
			column:  "createdAt",
			value:   "2024-01-15T10:30:00Z",
			want:    "2024-01-15T10:30:00Z",
			outcome: Unchanged,
		},
		{
			name:    "float_in_time_column",
			column:  "createdAt",
			value:   1700000000.5,
			want:    1700000000.5,
			outcome: Unchanged,
		},
		{
			name:    "null_in_time_column",
			column:  "createdAt",
			value:   nil,
			want:    nil,
			outcome: Unchanged,
		},
		{
			name:    "time_already_decoded",
			column:  "createdAt",
			value:   time.Unix(5, 0).UTC(),
			want:    time.Unix(5, 0).UTC(),
			outcome: Unchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertValue(tt.column, tt.value)
			assert.Equal(t, tt.outcome, got.Outcome)
			assert.Equal(t, tt.want, got.Value)
			assert.NoError(t, got.Err)
			assert.Equal(t, tt.column, got.Column)
		})
	}
}

func TestConvertValue_OutOfRange(t *testing.T) {
	for _, value := range []int64{100000000000000000, -1000000000000} {
		got := ConvertValue("createdAt", value)

		assert.Equal(t, Failed, got.Outcome)
		assert.Equal(t, value, got.Value, "failed conversions keep the original value")
		require.Error(t, got.Err)
		assert.True(t, errors.Is(got.Err, apperrors.ErrTimestampRange))
	}
}

func TestConvertValue_Properties(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	for _, ms := range []int64{10000000000, 1600000000000, 1700000000000, 4102444800000} {
		got := ConvertValue("createdAt", ms)
		require.Equal(t, Converted, got.Outcome)
		assert.True(t, epoch.Add(time.Duration(ms)*time.Millisecond).Equal(got.Value.(time.Time)))
	}
	for _, s := range []int64{1, 86400, 1700000000, 9000000000} {
		got := ConvertValue("createdAt", s)
		require.Equal(t, Converted, got.Outcome)
		assert.True(t, epoch.Add(time.Duration(s)*time.Second).Equal(got.Value.(time.Time)))
	}
}

func TestConvertRow(t *testing.T) {
	columns := []string{"id", "total", "createdAt", "note"}
	row := model.Row{int64(7), 12.5, int64(1700000000000), "cash"}

	converted, results := ConvertRow(row, columns)

	require.Len(t, converted, 4)
	require.Len(t, results, 4)
	assert.Equal(t, int64(7), converted[0])
	assert.Equal(t, 12.5, converted[1])
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), converted[2])
	assert.Equal(t, "cash", converted[3])
	assert.Equal(t, []Outcome{Unchanged, Unchanged, Converted, Unchanged}, []Outcome{
		results[0].Outcome, results[1].Outcome, results[2].Outcome, results[3].Outcome,
	})

	// the input row is left alone
	assert.Equal(t, int64(1700000000000), row[2])
}

func TestConvertRow_MoreValuesThanColumns(t *testing.T) {
	converted, results := ConvertRow(model.Row{int64(1), int64(1700000000000)}, []string{"createdAt"})

	assert.Equal(t, time.Unix(1, 0).UTC(), converted[0])
	assert.Equal(t, int64(1700000000000), converted[1])
	assert.Equal(t, Unchanged, results[1].Outcome)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "converted", Converted.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unchanged", Unchanged.String())
}
