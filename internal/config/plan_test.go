package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "pos-migrate/internal/app/errors"
	"pos-migrate/internal/app/model"
)

func TestLoadPlan_Default(t *testing.T) {
	plan, err := LoadPlan("")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPlan(), plan)
}

func TestLoadPlan_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := `
key_column: id
tables:
  - name: Category
  - name: User
    conflict_key: username
sequences: [Category, User, Session]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	plan, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Category", "User"}, plan.TableNames())
	assert.Equal(t, "username", plan.ConflictKeyFor("User"))
	assert.Equal(t, []string{"Category", "User", "Session"}, plan.Sequences)
}

func TestLoadPlan_NotFound(t *testing.T) {
	_, err := LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPlanNotFound))
}

func TestParsePlan(t *testing.T) {
	testCases := []struct {
		name          string
		yaml          string
		expectError   error
		errorContains string
		check         func(t *testing.T, plan *model.Plan)
	}{
		{
			name: "defaults key column and sequences",
			yaml: "tables:\n  - name: Sale\n  - name: SaleItem\n",
			check: func(t *testing.T, plan *model.Plan) {
				assert.Equal(t, model.DefaultKeyColumn, plan.KeyColumn)
				assert.Equal(t, []string{"Sale", "SaleItem"}, plan.Sequences)
			},
		},
		{
			name: "trims names",
			yaml: "tables:\n  - name: ' Expense '\n    conflict_key: ' id '\n",
			check: func(t *testing.T, plan *model.Plan) {
				assert.Equal(t, "Expense", plan.Tables[0].Name)
				assert.Equal(t, "id", plan.ConflictKeyFor("Expense"))
			},
		},
		{
			name: "trims sequence names",
			yaml: "tables:\n  - name: Sale\nsequences: [' Sale ', Session]\n",
			check: func(t *testing.T, plan *model.Plan) {
				assert.Equal(t, []string{"Sale", "Session"}, plan.Sequences)
			},
		},
		{
			name:          "duplicate sequence after trimming",
			yaml:          "tables:\n  - name: Sale\nsequences: [Sale, ' Sale']\n",
			expectError:   apperrors.ErrInvalidConfig,
			errorContains: "sequences is invalid: duplicate table Sale",
		},
		{
			name:          "blank sequence name",
			yaml:          "tables:\n  - name: Sale\nsequences: [Sale, '  ']\n",
			expectError:   apperrors.ErrMissingConfig,
			errorContains: "sequences[1] is required",
		},
		{
			name:          "empty document",
			yaml:          "",
			expectError:   apperrors.ErrInvalidConfig,
			errorContains: "tables is invalid",
		},
		{
			name:          "empty table list",
			yaml:          "tables: []\n",
			expectError:   apperrors.ErrInvalidConfig,
			errorContains: "tables is invalid",
		},
		{
			name:          "missing table name",
			yaml:          "tables:\n  - conflict_key: id\n",
			expectError:   apperrors.ErrMissingConfig,
			errorContains: "tables[0].name is required",
		},
		{
			name:          "unknown key",
			yaml:          "tables:\n  - name: Sale\nbatch_size: 10\n",
			expectError:   apperrors.ErrInvalidConfig,
			errorContains: "batch_size",
		},
		{
			name:          "duplicate table",
			yaml:          "tables:\n  - name: Sale\n  - name: Sale\n",
			expectError:   apperrors.ErrInvalidConfig,
			errorContains: "duplicate table Sale",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ParsePlan([]byte(tc.yaml))
			if tc.expectError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.expectError), "got %v", err)
				assert.Contains(t, err.Error(), tc.errorContains)
				return
			}
			require.NoError(t, err)
			tc.check(t, plan)
		})
	}
}
