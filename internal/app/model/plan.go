package model

// DefaultKeyColumn is the primary key column shared by the application tables.
const DefaultKeyColumn = "id"

// Migration order matters: parent tables come before the tables that
// reference them.
var DefaultMigrateTables = []string{
	"Category",
	"Product",
	"User",
	"Sale",
	"SaleItem",
	"Expense",
	"Notification",
}

// Session is never copied from SQLite but still owns a sequence.
var DefaultSequenceTables = append(append([]string{}, DefaultMigrateTables...), "Session")

// TablePlan configures one migrated table.
type TablePlan struct {
	Name        string `yaml:"name" validate:"required"`
	ConflictKey string `yaml:"conflict_key,omitempty"`
}

// Plan lists what to migrate and which sequences to resync.
type Plan struct {
	KeyColumn string      `yaml:"key_column,omitempty"`
	Tables    []TablePlan `yaml:"tables" validate:"min=1,dive"`
	Sequences []string    `yaml:"sequences,omitempty" validate:"dive,required"`
}

// DefaultPlan returns the built-in plan for the point-of-sale schema.
func DefaultPlan() *Plan {
	plan := &Plan{
		KeyColumn: DefaultKeyColumn,
		Sequences: append([]string{}, DefaultSequenceTables...),
	}
	for _, name := range DefaultMigrateTables {
		plan.Tables = append(plan.Tables, TablePlan{Name: name})
	}
	return plan
}

// TableNames returns the migrated table names in plan order.
func (p *Plan) TableNames() []string {
	names := make([]string, 0, len(p.Tables))
	for _, t := range p.Tables {
		names = append(names, t.Name)
	}
	return names
}

// ConflictKeyFor returns the configured override for a table, if any.
func (p *Plan) ConflictKeyFor(table string) string {
	for _, t := range p.Tables {
		if t.Name == table {
			return t.ConflictKey
		}
	}
	return ""
}
