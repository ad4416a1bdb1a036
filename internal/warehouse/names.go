package warehouse

import "fmt"

// TableName carries both forms of a table identifier so fallback paths
// never have to derive one from the other by string surgery.
type TableName struct {
	Database string
	Schema   string
	Table    string
}

func NewTableName(database, schema, table string) TableName {
	return TableName{Database: database, Schema: schema, Table: table}
}

// Qualified returns the three-part database.schema.table form.
func (n TableName) Qualified() string {
	return fmt.Sprintf("%s.%s.%s", n.Database, n.Schema, n.Table)
}

// Local returns the bare table name, resolved via session context.
func (n TableName) Local() string {
	return n.Table
}
