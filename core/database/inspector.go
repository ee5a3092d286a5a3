package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ColumnInfo matches the output of SHOW COLUMNS
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	if db.Dialector.Name() == DriverSQLite {
		type sqliteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string `gorm:"column:dflt_value"`
			Pk         int
		}
		var sqliteCols []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			columns = append(columns, ColumnInfo{
				Field:   strings.ToLower(col.Name),
				Type:    strings.ToLower(col.Type),
				Default: col.DefaultVal,
			})
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// TableReport describes how a live table compares to its model.
type TableReport struct {
	Table          string   `json:"table"`
	Exists         bool     `json:"exists"`
	MissingColumns []string `json:"missing_columns"`
}

// InspectModel compares the columns gorm expects for model with the live table.
func InspectModel(db *gorm.DB, model any) (TableReport, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return TableReport{}, fmt.Errorf("failed to parse model: %w", err)
	}
	return inspectSchema(db, stmt.Schema)
}

func inspectSchema(db *gorm.DB, s *schema.Schema) (TableReport, error) {
	report := TableReport{Table: s.Table, MissingColumns: []string{}}

	actual, err := GetTableColumns(db, s.Table)
	if err != nil {
		return report, err
	}
	if len(actual) == 0 {
		return report, nil
	}
	report.Exists = true

	present := make(map[string]struct{}, len(actual))
	for _, col := range actual {
		present[col.Field] = struct{}{}
	}
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		if _, ok := present[strings.ToLower(f.DBName)]; !ok {
			report.MissingColumns = append(report.MissingColumns, f.DBName)
		}
	}
	return report, nil
}
