package checks

import (
	"fmt"

	"iiif-presentation/core/database"

	"gorm.io/gorm"
)

// SchemaReport compares the live database with the models the service persists.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  []database.TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// CheckSchema inspects every model and records missing tables and columns.
// Inspection errors are collected per model rather than aborting the check.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  []database.TableReport{},
		Errors:  []string{},
	}

	for _, model := range models {
		table, err := database.InspectModel(db, model)
		if err != nil {
			report.Matched = false
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		if !table.Exists || len(table.MissingColumns) > 0 {
			report.Matched = false
		}
		report.Tables = append(report.Tables, table)
	}

	return report, nil
}
