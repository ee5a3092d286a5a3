// Package database handles database connections, migrations and schema inspection.
//
// It wraps GORM and supports MySQL in production and SQLite for local runs and tests.
//
// # Schema Inspection
//
// GetTableColumns reads the live column list of a table and InspectModel compares it
// with the columns GORM expects for a model. The integrity feature uses this to report
// tables or columns that a migration has not yet created.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	err = database.Migrate(db, &models.Manifest{}, &models.CanvasPainting{})
//	report, err := database.InspectModel(db, &models.Manifest{})
package database
