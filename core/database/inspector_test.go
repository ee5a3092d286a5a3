package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inspectedItem struct {
	ID          int    `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
}

func (inspectedItem) TableName() string { return "test_items" }

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT, description TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_items")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["name"])

	// PRAGMA table_info returns no rows for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestInspectModel(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	t.Run("MissingTable", func(t *testing.T) {
		report, err := InspectModel(db, &inspectedItem{})
		require.NoError(t, err)
		assert.False(t, report.Exists)
		assert.Equal(t, "test_items", report.Table)
	})

	t.Run("MissingColumn", func(t *testing.T) {
		require.NoError(t, db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT)").Error)

		report, err := InspectModel(db, &inspectedItem{})
		require.NoError(t, err)
		assert.True(t, report.Exists)
		assert.Equal(t, []string{"description"}, report.MissingColumns)
	})
}
