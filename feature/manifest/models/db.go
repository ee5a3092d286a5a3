package models

import (
	"time"

	"gorm.io/datatypes"
)

// Manifest is the persisted manifest row.
type Manifest struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	CustomerID int       `gorm:"column:customer_id;primaryKey"`
	Label      string    `gorm:"column:label"`
	Slug       string    `gorm:"column:slug;size:255;index:ix_manifests_parent_slug"`
	ParentID   string    `gorm:"column:parent_id;size:64;index:ix_manifests_parent_slug"`
	SpaceID    *int      `gorm:"column:space_id"`
	ETag       string    `gorm:"column:etag;size:64"`
	Created    time.Time `gorm:"column:created"`
	Modified   time.Time `gorm:"column:modified"`
	CreatedBy  string    `gorm:"column:created_by;size:255"`
	ModifiedBy string    `gorm:"column:modified_by;size:255"`
}

// TableName overrides the table name.
func (Manifest) TableName() string {
	return "manifests"
}

// CanvasPainting places one painting on one canvas of a manifest.
// Rows of a manifest that share CanvasOrder share CanvasID; they are the choices of that canvas.
type CanvasPainting struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CanvasID         string    `gorm:"column:canvas_id;size:64;index"`
	CustomerID       int       `gorm:"column:customer_id;index:ix_canvas_paintings_manifest"`
	ManifestID       string    `gorm:"column:manifest_id;size:64;index:ix_canvas_paintings_manifest"`
	CanvasOrder      int       `gorm:"column:canvas_order"`
	ChoiceOrder      *int      `gorm:"column:choice_order"`
	AssetID          *string   `gorm:"column:asset_id;size:255;index"`
	Label            *string   `gorm:"column:label"`
	CanvasLabel      *string   `gorm:"column:canvas_label"`
	CanvasOriginalID *string   `gorm:"column:canvas_original_id;size:1024"`
	StaticWidth      *int      `gorm:"column:static_width"`
	StaticHeight     *int      `gorm:"column:static_height"`
	Ingesting        bool      `gorm:"column:ingesting"`
	Created          time.Time `gorm:"column:created"`
	Modified         time.Time `gorm:"column:modified"`
	CreatedBy        string    `gorm:"column:created_by;size:255"`
	ModifiedBy       string    `gorm:"column:modified_by;size:255"`
}

// TableName overrides the table name.
func (CanvasPainting) TableName() string {
	return "canvas_paintings"
}

// Collection is the parent container of manifests. Collections are only read here.
type Collection struct {
	ID                  string  `gorm:"column:id;primaryKey;size:64"`
	CustomerID          int     `gorm:"column:customer_id;primaryKey"`
	Slug                string  `gorm:"column:slug;size:255"`
	ParentID            *string `gorm:"column:parent_id;size:64"`
	Label               string  `gorm:"column:label"`
	IsStorageCollection bool    `gorm:"column:is_storage_collection"`
}

// TableName overrides the table name.
func (Collection) TableName() string {
	return "collections"
}

// BatchStatus is the tracking status of an ingestion batch.
type BatchStatus string

const (
	BatchIngesting BatchStatus = "Ingesting"
	BatchCompleted BatchStatus = "Completed"
)

// Batch tracks an ingestion batch submitted for a manifest.
type Batch struct {
	ID         int                         `gorm:"column:id;primaryKey;autoIncrement:false"`
	CustomerID int                         `gorm:"column:customer_id"`
	ManifestID string                      `gorm:"column:manifest_id;size:64;index"`
	Status     BatchStatus                 `gorm:"column:status;size:32"`
	Submitted  time.Time                   `gorm:"column:submitted"`
	AssetIDs   datatypes.JSONSlice[string] `gorm:"column:asset_ids"`
}

// TableName overrides the table name.
func (Batch) TableName() string {
	return "batches"
}

// All returns every model for migrations and schema checks.
func All() []any {
	return []any{&Manifest{}, &CanvasPainting{}, &Collection{}, &Batch{}}
}
