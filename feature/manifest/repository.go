package manifest

import (
	"context"
	"errors"
	"fmt"

	"iiif-presentation/feature/manifest/models"

	"gorm.io/gorm"
)

// ErrStaleETag is returned by Persist when the stored etag changed underneath the write.
var ErrStaleETag = errors.New("manifest etag changed")

// ErrManifestExists is returned by Persist when a create finds the manifest already stored.
var ErrManifestExists = errors.New("manifest already exists")

// Repository reads and writes manifest state.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindManifest returns the manifest or nil when it does not exist.
func (r *Repository) FindManifest(ctx context.Context, customerID int, id string) (*models.Manifest, error) {
	var m models.Manifest
	err := r.db.WithContext(ctx).Where("customer_id = ? AND id = ?", customerID, id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return &m, nil
}

// CanvasPaintings returns the rows of a manifest in canvas and choice order.
func (r *Repository) CanvasPaintings(ctx context.Context, customerID int, manifestID string) ([]models.CanvasPainting, error) {
	var rows []models.CanvasPainting
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND manifest_id = ?", customerID, manifestID).
		Order("canvas_order, choice_order, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas paintings: %w", err)
	}
	return rows, nil
}

// IsIngesting reports whether any row of the manifest waits for ingestion.
func (r *Repository) IsIngesting(ctx context.Context, customerID int, manifestID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CanvasPainting{}).
		Where("customer_id = ? AND manifest_id = ? AND ingesting = ?", customerID, manifestID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check ingesting rows: %w", err)
	}
	return count > 0, nil
}

type assetOwner struct {
	AssetID    string
	ManifestID string
}

// FindAssetOwners maps each painted asset id to the manifests painting it.
func (r *Repository) FindAssetOwners(ctx context.Context, customerID int, assetIDs []string) (map[string][]string, error) {
	owners := make(map[string][]string)
	if len(assetIDs) == 0 {
		return owners, nil
	}

	var found []assetOwner
	err := r.db.WithContext(ctx).Model(&models.CanvasPainting{}).
		Distinct("asset_id", "manifest_id").
		Where("customer_id = ? AND asset_id IN ?", customerID, assetIDs).
		Scan(&found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up asset owners: %w", err)
	}

	for _, f := range found {
		owners[f.AssetID] = append(owners[f.AssetID], f.ManifestID)
	}
	return owners, nil
}

// FindCollection returns the collection or nil when it does not exist.
func (r *Repository) FindCollection(ctx context.Context, customerID int, id string) (*models.Collection, error) {
	var c models.Collection
	err := r.db.WithContext(ctx).Where("customer_id = ? AND id = ?", customerID, id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return &c, nil
}

// RootCollection returns the customer's root storage collection, or nil.
func (r *Repository) RootCollection(ctx context.Context, customerID int) (*models.Collection, error) {
	var c models.Collection
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND parent_id IS NULL AND is_storage_collection = ?", customerID, true).
		Order("id").
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load root collection: %w", err)
	}
	return &c, nil
}

// SlugTaken reports whether a sibling manifest or collection under parentID uses slug.
func (r *Repository) SlugTaken(ctx context.Context, customerID int, parentID, slug, manifestID string) (bool, error) {
	var manifests int64
	err := r.db.WithContext(ctx).Model(&models.Manifest{}).
		Where("customer_id = ? AND parent_id = ? AND slug = ? AND id <> ?", customerID, parentID, slug, manifestID).
		Count(&manifests).Error
	if err != nil {
		return false, fmt.Errorf("failed to check manifest slugs: %w", err)
	}
	if manifests > 0 {
		return true, nil
	}

	var collections int64
	err = r.db.WithContext(ctx).Model(&models.Collection{}).
		Where("customer_id = ? AND parent_id = ? AND slug = ?", customerID, parentID, slug).
		Count(&collections).Error
	if err != nil {
		return false, fmt.Errorf("failed to check collection slugs: %w", err)
	}
	return collections > 0, nil
}

// PersistRequest is everything written by one manifest write.
type PersistRequest struct {
	Manifest models.Manifest
	Create   bool
	// PreviousETag guards updates; the row is only changed while it still carries it.
	PreviousETag string
	Inserts      []*models.CanvasPainting
	Updates      []*models.CanvasPainting
	Deletes      []int64
	Batches      []models.Batch
}

// Persist writes the manifest, its canvas paintings and batches in one transaction.
func (r *Repository) Persist(ctx context.Context, req *PersistRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := req.Manifest
		if req.Create {
			if err := tx.Create(&m).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrManifestExists
				}
				return fmt.Errorf("failed to create manifest: %w", err)
			}
		} else {
			res := tx.Model(&models.Manifest{}).
				Where("customer_id = ? AND id = ? AND etag = ?", m.CustomerID, m.ID, req.PreviousETag).
				Updates(map[string]any{
					"label":       m.Label,
					"slug":        m.Slug,
					"parent_id":   m.ParentID,
					"space_id":    m.SpaceID,
					"etag":        m.ETag,
					"modified":    m.Modified,
					"modified_by": m.ModifiedBy,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update manifest: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrStaleETag
			}
		}

		if len(req.Deletes) > 0 {
			if err := tx.Where("id IN ?", req.Deletes).Delete(&models.CanvasPainting{}).Error; err != nil {
				return fmt.Errorf("failed to delete canvas paintings: %w", err)
			}
		}
		for _, row := range req.Updates {
			if err := tx.Save(row).Error; err != nil {
				return fmt.Errorf("failed to update canvas painting %d: %w", row.ID, err)
			}
		}
		if len(req.Inserts) > 0 {
			if err := tx.Create(req.Inserts).Error; err != nil {
				return fmt.Errorf("failed to insert canvas paintings: %w", err)
			}
		}
		if len(req.Batches) > 0 {
			if err := tx.Create(&req.Batches).Error; err != nil {
				return fmt.Errorf("failed to record batches: %w", err)
			}
		}
		return nil
	})
}
