// Package models defines the persisted rows and the request-side types of manifests.
//
// Persisted: Manifest, CanvasPainting, Collection and Batch (gorm models).
// Request-side: ManifestRequest with its generic canvas items and painted resources.
// AssetID is the composite "customer/space/asset" reference to an external asset.
package models
