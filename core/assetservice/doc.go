// Package assetservice is the HTTP client for the external asset-management service.
//
// The service owns image/media assets. This package covers the four calls the manifest
// write pipeline needs:
//   - CreateSpace: allocate a workspace that new assets are ingested into.
//   - BulkIngest: submit assets for asynchronous ingestion, returning batch handles.
//   - BulkExistenceLookup: find which asset ids the service already manages.
//   - PatchAssetManifestAssociation: add or remove manifest ids on existing assets.
//
// Non-2xx answers are returned as *Error carrying the upstream status code, so callers
// can map them to their own result categories. A testify mock lives in mocks/.
package assetservice
