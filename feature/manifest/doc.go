// Package manifest implements the manifest write service.
//
// A write moves through Validating, ResolvingCanvasPaintings, ResolvingParent,
// CoordinatingAssets and Persisting, and ends as Created, Updated or Accepted, or
// Failed from any step. Updates are guarded by the manifest etag, compared exactly
// before anything is touched and again inside the persisting transaction.
//
// The asset service is only called after canvas paintings and the parent are
// resolved; cancellation is honoured up to that point. Nothing is persisted or
// mirrored unless every asset service call succeeded.
//
// Routes:
//   - POST /:customer/manifests       create with a generated id
//   - PUT  /:customer/manifests/:id   create or update (If-Match for updates)
//   - GET  /:customer/manifests/:id   mirrored document with ETag
package manifest
