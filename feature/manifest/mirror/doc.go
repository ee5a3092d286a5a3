// Package mirror writes manifest representations to the object store.
//
// Final documents live at {customer}/manifests/{id}.json. While assets of a manifest
// are still ingesting, a provisional document built from labels and static dimensions
// is written under the staging prefix instead; the next synchronous write replaces it
// with a final document and removes the staging copy.
package mirror
