// Package disposition decides what happens to every asset painted by a manifest.
//
// Decide is a pure function over Facts, evaluated in this precedence:
//
//  1. the asset lives in a space created for this request: New, ingest tagged
//  2. this manifest already paints it: reingest untagged if asked, else nothing
//  3. another manifest paints it: patch the association, reingest untagged if asked
//  4. nobody paints it: reingest tagged if asked; otherwise patch when the asset
//     service already knows it, ingest tagged when it does not
//
// Classifier gathers the facts: ownership from the repository in chunks of
// DefaultChunkSize ids queried concurrently, then a single bulk existence call
// covering only the assets still unresolved.
package disposition
