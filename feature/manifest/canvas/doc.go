// Package canvas resolves a declarative manifest into its canvas painting rows.
//
// A request has exactly one authoritative source, chosen once per request:
//   - WithAsset: at least one painted resource carries an asset. Painted resources
//     drive construction; when the generic item structure is also present the two are
//     interleaved by Merge, with asset canvas orders acting as fixed checkpoints.
//   - StructuralOnly: the item structure, or asset-less painted resources.
//
// # Identity rules
//
// Rows sharing a canvas order share exactly one canvas id, and choice order is set
// only when two or more rows share a canvas order. Explicit ids are accepted either
// bare or as {base}/{customer}/canvases/{id} and must belong to the requesting customer.
//
// # Matching
//
// On update the existing rows are indexed once by asset id, canvas original id,
// canvas id and position. Each descriptor claims at most one row; matched rows keep
// their row id and, when possible, their canvas id. Unclaimed rows are deleted.
//
// # Usage Example
//
//	resolver := canvas.NewResolver(generator, canvas.NewIDParser(baseURL))
//	plan, err := resolver.Resolve(ctx, canvas.Input{
//	    CustomerID: 1,
//	    ManifestID: "abc",
//	    Request:    req,
//	    Existing:   rows,
//	    Actor:      "api",
//	    Now:        time.Now(),
//	})
package canvas
