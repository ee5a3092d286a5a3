// Package integrity provides health checks for the infrastructure the manifest service writes to.
//
// # Checks Provided
//
//   - Structure: the mirror bucket exists and carries the staging prefix.
//   - Schema: every table and column of the persisted models exists in the connected database.
//   - Mirror: every manifest row has a final or staging document, and no document outlives its manifest.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/schema : Runs schema check.
//   - GET /integrity/mirror : Runs mirror check (supports ?fix=true to remove orphans).
package integrity
